// Package cli provides output formatting shared by the anvil commands.
package cli
