package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "anvil",
	Short: "Anvil - multi-provider LLM runtime for SkillForge",
	Long: `Anvil is the LLM orchestration runtime behind the SkillForge SFIA
skills-assessment platform. It abstracts over several LLM backends
(local Ollama, OpenAI, Anthropic, Gemini), providing:
  - Normalized request/response handling per provider
  - Per-provider rate limiting and response caching
  - Ordered fallback across providers by priority
  - Concurrent ensemble generation for answer comparison
  - Usage and cost tracking with Prometheus metrics`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
