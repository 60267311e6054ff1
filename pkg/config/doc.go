// Package config loads and validates anvil's YAML configuration,
// applying defaults, ANVIL_* environment overrides and hosted-vendor
// credential resolution (OPENAI_API_KEY, ANTHROPIC_API_KEY,
// GEMINI_API_KEY).
//
// Credential presence gates enablement: a hosted provider entry with no
// API key in the file or the environment is disabled during loading, so
// the registry never constructs an adapter that could only fail
// authentication.
package config
