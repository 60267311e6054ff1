package config

import "time"

// Default model identifiers per provider. Overridable per entry in the
// configuration file.
const (
	DefaultOllamaModel    = "llama3.1"
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-3-5-haiku-latest"
	DefaultGeminiModel    = "gemini-1.5-flash"
)

// ApplyDefaults fills in default values for any unset configuration
// fields. It is called automatically by LoadConfig.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = "127.0.0.1:8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 120 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 120 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}

	if len(cfg.Providers) == 0 {
		cfg.Providers = DefaultProviders()
	}
	for i := range cfg.Providers {
		applyProviderDefaults(&cfg.Providers[i])
	}

	if cfg.Usage.Backend == "" {
		cfg.Usage.Backend = "memory"
	}
	if cfg.Usage.DBPath == "" {
		cfg.Usage.DBPath = "anvil-usage.db"
	}
	if cfg.Usage.FlushSchedule == "" {
		cfg.Usage.FlushSchedule = "*/5 * * * *"
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = "info"
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = "json"
	}
}

func applyProviderDefaults(p *ProviderConfig) {
	if p.MaxTokens == 0 {
		p.MaxTokens = 1024
	}
	if p.Temperature == nil {
		temperature := 0.7
		p.Temperature = &temperature
	}
	if p.Timeout == 0 {
		p.Timeout = 60 * time.Second
	}
	if p.RateLimitPerMinute == 0 {
		p.RateLimitPerMinute = 60
	}
}

// DefaultProviders is the provider list used when the file configures
// none: local inference first, hosted vendors behind it in ascending
// cost order. Hosted entries stay disabled until their credential
// appears in the environment.
func DefaultProviders() []ProviderConfig {
	return []ProviderConfig{
		{
			Identity: "ollama",
			Model:    DefaultOllamaModel,
			Priority: 1,
		},
		{
			Identity:     "gemini",
			Model:        DefaultGeminiModel,
			Priority:     2,
			CostPerToken: 0.0000003,
		},
		{
			Identity:     "openai",
			Model:        DefaultOpenAIModel,
			Priority:     3,
			CostPerToken: 0.0000006,
		},
		{
			Identity:     "anthropic",
			Model:        DefaultAnthropicModel,
			Priority:     4,
			CostPerToken: 0.000004,
		},
	}
}
