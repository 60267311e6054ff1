package config

import (
	"time"

	"skillforge-hq/anvil/pkg/providers"
)

// Config is the root configuration structure for anvil.
type Config struct {
	// Server contains the HTTP API server configuration.
	Server ServerConfig `yaml:"server"`

	// Providers is the ordered list of provider configurations. Order in
	// the file is cosmetic; fallback order is governed by each entry's
	// priority field.
	Providers []ProviderConfig `yaml:"providers"`

	// Usage contains the usage-ledger configuration.
	Usage UsageConfig `yaml:"usage"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP API server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out a response.
	// Ensemble calls can be slow, so this defaults generously.
	// Default: 120s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 15s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ProviderConfig configures one provider backend.
type ProviderConfig struct {
	// Identity is the backend kind ("ollama", "openai", "anthropic",
	// "gemini"). Unknown identities are skipped with a warning when the
	// registry is built.
	Identity string `yaml:"identity"`

	// Model is the model identifier sent to the backend.
	Model string `yaml:"model"`

	// APIKey is the credential. Usually left empty in the file and
	// resolved from the vendor's conventional environment variable.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the backend's default endpoint.
	BaseURL string `yaml:"base_url"`

	// MaxTokens is the default output token cap.
	// Default: 1024
	MaxTokens int `yaml:"max_tokens"`

	// Temperature is the default sampling temperature. A pointer so an
	// explicit 0 (greedy decoding) is distinguishable from unset.
	// Default: 0.7
	Temperature *float64 `yaml:"temperature"`

	// Timeout is the per-request timeout.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout"`

	// RateLimitPerMinute caps real calls per rolling minute.
	// Default: 60
	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`

	// CostPerToken is the estimated USD cost per output token.
	CostPerToken float64 `yaml:"cost_per_token"`

	// Enabled controls whether the provider participates at all. For
	// hosted vendors, an absent credential forces this to false during
	// loading regardless of the file value.
	Enabled *bool `yaml:"enabled"`

	// Priority orders fallback; lower is tried first.
	Priority int `yaml:"priority"`
}

// UsageConfig contains configuration for the usage ledger.
type UsageConfig struct {
	// Backend selects persistence: "memory" or "sqlite".
	// Default: "memory"
	Backend string `yaml:"backend"`

	// DBPath is the SQLite database path when Backend is "sqlite".
	// Default: "anvil-usage.db"
	DBPath string `yaml:"db_path"`

	// FlushSchedule is a standard cron expression for periodic flushes
	// to the backend. Empty disables scheduled flushing (totals are
	// still flushed on shutdown).
	// Default: "*/5 * * * *"
	FlushSchedule string `yaml:"flush_schedule"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging configures the structured logger.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is the minimum level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Enabled controls whether /metrics is served.
	// Default: true
	Enabled *bool `yaml:"enabled"`
}

// credentialEnv maps hosted-vendor identities to the conventional
// environment variable carrying their API key. The local inference
// backend has no entry: it needs no credential.
var credentialEnv = map[providers.ID]string{
	providers.IDOpenAI:    "OPENAI_API_KEY",
	providers.IDAnthropic: "ANTHROPIC_API_KEY",
	providers.IDGemini:    "GEMINI_API_KEY",
}

// ProviderConfigs converts the loaded provider entries into the
// providers package's config records.
func (c *Config) ProviderConfigs() []providers.Config {
	out := make([]providers.Config, 0, len(c.Providers))
	for _, p := range c.Providers {
		enabled := p.Enabled == nil || *p.Enabled
		temperature := 0.0
		if p.Temperature != nil {
			temperature = *p.Temperature
		}
		out = append(out, providers.Config{
			Identity:           providers.ID(p.Identity),
			Model:              p.Model,
			APIKey:             p.APIKey,
			BaseURL:            p.BaseURL,
			MaxTokens:          p.MaxTokens,
			Temperature:        temperature,
			Timeout:            p.Timeout,
			RateLimitPerMinute: p.RateLimitPerMinute,
			CostPerToken:       p.CostPerToken,
			Enabled:            enabled,
			Priority:           p.Priority,
		})
	}
	return out
}

// MetricsEnabled reports whether the metrics endpoint is on.
func (c *Config) MetricsEnabled() bool {
	return c.Telemetry.Metrics.Enabled == nil || *c.Telemetry.Metrics.Enabled
}
