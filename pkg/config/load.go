package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"skillforge-hq/anvil/pkg/providers"
)

// LoadConfig loads configuration from a YAML file, applies defaults,
// resolves credentials from the environment and validates the result.
//
// A missing file is not an error: the built-in defaults are used, which
// gives a working local-inference-only setup out of the box.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		slog.Info("config file not found, using defaults", "path", path)
	case err != nil:
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	ApplyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	resolveCredentials(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// applyEnvOverrides applies ANVIL_* environment variable overrides.
// Environment variables always take precedence over file values.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("ANVIL_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("ANVIL_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("ANVIL_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("ANVIL_LOG_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("ANVIL_LOG_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("ANVIL_USAGE_BACKEND"); val != "" {
		cfg.Usage.Backend = val
	}
	if val := os.Getenv("ANVIL_USAGE_DB_PATH"); val != "" {
		cfg.Usage.DBPath = val
	}
	if val := os.Getenv("ANVIL_USAGE_FLUSH_SCHEDULE"); val != "" {
		cfg.Usage.FlushSchedule = val
	}
}

// resolveCredentials fills each hosted provider's API key from its
// conventional environment variable and gates enablement on credential
// presence: a hosted vendor without a key is disabled, not broken.
func resolveCredentials(cfg *Config) {
	for i := range cfg.Providers {
		p := &cfg.Providers[i]
		envName, hosted := credentialEnv[providers.ID(p.Identity)]
		if !hosted {
			continue
		}

		if p.APIKey == "" {
			p.APIKey = os.Getenv(envName)
		}

		if p.APIKey == "" {
			if p.Enabled == nil || *p.Enabled {
				slog.Info("hosted provider has no credential, disabling",
					"provider", p.Identity,
					"env", envName,
				)
			}
			disabled := false
			p.Enabled = &disabled
		}
	}
}
