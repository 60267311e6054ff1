package config

import (
	"fmt"
	"net"
)

// Validate checks structural validity of the configuration. Provider
// entries are deliberately not fatal here: unknown identities and
// unusable configs are skipped with a warning when the registry is
// built, so a bad provider entry can never take the whole process down.
func Validate(cfg *Config) error {
	if _, _, err := net.SplitHostPort(cfg.Server.ListenAddress); err != nil {
		return fmt.Errorf("invalid server.listen_address %q: %w", cfg.Server.ListenAddress, err)
	}

	if cfg.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}

	switch cfg.Usage.Backend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("invalid usage.backend %q (expected memory or sqlite)", cfg.Usage.Backend)
	}

	if cfg.Usage.Backend == "sqlite" && cfg.Usage.DBPath == "" {
		return fmt.Errorf("usage.db_path is required with the sqlite backend")
	}

	for _, p := range cfg.Providers {
		if p.Identity == "" {
			return fmt.Errorf("provider entry missing identity")
		}
		if p.RateLimitPerMinute < 0 {
			return fmt.Errorf("provider %q: rate_limit_per_minute cannot be negative", p.Identity)
		}
		if p.CostPerToken < 0 {
			return fmt.Errorf("provider %q: cost_per_token cannot be negative", p.Identity)
		}
	}

	return nil
}
