package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"skillforge-hq/anvil/pkg/config"
	"skillforge-hq/anvil/pkg/manager"
	"skillforge-hq/anvil/pkg/registry"
	"skillforge-hq/anvil/pkg/server"
	"skillforge-hq/anvil/pkg/telemetry/logging"
	"skillforge-hq/anvil/pkg/telemetry/metrics"
	"skillforge-hq/anvil/pkg/usage"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the anvil API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runServer(ctx context.Context) error {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return err
	}

	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	if _, err := logging.Setup(logging.Config{
		Level:  cfg.Telemetry.Logging.Level,
		Format: cfg.Telemetry.Logging.Format,
	}); err != nil {
		return err
	}

	reg := registry.Build(cfg.ProviderConfigs())
	if reg.Len() == 0 {
		slog.Warn("no active providers configured; all generation requests will fail softly")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tracker, err := buildTracker(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := tracker.Close(context.Background()); err != nil {
			slog.Error("failed to close usage tracker", "error", err)
		}
	}()

	scheduler := usage.NewScheduler(tracker, cfg.Usage.FlushSchedule)
	if err := scheduler.Start(ctx); err != nil {
		return err
	}

	opts := []manager.Option{manager.WithUsage(tracker)}

	var promRegistry *prometheus.Registry
	if cfg.MetricsEnabled() {
		promRegistry = prometheus.NewRegistry()
		opts = append(opts, manager.WithMetrics(metrics.NewProviderMetrics(promRegistry)))
	}

	mgr := manager.New(reg, opts...)

	// Provider config is immutable once the registry exists; a changed
	// file takes effect on the next restart, and the watcher just makes
	// that visible.
	go func() {
		err := config.Watch(ctx, cfgFile, func() {
			slog.Warn("configuration changed on disk; restart anvil to apply it")
		})
		if err != nil && ctx.Err() == nil {
			slog.Warn("configuration watcher stopped", "error", err)
		}
	}()

	return server.NewServer(&cfg.Server, mgr, promRegistry).Start(ctx)
}

// buildTracker constructs the usage tracker with the configured backend.
func buildTracker(ctx context.Context, cfg *config.Config) (*usage.Tracker, error) {
	var backend usage.Backend
	switch cfg.Usage.Backend {
	case "sqlite":
		sqliteBackend, err := usage.NewSQLiteBackend(cfg.Usage.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open usage backend: %w", err)
		}
		backend = sqliteBackend
	default:
		backend = usage.NewMemoryBackend()
	}

	tracker, err := usage.NewTracker(ctx, backend)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize usage tracker: %w", err)
	}
	return tracker, nil
}
