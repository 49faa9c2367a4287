package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/luigisaetta/finops-with-oci-ai/pkg/cli"
	"github.com/luigisaetta/finops-with-oci-ai/pkg/config"
	"github.com/luigisaetta/finops-with-oci-ai/pkg/engine"
	"github.com/luigisaetta/finops-with-oci-ai/pkg/findings"
	"github.com/luigisaetta/finops-with-oci-ai/pkg/findings/storage"
	"github.com/luigisaetta/finops-with-oci-ai/pkg/policy/manager"
	"github.com/luigisaetta/finops-with-oci-ai/pkg/provider"
	"github.com/luigisaetta/finops-with-oci-ai/pkg/telemetry/health"
	"github.com/luigisaetta/finops-with-oci-ai/pkg/telemetry/logging"
	"github.com/luigisaetta/finops-with-oci-ai/pkg/telemetry/metrics"
)

var serveFlags struct {
	config string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run scheduled evaluation passes",
	Long: `Run as a long-lived service: evaluate on a cron schedule, hot-reload
policies on file changes and expose Prometheus metrics.

Examples:
  finops serve --config config.yaml`,
	RunE: serve,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.config, "config", "c", "config.yaml", "config file path")
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(serveFlags.config)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.Setup(cfg.Telemetry.Logging, nil)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}

	ctx := cli.SetupSignalHandler()

	mgr, err := manager.NewManager(cfg.Policies.Dir, cfg.Policies.Watch, logger)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}
	if err := mgr.Start(ctx); err != nil {
		return cli.NewCommandError("serve", err)
	}
	defer mgr.Stop()

	dataProvider, err := buildServeProvider(cfg, logger)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}

	sink, err := buildServeSink(cfg)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}
	defer sink.Close()

	var evalMetrics *metrics.EvaluationMetrics
	if cfg.Telemetry.Metrics.Enabled {
		registry := metrics.NewRegistry()
		evalMetrics = metrics.NewEvaluationMetrics(&cfg.Telemetry.Metrics, registry)
		server := metrics.NewServer(&cfg.Telemetry.Metrics, registry, logger)

		checker := health.New(0)
		checker.Register("policies", func(ctx context.Context) error {
			if len(mgr.Registry().Active()) == 0 {
				return errors.New("no active policies loaded")
			}
			return nil
		})
		checker.Register("provider", func(ctx context.Context) error {
			_, err := dataProvider.ListScopes(ctx, "compartment")
			return err
		})
		server.Handle("/health", checker.LivenessHandler())
		server.Handle("/ready", checker.ReadinessHandler())
		server.Handle("/version", health.VersionHandler(Version, GitCommit, BuildDate))

		go func() {
			if err := server.Start(ctx); err != nil {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	engineCfg := engine.Config{
		MaxConcurrentScopes: cfg.Engine.MaxConcurrentScopes,
		FetchTimeout:        cfg.Engine.FetchTimeout,
	}
	if err := engineCfg.Validate(); err != nil {
		return cli.NewCommandError("serve", err)
	}
	eng := engine.New(dataProvider, sink, engineCfg, logger, evalMetrics)

	scheduler := engine.NewScheduler(eng, mgr.Registry().Active, cfg.Schedule, logger)
	if err := scheduler.Start(ctx); err != nil {
		return cli.NewCommandError("serve", err)
	}
	defer scheduler.Stop()

	logger.Info("serving", "policies_dir", cfg.Policies.Dir, "schedule", cfg.Schedule)
	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}

// buildServeProvider wraps the snapshot provider with the retry decorator.
func buildServeProvider(cfg *config.Config, logger *slog.Logger) (provider.Provider, error) {
	if cfg.Provider.Snapshot == "" {
		return nil, cli.NewConfigError("provider.snapshot", "must not be empty")
	}
	snapshot, err := provider.LoadSnapshotFile(cfg.Provider.Snapshot)
	if err != nil {
		return nil, err
	}
	retryCfg := provider.RetryConfig{
		MaxAttempts:    uint64(cfg.Provider.Retry.MaxAttempts),
		InitialBackoff: cfg.Provider.Retry.InitialBackoff,
	}
	return provider.WithRetry(snapshot, retryCfg, logger), nil
}

// buildServeSink creates the configured findings sink.
func buildServeSink(cfg *config.Config) (findings.Sink, error) {
	if cfg.Findings.Backend == "memory" {
		return storage.NewMemorySink(), nil
	}
	return storage.NewSQLiteSink(&storage.SQLiteConfig{
		Path:         cfg.Findings.SQLite.Path,
		MaxOpenConns: cfg.Findings.SQLite.MaxOpenConns,
		BusyTimeout:  cfg.Findings.SQLite.BusyTimeout,
	})
}
