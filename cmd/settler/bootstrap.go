package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fd1az/swap-settler/internal/apm"
	"github.com/fd1az/swap-settler/internal/config"
	"github.com/fd1az/swap-settler/internal/logger"
	"github.com/fd1az/swap-settler/internal/metrics"
	"github.com/fd1az/swap-settler/internal/monolith"
)

// application is the monolith as seen by the commands.
type application interface {
	monolith.Monolith
	RegisterModules(modules ...monolith.Module) error
	StartModules(ctx context.Context, modules ...monolith.Module) error
	Close() error
}

// runtime is everything a command needs, plus the teardown of it.
type runtime struct {
	cfg      *config.Config
	log      *logger.Logger
	app      application
	shutdown func()
}

// bootstrap loads config, builds the logger and telemetry and dials the
// chain. In TUI mode logs go only to the optional file.
func bootstrap(cmd *cobra.Command, tuiMode bool) (*runtime, error) {
	ctx := cmd.Context()

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.App.TUIMode = tuiMode

	var out io.Writer = os.Stderr
	if tuiMode {
		out = io.Discard
	}
	var opts []logger.Option
	if cfg.App.LogFile != "" {
		opts = append(opts, logger.WithRotatingFile(cfg.App.LogFile, 50, 3, 28))
	}
	log := logger.New(out, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name, nil, opts...)

	log.Info(ctx, "starting swap settler",
		"version", version,
		"environment", cfg.App.Environment,
		"chain_id", cfg.Chain.ChainID,
	)

	telemetryCtx, stopServer := context.WithCancel(context.Background())
	stopTelemetry, err := initTelemetry(telemetryCtx, cfg, log)
	if err != nil {
		stopServer()
		return nil, err
	}

	app, err := monolith.New(cfg, log)
	if err != nil {
		stopServer()
		stopTelemetry()
		return nil, fmt.Errorf("failed to create monolith: %w", err)
	}

	return &runtime{
		cfg: cfg,
		log: log,
		app: app,
		shutdown: func() {
			if err := app.Close(); err != nil {
				log.Warn(context.Background(), "shutdown incomplete", "error", err)
			}
			stopServer()
			stopTelemetry()
			_ = log.Sync()
		},
	}, nil
}

// initTelemetry installs the tracer and meter providers and returns their
// teardown. Disabled telemetry returns a no-op teardown.
func initTelemetry(ctx context.Context, cfg *config.Config, log *logger.Logger) (func(), error) {
	if !cfg.Telemetry.Enabled {
		return func() {}, nil
	}

	serviceName := cfg.Telemetry.ServiceName
	if serviceName == "" {
		serviceName = cfg.App.Name
	}
	provider := apm.Provider(cfg.Telemetry.Provider)

	traceProvider, err := apm.NewTraceProvider(log, apm.WithProvider(
		provider,
		apm.ExporterConfig{
			ServiceName: serviceName,
			Endpoint:    cfg.Telemetry.OTLPEndpoint,
			Headers:     cfg.Telemetry.OTLPHeaders,
		},
		log,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to init tracing: %w", err)
	}

	metricOpts := []metrics.Option{
		metrics.WithServiceName(serviceName),
		metrics.WithPrometheus(),
	}
	if provider == apm.OTLPGRPCProvider && cfg.Telemetry.OTLPEndpoint != "" {
		metricOpts = append(metricOpts, metrics.WithOTLP(
			cfg.Telemetry.OTLPEndpoint, apm.ParseHeaders(cfg.Telemetry.OTLPHeaders), true))
	}
	meterProvider, err := metrics.NewMetricProvider(metricOpts...)
	if err != nil {
		_ = traceProvider.Stop()
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	var serverOpts []metrics.ServerOption
	if cfg.Telemetry.PrometheusPort > 0 {
		serverOpts = append(serverOpts, metrics.WithPort(cfg.Telemetry.PrometheusPort))
	}
	go metrics.ServePrometheusMetrics(ctx, log, serverOpts...)

	return func() {
		if err := traceProvider.Stop(); err != nil {
			log.Warn(context.Background(), "trace provider shutdown failed", "error", err)
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Warn(shutdownCtx, "meter provider shutdown failed", "error", err)
		}
	}, nil
}
