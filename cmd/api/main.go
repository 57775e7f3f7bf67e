// Package main is the entry point for the RenewRadar API server.
//
// The server exposes the health probe and the authenticated internal route
// that triggers a notification run on demand (including replays of a missed
// day via ?date=). Scheduled runs are normally driven by the notify-worker
// Lambda; this process exists for operations and local development.
//
// Graceful shutdown is handled via OS signal interception (SIGINT, SIGTERM).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"

	"renewradar/internal/api"
	"renewradar/internal/config"
	"renewradar/internal/db"
	"renewradar/internal/external"
	"renewradar/internal/notifications/compose"
	"renewradar/internal/notifications/core"
	"renewradar/internal/types"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on
// error.
func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// SSM-backed secrets are only resolved outside local mode, so the
	// provider is built lazily from ambient AWS credentials.
	var provider config.SecretProvider
	if env := os.Getenv("APP_ENV"); env != "" && env != "local" {
		baseCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return fmt.Errorf("loading AWS configuration: %w", err)
		}
		provider = config.NewSSMProvider(baseCfg)
	}

	cfg, err := config.LoadConfig(provider)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	logger.Info("renewradar API starting",
		"environment", cfg.Environment,
		"port", cfg.Server.Port,
	)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return fmt.Errorf("loading AWS configuration: %w", err)
	}
	if cfg.AWS.EndpointURL != "" {
		awsCfg.BaseEndpoint = &cfg.AWS.EndpointURL
	}

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	registry, err := external.NewClientRegistry(cfg, awsCfg, logger)
	if err != nil {
		return fmt.Errorf("initializing delivery providers: %w", err)
	}

	var metrics core.RunMetrics = core.NoopMetrics{}
	if cfg.Environment != "local" {
		metrics = core.NewCloudWatchMetrics(
			cloudwatch.NewFromConfig(awsCfg),
			cfg.Notify.MetricNamespace,
			&slogAdapter{logger: logger.With("component", "metrics")},
		)
	}

	dispatcher := core.NewDispatcher(core.DispatcherConfig{
		Offsets:       cfg.Notify.Offsets,
		Concurrency:   cfg.Notify.Concurrency,
		SendTimeout:   cfg.Notify.SendTimeout,
		RunBudget:     cfg.Notify.RunBudget,
		CivicTimezone: cfg.Notify.CivicTimezone,
	}, core.Deps{
		Source:   db.NewObligationRepository(pool),
		Resolver: core.NewPreferenceResolver(db.NewPreferenceRepository(pool)),
		Ledger:   db.NewLedgerRepository(pool),
		Composer: compose.NewComposer(cfg.Server.DashboardURL),
		Email:    registry.Email,
		SMS:      registry.SMS,
		Voice:    registry.Voice,
		Metrics:  metrics,
		Logger:   &slogAdapter{logger: logger.With("component", "dispatcher")},
	})

	srv := api.NewServer(cfg,
		api.NewCronHandler(dispatcher, logger),
		api.NewHealthHandler(pool),
		logger,
	)

	return runHTTPServer(ctx, srv, cfg, logger)
}

// runHTTPServer starts the server with graceful shutdown on signal.
func runHTTPServer(ctx context.Context, srv *api.Server, cfg *config.Config, logger *slog.Logger) error {
	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newLogger creates a JSON slog logger at the configured level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// slogAdapter wraps *slog.Logger to implement the types.Logger interface.
// slog.Logger satisfies Info, Error, and Warn but With returns *slog.Logger,
// not types.Logger, so an adapter is necessary.
type slogAdapter struct {
	logger *slog.Logger
}

func (a *slogAdapter) Info(msg string, args ...any)  { a.logger.Info(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.logger.Error(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.logger.Warn(msg, args...) }
func (a *slogAdapter) With(args ...any) types.Logger {
	return &slogAdapter{logger: a.logger.With(args...)}
}
