// Package main is the entrypoint for the notify-worker Lambda function.
//
// The worker is invoked on a schedule (EventBridge rule, daily per civic
// timezone) and executes one full notification pass: scan due obligations at
// the configured day offsets, resolve preferences, classify urgency, and
// deliver through the configured providers with at-most-once semantics.
//
// Cold start (main):
//  1. Load AWS SDK configuration and resolve SSM-backed secrets.
//  2. Load and validate application configuration.
//  3. Initialize the database pool, delivery providers, and metrics.
//  4. Build the dispatcher and register the Lambda handler.
//
// In local mode (APP_ENV=local) the worker skips the Lambda runtime, reads an
// optional Input JSON from stdin, runs one pass, and prints the result.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"

	"renewradar/internal/config"
	"renewradar/internal/db"
	"renewradar/internal/external"
	"renewradar/internal/notifications/compose"
	"renewradar/internal/notifications/core"
	"renewradar/internal/types"
)

// Input is the Lambda invocation payload. All fields are optional; an empty
// payload runs today's pass with the configured offsets.
type Input struct {
	// AsOfDate overrides "today" (YYYY-MM-DD). Used for replaying a missed
	// day; the idempotency ledger makes replays safe.
	AsOfDate string `json:"as_of_date,omitempty"`

	// Offsets overrides the configured day offsets for this invocation.
	Offsets []int `json:"offsets,omitempty"`
}

// Handler holds the worker's dependencies.
type Handler struct {
	cfg    *config.Config
	deps   core.Deps
	logger *slog.Logger
}

// Handle executes one notification pass.
func (h *Handler) Handle(ctx context.Context, input Input) (*core.RunResult, error) {
	notifyCfg := core.DispatcherConfig{
		Offsets:       h.cfg.Notify.Offsets,
		Concurrency:   h.cfg.Notify.Concurrency,
		SendTimeout:   h.cfg.Notify.SendTimeout,
		RunBudget:     h.cfg.Notify.RunBudget,
		CivicTimezone: h.cfg.Notify.CivicTimezone,
	}
	if len(input.Offsets) > 0 {
		notifyCfg.Offsets = input.Offsets
	}
	dispatcher := core.NewDispatcher(notifyCfg, h.deps)

	if input.AsOfDate != "" {
		asOf, err := time.ParseInLocation(types.DateLayout, input.AsOfDate, time.UTC)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeValidationInvalidDate,
				"as_of_date must be formatted YYYY-MM-DD", err)
		}
		return dispatcher.RunAsOf(ctx, asOf)
	}
	return dispatcher.Run(ctx)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

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
	logger.Info("notify-worker starting", "environment", cfg.Environment)

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

	h := &Handler{
		cfg: cfg,
		deps: core.Deps{
			Source:   db.NewObligationRepository(pool),
			Resolver: core.NewPreferenceResolver(db.NewPreferenceRepository(pool)),
			Ledger:   db.NewLedgerRepository(pool),
			Composer: compose.NewComposer(cfg.Server.DashboardURL),
			Email:    registry.Email,
			SMS:      registry.SMS,
			Voice:    registry.Voice,
			Metrics:  metrics,
			Logger:   &slogAdapter{logger: logger.With("component", "dispatcher")},
		},
		logger: logger,
	}

	if cfg.Environment == "local" {
		return runLocal(ctx, h)
	}

	lambda.Start(h.Handle)
	return nil
}

// runLocal executes one pass outside the Lambda runtime, reading an optional
// Input JSON from stdin when stdin is not a terminal.
func runLocal(ctx context.Context, h *Handler) error {
	var input Input
	if stat, err := os.Stdin.Stat(); err == nil && (stat.Mode()&os.ModeCharDevice) == 0 {
		if err := json.NewDecoder(os.Stdin).Decode(&input); err != nil {
			return fmt.Errorf("decoding input: %w", err)
		}
	}

	res, err := h.Handle(ctx, input)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
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
