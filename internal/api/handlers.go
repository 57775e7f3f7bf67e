package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"renewradar/internal/notifications/core"
	"renewradar/internal/types"
)

// NotifyRunner is the slice of the dispatcher the cron handler needs.
type NotifyRunner interface {
	Run(ctx context.Context) (*core.RunResult, error)
	RunAsOf(ctx context.Context, asOf time.Time) (*core.RunResult, error)
}

// Pinger reports storage health for the health endpoint. Satisfied by
// *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CronHandler serves the internal trigger that starts a notification run.
// The scheduled EventBridge rule normally drives runs through the worker
// Lambda; this route exists for manual triggering and replays.
type CronHandler struct {
	runner NotifyRunner
	logger *slog.Logger
}

// NewCronHandler creates a CronHandler.
func NewCronHandler(runner NotifyRunner, logger *slog.Logger) *CronHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CronHandler{runner: runner, logger: logger}
}

// TriggerRun handles POST /internal/cron/notifications. An optional
// ?date=YYYY-MM-DD runs the pass as of that civic date instead of today,
// which is how a missed day is replayed; the idempotency ledger makes the
// replay safe.
func (h *CronHandler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		res *core.RunResult
		err error
	)
	if raw := r.URL.Query().Get("date"); raw != "" {
		asOf, parseErr := time.ParseInLocation(types.DateLayout, raw, time.UTC)
		if parseErr != nil {
			writeError(w, r, types.NewAppError(types.ErrCodeValidationInvalidDate,
				"date must be formatted YYYY-MM-DD", parseErr))
			return
		}
		res, err = h.runner.RunAsOf(ctx, asOf)
	} else {
		res, err = h.runner.Run(ctx)
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "notification run failed", "error", err)
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health handles GET /health. It reports degraded with a 503 when the
// database is unreachable.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	httpStatus := http.StatusOK
	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, httpStatus, map[string]string{"status": status})
}
