package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"renewradar/internal/config"
	"renewradar/internal/notifications/core"
	"renewradar/internal/types"
)

type fakeRunner struct {
	res      *core.RunResult
	err      error
	gotAsOf  *time.Time
	ranToday bool
}

func (f *fakeRunner) Run(ctx context.Context) (*core.RunResult, error) {
	f.ranToday = true
	return f.res, f.err
}

func (f *fakeRunner) RunAsOf(ctx context.Context, asOf time.Time) (*core.RunResult, error) {
	f.gotAsOf = &asOf
	return f.res, f.err
}

type fakePinger struct{ err error }

func (f *fakePinger) Ping(ctx context.Context) error { return f.err }

func testServer(runner *fakeRunner, pinger Pinger) *Server {
	cfg := &config.Config{Environment: "local"}
	cfg.Server.AdminAPIKey = "test-admin-key"
	cfg.Server.DashboardURL = "https://app.renewradar.io"

	logger := slog.New(slog.DiscardHandler)
	return NewServer(cfg,
		NewCronHandler(runner, logger),
		NewHealthHandler(pinger),
		logger,
	)
}

func emptyResult() *core.RunResult {
	return &core.RunResult{
		AsOf:            time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		SentByChannel:   map[types.ChannelType]int{},
		FailedByChannel: map[types.ChannelType]int{},
	}
}

func TestTriggerRun_RequiresAdminKey(t *testing.T) {
	srv := testServer(&fakeRunner{res: emptyResult()}, &fakePinger{})

	req := httptest.NewRequest(http.MethodPost, "/internal/cron/notifications", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp APIErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(types.ErrCodeAuthKeyMissing), resp.Error.Code)
}

func TestTriggerRun_RejectsWrongKey(t *testing.T) {
	srv := testServer(&fakeRunner{res: emptyResult()}, &fakePinger{})

	req := httptest.NewRequest(http.MethodPost, "/internal/cron/notifications", nil)
	req.Header.Set("X-Admin-Key", "wrong")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTriggerRun_RunsToday(t *testing.T) {
	runner := &fakeRunner{res: emptyResult()}
	srv := testServer(runner, &fakePinger{})

	req := httptest.NewRequest(http.MethodPost, "/internal/cron/notifications", nil)
	req.Header.Set("X-Admin-Key", "test-admin-key")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, runner.ranToday)
	assert.Nil(t, runner.gotAsOf)

	var res core.RunResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "2026-07-01", res.AsOf.Format(types.DateLayout))
}

func TestTriggerRun_ExplicitDateReplay(t *testing.T) {
	runner := &fakeRunner{res: emptyResult()}
	srv := testServer(runner, &fakePinger{})

	req := httptest.NewRequest(http.MethodPost, "/internal/cron/notifications?date=2026-06-15", nil)
	req.Header.Set("X-Admin-Key", "test-admin-key")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, runner.gotAsOf)
	assert.Equal(t, time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC), *runner.gotAsOf)
	assert.False(t, runner.ranToday)
}

func TestTriggerRun_RejectsMalformedDate(t *testing.T) {
	runner := &fakeRunner{res: emptyResult()}
	srv := testServer(runner, &fakePinger{})

	for _, raw := range []string{"06/15/2026", "2026-13-40", "yesterday"} {
		req := httptest.NewRequest(http.MethodPost, "/internal/cron/notifications?date="+raw, nil)
		req.Header.Set("X-Admin-Key", "test-admin-key")
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "date=%s", raw)

		var resp APIErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, string(types.ErrCodeValidationInvalidDate), resp.Error.Code)
	}
	assert.Nil(t, runner.gotAsOf, "malformed dates never reach the runner")
}

func TestTriggerRun_SourceUnavailableMapsTo502(t *testing.T) {
	runner := &fakeRunner{err: types.NewAppError(types.ErrCodeSourceUnavailable, "obligations query failed", nil)}
	srv := testServer(runner, &fakePinger{})

	req := httptest.NewRequest(http.MethodPost, "/internal/cron/notifications", nil)
	req.Header.Set("X-Admin-Key", "test-admin-key")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var resp APIErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(types.ErrCodeSourceUnavailable), resp.Error.Code)
}

func TestHealth(t *testing.T) {
	srv := testServer(&fakeRunner{res: emptyResult()}, &fakePinger{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHealth_DegradedOnDBFailure(t *testing.T) {
	srv := testServer(&fakeRunner{res: emptyResult()}, &fakePinger{err: context.DeadlineExceeded})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"degraded"}`, rec.Body.String())
}

func TestRequestID_EchoedAndGenerated(t *testing.T) {
	srv := testServer(&fakeRunner{res: emptyResult()}, &fakePinger{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-abc")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "req-abc", rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
