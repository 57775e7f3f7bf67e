package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"renewradar/internal/config"
)

// Server assembles the chi router with the standard middleware chain and the
// RenewRadar routes.
type Server struct {
	cfg    *config.Config
	router chi.Router
	logger *slog.Logger
}

// NewServer builds the HTTP surface. The cron route sits behind admin-key
// auth; health is public for load balancer probes.
func NewServer(cfg *config.Config, cron *CronHandler, health *HealthHandler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(RequestID)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", health.Health)

	r.Route("/internal", func(r chi.Router) {
		r.Use(AdminAuth(cfg.Server.AdminAPIKey))
		r.Post("/cron/notifications", cron.TriggerRun)
	})

	return &Server{cfg: cfg, router: r, logger: logger}
}

// Handler returns the assembled http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}
