// Package core provides the HTTP chassis for the webhook receiver.
// It creates a chi router usable both behind net/http (local and container
// deployments) and behind the Lambda bridge in cmd/webhook-receiver, and it
// applies the cross-cutting concerns (panic recovery, request ids, logging,
// request metrics) before requests reach the handlers.
package core

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"paddle/internal/config"
)

// MetricsCollector records per-request telemetry.
type MetricsCollector interface {
	RecordRequest(method, endpoint, status string, duration time.Duration)
}

// RouteRegistrar mounts a group of handler routes on the router. Handler
// packages expose one so core does not import them.
type RouteRegistrar func(r chi.Router)

// Server holds the receiver's dependencies so tests can inject fakes.
type Server struct {
	Config       *config.Config
	Logger       *slog.Logger
	Metrics      MetricsCollector
	HealthProbes []HealthProbe

	// Registrars are mounted at the root by MountRoutes, after the global
	// middleware.
	Registrars []RouteRegistrar

	router *chi.Mux
}

// NewServer validates the critical dependencies and prepares an empty router.
// Callers add registrars and probes, then call MountRoutes.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config must not be nil")
	}
	if logger == nil {
		return nil, errors.New("logger must not be nil")
	}

	return &Server{
		Config: cfg,
		Logger: logger,
		router: chi.NewRouter(),
	}, nil
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router exposes the underlying chi.Mux for tests and ad hoc routes.
func (s *Server) Router() *chi.Mux {
	return s.router
}
