// Package core provides the API chassis for the scenario simulation service.
// It creates the chi router and enforces cross-cutting concerns -- panic
// recovery, request correlation, logging, CORS, and authentication -- before
// requests reach domain-specific handlers.
package core

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"econsim/internal/auth"
	"econsim/internal/config"
)

// HealthProbe reports the readiness of one shared, load-once component
// (model, encoder, dataset). Probes are cheap flag reads; the service stays
// up in a degraded state when a probe reports false.
type HealthProbe interface {
	Name() string
	Ready() bool
}

// Server encapsulates all dependencies for the API, allowing for easy
// injection during testing.
type Server struct {
	Config   *config.Config
	Logger   *slog.Logger
	Verifier *auth.Verifier

	// HealthProbes back the health endpoint and the info readiness flags.
	HealthProbes []HealthProbe

	// V1RouteRegistrars are populated by the application entry point; this
	// indirection avoids import cycles between core and handler packages.
	V1RouteRegistrars []func(chi.Router)

	router *chi.Mux
}

// NewServer initializes dependencies and prepares the server for route
// mounting. The caller mounts routes via MountRoutes after construction.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	return &Server{
		Config: cfg,
		Logger: logger,
		router: chi.NewRouter(),
	}, nil
}

// Handler returns the http.Handler interface for the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the underlying chi.Mux for route registration in tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}
