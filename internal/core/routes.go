package core

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// defaultRequestTimeout is the soft timeout applied to request contexts when
// the configuration does not specify one.
const defaultRequestTimeout = 29 * time.Second

// MountRoutes defines the top-level routing hierarchy: the global middleware
// chain, the versioned API group, and the top-level info and health routes.
func (s *Server) MountRoutes() {
	s.registerGlobalMiddleware()

	s.router.Route("/v1", s.mountV1)

	s.router.Get("/health", s.HandleHealth)
	s.router.Get("/", s.HandleInfo)
}

// registerGlobalMiddleware applies middleware in strict order.
//
// Ordering rationale:
//  1. Recoverer       - outermost to catch all panics.
//  2. ContextTimeout  - soft deadline for the whole request.
//  3. RequestID       - correlation ID for logs and responses.
//  4. SecurityHeaders - present on every response, including errors.
//  5. RequestLogger   - structured request logging.
//  6. CORS            - browser access headers and preflight handling.
//
// Authentication is NOT global: route groups opt in via RequireAuth.
func (s *Server) registerGlobalMiddleware() {
	s.router.Use(s.Recoverer)
	s.router.Use(ContextTimeoutMiddleware(s.requestTimeout()))
	s.router.Use(RequestIDMiddleware)
	s.router.Use(s.SecurityHeadersMiddleware)
	s.router.Use(RequestLogger(s.Logger))
	s.router.Use(NewCORSMiddleware(s.corsAllowedOrigins()))
}

// mountV1 registers all v1 endpoints via the registrars populated by the
// application entry point.
func (s *Server) mountV1(r chi.Router) {
	for _, registrar := range s.V1RouteRegistrars {
		registrar(r)
	}
}

func (s *Server) requestTimeout() time.Duration {
	if s.Config != nil && s.Config.Server.RequestTimeout > 0 {
		return s.Config.Server.RequestTimeout
	}
	return defaultRequestTimeout
}

func (s *Server) corsAllowedOrigins() []string {
	if s.Config != nil && len(s.Config.Security.CorsAllowedOrigins) > 0 {
		return s.Config.Security.CorsAllowedOrigins
	}
	return []string{"*"}
}

// HandleHealth reports liveness plus per-component readiness. The service
// deliberately stays up when artifacts are missing, so this always returns
// 200; the status field flips to "degraded" when any probe reports false.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	components := make(map[string]bool, len(s.HealthProbes))
	for _, p := range s.HealthProbes {
		ready := p.Ready()
		components[p.Name()] = ready
		if !ready {
			status = "degraded"
		}
	}

	resp := map[string]any{"status": status}
	if len(components) > 0 {
		resp["components"] = components
	}
	JSON(w, r, http.StatusOK, resp)
}

// HandleInfo serves the service description at the root path: purpose,
// readiness flags, and the endpoint map.
func (s *Server) HandleInfo(w http.ResponseWriter, r *http.Request) {
	readiness := make(map[string]bool, len(s.HealthProbes))
	for _, p := range s.HealthProbes {
		readiness[p.Name()+"_loaded"] = p.Ready()
	}

	JSON(w, r, http.StatusOK, map[string]any{
		"name":        "GDP Economic Scenario Simulator",
		"purpose":     "Sensitivity Analysis & Policy Simulation",
		"description": "Simulate economic scenarios and test policy impacts",
		"model_type":  "Concurrent Indicators (Same Year)",
		"use_case":    "What-if analysis, not forecasting",
		"example":     "If exports grow 10% and investment grows 5%, what happens to GDP?",
		"readiness":   readiness,
		"endpoints": map[string]string{
			"/":                  "GET - API information",
			"/health":            "GET - liveness and component readiness",
			"/v1/countries":      "GET - list all countries",
			"/v1/history":        "GET - historical data for a country",
			"/v1/baseline":       "GET - baseline (average) growth rates for a country",
			"/v1/simulate":       "POST - simulate an economic scenario",
			"/v1/simulate/batch": "POST - simulate up to 50 scenarios",
		},
	})
}
