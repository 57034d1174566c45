// Package handlers contains the HTTP handler implementations for the
// scenario simulation API. Handlers depend on narrow, locally-defined
// service interfaces to stay decoupled from concrete implementations.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"econsim/internal/core"
	"econsim/internal/scenario"
	"econsim/internal/types"
)

// ScenarioService defines the orchestrator contract the handler needs.
type ScenarioService interface {
	Simulate(ctx context.Context, payload map[string]any) (*scenario.Result, error)
	SimulateBatch(ctx context.Context, payloads []map[string]any) (*scenario.BatchResult, error)
}

// ScenarioHandler maps HTTP requests to the scenario pipeline.
type ScenarioHandler struct {
	service ScenarioService
	logger  *slog.Logger
}

// NewScenarioHandler creates a new ScenarioHandler.
func NewScenarioHandler(svc ScenarioService, logger *slog.Logger) *ScenarioHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScenarioHandler{service: svc, logger: logger}
}

// RegisterRoutes mounts the simulation endpoints onto the mux.
func (h *ScenarioHandler) RegisterRoutes(r chi.Router) {
	r.Post("/simulate", h.HandleSimulate)
	r.Post("/simulate/batch", h.HandleSimulateBatch)
}

// HandleSimulate handles POST /v1/simulate. The body is decoded untyped;
// field presence, coercion, and range checking all belong to the validator
// so its aggregate missing-field reporting works on the raw payload.
func (h *ScenarioHandler) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := core.DecodeJSON(w, r, &payload); err != nil {
		// A zero-byte body rejects through the pipeline like `{}` does,
		// so both empty-payload shapes carry the example details.
		var appErr *types.AppError
		if !errors.As(err, &appErr) || appErr.Code != types.ErrCodeValidationEmptyPayload {
			core.Error(w, r, err)
			return
		}
		payload = nil
	}

	result, err := h.service.Simulate(r.Context(), payload)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: result})
}

// BatchSimulateRequest carries up to MaxBatchScenarios scenario payloads.
type BatchSimulateRequest struct {
	Scenarios []map[string]any `json:"scenarios"`
}

// HandleSimulateBatch handles POST /v1/simulate/batch. Items succeed or
// fail independently; the response separates both sets.
func (h *ScenarioHandler) HandleSimulateBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchSimulateRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}

	result, err := h.service.SimulateBatch(r.Context(), req.Scenarios)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: result})
}
