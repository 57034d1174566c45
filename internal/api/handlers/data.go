package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"econsim/internal/core"
	"econsim/internal/types"
)

// baselineNote accompanies every baseline response.
const baselineNote = "These are historical averages. Use as baseline for scenario simulations."

// DataSource defines the tabular data access the handler needs.
type DataSource interface {
	Countries() ([]string, error)
	History(country string) ([]types.HistoricalRecord, error)
	Baseline(country string) (types.BaselineRates, error)
}

// DataHandler serves the historical data endpoints: country listing,
// per-country history, and baseline averages.
type DataHandler struct {
	source DataSource
	logger *slog.Logger
}

// NewDataHandler creates a new DataHandler.
func NewDataHandler(source DataSource, logger *slog.Logger) *DataHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataHandler{source: source, logger: logger}
}

// RegisterRoutes mounts the data endpoints onto the mux.
func (h *DataHandler) RegisterRoutes(r chi.Router) {
	r.Get("/countries", h.HandleListCountries)
	r.Get("/history", h.HandleGetHistory)
	r.Get("/baseline", h.HandleGetBaseline)
}

// HandleListCountries handles GET /v1/countries.
func (h *DataHandler) HandleListCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := h.source.Countries()
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: countries})
}

// HandleGetHistory handles GET /v1/history?country=X.
func (h *DataHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	country := r.URL.Query().Get("country")
	if country == "" {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeValidationMissingField,
			"country query parameter is required",
			nil,
		))
		return
	}

	records, err := h.source.History(country)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: records})
}

// baselineResponse is the wire shape of a baseline result.
type baselineResponse struct {
	Country       string              `json:"country"`
	BaselineRates types.BaselineRates `json:"baseline_rates"`
	Note          string              `json:"note"`
}

// HandleGetBaseline handles GET /v1/baseline?country=X. The underlying
// source re-reads the dataset file, so the means always reflect the latest
// file contents.
func (h *DataHandler) HandleGetBaseline(w http.ResponseWriter, r *http.Request) {
	country := r.URL.Query().Get("country")
	if country == "" {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeValidationMissingField,
			"country query parameter is required",
			nil,
		))
		return
	}

	rates, err := h.source.Baseline(country)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: baselineResponse{
		Country:       country,
		BaselineRates: rates,
		Note:          baselineNote,
	}})
}
