package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"econsim/internal/auth"
	"econsim/internal/core"
	"econsim/internal/types"
)

// ReloadReport summarizes an artifact reload: which components loaded on
// this pass.
type ReloadReport struct {
	ModelLoaded   bool `json:"model_loaded"`
	EncoderLoaded bool `json:"encoder_loaded"`
	DatasetLoaded bool `json:"dataset_loaded"`
}

// ReloadFunc re-reads the artifacts and dataset from disk and swaps them in.
// It never aborts halfway: components that fail to load simply stay absent
// and the report reflects that.
type ReloadFunc func() ReloadReport

// AdminHandler serves the management endpoints. All routes are gated by the
// bcrypt-hashed admin key.
type AdminHandler struct {
	checker *auth.AdminKeyChecker
	reload  ReloadFunc
	logger  *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(checker *auth.AdminKeyChecker, reload ReloadFunc, logger *slog.Logger) *AdminHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminHandler{checker: checker, reload: reload, logger: logger}
}

// RegisterRoutes mounts the admin endpoints onto the mux.
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Post("/reload", h.HandleReload)
	})
}

// HandleReload handles POST /v1/admin/reload: the management signal that
// re-loads the model, encoder, and dataset without a process restart.
// In-flight requests keep the snapshot they started with.
func (h *AdminHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	key := bearerValue(r.Header.Get("Authorization"))
	if key == "" {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeAuthTokenMissing,
			"Authorization header with Bearer admin key is required",
			nil,
		))
		return
	}
	if err := h.checker.Check(key); err != nil {
		core.Error(w, r, err)
		return
	}

	report := h.reload()
	h.logger.Info("artifacts reloaded",
		slog.Bool("model_loaded", report.ModelLoaded),
		slog.Bool("encoder_loaded", report.EncoderLoaded),
		slog.Bool("dataset_loaded", report.DatasetLoaded),
	)

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: report})
}

// bearerValue extracts the value of a Bearer Authorization header, or ""
// when the scheme does not match.
func bearerValue(header string) string {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
