// Package handlers provides HTTP handlers for risk model status.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/microinvest/internal/modules/risk"
)

// Handler handles risk model HTTP requests
type Handler struct {
	model *risk.Model // nil when no artifact is installed
	log   zerolog.Logger
}

// NewHandler creates a new risk handler
func NewHandler(model *risk.Model, log zerolog.Logger) *Handler {
	return &Handler{
		model: model,
		log:   log.With().Str("handler", "risk").Logger(),
	}
}

// HandleModelStatus handles GET /api/model/status
func (h *Handler) HandleModelStatus(w http.ResponseWriter, r *http.Request) {
	payload := map[string]interface{}{
		"available": h.model != nil,
	}
	if h.model != nil {
		payload["columns"] = h.model.Columns()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode model status")
	}
}

// RegisterRoutes registers all risk routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/model/status", h.HandleModelStatus)
}
