// Package handlers provides HTTP handlers for the instrument catalog.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/microinvest/internal/modules/holdings"
)

// Handler handles holdings HTTP requests
type Handler struct {
	log zerolog.Logger
}

// NewHandler creates a new holdings handler
func NewHandler(log zerolog.Logger) *Handler {
	return &Handler{log: log.With().Str("handler", "holdings").Logger()}
}

// HandleGetCatalog handles GET /api/holdings
func (h *Handler) HandleGetCatalog(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"catalog":      holdings.Catalog(),
		"platform_fee": holdings.PlatformFee,
	}); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode catalog")
	}
}

// RegisterRoutes registers all holdings routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/holdings", h.HandleGetCatalog)
}
