package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all plan routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/plan", h.HandleBuildPlan)
	r.Post("/plan/quick", h.HandleBuildQuickPlan)
	r.Post("/enroll", h.HandleEnroll)
	r.Post("/mode/{which}", h.HandleSetMode)
	r.Get("/form", h.HandleGetForm)
	r.Get("/demo-data.csv", h.HandleDemoData)
}
