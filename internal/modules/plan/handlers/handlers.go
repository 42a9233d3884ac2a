// Package handlers provides HTTP handlers for plan building, enrollment and
// the session-backed form flow.
package handlers

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/microinvest/internal/modules/plan"
	"github.com/aristath/microinvest/internal/modules/profile"
	"github.com/aristath/microinvest/internal/modules/sessions"
)

const sessionCookie = "mi_session"

// Handler handles plan HTTP requests
type Handler struct {
	service  *plan.Service
	sessions *sessions.Repository
	log      zerolog.Logger
}

// NewHandler creates a new plan handler
func NewHandler(service *plan.Service, sessionRepo *sessions.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		service:  service,
		sessions: sessionRepo,
		log:      log.With().Str("handler", "plan").Logger(),
	}
}

// session resolves the caller's session, creating one (and setting the
// cookie) on first contact.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*sessions.Session, error) {
	id := ""
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		id = c.Value
	}
	if id == "" {
		id = uuid.New().String()
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return h.sessions.GetOrCreate(id)
}

// HandleBuildPlan handles POST /api/plan.
// The body is a flat map of raw form fields; malformed individual values
// degrade to defaults, only the two hard preconditions fail the request.
func (h *Handler) HandleBuildPlan(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(w, r)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to resolve session")
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}

	form, ok := h.decodeForm(w, r)
	if !ok {
		return
	}

	h.rememberSticky(sess, form)

	prof := profile.Collect(form)
	override := parseContribution(form["contribution"])

	result, err := h.service.BuildPlan(sess.ID, prof, override)
	if err != nil {
		if plan.IsPrecondition(err) {
			h.writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"errors": []string{err.Error()},
			})
			return
		}
		h.log.Error().Err(err).Msg("Plan build failed")
		h.writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"errors": []string{"plan could not be built"},
		})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"plan": result})
}

// HandleBuildQuickPlan handles POST /api/plan/quick (the manipulative flow).
func (h *Handler) HandleBuildQuickPlan(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(w, r)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to resolve session")
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}

	form, ok := h.decodeForm(w, r)
	if !ok {
		return
	}

	h.rememberSticky(sess, form)

	income, _ := strconv.ParseFloat(strings.TrimSpace(form["income"]), 64)
	horizon, err := strconv.Atoi(strings.TrimSpace(form["horizon_months"]))
	if err != nil || horizon <= 0 {
		horizon = 12
	}

	result := h.service.BuildQuickPlan(income, horizon, parseContribution(form["contribution"]))
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"plan": result})
}

// HandleEnroll handles POST /api/enroll: marks the session enrolled and
// echoes a demo payment reference based on the sticky contribution.
func (h *Handler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(w, r)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to resolve session")
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}

	if err := h.sessions.SetEnrolled(sess.ID, true); err != nil {
		h.log.Error().Err(err).Str("session", sess.ID).Msg("Failed to mark session enrolled")
		http.Error(w, "enrollment failed", http.StatusInternalServerError)
		return
	}

	amount := 100
	if v := parseContribution(sess.Sticky["contribution"]); v > 0 {
		amount = v
	}

	ref := strings.ToUpper(strings.ReplaceAll(sess.ID, "-", ""))
	if len(ref) > 6 {
		ref = ref[len(ref)-6:]
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"amount":    amount,
		"iban":      "NL00 TEST 0000 0000 00",
		"reference": "PLAN-" + ref,
	})
}

// HandleSetMode handles POST /api/mode/{which}.
func (h *Handler) HandleSetMode(w http.ResponseWriter, r *http.Request) {
	mode := chi.URLParam(r, "which")
	if !profile.ValidMode(mode) {
		http.Error(w, "unknown mode", http.StatusBadRequest)
		return
	}

	sess, err := h.session(w, r)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to resolve session")
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}

	if err := h.sessions.SetMode(sess.ID, mode); err != nil {
		h.log.Error().Err(err).Str("session", sess.ID).Msg("Failed to set mode")
		http.Error(w, "mode update failed", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"mode": mode})
}

// HandleGetForm handles GET /api/form: the field schema for the session's
// mode plus the sticky echo of prior submissions.
func (h *Handler) HandleGetForm(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(w, r)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to resolve session")
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"mode":   sess.Mode,
		"fields": profile.FormFields(sess.Mode),
		"sticky": profile.StickyFields(sess.Sticky, sess.Mode),
	})
}

// HandleDemoData handles GET /api/demo-data.csv.
func (h *Handler) HandleDemoData(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="demo_data.csv"`)

	cw := csv.NewWriter(w)
	records := [][]string{
		{"age", "income", "savings_goal", "horizon_months", "experience_level", "buffer_months"},
		{"28", "2300", "1500", "12", "0", "1"},
		{"41", "4200", "5000", "36", "2", "6"},
		{"33", "3100", "2000", "18", "1", "0"},
	}
	for _, rec := range records {
		if err := cw.Write(rec); err != nil {
			h.log.Error().Err(err).Msg("Failed to write demo CSV")
			return
		}
	}
	cw.Flush()
}

// rememberSticky merges the submission into the session's sticky echo.
// Stored unfiltered so values survive mode switches; filtering down to the
// mode's field set happens at render time in HandleGetForm.
func (h *Handler) rememberSticky(sess *sessions.Session, form map[string]string) {
	merged := make(map[string]string, len(sess.Sticky)+len(form))
	for k, v := range sess.Sticky {
		merged[k] = v
	}
	for k, v := range form {
		merged[k] = v
	}

	if err := h.sessions.SetSticky(sess.ID, merged); err != nil {
		// Sticky echo is cosmetic; the plan still builds
		h.log.Warn().Err(err).Str("session", sess.ID).Msg("Failed to persist sticky state")
	}
}

func (h *Handler) decodeForm(w http.ResponseWriter, r *http.Request) (map[string]string, bool) {
	var form map[string]string
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return nil, false
	}
	return form, true
}

// parseContribution parses a user-entered contribution override; anything
// non-numeric or non-positive means "no override".
func parseContribution(raw string) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v <= 0 {
		return 0
	}
	return v
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
