package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/microinvest/internal/database"
)

// SystemHandlers handles system-wide monitoring endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	startupTime time.Time
	sessionsDB  *database.DB
}

// NewSystemHandlers creates new system handlers
func NewSystemHandlers(log zerolog.Logger, sessionsDB *database.DB) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("handler", "system").Logger(),
		startupTime: time.Now(),
		sessionsDB:  sessionsDB,
	}
}

// HandleHealth handles GET /api/health
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	dbStatus := "ok"
	if h.sessionsDB != nil {
		if err := h.sessionsDB.QuickCheck(ctx); err != nil {
			h.log.Error().Err(err).Msg("Session database health check failed")
			status = "degraded"
			dbStatus = err.Error()
		}
	}

	payload := map[string]interface{}{
		"status":         status,
		"uptime_seconds": int(time.Since(h.startupTime).Seconds()),
		"sessions_db":    dbStatus,
	}

	// Host metrics are best-effort; a sandboxed environment may refuse them
	if cpuPercent, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(cpuPercent) > 0 {
		payload["cpu_percent"] = cpuPercent[0]
	}
	if memStat, err := mem.VirtualMemory(); err == nil {
		payload["memory_used_percent"] = memStat.UsedPercent
	}

	w.Header().Set("Content-Type", "application/json")
	if status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode health response")
	}
}

// HandleDeepHealth handles GET /api/health/deep: the quick ping plus a full
// SQLite integrity check. Expensive, meant for operators rather than probes.
func (h *SystemHandlers) HandleDeepHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	status := "ok"
	dbStatus := "ok"
	if h.sessionsDB != nil {
		if err := h.sessionsDB.HealthCheck(ctx); err != nil {
			h.log.Error().Err(err).Msg("Session database integrity check failed")
			status = "degraded"
			dbStatus = err.Error()
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"status":      status,
		"sessions_db": dbStatus,
	}); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode health response")
	}
}

// RegisterRoutes registers all system routes
func (h *SystemHandlers) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HandleHealth)
	r.Get("/health/deep", h.HandleDeepHealth)
}
