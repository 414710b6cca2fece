package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/fandial/callboard/internal/cache"
	"github.com/fandial/callboard/internal/dashboard"
	"github.com/rs/zerolog"
)

// defaultRecentCalls is returned when no limit query parameter is given
const defaultRecentCalls = 20

// StatsHandler serves the dashboard's read-only statistics endpoints
type StatsHandler struct {
	state   *dashboard.State
	callLog *cache.CallLog
	logger  zerolog.Logger
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(state *dashboard.State, callLog *cache.CallLog, logger zerolog.Logger) *StatsHandler {
	return &StatsHandler{
		state:   state,
		callLog: callLog,
		logger:  logger.With().Str("component", "stats_api").Logger(),
	}
}

// GetCallStats handles GET /api/stats/calls
func (h *StatsHandler) GetCallStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.state.CallStats())
}

// GetRevenue handles GET /api/stats/revenue
func (h *StatsHandler) GetRevenue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.state.Revenue())
}

// GetSnapshot handles GET /api/stats/snapshot
func (h *StatsHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.state.Snapshot())
}

// GetRecentCalls handles GET /api/calls/recent
func (h *StatsHandler) GetRecentCalls(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentCalls
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	writeJSON(w, http.StatusOK, h.callLog.Recent(limit))
}

// writeJSON encodes v as the JSON response body
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error body
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
