package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/fandial/callboard/internal/control"
	"github.com/fandial/callboard/internal/dashboard"
	"github.com/fandial/callboard/internal/types"
	"github.com/fandial/callboard/internal/vapi"
	"github.com/rs/zerolog"
)

// AgentHandler provides the REST control surface for the sales agent
type AgentHandler struct {
	controller *control.Controller
	state      *dashboard.State
	logger     zerolog.Logger

	// Agent configuration lives for the current session only
	configMu sync.RWMutex
	config   types.AgentConfig
}

// NewAgentHandler creates a new AgentHandler with the default configuration
func NewAgentHandler(controller *control.Controller, state *dashboard.State, logger zerolog.Logger) *AgentHandler {
	return &AgentHandler{
		controller: controller,
		state:      state,
		logger:     logger.With().Str("component", "agent_api").Logger(),
		config:     types.DefaultAgentConfig(),
	}
}

// startRequest is the optional body accepted by the start endpoint
type startRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

// startResponse reports the new run state and the outcome of the call action
type startResponse struct {
	State types.AgentRunState `json:"state"`
	Call  vapi.StartResult    `json:"call"`
}

// GetStatus handles GET /api/agent/status
func (h *AgentHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	rev := h.state.Revenue()
	status := types.AgentStatus{
		State:        h.controller.State(),
		TotalCalls:   rev.TotalCalls,
		DailyRevenue: rev.DailyRevenue,
	}

	if startedAt, ok := h.controller.StartedAt(); ok {
		status.StartedAt = &startedAt
	}
	if id, callState, ok := h.controller.ActiveCall(); ok {
		status.ActiveCallID = id
		status.CallState = callState
	}

	writeJSON(w, http.StatusOK, status)
}

// Start handles POST /api/agent/start
func (h *AgentHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.controller.Start(r.Context(), req.PhoneNumber)
	if err != nil {
		if errors.Is(err, control.ErrPausedNeedsStop) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		h.logger.Error().Err(err).Msg("start failed")
		writeError(w, http.StatusInternalServerError, "start failed")
		return
	}

	// A rejected call action is still a 200; the failure is structured
	writeJSON(w, http.StatusOK, startResponse{
		State: h.controller.State(),
		Call:  result,
	})
}

// Stop handles POST /api/agent/stop
func (h *AgentHandler) Stop(w http.ResponseWriter, r *http.Request) {
	h.controller.Stop()
	writeJSON(w, http.StatusOK, map[string]types.AgentRunState{"state": h.controller.State()})
}

// Pause handles POST /api/agent/pause
func (h *AgentHandler) Pause(w http.ResponseWriter, r *http.Request) {
	h.controller.Pause()
	writeJSON(w, http.StatusOK, map[string]types.AgentRunState{"state": h.controller.State()})
}

// GetConfig handles GET /api/agent/config
func (h *AgentHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	h.configMu.RLock()
	cfg := h.config
	h.configMu.RUnlock()

	writeJSON(w, http.StatusOK, cfg)
}

// UpdateConfig handles PUT /api/agent/config
func (h *AgentHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var cfg types.AgentConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := cfg.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.configMu.Lock()
	h.config = cfg
	h.configMu.Unlock()

	h.logger.Info().
		Int("max_calls_per_hour", cfg.MaxCallsPerHour).
		Str("voice_model", string(cfg.VoiceModel)).
		Str("target_audience", string(cfg.TargetAudience)).
		Msg("agent config updated")

	writeJSON(w, http.StatusOK, cfg)
}
