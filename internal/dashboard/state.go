package dashboard

import (
	"sync"
	"time"

	"github.com/fandial/callboard/internal/alerts"
	"github.com/fandial/callboard/internal/types"
)

// State holds the authoritative {callStats, revenueData, runState} tuple.
// The polling coordinator is the sole writer of the metrics pair; both fields
// are replaced together per tick so readers never see a half-updated tuple.
type State struct {
	mu        sync.RWMutex
	stats     types.CallStats
	rev       types.RevenueData
	runState  types.AgentRunState
	updatedAt time.Time
}

// NewState creates a dashboard state with zeroed metrics and a stopped agent
func NewState() *State {
	return &State{
		runState: types.RunStateStopped,
	}
}

// Apply replaces the metrics tuple wholesale. Wired as a coordinator subscriber.
func (s *State) Apply(stats types.CallStats, rev types.RevenueData) {
	s.mu.Lock()
	s.stats = stats
	s.rev = rev
	s.updatedAt = time.Now()
	s.mu.Unlock()
}

// SetRunState records the controller's current run state
func (s *State) SetRunState(state types.AgentRunState) {
	s.mu.Lock()
	s.runState = state
	s.mu.Unlock()
}

// CallStats returns the latest call outcome counters
func (s *State) CallStats() types.CallStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Revenue returns the latest revenue projection
func (s *State) Revenue() types.RevenueData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rev
}

// RunState returns the current run state
func (s *State) RunState() types.AgentRunState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runState
}

// Snapshot returns a consistent view of the whole tuple with alerts attached
func (s *State) Snapshot() types.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := types.Snapshot{
		Type:      "snapshot",
		Timestamp: s.updatedAt,
		CallStats: s.stats,
		Revenue:   s.rev,
		RunState:  s.runState,
	}
	snap.Alerts = alerts.Check(s.stats, s.rev)
	return snap
}

// Reset zeroes the metrics tuple for a fresh session
func (s *State) Reset() {
	s.mu.Lock()
	s.stats = types.CallStats{}
	s.rev = types.RevenueData{}
	s.updatedAt = time.Time{}
	s.mu.Unlock()
}
