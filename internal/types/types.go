package types

import "time"

// AgentRunState represents the run state of the sales agent
type AgentRunState string

const (
	RunStateStopped AgentRunState = "stopped"
	RunStateRunning AgentRunState = "running"
	RunStatePaused  AgentRunState = "paused"
)

// CallState represents the lifecycle state of an outbound call
type CallState string

const (
	CallInitiated CallState = "initiated"
	CallRinging   CallState = "ringing"
	CallAnswered  CallState = "answered"
	CallEnded     CallState = "ended"
	CallFailed    CallState = "failed"
)

// Terminal reports whether the call state is final
func (s CallState) Terminal() bool {
	return s == CallEnded || s == CallFailed
}

// CallStats holds counts of call outcomes for the current session
type CallStats struct {
	Success   int `json:"success"`
	Rejected  int `json:"rejected"`
	Voicemail int `json:"voicemail"`
	Forwarded int `json:"forwarded"`
}

// Total returns the sum of all outcome counts
func (s CallStats) Total() int {
	return s.Success + s.Rejected + s.Voicemail + s.Forwarded
}

// RevenueData holds revenue projections derived from call outcomes
type RevenueData struct {
	DailyRevenue float64 `json:"dailyRevenue"`
	SuccessRate  float64 `json:"successRate"` // 0-100%
	TotalCalls   int     `json:"totalCalls"`
}

// AlertSeverity represents the severity of a dashboard alert
type AlertSeverity string

const (
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// Alert represents a threshold condition raised against a snapshot
type Alert struct {
	Rule     string        `json:"rule"`
	Severity AlertSeverity `json:"severity"`
	Message  string        `json:"message"`
}

// Snapshot is the single payload published to dashboard clients every tick
type Snapshot struct {
	Type      string        `json:"type"` // always "snapshot"
	Timestamp time.Time     `json:"timestamp"`
	CallStats CallStats     `json:"callStats"`
	Revenue   RevenueData   `json:"revenue"`
	RunState  AgentRunState `json:"runState"`
	Alerts    []Alert       `json:"alerts,omitempty"`
}

// AgentStatus is the payload returned from the agent status endpoint
type AgentStatus struct {
	State        AgentRunState `json:"state"`
	StartedAt    *time.Time    `json:"startedAt,omitempty"`
	TotalCalls   int           `json:"totalCalls"`
	DailyRevenue float64       `json:"dailyRevenue"`
	ActiveCallID string        `json:"activeCallId,omitempty"`
	CallState    CallState     `json:"callState,omitempty"`
}
