package types

import "time"

// CallOutcome classifies how a completed call ended
type CallOutcome string

const (
	OutcomeSuccess   CallOutcome = "success"
	OutcomeRejected  CallOutcome = "rejected"
	OutcomeVoicemail CallOutcome = "voicemail"
	OutcomeForwarded CallOutcome = "forwarded"
	OutcomeFailed    CallOutcome = "failed"
)

// CallRecord captures one completed outbound call for the recent-calls view
type CallRecord struct {
	CallID      string      `json:"callId"`
	PhoneNumber string      `json:"phoneNumber,omitempty"`
	Outcome     CallOutcome `json:"outcome"`
	LinkSent    bool        `json:"linkSent"`
	Revenue     float64     `json:"revenue"`
	StartedAt   time.Time   `json:"startedAt"`
	EndedAt     time.Time   `json:"endedAt"`
	DurationSec float64     `json:"durationSec"`
}
