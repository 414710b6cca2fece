package types

import (
	"fmt"
	"strings"
)

// VoiceModel represents the voice quality tier used for outbound calls
type VoiceModel string

const (
	VoicePremium  VoiceModel = "premium"
	VoiceStandard VoiceModel = "standard"
	VoiceBasic    VoiceModel = "basic"
)

// TargetAudience represents the audience segment the agent dials into
type TargetAudience string

const (
	AudienceSportsFans TargetAudience = "sports-fans"
	AudienceGeneral    TargetAudience = "general"
	AudiencePremium    TargetAudience = "premium"
)

// AgentConfig holds the tunable parameters of the sales agent.
// Lifetime is the current session; nothing is persisted.
type AgentConfig struct {
	MaxCallsPerHour int            `json:"maxCallsPerHour"`
	CallDuration    int            `json:"callDuration"` // seconds
	RetryAttempts   int            `json:"retryAttempts"`
	VoiceModel      VoiceModel     `json:"voiceModel"`
	TargetAudience  TargetAudience `json:"targetAudience"`
}

// DefaultAgentConfig returns the configuration the agent boots with
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		MaxCallsPerHour: 20,
		CallDuration:    300,
		RetryAttempts:   3,
		VoiceModel:      VoiceStandard,
		TargetAudience:  AudienceSportsFans,
	}
}

// Validate checks all fields and returns an error naming every violation
func (c AgentConfig) Validate() error {
	var problems []string

	if c.MaxCallsPerHour < 1 || c.MaxCallsPerHour > 100 {
		problems = append(problems, fmt.Sprintf("maxCallsPerHour must be 1-100, got %d", c.MaxCallsPerHour))
	}
	if c.CallDuration < 60 || c.CallDuration > 1800 {
		problems = append(problems, fmt.Sprintf("callDuration must be 60-1800 seconds, got %d", c.CallDuration))
	}
	if c.RetryAttempts < 0 || c.RetryAttempts > 5 {
		problems = append(problems, fmt.Sprintf("retryAttempts must be 0-5, got %d", c.RetryAttempts))
	}

	switch c.VoiceModel {
	case VoicePremium, VoiceStandard, VoiceBasic:
	default:
		problems = append(problems, fmt.Sprintf("voiceModel must be premium, standard or basic, got %q", c.VoiceModel))
	}

	switch c.TargetAudience {
	case AudienceSportsFans, AudienceGeneral, AudiencePremium:
	default:
		problems = append(problems, fmt.Sprintf("targetAudience must be sports-fans, general or premium, got %q", c.TargetAudience))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid agent config: %s", strings.Join(problems, "; "))
	}
	return nil
}
