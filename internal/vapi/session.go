package vapi

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/fandial/callboard/internal/cache"
	"github.com/fandial/callboard/internal/config"
	"github.com/fandial/callboard/internal/metrics"
	"github.com/fandial/callboard/internal/simulator"
	"github.com/fandial/callboard/internal/types"
	"github.com/rs/zerolog"
)

// linkPattern matches a purchase link delivered in the call transcript
var linkPattern = regexp.MustCompile(`https?://\S+`)

// CallAPI is the slice of the Vapi client the session needs
type CallAPI interface {
	CreateCall(ctx context.Context, assistantID, phoneNumber string) (*Call, error)
	GetCall(ctx context.Context, callID string) (*Call, error)
	EndCall(ctx context.Context, callID string) error
}

// StartResult reports the outcome of a start-call action. Missing credentials
// surface here as a structured failure, never as an HTTP error.
type StartResult struct {
	Success bool   `json:"success"`
	CallID  string `json:"callId,omitempty"`
	Error   string `json:"error,omitempty"`
}

// StatusListener receives call state changes from the session monitor
type StatusListener func(callID string, state types.CallState)

// Session owns the single active outbound call. One call at a time; Open
// while a call is active fails with a structured result. The status monitor
// is a context-cancelled loop, so Close has the same no-publish-after-return
// contract as the metrics poller.
type Session struct {
	api      CallAPI
	creds    config.VapiCredentials
	interval time.Duration
	log      *cache.CallLog
	logger   zerolog.Logger

	mu        sync.Mutex
	current   *Call
	startedAt time.Time
	linkSent  bool
	cancel    context.CancelFunc
	done      chan struct{}
	listeners []StatusListener
}

// NewSession creates a call session using the given client and credentials
func NewSession(api CallAPI, creds config.VapiCredentials, interval time.Duration, log *cache.CallLog, logger zerolog.Logger) *Session {
	return &Session{
		api:      api,
		creds:    creds,
		interval: interval,
		log:      log,
		logger:   logger.With().Str("component", "call_session").Logger(),
	}
}

// OnStatus registers a listener for call state changes
func (s *Session) OnStatus(fn StatusListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// validate checks the credentials needed to place a call, naming each missing
// field independently
func (s *Session) validate(phoneNumber string) error {
	var missing []string
	if s.creds.APIKey == "" {
		missing = append(missing, "apiKey")
	}
	if s.creds.AssistantID == "" {
		missing = append(missing, "assistantId")
	}
	if phoneNumber == "" {
		missing = append(missing, "phoneNumber")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// Open places an outbound call and starts the 1s status monitor.
// phoneOverride, when empty, falls back to the configured number.
func (s *Session) Open(ctx context.Context, phoneOverride string) StartResult {
	phone := phoneOverride
	if phone == "" {
		phone = s.creds.PhoneNumber
	}

	if err := s.validate(phone); err != nil {
		s.logger.Warn().Err(err).Msg("start call rejected")
		return StartResult{Success: false, Error: err.Error()}
	}

	s.mu.Lock()
	if s.current != nil {
		id := s.current.ID
		s.mu.Unlock()
		return StartResult{Success: false, Error: fmt.Sprintf("call %s already in progress", id)}
	}
	s.mu.Unlock()

	call, err := s.api.CreateCall(ctx, s.creds.AssistantID, phone)
	if err != nil {
		s.logger.Error().Err(err).Msg("create call failed")
		return StartResult{Success: false, Error: err.Error()}
	}

	monitorCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	s.mu.Lock()
	s.current = call
	s.startedAt = time.Now()
	s.linkSent = false
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	metrics.Get().RecordCallStarted()
	go s.monitor(monitorCtx, call.ID, phone, done)

	s.logger.Info().Str("call_id", call.ID).Str("phone", phone).Msg("call started")
	return StartResult{Success: true, CallID: call.ID}
}

// Close ends the active call, if any, and joins the monitor loop. Idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return
	}
	callID := s.current.ID
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	cancel()
	<-done

	// Best-effort hangup; the call may already have ended on its own
	ctx, ctxCancel := context.WithTimeout(context.Background(), clientTimeout)
	defer ctxCancel()
	if err := s.api.EndCall(ctx, callID); err != nil {
		s.logger.Debug().Err(err).Str("call_id", callID).Msg("end call request failed")
	}

	s.finish(callID, types.CallEnded)
}

// ActiveCall returns the current call ID and state, or ok=false when idle
func (s *Session) ActiveCall() (id string, state types.CallState, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return "", "", false
	}
	return s.current.ID, s.current.Status, true
}

// monitor polls the call status every interval until the call reaches a
// terminal state or the session is closed
func (s *Session) monitor(ctx context.Context, callID, phone string, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			call, err := s.api.GetCall(ctx, callID)
			if err != nil {
				s.logger.Warn().Err(err).Str("call_id", callID).Msg("call status poll failed")
				continue
			}

			s.mu.Lock()
			if s.current == nil || s.current.ID != callID {
				s.mu.Unlock()
				return
			}
			changed := s.current.Status != call.Status
			s.current.Status = call.Status
			if linkPattern.MatchString(call.Transcript) {
				s.linkSent = true
			}
			listeners := make([]StatusListener, len(s.listeners))
			copy(listeners, s.listeners)
			s.mu.Unlock()

			if changed {
				for _, fn := range listeners {
					fn(callID, call.Status)
				}
				s.logger.Info().Str("call_id", callID).Str("status", string(call.Status)).Msg("call status changed")
			}

			if call.Status.Terminal() {
				s.finish(callID, call.Status)
				return
			}
		}
	}
}

// finish records the completed call and clears the current-call slot
func (s *Session) finish(callID string, state types.CallState) {
	s.mu.Lock()
	if s.current == nil || s.current.ID != callID {
		s.mu.Unlock()
		return
	}
	startedAt := s.startedAt
	linkSent := s.linkSent
	phone := s.creds.PhoneNumber
	s.current = nil
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	now := time.Now()
	record := types.CallRecord{
		CallID:      callID,
		PhoneNumber: phone,
		LinkSent:    linkSent,
		StartedAt:   startedAt,
		EndedAt:     now,
		DurationSec: now.Sub(startedAt).Seconds(),
	}

	// A call only counts as a sale if the purchase link was delivered in-call
	switch {
	case state == types.CallFailed:
		record.Outcome = types.OutcomeFailed
	case linkSent:
		record.Outcome = types.OutcomeSuccess
		record.Revenue = simulator.TicketPrice
	default:
		record.Outcome = types.OutcomeRejected
	}

	if s.log != nil {
		s.log.Add(record)
	}
	metrics.Get().RecordCallEnded(state == types.CallFailed)

	s.logger.Info().
		Str("call_id", callID).
		Str("outcome", string(record.Outcome)).
		Bool("link_sent", linkSent).
		Float64("duration_sec", record.DurationSec).
		Msg("call finished")
}
