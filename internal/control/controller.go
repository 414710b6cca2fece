package control

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fandial/callboard/internal/types"
	"github.com/fandial/callboard/internal/vapi"
	"github.com/rs/zerolog"
)

// ErrPausedNeedsStop is returned when start is attempted from paused.
// Resume is deliberately not part of the control surface; a paused agent has
// to be stopped before a fresh start.
var ErrPausedNeedsStop = errors.New("agent is paused, stop it before starting again")

// Poller is the coordinator surface the controller gates
type Poller interface {
	Start()
	Stop()
}

// CallSession is the call-widget surface the controller opens and closes
type CallSession interface {
	Open(ctx context.Context, phoneOverride string) vapi.StartResult
	Close()
	ActiveCall() (id string, state types.CallState, ok bool)
}

// RunStateListener is notified after every successful transition
type RunStateListener func(types.AgentRunState)

// Controller holds the run-state machine and gates the polling coordinator
// and the call session on it. Transitions are synchronous and local; none of
// them can fail, though starting from paused is rejected outright.
type Controller struct {
	mu        sync.Mutex
	state     types.AgentRunState
	startedAt time.Time

	poller    Poller
	session   CallSession
	listeners []RunStateListener
	logger    zerolog.Logger
}

// NewController creates a controller in the stopped state
func NewController(poller Poller, session CallSession, logger zerolog.Logger) *Controller {
	return &Controller{
		state:   types.RunStateStopped,
		poller:  poller,
		session: session,
		logger:  logger.With().Str("component", "control").Logger(),
	}
}

// OnStateChange registers a listener for run-state transitions
func (c *Controller) OnStateChange(fn RunStateListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// State returns the current run state
func (c *Controller) State() types.AgentRunState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// StartedAt returns when the current running session began, if any
func (c *Controller) StartedAt() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != types.RunStateRunning {
		return time.Time{}, false
	}
	return c.startedAt, true
}

// ActiveCall reports the session's current call, if any
func (c *Controller) ActiveCall() (string, types.CallState, bool) {
	return c.session.ActiveCall()
}

// Start transitions stopped -> running: arms the coordinator and opens the
// call session. Starting while already running is a no-op; starting from
// paused is rejected.
func (c *Controller) Start(ctx context.Context, phoneOverride string) (vapi.StartResult, error) {
	c.mu.Lock()
	switch c.state {
	case types.RunStateRunning:
		c.mu.Unlock()
		id, st, ok := c.session.ActiveCall()
		if ok {
			return vapi.StartResult{Success: true, CallID: id, Error: string(st)}, nil
		}
		return vapi.StartResult{Success: true}, nil
	case types.RunStatePaused:
		c.mu.Unlock()
		return vapi.StartResult{}, ErrPausedNeedsStop
	}

	c.state = types.RunStateRunning
	c.startedAt = time.Now()
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	c.poller.Start()
	result := c.session.Open(ctx, phoneOverride)
	if !result.Success {
		// The run session still starts; only the call action failed
		c.logger.Warn().Str("error", result.Error).Msg("agent started but call could not be placed")
	}

	c.notify(listeners, types.RunStateRunning)
	c.logger.Info().Msg("agent started")
	return result, nil
}

// Pause transitions running -> paused and stops polling. Pausing while not
// running is a no-op.
func (c *Controller) Pause() {
	c.mu.Lock()
	if c.state != types.RunStateRunning {
		c.mu.Unlock()
		return
	}
	c.state = types.RunStatePaused
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	c.poller.Stop()
	c.session.Close()

	c.notify(listeners, types.RunStatePaused)
	c.logger.Info().Msg("agent paused")
}

// Stop transitions running|paused -> stopped. Stopping while already stopped
// is a no-op.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.state == types.RunStateStopped {
		c.mu.Unlock()
		return
	}
	c.state = types.RunStateStopped
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	c.poller.Stop()
	c.session.Close()

	c.notify(listeners, types.RunStateStopped)
	c.logger.Info().Msg("agent stopped")
}

// snapshotListeners copies the listener slice; callers must hold c.mu
func (c *Controller) snapshotListeners() []RunStateListener {
	listeners := make([]RunStateListener, len(c.listeners))
	copy(listeners, c.listeners)
	return listeners
}

func (c *Controller) notify(listeners []RunStateListener, state types.AgentRunState) {
	for _, fn := range listeners {
		fn(state)
	}
}
