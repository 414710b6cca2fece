package poller

import (
	"context"
	"sync"
	"time"

	"github.com/fandial/callboard/internal/metrics"
	"github.com/fandial/callboard/internal/simulator"
	"github.com/fandial/callboard/internal/types"
	"github.com/rs/zerolog"
)

// Subscriber receives every published snapshot pair, in publish order
type Subscriber func(types.CallStats, types.RevenueData)

// Coordinator owns the single repeating metrics timer. While started it
// samples the source every interval and fans the result out to subscribers.
//
// Stop gives an exact postcondition: once it returns, no subscriber will be
// invoked again until the next Start. A tick already queued by the runtime
// when Stop lands is suppressed by the running guard in the tick body.
type Coordinator struct {
	source   simulator.Source
	interval time.Duration
	logger   zerolog.Logger

	mu          sync.Mutex
	subscribers []Subscriber
	running     bool
	cancel      context.CancelFunc
	done        chan struct{}

	stats types.CallStats
	rev   types.RevenueData
}

// NewCoordinator creates a coordinator that samples the given source
func NewCoordinator(source simulator.Source, interval time.Duration, logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		source:   source,
		interval: interval,
		logger:   logger.With().Str("component", "poller").Logger(),
	}
}

// Subscribe registers a callback for published snapshots. All subscribers see
// every snapshot in the same order it was produced.
func (c *Coordinator) Subscribe(fn Subscriber) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

// Start arms the timer. Calling Start while already running is a no-op.
func (c *Coordinator) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	c.running = true

	go c.run(ctx, c.done)

	c.logger.Info().Dur("interval", c.interval).Msg("polling started")
}

// Stop cancels the timer and waits for the loop to exit. Idempotent; after
// Stop returns no further snapshot is published.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	c.cancel()
	done := c.done
	c.mu.Unlock()

	<-done
	c.logger.Info().Msg("polling stopped")
}

// Running reports whether the timer is currently armed
func (c *Coordinator) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Last returns the most recently published snapshot pair
func (c *Coordinator) Last() (types.CallStats, types.RevenueData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats, c.rev
}

// run is the timer loop. It exits when ctx is cancelled and closes done on
// the way out so Stop can join it.
func (c *Coordinator) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			c.tick()
		}
	}
}

// tick samples the source and publishes the merged snapshot. The running
// check makes a tick that raced with Stop a no-op.
func (c *Coordinator) tick() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}

	stats, rev := c.source.Sample(c.stats, c.rev)
	c.stats = stats
	c.rev = rev

	subs := make([]Subscriber, len(c.subscribers))
	copy(subs, c.subscribers)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(stats, rev)
	}

	m := metrics.Get()
	m.RecordTick()
	m.UpdateSnapshot(stats, rev)

	c.logger.Debug().
		Int("total_calls", rev.TotalCalls).
		Float64("daily_revenue", rev.DailyRevenue).
		Int("subscribers", len(subs)).
		Msg("snapshot published")
}
