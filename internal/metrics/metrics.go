package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/fandial/callboard/internal/types"
)

// Metrics holds all application metrics
type Metrics struct {
	mu sync.RWMutex

	// Polling metrics
	TicksTotal          int64
	SourceFailuresTotal int64
	lastTickAt          time.Time

	// Call metrics
	CallsStartedTotal int64
	CallsEndedTotal   int64
	CallsFailedTotal  int64

	// WebSocket metrics
	WebSocketConnectionsTotal    int64
	WebSocketDisconnectionsTotal int64
	activeConnections            int64

	// Latest snapshot gauges
	snapshotStats types.CallStats
	snapshotRev   types.RevenueData

	// Timing
	startTime time.Time
}

// Global metrics instance
var instance *Metrics
var once sync.Once

// Get returns the singleton metrics instance
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			startTime: time.Now(),
		}
	})
	return instance
}

// RecordTick increments the polling tick counter
func (m *Metrics) RecordTick() {
	m.mu.Lock()
	m.TicksTotal++
	m.lastTickAt = time.Now()
	m.mu.Unlock()
}

// RecordSourceFailure increments the metrics-source failure counter
func (m *Metrics) RecordSourceFailure() {
	m.mu.Lock()
	m.SourceFailuresTotal++
	m.mu.Unlock()
}

// RecordCallStarted increments the outbound call counter
func (m *Metrics) RecordCallStarted() {
	m.mu.Lock()
	m.CallsStartedTotal++
	m.mu.Unlock()
}

// RecordCallEnded increments the completed call counter
func (m *Metrics) RecordCallEnded(failed bool) {
	m.mu.Lock()
	m.CallsEndedTotal++
	if failed {
		m.CallsFailedTotal++
	}
	m.mu.Unlock()
}

// RecordWebSocketConnect increments connection counters
func (m *Metrics) RecordWebSocketConnect() {
	m.mu.Lock()
	m.WebSocketConnectionsTotal++
	m.activeConnections++
	m.mu.Unlock()
}

// RecordWebSocketDisconnect increments disconnection counter
func (m *Metrics) RecordWebSocketDisconnect() {
	m.mu.Lock()
	m.WebSocketDisconnectionsTotal++
	m.activeConnections--
	m.mu.Unlock()
}

// UpdateSnapshot stores the latest published snapshot for the gauges
func (m *Metrics) UpdateSnapshot(stats types.CallStats, rev types.RevenueData) {
	m.mu.Lock()
	m.snapshotStats = stats
	m.snapshotRev = rev
	m.mu.Unlock()
}

// GetActiveConnections returns current WebSocket connections
func (m *Metrics) GetActiveConnections() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeConnections
}

// Handler returns an HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.mu.RLock()
		defer m.mu.RUnlock()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		// Helper to write metric
		write := func(name string, value interface{}) {
			switch v := value.(type) {
			case int:
				w.Write([]byte(name + " " + strconv.Itoa(v) + "\n"))
			case int64:
				w.Write([]byte(name + " " + strconv.FormatInt(v, 10) + "\n"))
			case float64:
				w.Write([]byte(name + " " + strconv.FormatFloat(v, 'f', 6, 64) + "\n"))
			}
		}

		// System metrics
		write("callboard_uptime_seconds", time.Since(m.startTime).Seconds())

		// Polling metrics
		write("callboard_ticks_total", m.TicksTotal)
		write("callboard_source_failures_total", m.SourceFailuresTotal)
		if !m.lastTickAt.IsZero() {
			write("callboard_seconds_since_last_tick", time.Since(m.lastTickAt).Seconds())
		}

		// Call metrics
		write("callboard_calls_started_total", m.CallsStartedTotal)
		write("callboard_calls_ended_total", m.CallsEndedTotal)
		write("callboard_calls_failed_total", m.CallsFailedTotal)

		// WebSocket metrics
		write("callboard_websocket_connections_total", m.WebSocketConnectionsTotal)
		write("callboard_websocket_disconnections_total", m.WebSocketDisconnectionsTotal)
		write("callboard_websocket_active_connections", m.activeConnections)

		// Snapshot gauges
		write("callboard_calls_success", m.snapshotStats.Success)
		write("callboard_calls_rejected", m.snapshotStats.Rejected)
		write("callboard_calls_voicemail", m.snapshotStats.Voicemail)
		write("callboard_calls_forwarded", m.snapshotStats.Forwarded)
		write("callboard_revenue_daily", m.snapshotRev.DailyRevenue)
		write("callboard_success_rate", m.snapshotRev.SuccessRate)
		write("callboard_total_calls", m.snapshotRev.TotalCalls)
	}
}
