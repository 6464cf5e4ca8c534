package infra

import (
	"log/slog"
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	eventsProcessed  atomic.Uint64
	commandsEmitted  atomic.Uint64
	ordersSubmitted  atomic.Uint64
	ordersCancelled  atomic.Uint64
	dispatchFailures atomic.Uint64
	parseErrors      atomic.Uint64
	messagesReceived atomic.Uint64

	// Latency tracking
	latencySumNs atomic.Int64
	latencyCount atomic.Uint64

	// Gauges
	activeConnections atomic.Int32
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordEvent records an event processing with latency.
func (m *Metrics) RecordEvent(latencyNs int64) {
	m.eventsProcessed.Add(1)
	m.latencySumNs.Add(latencyNs)
	m.latencyCount.Add(1)
}

// RecordCommand records a command emitted by the engine.
func (m *Metrics) RecordCommand() {
	m.commandsEmitted.Add(1)
}

// RecordSubmitted records an order handed to the transport.
func (m *Metrics) RecordSubmitted() {
	m.ordersSubmitted.Add(1)
}

// RecordCancelled records a cancel request handed to the transport.
func (m *Metrics) RecordCancelled() {
	m.ordersCancelled.Add(1)
}

// RecordFailure records a failed order dispatch.
func (m *Metrics) RecordFailure() {
	m.dispatchFailures.Add(1)
}

// RecordMessage records a raw websocket message.
func (m *Metrics) RecordMessage() {
	m.messagesReceived.Add(1)
}

// RecordParseError records a wire message that could not be parsed.
func (m *Metrics) RecordParseError() {
	m.parseErrors.Add(1)
}

// IncrementConnections increments active connections by 1.
func (m *Metrics) IncrementConnections() {
	m.activeConnections.Add(1)
}

// DecrementConnections decrements active connections by 1.
func (m *Metrics) DecrementConnections() {
	m.activeConnections.Add(-1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	EventsProcessed   uint64
	CommandsEmitted   uint64
	OrdersSubmitted   uint64
	OrdersCancelled   uint64
	DispatchFailures  uint64
	ParseErrors       uint64
	MessagesReceived  uint64
	AvgLatencyNs      int64
	ActiveConnections int32
	Timestamp         time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgLatency int64
	count := m.latencyCount.Load()
	if count > 0 {
		avgLatency = m.latencySumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		EventsProcessed:   m.eventsProcessed.Load(),
		CommandsEmitted:   m.commandsEmitted.Load(),
		OrdersSubmitted:   m.ordersSubmitted.Load(),
		OrdersCancelled:   m.ordersCancelled.Load(),
		DispatchFailures:  m.dispatchFailures.Load(),
		ParseErrors:       m.parseErrors.Load(),
		MessagesReceived:  m.messagesReceived.Load(),
		AvgLatencyNs:      avgLatency,
		ActiveConnections: m.activeConnections.Load(),
		Timestamp:         time.Now(),
	}
}

// LogValue implements slog.LogValuer.
func (s MetricsSnapshot) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("events", s.EventsProcessed),
		slog.Uint64("commands", s.CommandsEmitted),
		slog.Uint64("submitted", s.OrdersSubmitted),
		slog.Uint64("cancelled", s.OrdersCancelled),
		slog.Uint64("failures", s.DispatchFailures),
		slog.Uint64("parse_errors", s.ParseErrors),
		slog.Uint64("messages", s.MessagesReceived),
		slog.Int64("avg_latency_ns", s.AvgLatencyNs),
		slog.Int("connections", int(s.ActiveConnections)),
	)
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.eventsProcessed.Store(0)
	m.commandsEmitted.Store(0)
	m.ordersSubmitted.Store(0)
	m.ordersCancelled.Store(0)
	m.dispatchFailures.Store(0)
	m.parseErrors.Store(0)
	m.messagesReceived.Store(0)
	m.latencySumNs.Store(0)
	m.latencyCount.Store(0)
	m.activeConnections.Store(0)
}
