package observability

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics collects counters and timings for answered schedule queries.
type Metrics struct {
	mu sync.Mutex

	// Counters
	queryTotal  atomic.Int64
	queryFailed atomic.Int64

	commands map[string]*CommandMetrics
}

// CommandMetrics holds the metrics of a single command.
type CommandMetrics struct {
	count         atomic.Int64
	errorCount    atomic.Int64
	totalDuration atomic.Int64 // microseconds
}

// NewMetrics creates an empty metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		commands: make(map[string]*CommandMetrics),
	}
}

// RecordQuery records one answered query of command.
func (m *Metrics) RecordQuery(command string, duration time.Duration, err error) {
	m.queryTotal.Add(1)
	cm := m.command(command)
	cm.count.Add(1)
	cm.totalDuration.Add(duration.Microseconds())
	if err != nil {
		m.queryFailed.Add(1)
		cm.errorCount.Add(1)
	}
}

// Observe records the query held by q once it finished.
func (m *Metrics) Observe(q *QueryContext, err error) {
	m.RecordQuery(q.Command, q.Duration(), err)
}

func (m *Metrics) command(name string) *CommandMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	cm, ok := m.commands[name]
	if !ok {
		cm = &CommandMetrics{}
		m.commands[name] = cm
	}
	return cm
}

// Snapshot returns a point-in-time copy of the metrics.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	commands := make(map[string]CommandSnapshot, len(m.commands))
	for name, cm := range m.commands {
		count := cm.count.Load()
		snap := CommandSnapshot{
			Count:         count,
			ErrorCount:    cm.errorCount.Load(),
			TotalDuration: time.Duration(cm.totalDuration.Load()) * time.Microsecond,
		}
		if count > 0 {
			snap.AverageDuration = snap.TotalDuration / time.Duration(count)
		}
		commands[name] = snap
	}

	return &MetricsSnapshot{
		QueryTotal:  m.queryTotal.Load(),
		QueryFailed: m.queryFailed.Load(),
		Commands:    commands,
	}
}

// MetricsSnapshot represents a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	QueryTotal  int64
	QueryFailed int64
	Commands    map[string]CommandSnapshot
}

// CommandSnapshot represents metrics for a specific command.
type CommandSnapshot struct {
	Count           int64
	ErrorCount      int64
	TotalDuration   time.Duration
	AverageDuration time.Duration
}

// CommandNames returns the recorded command names in sorted order.
func (s *MetricsSnapshot) CommandNames() []string {
	names := make([]string, 0, len(s.Commands))
	for name := range s.Commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SuccessRate returns the success rate as a percentage (0-100).
func (s *MetricsSnapshot) SuccessRate() float64 {
	if s.QueryTotal == 0 {
		return 100.0
	}
	return float64(s.QueryTotal-s.QueryFailed) / float64(s.QueryTotal) * 100.0
}
