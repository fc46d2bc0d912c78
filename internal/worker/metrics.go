package worker

import "sync/atomic"

// Metrics tracks usage counters for the worker. All fields are atomics, so
// handlers update them without coordination.
type Metrics struct {
	comparisons atomic.Int64
	rankings    atomic.Int64
	searches    atomic.Int64
	requests    atomic.Int64
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordComparison counts one pairwise comparison served.
func (m *Metrics) RecordComparison() { m.comparisons.Add(1) }

// RecordRanking counts one ranking computation served.
func (m *Metrics) RecordRanking() { m.rankings.Add(1) }

// RecordSearch counts one text search served.
func (m *Metrics) RecordSearch() { m.searches.Add(1) }

// RecordRequest counts one HTTP request.
func (m *Metrics) RecordRequest() { m.requests.Add(1) }

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	Comparisons int64 `json:"comparisons"`
	Rankings    int64 `json:"rankings"`
	Searches    int64 `json:"searches"`
	Requests    int64 `json:"requests"`
}

// Snapshot returns the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Comparisons: m.comparisons.Load(),
		Rankings:    m.rankings.Load(),
		Searches:    m.searches.Load(),
		Requests:    m.requests.Load(),
	}
}
