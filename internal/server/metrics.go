package server

import (
	"sync/atomic"
	"time"
)

// Metrics tracks server statistics using atomic operations for thread-safety
type Metrics struct {
	FetchesTotal  atomic.Int64
	FetchFailures atomic.Int64
	StaleDiscards atomic.Int64
	EditsTotal    atomic.Int64
	EditFailures  atomic.Int64
	StartTime     time.Time
}

// NewMetrics creates a new Metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime: time.Now(),
	}
}

// IncFetchesTotal increments the fetch counter
func (m *Metrics) IncFetchesTotal() {
	m.FetchesTotal.Add(1)
}

// IncFetchFailures increments the failed fetch counter
func (m *Metrics) IncFetchFailures() {
	m.FetchFailures.Add(1)
}

// IncStaleDiscards increments the superseded-fetch counter
func (m *Metrics) IncStaleDiscards() {
	m.StaleDiscards.Add(1)
}

// IncEditsTotal increments the date edit counter
func (m *Metrics) IncEditsTotal() {
	m.EditsTotal.Add(1)
}

// IncEditFailures increments the failed edit counter
func (m *Metrics) IncEditFailures() {
	m.EditFailures.Add(1)
}

// MetricsSnapshot represents a point-in-time snapshot of metrics
type MetricsSnapshot struct {
	FetchesTotal  int64     `json:"fetches_total"`
	FetchFailures int64     `json:"fetch_failures"`
	StaleDiscards int64     `json:"stale_discards"`
	EditsTotal    int64     `json:"edits_total"`
	EditFailures  int64     `json:"edit_failures"`
	StartTime     time.Time `json:"start_time"`
	Uptime        string    `json:"uptime"`
}

// GetSnapshot returns a snapshot of current metrics
func (m *Metrics) GetSnapshot() MetricsSnapshot {
	return MetricsSnapshot{
		FetchesTotal:  m.FetchesTotal.Load(),
		FetchFailures: m.FetchFailures.Load(),
		StaleDiscards: m.StaleDiscards.Load(),
		EditsTotal:    m.EditsTotal.Load(),
		EditFailures:  m.EditFailures.Load(),
		StartTime:     m.StartTime,
		Uptime:        time.Since(m.StartTime).String(),
	}
}
