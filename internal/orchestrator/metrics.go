package orchestrator

import (
	"sync"
	"time"
)

// Metrics tracks sync cycle outcomes for a session.
type Metrics struct {
	MetricsSnapshot
	mutex sync.RWMutex
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	TotalCycles      int64
	SuccessfulCycles int64
	FailedCycles     int64
	DroppedTriggers  int64
	AverageDuration  time.Duration
	TotalDuration    time.Duration
}

// RecordCycle records a finished cycle.
func (m *Metrics) RecordCycle(result Result) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.TotalCycles++
	m.TotalDuration += result.Duration

	if result.Err != nil {
		m.FailedCycles++
	} else {
		m.SuccessfulCycles++
	}

	if m.TotalCycles > 0 {
		m.AverageDuration = m.TotalDuration / time.Duration(m.TotalCycles)
	}
}

// RecordDropped counts a trigger that arrived while a cycle was running.
func (m *Metrics) RecordDropped() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.DroppedTriggers++
}

// Snapshot returns a copy of the current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.MetricsSnapshot
}

// SuccessRate returns the share of successful cycles as a percentage.
func (m *Metrics) SuccessRate() float64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.TotalCycles == 0 {
		return 0
	}
	return float64(m.SuccessfulCycles) / float64(m.TotalCycles) * 100
}
