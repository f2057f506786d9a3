// Package health tracks how recently the client synced with the
// complaint service, for the status bar.
package health

import (
	"fmt"
	"sync"
	"time"
)

// Status is a point-in-time view of sync health.
type Status struct {
	Status          string // "online", "degraded" or "offline"
	Uptime          time.Duration
	LastFetchTime   time.Time
	LastFetchStatus string
	Failures        int // consecutive failed fetches
}

// Line renders the status bar text, e.g. "online · synced 15:04:05".
func (s Status) Line() string {
	if s.LastFetchTime.IsZero() {
		return s.Status + " · " + s.LastFetchStatus
	}
	return fmt.Sprintf("%s · %s %s", s.Status, s.LastFetchStatus, s.LastFetchTime.Format("15:04:05"))
}

// Monitor records the outcome of every fetch plan.
//
// Thread-safety:
//   - Safe for concurrent use; fetch goroutines record while the UI reads
type Monitor struct {
	startTime       time.Time
	lastFetchTime   time.Time
	lastFetchStatus string
	failures        int
	now             func() time.Time
	mu              sync.RWMutex
}

// NewMonitor creates a monitor that has not seen a fetch yet.
func NewMonitor() *Monitor {
	return &Monitor{
		startTime:       time.Now(),
		lastFetchStatus: "not synced",
		now:             time.Now,
	}
}

// RecordSuccess notes a successful fetch.
func (m *Monitor) RecordSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFetchTime = m.now()
	m.lastFetchStatus = "synced"
	m.failures = 0
}

// RecordFailure notes a failed fetch.
func (m *Monitor) RecordFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFetchTime = m.now()
	m.lastFetchStatus = "sync failed"
	m.failures++
}

// GetStatus returns the current health.
//
// One failure after a success is "degraded"; three in a row is "offline".
func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state := "online"
	switch {
	case m.failures >= 3:
		state = "offline"
	case m.failures > 0:
		state = "degraded"
	}

	return Status{
		Status:          state,
		Uptime:          m.now().Sub(m.startTime),
		LastFetchTime:   m.lastFetchTime,
		LastFetchStatus: m.lastFetchStatus,
		Failures:        m.failures,
	}
}
