package health

import (
	"errors"
	"testing"
	"time"
)

func TestMonitor(t *testing.T) {
	m := NewMonitor()
	fixed := time.Date(2024, 5, 1, 15, 4, 5, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	if s := m.GetStatus(); s.Status != "online" || s.Line() != "online · not synced" {
		t.Errorf("unexpected initial status %+v (%q)", s, s.Line())
	}

	m.RecordSuccess()
	if line := m.GetStatus().Line(); line != "online · synced 15:04:05" {
		t.Errorf("unexpected line %q", line)
	}

	tests := []struct {
		failures int
		expected string
	}{
		{1, "degraded"},
		{2, "degraded"},
		{3, "offline"},
	}
	for _, tt := range tests {
		m.RecordFailure(errors.New("boom"))
		if s := m.GetStatus(); s.Status != tt.expected || s.Failures != tt.failures {
			t.Errorf("after %d failures expected %s but got %+v", tt.failures, tt.expected, s)
		}
	}

	m.RecordSuccess()
	if s := m.GetStatus(); s.Status != "online" || s.Failures != 0 {
		t.Errorf("expected recovery to online but got %+v", s)
	}
}
