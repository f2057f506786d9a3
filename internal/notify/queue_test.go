package notify

import (
	"sync"
	"testing"
	"time"
)

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestQueue_ExpiresAfterTTL(t *testing.T) {
	q := NewQueue(30*time.Millisecond, 0)
	defer q.Close()

	id := q.Success("Complaint submitted successfully!")
	if q.Len() != 1 {
		t.Fatalf("expected 1 notification but got %d", q.Len())
	}

	n := q.List()[0]
	if n.ID != id || n.Kind != KindSuccess {
		t.Errorf("unexpected notification %+v", n)
	}
	if n.ExpiresAt.Sub(n.CreatedAt) != 30*time.Millisecond {
		t.Errorf("expected expiresAt = createdAt + ttl, got %v", n.ExpiresAt.Sub(n.CreatedAt))
	}

	if !waitFor(t, time.Second, func() bool { return q.Len() == 0 }) {
		t.Error("expected notification to expire")
	}
}

func TestQueue_DismissBeforeExpiry(t *testing.T) {
	q := NewQueue(time.Hour, 0)
	defer q.Close()

	first := q.Info("first")
	second := q.Warning("second")

	if !q.Dismiss(first) {
		t.Error("expected dismiss of live notification to succeed")
	}
	if q.Dismiss(first) {
		t.Error("expected second dismiss of same id to fail")
	}

	list := q.List()
	if len(list) != 1 || list[0].ID != second {
		t.Errorf("expected only second notification to remain, got %+v", list)
	}
}

func TestQueue_IDsStrictlyIncreasing(t *testing.T) {
	q := NewQueue(time.Hour, 0)
	defer q.Close()

	fixed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	q.now = func() time.Time { return fixed }

	seen := make(map[ID]bool)
	var last ID
	for i := 0; i < 100; i++ {
		id := q.Info("same instant")
		if id <= last {
			t.Fatalf("expected id %d > previous %d", id, last)
		}
		if seen[id] {
			t.Fatalf("id %d reused", id)
		}
		seen[id] = true
		last = id
	}

	// Dismissing does not free the id for reuse.
	q.Dismiss(last)
	if id := q.Info("after dismiss"); id <= last {
		t.Errorf("expected id after dismiss to exceed %d but got %d", last, id)
	}
}

func TestQueue_CapacityEvictsOldest(t *testing.T) {
	q := NewQueue(time.Hour, 2)
	defer q.Close()

	q.Info("one")
	q.Info("two")
	q.Info("three")

	list := q.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 notifications but got %d", len(list))
	}
	if list[0].Message != "two" || list[1].Message != "three" {
		t.Errorf("expected [two three] in insertion order, got [%s %s]", list[0].Message, list[1].Message)
	}
}

func TestQueue_SinksAndChanges(t *testing.T) {
	q := NewQueue(time.Hour, 0)
	defer q.Close()

	var mu sync.Mutex
	var got []Notification
	q.AddSink(SinkFunc(func(n Notification) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, n)
	}))

	q.Error("Failed to update status")

	select {
	case <-q.Changes():
	case <-time.After(time.Second):
		t.Fatal("expected change signal after push")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0].Kind != KindError {
		t.Errorf("expected sink to observe one error notification, got %+v", got)
	}
}

func TestQueue_PushAfterClose(t *testing.T) {
	q := NewQueue(time.Hour, 0)
	q.Info("before")
	q.Close()

	if id := q.Info("after"); id != 0 {
		t.Errorf("expected push after close to be ignored, got id %d", id)
	}
}
