// Package notify implements the transient notification queue behind the
// toasts shown at the bottom of every screen.
//
// Each pushed notification expires on its own timer after the queue's TTL
// and may be dismissed earlier. Ids are derived from the push timestamp and
// are strictly increasing, so an id is never reused even when two pushes
// land in the same nanosecond.
package notify

import (
	"log"
	"sync"
	"time"
)

// Kind is the visual category of a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
)

// ID identifies a notification for Dismiss.
type ID int64

// Notification is a single toast.
type Notification struct {
	ID        ID
	Kind      Kind
	Message   string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Sink observes every pushed notification (e.g. the Telegram relay).
//
// Notify is called synchronously outside the queue lock; slow sinks must
// hand work off to their own goroutine.
type Sink interface {
	Notify(n Notification)
}

// SinkFunc adapts a plain function to Sink.
type SinkFunc func(Notification)

func (f SinkFunc) Notify(n Notification) { f(n) }

// Queue holds live notifications in insertion order.
//
// Thread-safety:
//   - All methods are safe for concurrent use
//   - Expiry timers run on their own goroutines and take the same lock
type Queue struct {
	mu       sync.Mutex
	items    []Notification
	timers   map[ID]*time.Timer
	ttl      time.Duration
	capacity int
	lastID   int64
	sinks    []Sink
	closed   bool

	now     func() time.Time
	changes chan struct{}
}

// NewQueue creates a queue.
//
// Parameters:
//   - ttl: lifetime of each notification
//   - capacity: maximum live notifications, 0 means unbounded; when full
//     the oldest notification is evicted to make room
func NewQueue(ttl time.Duration, capacity int) *Queue {
	if capacity < 0 {
		capacity = 0
	}
	return &Queue{
		timers:   make(map[ID]*time.Timer),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
		changes:  make(chan struct{}, 1),
	}
}

// AddSink registers an observer for future pushes.
func (q *Queue) AddSink(s Sink) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sinks = append(q.sinks, s)
}

// Push appends a notification and schedules its removal after the TTL.
//
// Returns the new notification's id.
func (q *Queue) Push(kind Kind, message string) ID {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return 0
	}

	created := q.now()
	next := created.UnixNano()
	if next <= q.lastID {
		next = q.lastID + 1
	}
	q.lastID = next
	id := ID(next)

	n := Notification{
		ID:        id,
		Kind:      kind,
		Message:   message,
		CreatedAt: created,
		ExpiresAt: created.Add(q.ttl),
	}

	if q.capacity > 0 && len(q.items) >= q.capacity {
		evicted := q.items[0]
		q.items = q.items[1:]
		q.stopTimer(evicted.ID)
	}
	q.items = append(q.items, n)
	q.timers[id] = time.AfterFunc(q.ttl, func() { q.expire(id) })

	sinks := append([]Sink(nil), q.sinks...)
	q.mu.Unlock()

	for _, s := range sinks {
		s.Notify(n)
	}
	q.signal()
	return id
}

// Success pushes a success notification.
func (q *Queue) Success(message string) ID { return q.Push(KindSuccess, message) }

// Error pushes an error notification and logs it.
func (q *Queue) Error(message string) ID {
	log.Printf("  ❌ %s\n", message)
	return q.Push(KindError, message)
}

// Warning pushes a warning notification.
func (q *Queue) Warning(message string) ID { return q.Push(KindWarning, message) }

// Info pushes an informational notification.
func (q *Queue) Info(message string) ID { return q.Push(KindInfo, message) }

// Dismiss removes a notification before its expiry.
//
// Returns false if the id is unknown or already gone.
func (q *Queue) Dismiss(id ID) bool {
	q.mu.Lock()
	removed := q.remove(id)
	q.mu.Unlock()

	if removed {
		q.signal()
	}
	return removed
}

// List returns a snapshot of live notifications, oldest first.
func (q *Queue) List() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Notification(nil), q.items...)
}

// Len returns the number of live notifications.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Changes delivers a signal whenever the queue contents change.
//
// The channel is buffered with size 1 and signals coalesce, so a slow
// reader only ever sees one pending wake-up.
func (q *Queue) Changes() <-chan struct{} {
	return q.changes
}

// Close stops every pending expiry timer. Pushes after Close are ignored.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for id := range q.timers {
		q.stopTimer(id)
	}
	q.closed = true
}

func (q *Queue) expire(id ID) {
	q.mu.Lock()
	removed := q.remove(id)
	q.mu.Unlock()

	if removed {
		q.signal()
	}
}

// remove deletes id from the queue. Caller holds q.mu.
func (q *Queue) remove(id ID) bool {
	for i, n := range q.items {
		if n.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			q.stopTimer(id)
			return true
		}
	}
	return false
}

// stopTimer cancels and forgets id's expiry timer. Caller holds q.mu.
func (q *Queue) stopTimer(id ID) {
	if t, ok := q.timers[id]; ok {
		t.Stop()
		delete(q.timers, id)
	}
}

func (q *Queue) signal() {
	select {
	case q.changes <- struct{}{}:
	default:
	}
}
