// Package notify holds the transient status messages shown to the user.
// Each message expires on its own timer; several may be visible at once.
package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fruitsalade/sitedeck/internal/events"
	"github.com/fruitsalade/sitedeck/internal/metrics"
)

// Severity classifies a notification.
type Severity string

const (
	Info    Severity = "info"
	Success Severity = "success"
	Error   Severity = "error"
)

// DefaultLifetime is how long a notification stays visible.
const DefaultLifetime = 5 * time.Second

// Icon returns the icon name for a severity.
func (s Severity) Icon() string {
	switch s {
	case Success:
		return "check-circle"
	case Error:
		return "exclamation-circle"
	}
	return "info-circle"
}

// Notification is one visible message.
type Notification struct {
	ID       uint64
	Message  string
	Severity Severity
	Created  time.Time
}

// Publisher receives notification events. *events.Broadcaster satisfies it.
type Publisher interface {
	Publish(events.Event)
}

type stopper interface {
	Stop() bool
}

// Queue is the set of currently visible notifications.
type Queue struct {
	mu       sync.Mutex
	nextID   uint64
	items    []Notification
	timers   map[uint64]stopper
	lifetime time.Duration
	pub      Publisher
	log      *zap.Logger

	afterFunc func(time.Duration, func()) stopper
}

// New creates a queue. pub and log may be nil.
func New(lifetime time.Duration, pub Publisher, log *zap.Logger) *Queue {
	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Queue{
		timers:   make(map[uint64]stopper),
		lifetime: lifetime,
		pub:      pub,
		log:      log,
		afterFunc: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
	}
}

// Notify shows a message and schedules its removal.
func (q *Queue) Notify(message string, sev Severity) Notification {
	q.mu.Lock()
	q.nextID++
	n := Notification{ID: q.nextID, Message: message, Severity: sev, Created: time.Now()}
	q.items = append(q.items, n)
	id := n.ID
	q.timers[id] = q.afterFunc(q.lifetime, func() { q.expire(id) })
	q.mu.Unlock()

	metrics.RecordNotification(string(sev))
	q.log.Debug("notification", zap.Uint64("id", id), zap.String("severity", string(sev)), zap.String("message", message))
	q.publish(events.Event{Type: events.EventNotify, ID: id, Severity: string(sev), Message: message})
	return n
}

// Dismiss removes a notification before its timer fires. It reports
// whether the notification was still visible.
func (q *Queue) Dismiss(id uint64) bool {
	q.mu.Lock()
	t, ok := q.timers[id]
	if ok {
		t.Stop()
	}
	removed := q.removeLocked(id)
	q.mu.Unlock()

	if removed {
		q.publish(events.Event{Type: events.EventDismiss, ID: id})
	}
	return removed
}

func (q *Queue) expire(id uint64) {
	q.mu.Lock()
	removed := q.removeLocked(id)
	q.mu.Unlock()

	if removed {
		q.publish(events.Event{Type: events.EventDismiss, ID: id})
	}
}

func (q *Queue) removeLocked(id uint64) bool {
	delete(q.timers, id)
	for i, n := range q.items {
		if n.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

// Active returns the visible notifications, oldest first.
func (q *Queue) Active() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Notification, len(q.items))
	copy(out, q.items)
	return out
}

// Close stops all pending timers and clears the queue.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for id, t := range q.timers {
		t.Stop()
		delete(q.timers, id)
	}
	q.items = nil
}

func (q *Queue) publish(e events.Event) {
	if q.pub != nil {
		q.pub.Publish(e)
	}
}
