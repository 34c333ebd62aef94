// Package events fans dashboard events out to connected browsers over SSE.
package events

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fruitsalade/sitedeck/internal/metrics"
)

const (
	// EventNotify announces a new notification.
	EventNotify = "notify"
	// EventDismiss announces that a notification expired or was dismissed.
	EventDismiss = "dismiss"
	// EventState announces that the dashboard state changed and the page
	// should be re-rendered.
	EventState = "state"
)

// subscriberBuffer is how many events a slow browser may fall behind
// before it starts missing them.
const subscriberBuffer = 64

// Event is one message on the event stream. Seq is assigned by Publish and
// increases by one per published event.
type Event struct {
	Seq       uint64 `json:"seq"`
	Type      string `json:"type"`
	ID        uint64 `json:"id,omitempty"`
	Severity  string `json:"severity,omitempty"`
	Message   string `json:"message,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Broadcaster hands every published event to all current subscribers.
type Broadcaster struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
	seq  uint64
}

// NewBroadcaster creates a broadcaster with no subscribers.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a new subscriber. The returned cancel func removes
// it and closes the channel; calling it more than once is harmless.
func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	n := len(b.subs)
	b.mu.Unlock()
	metrics.SetEventSubscribers(n)

	var once sync.Once
	return ch, func() {
		once.Do(func() { b.remove(ch) })
	}
}

func (b *Broadcaster) remove(ch chan Event) {
	b.mu.Lock()
	delete(b.subs, ch)
	close(ch)
	n := len(b.subs)
	b.mu.Unlock()
	metrics.SetEventSubscribers(n)
}

// Publish stamps the event and offers it to every subscriber without
// blocking. A subscriber whose buffer is full misses the event.
func (b *Broadcaster) Publish(event Event) {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}

	// Write lock: Seq order must match delivery order.
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	event.Seq = b.seq
	for ch := range b.subs {
		select {
		case ch <- event:
		default:
			metrics.RecordDroppedEvent(event.Type)
		}
	}
}

// Count returns the number of subscribers.
func (b *Broadcaster) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// WriteSSE writes e as one server-sent event frame.
func WriteSSE(w io.Writer, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", e.Seq, e.Type, data)
	return err
}
