package events

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestSubscribeAndCancel(t *testing.T) {
	b := NewBroadcaster()

	ch1, cancel1 := b.Subscribe()
	_, cancel2 := b.Subscribe()
	if b.Count() != 2 {
		t.Fatalf("expected 2 subscribers, got %d", b.Count())
	}

	cancel1()
	if b.Count() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", b.Count())
	}
	if _, open := <-ch1; open {
		t.Error("cancelled channel should be closed")
	}

	cancel2()
	cancel2()
	if b.Count() != 0 {
		t.Fatalf("expected no subscribers, got %d", b.Count())
	}
}

func TestPublishReachesEverySubscriber(t *testing.T) {
	b := NewBroadcaster()
	ch1, cancel1 := b.Subscribe()
	defer cancel1()
	ch2, cancel2 := b.Subscribe()
	defer cancel2()

	b.Publish(Event{Type: EventNotify, ID: 7, Severity: "success", Message: "File created successfully!"})
	b.Publish(Event{Type: EventDismiss, ID: 7})

	for i, ch := range []<-chan Event{ch1, ch2} {
		first, second := receive(t, ch), receive(t, ch)
		if first.Type != EventNotify || first.ID != 7 || first.Timestamp == 0 {
			t.Errorf("subscriber %d: unexpected first event %+v", i, first)
		}
		if second.Type != EventDismiss {
			t.Errorf("subscriber %d: unexpected second event %+v", i, second)
		}
		if second.Seq != first.Seq+1 {
			t.Errorf("subscriber %d: sequence not consecutive: %d then %d", i, first.Seq, second.Seq)
		}
	}
}

func TestSlowSubscriberMissesEvents(t *testing.T) {
	b := NewBroadcaster()
	ch, cancel := b.Subscribe()
	defer cancel()

	for i := 0; i < subscriberBuffer+10; i++ {
		b.Publish(Event{Type: EventState})
	}
	if len(ch) != subscriberBuffer {
		t.Errorf("expected %d buffered events, got %d", subscriberBuffer, len(ch))
	}
	if e := receive(t, ch); e.Seq != 1 {
		t.Errorf("oldest events should be kept, got seq %d", e.Seq)
	}
}

func TestWriteSSE(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSSE(&buf, Event{Seq: 3, Type: EventState, Timestamp: 1234567890}); err != nil {
		t.Fatal(err)
	}
	frame := buf.String()
	if !strings.HasPrefix(frame, "id: 3\nevent: state\ndata: ") || !strings.HasSuffix(frame, "\n\n") {
		t.Fatalf("malformed frame %q", frame)
	}

	data := strings.TrimSuffix(strings.SplitN(frame, "data: ", 2)[1], "\n\n")
	var m map[string]any
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		t.Fatal(err)
	}
	if _, ok := m["message"]; ok {
		t.Errorf("empty fields should be omitted: %s", data)
	}
}
