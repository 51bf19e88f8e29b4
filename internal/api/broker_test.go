package api

import (
	"testing"
	"time"
)

func TestBrokerPublishSubscribe(t *testing.T) {
	b := NewBroker()
	jid := "j1"
	ch := b.Subscribe(jid)

	evt := JobEvent{Type: "solution.improved", Data: map[string]any{"totalDistance": 42.0}}
	b.Publish(jid, evt)

	select {
	case got := <-ch:
		if got.Type != evt.Type {
			t.Fatalf("got type %s, want %s", got.Type, evt.Type)
		}
		if got.Data["totalDistance"].(float64) != 42.0 {
			t.Fatalf("bad payload: %+v", got.Data)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timeout waiting for event")
	}

	b.Unsubscribe(jid, ch)
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("channel should be closed after unsubscribe")
		}
	case <-time.After(50 * time.Millisecond):
		// acceptable if already drained and closed
	}
}

func TestBrokerDropsWhenSubscriberSlow(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("j1")
	// Fill the buffer and then some; publish must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Publish("j1", JobEvent{Type: "solution.improved"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on slow subscriber")
	}
	if len(ch) == 0 {
		t.Fatal("expected buffered events")
	}
}

func TestBrokerIsolatesJobs(t *testing.T) {
	b := NewBroker()
	ch1 := b.Subscribe("j1")
	ch2 := b.Subscribe("j2")
	b.Publish("j1", JobEvent{Type: "solve.completed"})
	select {
	case <-ch1:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("j1 subscriber missed event")
	}
	select {
	case evt := <-ch2:
		t.Fatalf("j2 subscriber got foreign event: %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}
