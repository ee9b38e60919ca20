package core

import (
	"testing"
	"time"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus(10)

	// Subscribe
	ch := bus.Subscribe()

	// Publish event
	event := Event{
		Type:           EventMessageAppended,
		ConversationID: "conv-1",
		Timestamp:      time.Now(),
	}
	bus.Publish(event)

	// Receive event
	select {
	case received := <-ch:
		if received.Type != EventMessageAppended {
			t.Errorf("expected type=%s, got %s", EventMessageAppended, received.Type)
		}
		if received.ConversationID != "conv-1" {
			t.Errorf("expected conversation_id=conv-1, got %s", received.ConversationID)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for event")
	}

	// Unsubscribe
	bus.Unsubscribe(ch)

	// Channel should be closed
	_, ok := <-ch
	if ok {
		t.Error("expected channel to be closed")
	}
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus(10)

	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()

	event := Event{
		Type:           EventConversationUpdated,
		ConversationID: "conv-2",
		Timestamp:      time.Now(),
	}
	bus.Publish(event)

	// Both should receive
	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case received := <-ch:
			if received.ConversationID != "conv-2" {
				t.Errorf("subscriber %d: expected conversation_id=conv-2, got %s", i, received.ConversationID)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("subscriber %d: timeout waiting for event", i)
		}
	}
}

func TestEventBusDropsWhenFull(t *testing.T) {
	bus := NewEventBus(16)

	ch := bus.Subscribe()

	// Overflow the buffer; Publish must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			bus.Publish(Event{Type: EventMessageAppended})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber buffer")
	}

	// Drain what was buffered; at most bufferSize events survived.
	drained := 0
	for {
		select {
		case <-ch:
			drained++
		default:
			if drained == 0 || drained > 16 {
				t.Errorf("expected 1..16 buffered events, got %d", drained)
			}
			return
		}
	}
}

func TestEventBusClose(t *testing.T) {
	bus := NewEventBus(10)

	ch := bus.Subscribe()
	bus.Close()

	_, ok := <-ch
	if ok {
		t.Error("expected channel to be closed after bus close")
	}
}
