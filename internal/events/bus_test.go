package events

import (
	"context"
	"testing"
	"time"
)

func TestPublishReachesSubscribers(t *testing.T) {
	bus := NewBus(nil)
	ch, cancel := bus.Subscribe(4)
	defer cancel()

	bus.Publish(context.Background(), TypeContractPaused, PauseChanged{Paused: true})

	select {
	case evt := <-ch:
		if evt.Type != TypeContractPaused {
			t.Errorf("unexpected type: %s", evt.Type)
		}
		if evt.ID == "" {
			t.Error("event ID should be set")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestPublishDoesNotBlockOnFullSubscriber(t *testing.T) {
	bus := NewBus(nil)
	ch, cancel := bus.Subscribe(1)
	defer cancel()

	ctx := context.Background()
	done := make(chan struct{})
	go func() {
		// Second publish would block forever on an unbuffered send.
		bus.Publish(ctx, TypeContractPaused, PauseChanged{Paused: true})
		bus.Publish(ctx, TypeContractUnpaused, PauseChanged{Paused: false})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}

	evt := <-ch
	if evt.Type != TypeContractPaused {
		t.Errorf("kept event should be the first one, got %s", evt.Type)
	}
}

func TestCancelClosesChannel(t *testing.T) {
	bus := NewBus(nil)
	ch, cancel := bus.Subscribe(1)
	cancel()

	if _, open := <-ch; open {
		t.Error("channel should be closed after cancel")
	}

	// Publishing after cancel must not panic.
	bus.Publish(context.Background(), TypeContractPaused, PauseChanged{Paused: true})
	cancel()
}
