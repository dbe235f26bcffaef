package eventx

import (
	"context"
	"errors"
	"testing"
)

func TestBusPublishDeliversInSubscriptionOrder(t *testing.T) {
	bus := NewBus()
	var order []int

	bus.Subscribe("test.event", func(ctx context.Context, e Event) error {
		order = append(order, 1)
		return nil
	})
	bus.Subscribe("test.event", func(ctx context.Context, e Event) error {
		order = append(order, 2)
		return nil
	})

	bus.Publish(context.Background(), New("test.event", "payload"))

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("delivery order = %v, want [1 2]", order)
	}
}

func TestBusPublishSkipsOtherTypes(t *testing.T) {
	bus := NewBus()
	called := false
	bus.Subscribe("wanted", func(ctx context.Context, e Event) error {
		called = true
		return nil
	})

	bus.Publish(context.Background(), New("unwanted", nil))

	if called {
		t.Error("handler for a different event type was invoked")
	}
}

func TestBusHandlerErrorDoesNotStopDelivery(t *testing.T) {
	bus := NewBus()
	delivered := false

	bus.Subscribe("test.event", func(ctx context.Context, e Event) error {
		return errors.New("boom")
	})
	bus.Subscribe("test.event", func(ctx context.Context, e Event) error {
		delivered = true
		return nil
	})

	bus.Publish(context.Background(), New("test.event", nil))

	if !delivered {
		t.Error("second handler not invoked after first handler error")
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus()
	count := 0

	unsubscribe := bus.Subscribe("test.event", func(ctx context.Context, e Event) error {
		count++
		return nil
	})

	bus.Publish(context.Background(), New("test.event", nil))
	unsubscribe()
	bus.Publish(context.Background(), New("test.event", nil))

	if count != 1 {
		t.Errorf("handler invoked %d times, want 1", count)
	}
	if got := bus.HandlerCount("test.event"); got != 0 {
		t.Errorf("HandlerCount after unsubscribe = %d, want 0", got)
	}
}

func TestNewEventHasIDAndTimestamp(t *testing.T) {
	event := New("test.event", map[string]any{"k": "v"})
	if event.ID == "" {
		t.Error("event ID is empty")
	}
	if event.Timestamp.IsZero() {
		t.Error("event timestamp is zero")
	}
	if event.Type != "test.event" {
		t.Errorf("event type = %q, want %q", event.Type, "test.event")
	}
}

func TestDataTypedExtraction(t *testing.T) {
	event := New("test.event", 42)
	if got, ok := Data[int](event); !ok || got != 42 {
		t.Errorf("Data[int] = %v, %v; want 42, true", got, ok)
	}
	if _, ok := Data[string](event); ok {
		t.Error("Data[string] on an int payload should report false")
	}
}
