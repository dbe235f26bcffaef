package eventx

import (
	"context"
	"sync"

	"github.com/Abraxas-365/wahax/logx"
)

// Handler processes a published event. A handler error is logged and does not
// stop delivery to the remaining subscribers.
type Handler func(ctx context.Context, event Event) error

type subscription struct {
	id      int
	handler Handler
}

// Bus is an in-memory publish/subscribe event bus. Delivery is synchronous on
// the publisher's goroutine, in subscription order per event type.
type Bus struct {
	mutex    sync.RWMutex
	nextID   int
	handlers map[string][]subscription
}

// NewBus creates a new in-memory event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string][]subscription),
	}
}

// Subscribe registers a handler for an event type and returns a function that
// removes the subscription
func (b *Bus) Subscribe(eventType string, handler Handler) func() {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, handler: handler})

	return func() {
		b.mutex.Lock()
		defer b.mutex.Unlock()

		subs := b.handlers[eventType]
		for i, sub := range subs {
			if sub.id == id {
				b.handlers[eventType] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		if len(b.handlers[eventType]) == 0 {
			delete(b.handlers, eventType)
		}
	}
}

// Publish delivers an event to every subscriber of its type. Handler failures
// are logged and skipped so one subscriber cannot starve the others.
func (b *Bus) Publish(ctx context.Context, event Event) {
	b.mutex.RLock()
	subs := make([]subscription, len(b.handlers[event.Type]))
	copy(subs, b.handlers[event.Type])
	b.mutex.RUnlock()

	for _, sub := range subs {
		if err := sub.handler(ctx, event); err != nil {
			logx.Error("Event handler failed for %s (event %s): %v", event.Type, event.ID, err)
		}
	}
}

// HandlerCount returns the number of handlers for an event type
func (b *Bus) HandlerCount(eventType string) int {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return len(b.handlers[eventType])
}

// EventTypes returns all event types with at least one subscriber
func (b *Bus) EventTypes() []string {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	types := make([]string, 0, len(b.handlers))
	for eventType := range b.handlers {
		types = append(types, eventType)
	}
	return types
}
