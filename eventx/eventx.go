package eventx

import (
	"time"

	"github.com/google/uuid"
)

// Event is a platform event emitted by the integration, e.g. an inbound
// WhatsApp message or a session status change.
type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Source    string         `json:"source,omitempty"`
	Payload   any            `json:"payload"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// EventOptions configure event creation
type EventOptions struct {
	Source   string
	Metadata map[string]any
}

// New creates a new event with a generated ID and the current timestamp
func New(eventType string, payload any, opts ...EventOptions) Event {
	event := Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	}
	if len(opts) > 0 {
		event.Source = opts[0].Source
		event.Metadata = opts[0].Metadata
	}
	return event
}

// Data extracts a typed payload from an event
func Data[T any](event Event) (T, bool) {
	data, ok := event.Payload.(T)
	return data, ok
}
