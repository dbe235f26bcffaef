package waha

import (
	"context"
	"time"

	"github.com/Abraxas-365/wahax/eventx"
	"github.com/Abraxas-365/wahax/logx"
)

const (
	// EventStatusChanged is emitted whenever the observed session state changes
	EventStatusChanged = "waha_status_changed"

	// EventQRChanged is emitted when the session starts asking for a QR scan
	EventQRChanged = "waha_qr_changed"
)

// StatusChange is the payload of an EventStatusChanged event
type StatusChange struct {
	Session  string `json:"session"`
	Previous string `json:"previous"`
	Status   string `json:"status"`
}

// StatusMonitor polls the WAHA session state and publishes a status-changed
// event whenever the value differs from the last observation. Poll failures
// map to StatusUnknown and never stop the loop.
type StatusMonitor struct {
	client   MessagingClient
	bus      *eventx.Bus
	interval time.Duration
	last     string
}

// NewStatusMonitor creates a monitor for the client's session
func NewStatusMonitor(client MessagingClient, bus *eventx.Bus, interval time.Duration) *StatusMonitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &StatusMonitor{
		client:   client,
		bus:      bus,
		interval: interval,
	}
}

// Run polls until the context is cancelled. The first poll happens
// immediately, so subscribers see an initial status event.
func (m *StatusMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.poll(ctx)
		}
	}
}

func (m *StatusMonitor) poll(ctx context.Context) {
	status, err := m.client.SessionStatus(ctx)
	if err != nil {
		logx.Warn("Failed to fetch session status for %s: %v", m.client.Session(), err)
		status = StatusUnknown
	}

	if status == m.last {
		return
	}

	change := StatusChange{
		Session:  m.client.Session(),
		Previous: m.last,
		Status:   status,
	}
	m.last = status

	logx.Info("Session %s status changed: %s -> %s", change.Session, change.Previous, change.Status)
	m.bus.Publish(ctx, eventx.New(EventStatusChanged, change))

	if status == SessionScanQR {
		m.bus.Publish(ctx, eventx.New(EventQRChanged, change))
	}
}
