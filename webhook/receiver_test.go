package webhook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/Abraxas-365/wahax/eventx"
)

func newTestApp(receiver *Receiver) *fiber.App {
	app := fiber.New()
	receiver.Mount(app, "/webhook/waha")
	return app
}

func postJSON(t *testing.T, app *fiber.App, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook/waha", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func TestHandleValidCallback(t *testing.T) {
	bus := eventx.NewBus()
	var received []InboundMessage
	bus.Subscribe(EventMessageReceived, func(ctx context.Context, event eventx.Event) error {
		message, _ := eventx.Data[InboundMessage](event)
		received = append(received, message)
		return nil
	})

	app := newTestApp(NewReceiver(bus))
	resp := postJSON(t, app, `{
		"sender": "+51999888777",
		"message": "hello there",
		"message_id": "ABC123",
		"session": "default",
		"timestamp": 1756600000
	}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if len(received) != 1 {
		t.Fatalf("got %d events, want 1", len(received))
	}
	message := received[0]
	if message.Sender != "+51999888777" || message.Message != "hello there" {
		t.Errorf("event payload = %+v", message)
	}
	if message.MessageID != "ABC123" || message.Session != "default" || message.Timestamp != 1756600000 {
		t.Errorf("event payload = %+v", message)
	}
}

func TestHandleAlternateFieldNames(t *testing.T) {
	bus := eventx.NewBus()
	var received []InboundMessage
	bus.Subscribe(EventMessageReceived, func(ctx context.Context, event eventx.Event) error {
		message, _ := eventx.Data[InboundMessage](event)
		received = append(received, message)
		return nil
	})

	app := newTestApp(NewReceiver(bus))
	resp := postJSON(t, app, `{"sender": "+51999888777", "body": "via body", "id": "XYZ"}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if len(received) != 1 {
		t.Fatalf("got %d events, want 1", len(received))
	}
	if received[0].Message != "via body" || received[0].MessageID != "XYZ" {
		t.Errorf("event payload = %+v", received[0])
	}
	if received[0].Timestamp == 0 {
		t.Error("timestamp should default to the receive time")
	}
}

func TestHandleRejectsMissingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing sender", body: `{"message": "hello"}`},
		{name: "missing text", body: `{"sender": "+51999888777"}`},
		{name: "empty object", body: `{}`},
		{name: "malformed json", body: `{not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := eventx.NewBus()
			events := 0
			bus.Subscribe(EventMessageReceived, func(ctx context.Context, event eventx.Event) error {
				events++
				return nil
			})

			app := newTestApp(NewReceiver(bus))
			resp := postJSON(t, app, tt.body)

			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			if events != 0 {
				t.Errorf("rejected payload must not publish events, got %d", events)
			}
		})
	}
}

func TestReceiverDisabledUntilMounted(t *testing.T) {
	receiver := NewReceiver(eventx.NewBus())
	if receiver.Enabled() {
		t.Error("receiver should start disabled")
	}
	receiver.Mount(fiber.New(), "/webhook/waha")
	if !receiver.Enabled() {
		t.Error("mounting should enable the receiver")
	}
}

func TestHandleDisabled(t *testing.T) {
	bus := eventx.NewBus()
	events := 0
	bus.Subscribe(EventMessageReceived, func(ctx context.Context, event eventx.Event) error {
		events++
		return nil
	})

	receiver := NewReceiver(bus)
	app := newTestApp(receiver)
	receiver.SetEnabled(false)

	resp := postJSON(t, app, `{"sender": "+51999888777", "message": "hello"}`)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
	if events != 0 {
		t.Errorf("disabled receiver must not publish events, got %d", events)
	}

	receiver.SetEnabled(true)
	resp = postJSON(t, app, `{"sender": "+51999888777", "message": "hello"}`)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status after re-enable = %d, want 200", resp.StatusCode)
	}
	if events != 1 {
		t.Errorf("re-enabled receiver should publish, got %d events", events)
	}
}
