package webhook

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Abraxas-365/wahax/errx"
	"github.com/Abraxas-365/wahax/eventx"
	"github.com/Abraxas-365/wahax/logx"
)

// EventMessageReceived is emitted for every accepted inbound message
const EventMessageReceived = "waha_message_received"

// Registry for webhook errors
var Registry = errx.NewRegistry("WEBHOOK")

var (
	ErrInvalidPayload = Registry.Register("INVALID_PAYLOAD", errx.TypeBadRequest,
		http.StatusBadRequest, "Webhook payload is missing required fields")

	ErrDisabled = Registry.Register("DISABLED", errx.TypeUnavailable,
		http.StatusServiceUnavailable, "Webhook receiver is disabled")
)

// InboundMessage is the payload of an EventMessageReceived event
type InboundMessage struct {
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp,omitempty"`
	Session   string `json:"session,omitempty"`
	MessageID string `json:"message_id,omitempty"`
}

// inboundPayload tolerates the field-name drift between WAHA versions: the
// text arrives as either "message" or "body", the id as "message_id" or "id".
type inboundPayload struct {
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Body      string `json:"body"`
	MessageID string `json:"message_id"`
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"`
	Session   string `json:"session"`
}

func (p inboundPayload) text() string {
	if p.Message != "" {
		return p.Message
	}
	return p.Body
}

func (p inboundPayload) messageID() string {
	if p.MessageID != "" {
		return p.MessageID
	}
	return p.ID
}

// Receiver accepts inbound message callbacks from a WAHA server and republishes
// them as events. Malformed callbacks are rejected without emitting anything.
type Receiver struct {
	bus     *eventx.Bus
	enabled atomic.Bool
}

// NewReceiver creates a webhook receiver publishing to bus. The receiver
// stays disabled until it is mounted on an app.
func NewReceiver(bus *eventx.Bus) *Receiver {
	return &Receiver{bus: bus}
}

// SetEnabled toggles callback acceptance. While disabled the endpoint answers
// 503 and publishes nothing.
func (r *Receiver) SetEnabled(enabled bool) {
	r.enabled.Store(enabled)
}

// Enabled reports whether callbacks are currently accepted
func (r *Receiver) Enabled() bool {
	return r.enabled.Load()
}

// Mount registers the callback route on a Fiber app and enables the receiver
func (r *Receiver) Mount(app *fiber.App, path string) {
	app.Post(path, r.Handle)
	r.enabled.Store(true)
}

// Handle is the Fiber handler for one WAHA callback
func (r *Receiver) Handle(c *fiber.Ctx) error {
	if !r.enabled.Load() {
		return Registry.New(ErrDisabled).ToFiber(c)
	}

	var payload inboundPayload
	if err := c.BodyParser(&payload); err != nil {
		logx.Warn("Webhook payload rejected: %v", err)
		return Registry.NewWithCause(ErrInvalidPayload, err).ToFiber(c)
	}

	text := payload.text()
	if payload.Sender == "" || text == "" {
		logx.Warn("Webhook payload rejected: missing sender or message text")
		return Registry.New(ErrInvalidPayload).
			WithDetail("sender_present", payload.Sender != "").
			WithDetail("message_present", text != "").
			ToFiber(c)
	}

	timestamp := payload.Timestamp
	if timestamp == 0 {
		timestamp = time.Now().Unix()
	}

	message := InboundMessage{
		Sender:    payload.Sender,
		Message:   text,
		Timestamp: timestamp,
		Session:   payload.Session,
		MessageID: payload.messageID(),
	}

	logx.Debug("Inbound message from %s (session=%s)", message.Sender, message.Session)
	r.bus.Publish(c.UserContext(), eventx.New(EventMessageReceived, message))

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "received"})
}
