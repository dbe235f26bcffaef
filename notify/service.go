package notify

import (
	"context"
	"net/http"
	"strings"

	"github.com/Abraxas-365/wahax/asyncx"
	"github.com/Abraxas-365/wahax/errx"
	"github.com/Abraxas-365/wahax/logx"
	"github.com/Abraxas-365/wahax/phonex"
	"github.com/Abraxas-365/wahax/waha"
)

// Registry for notification errors
var Registry = errx.NewRegistry("NOTIFY")

var (
	// ErrEmptyMessage is returned when there is no text to deliver
	ErrEmptyMessage = Registry.Register("EMPTY_MESSAGE", errx.TypeValidation,
		http.StatusBadRequest, "Message text cannot be empty")

	// ErrNoRecipients is returned when neither explicit targets nor configured
	// defaults resolve to any recipient
	ErrNoRecipients = Registry.Register("NO_RECIPIENTS", errx.TypeValidation,
		http.StatusBadRequest, "No recipients configured for this notification")

	// ErrDeliveryFailed is returned when every recipient in a batch failed
	ErrDeliveryFailed = Registry.Register("DELIVERY_FAILED", errx.TypeExternal,
		http.StatusBadGateway, "Notification could not be delivered to any recipient")
)

// Failure records one recipient that could not be delivered to
type Failure struct {
	Recipient string `json:"recipient"`
	Reason    string `json:"reason"`
}

// Report summarizes a fan-out: which recipients were delivered to and which
// failed, with the reason per failure
type Report struct {
	Sent     []string  `json:"sent"`
	Failed   []string  `json:"failed"`
	Failures []Failure `json:"failures,omitempty"`
}

// Service delivers a notification message to one or more WhatsApp recipients
// through a WAHA client. Explicit targets override the configured defaults;
// delivery is best effort per recipient.
type Service struct {
	client   waha.MessagingClient
	defaults []string
}

// NewService creates a notification service. defaultRecipients are used when a
// send names no explicit targets.
func NewService(client waha.MessagingClient, defaultRecipients []string) *Service {
	return &Service{
		client:   client,
		defaults: defaultRecipients,
	}
}

// Send fans a message out to the targets, or to the default recipients when no
// targets are given. Every recipient is attempted regardless of earlier
// failures; the report lists both outcomes. An error is returned only when
// resolution fails or nothing could be delivered at all.
func (s *Service) Send(ctx context.Context, message string, targets ...string) (*Report, error) {
	if strings.TrimSpace(message) == "" {
		return nil, Registry.New(ErrEmptyMessage)
	}

	recipients := targets
	if len(recipients) == 0 {
		recipients = s.defaults
	}
	if len(recipients) == 0 {
		return nil, Registry.New(ErrNoRecipients)
	}

	outcomes := asyncx.SettleAll(ctx, recipients,
		func(ctx context.Context, recipient string) (*waha.SendReceipt, error) {
			normalized, err := phonex.Normalize(recipient)
			if err != nil {
				return nil, err
			}
			return s.client.SendText(ctx, normalized, message)
		})

	report := &Report{}
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			logx.Warn("Failed to deliver to %s: %v", outcome.Item, outcome.Err)
			report.Failed = append(report.Failed, outcome.Item)
			report.Failures = append(report.Failures, Failure{
				Recipient: outcome.Item,
				Reason:    outcome.Err.Error(),
			})
			continue
		}
		report.Sent = append(report.Sent, outcome.Item)
	}

	if len(report.Sent) == 0 {
		return report, Registry.New(ErrDeliveryFailed).
			WithDetail("recipients", len(recipients))
	}

	logx.Info("Notification delivered to %d/%d recipients", len(report.Sent), len(recipients))
	return report, nil
}

// SendDirect sends a message to a single phone number, bypassing the default
// recipient list
func (s *Service) SendDirect(ctx context.Context, phone, message string) (*waha.SendReceipt, error) {
	if strings.TrimSpace(message) == "" {
		return nil, Registry.New(ErrEmptyMessage)
	}

	normalized, err := phonex.Normalize(phone)
	if err != nil {
		return nil, err
	}
	return s.client.SendText(ctx, normalized, message)
}
