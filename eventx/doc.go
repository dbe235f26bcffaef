// Package eventx provides a small in-memory event system.
//
// Events carry a generated ID, a type string and an arbitrary payload; the
// Bus delivers them synchronously to subscribers in subscription order.
//
// Basic usage:
//
//	bus := eventx.NewBus()
//
//	// Subscribe to inbound messages
//	unsubscribe := bus.Subscribe(webhook.EventMessageReceived, func(ctx context.Context, e eventx.Event) error {
//		msg, _ := eventx.Data[webhook.InboundMessage](e)
//		log.Printf("message from %s: %s", msg.Sender, msg.Message)
//		return nil
//	})
//	defer unsubscribe()
//
//	// Publish events
//	bus.Publish(ctx, eventx.New("waha_message_received", msg))
package eventx
