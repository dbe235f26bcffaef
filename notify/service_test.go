package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Abraxas-365/wahax/errx"
	"github.com/Abraxas-365/wahax/phonex"
	"github.com/Abraxas-365/wahax/waha"
)

type recordingClient struct {
	mutex sync.Mutex
	sent  map[string]string // chatID -> text
	fail  map[string]error  // chatID -> forced error
}

func newRecordingClient() *recordingClient {
	return &recordingClient{
		sent: make(map[string]string),
		fail: make(map[string]error),
	}
}

func (r *recordingClient) SendText(ctx context.Context, chatID, text string) (*waha.SendReceipt, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if err, ok := r.fail[chatID]; ok {
		return nil, err
	}
	r.sent[chatID] = text
	return &waha.SendReceipt{ChatID: chatID, MessageID: "msg-1", Timestamp: time.Now()}, nil
}

func (r *recordingClient) CheckConnection(ctx context.Context) error              { return nil }
func (r *recordingClient) SessionStatus(ctx context.Context) (string, error)     { return waha.SessionWorking, nil }
func (r *recordingClient) RegisterWebhook(ctx context.Context, url string) error { return nil }
func (r *recordingClient) Session() string                                       { return "default" }

func TestSendToDefaults(t *testing.T) {
	client := newRecordingClient()
	service := NewService(client, []string{"+51 999 888 777", "+14155550100"})

	report, err := service.Send(context.Background(), "door opened")
	if err != nil {
		t.Fatalf("Send unexpected error: %v", err)
	}

	if len(report.Sent) != 2 || len(report.Failed) != 0 {
		t.Fatalf("report = %+v, want 2 sent 0 failed", report)
	}
	if text := client.sent["+51999888777"]; text != "door opened" {
		t.Errorf("normalized default recipient not delivered, sent = %v", client.sent)
	}
	if _, ok := client.sent["+14155550100"]; !ok {
		t.Errorf("second default recipient not delivered, sent = %v", client.sent)
	}
}

func TestSendTargetsOverrideDefaults(t *testing.T) {
	client := newRecordingClient()
	service := NewService(client, []string{"+51999888777"})

	report, err := service.Send(context.Background(), "hello", "+14155550100")
	if err != nil {
		t.Fatalf("Send unexpected error: %v", err)
	}

	if len(client.sent) != 1 {
		t.Fatalf("expected exactly one delivery, sent = %v", client.sent)
	}
	if _, ok := client.sent["+51999888777"]; ok {
		t.Error("default recipient should not receive a targeted send")
	}
	if len(report.Sent) != 1 || report.Sent[0] != "+14155550100" {
		t.Errorf("report.Sent = %v", report.Sent)
	}
}

func TestSendEmptyMessage(t *testing.T) {
	client := newRecordingClient()
	service := NewService(client, []string{"+51999888777"})

	_, err := service.Send(context.Background(), "   ")
	if !errx.IsCode(err, ErrEmptyMessage) {
		t.Errorf("error = %v, want code %s", err, ErrEmptyMessage)
	}
	if len(client.sent) != 0 {
		t.Errorf("nothing should be sent for an empty message, sent = %v", client.sent)
	}
}

func TestSendNoRecipients(t *testing.T) {
	client := newRecordingClient()
	service := NewService(client, nil)

	_, err := service.Send(context.Background(), "hello")
	if !errx.IsCode(err, ErrNoRecipients) {
		t.Errorf("error = %v, want code %s", err, ErrNoRecipients)
	}
	if len(client.sent) != 0 {
		t.Errorf("nothing should be sent without recipients, sent = %v", client.sent)
	}
}

func TestSendBestEffort(t *testing.T) {
	client := newRecordingClient()
	client.fail["+51999888777"] = waha.Registry.New(waha.ErrCannotConnect)
	service := NewService(client, nil)

	report, err := service.Send(context.Background(), "hi", "+51999888777", "+14155550100", "not-a-number")
	if err != nil {
		t.Fatalf("Send unexpected error: %v", err)
	}

	if len(report.Sent) != 1 || report.Sent[0] != "+14155550100" {
		t.Errorf("report.Sent = %v, want only +14155550100", report.Sent)
	}
	if len(report.Failed) != 2 {
		t.Errorf("report.Failed = %v, want two failures", report.Failed)
	}
	if len(report.Failures) != 2 {
		t.Errorf("report.Failures = %+v", report.Failures)
	}
}

func TestSendInvalidRecipientDoesNotReachClient(t *testing.T) {
	client := newRecordingClient()
	service := NewService(client, nil)

	report, err := service.Send(context.Background(), "hi", "12345", "+14155550100")
	if err != nil {
		t.Fatalf("Send unexpected error: %v", err)
	}
	if _, ok := client.sent["12345"]; ok {
		t.Errorf("invalid number should fail before the client, sent = %v", client.sent)
	}
	if len(report.Failed) != 1 || report.Failed[0] != "12345" {
		t.Errorf("report.Failed = %v", report.Failed)
	}
}

func TestSendAllRecipientsFailed(t *testing.T) {
	client := newRecordingClient()
	client.fail["+51999888777"] = waha.Registry.New(waha.ErrCannotConnect)
	client.fail["+14155550100"] = waha.Registry.New(waha.ErrCannotConnect)
	service := NewService(client, nil)

	report, err := service.Send(context.Background(), "hi", "+51999888777", "+14155550100")
	if !errx.IsCode(err, ErrDeliveryFailed) {
		t.Errorf("error = %v, want code %s", err, ErrDeliveryFailed)
	}
	if report == nil || len(report.Failed) != 2 || len(report.Sent) != 0 {
		t.Errorf("report = %+v, want 2 failed 0 sent", report)
	}
}

func TestSendDirect(t *testing.T) {
	client := newRecordingClient()
	service := NewService(client, []string{"+51999888777"})

	receipt, err := service.SendDirect(context.Background(), "+1 (415) 555-0100", "ping")
	if err != nil {
		t.Fatalf("SendDirect unexpected error: %v", err)
	}
	if receipt.ChatID != "+14155550100" {
		t.Errorf("receipt.ChatID = %q, want normalized number", receipt.ChatID)
	}

	_, err = service.SendDirect(context.Background(), "bogus", "ping")
	if !errx.IsCode(err, phonex.ErrInvalidNumber) {
		t.Errorf("error = %v, want code %s", err, phonex.ErrInvalidNumber)
	}
}
