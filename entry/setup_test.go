package entry

import (
	"context"
	"testing"
	"time"

	"github.com/Abraxas-365/wahax/storex"
	"github.com/Abraxas-365/wahax/waha"
)

type fakeConnClient struct {
	err    error
	probes int
}

func (f *fakeConnClient) SendText(ctx context.Context, chatID, text string) (*waha.SendReceipt, error) {
	return &waha.SendReceipt{ChatID: chatID, Timestamp: time.Now()}, nil
}

func (f *fakeConnClient) CheckConnection(ctx context.Context) error {
	f.probes++
	return f.err
}

func (f *fakeConnClient) SessionStatus(ctx context.Context) (string, error) {
	return waha.SessionWorking, nil
}

func (f *fakeConnClient) RegisterWebhook(ctx context.Context, url string) error { return nil }
func (f *fakeConnClient) Session() string                                       { return "default" }

func fixedFactory(client *fakeConnClient) ClientFactory {
	return func(waha.Config) waha.MessagingClient { return client }
}

func TestSubmitSuccess(t *testing.T) {
	store := NewMemoryStore()
	client := &fakeConnClient{}
	flow := NewSetupFlow(store, fixedFactory(client))

	created, err := flow.Submit(context.Background(), SetupInput{
		BaseURL:    "http://waha:3000",
		APIKey:     "secret",
		Recipients: "+51 999 888 777, +14155550100",
	})
	if err != nil {
		t.Fatalf("Submit unexpected error: %v", err)
	}

	if client.probes != 1 {
		t.Errorf("connectivity probes = %d, want 1", client.probes)
	}
	if created.ID == "" || created.Title != "WAHA waha:3000" {
		t.Errorf("created = %+v", created)
	}
	if created.SessionName != "default" {
		t.Errorf("SessionName = %q, want default", created.SessionName)
	}
	want := []string{"+51999888777", "+14155550100"}
	if len(created.DefaultRecipients) != 2 ||
		created.DefaultRecipients[0] != want[0] || created.DefaultRecipients[1] != want[1] {
		t.Errorf("DefaultRecipients = %v, want %v", created.DefaultRecipients, want)
	}

	stored, err := store.FindByID(context.Background(), created.ID)
	if err != nil || stored.BaseURL != "http://waha:3000" {
		t.Errorf("stored entry = %+v, %v", stored, err)
	}
}

func TestSubmitInvalidBaseURL(t *testing.T) {
	store := NewMemoryStore()
	flow := NewSetupFlow(store, fixedFactory(&fakeConnClient{}))

	_, err := flow.Submit(context.Background(), SetupInput{BaseURL: "not a url"})
	if FormKey(err) != FormKeyInvalidFormat {
		t.Errorf("form key = %q, want %q (err=%v)", FormKey(err), FormKeyInvalidFormat, err)
	}
	assertStoreEmpty(t, store)
}

func TestSubmitInvalidRecipients(t *testing.T) {
	store := NewMemoryStore()
	flow := NewSetupFlow(store, fixedFactory(&fakeConnClient{}))

	_, err := flow.Submit(context.Background(), SetupInput{
		BaseURL:    "http://waha:3000",
		Recipients: "+51999888777, 12345",
	})
	if FormKey(err) != FormKeyInvalidFormat {
		t.Errorf("form key = %q, want %q (err=%v)", FormKey(err), FormKeyInvalidFormat, err)
	}
	assertStoreEmpty(t, store)
}

func TestSubmitAlreadyConfigured(t *testing.T) {
	store := NewMemoryStore()
	flow := NewSetupFlow(store, fixedFactory(&fakeConnClient{}))

	if _, err := flow.Submit(context.Background(), SetupInput{BaseURL: "http://waha:3000"}); err != nil {
		t.Fatalf("first Submit: %v", err)
	}

	// Trailing slash and scheme case must not evade duplicate detection
	_, err := flow.Submit(context.Background(), SetupInput{BaseURL: "HTTP://waha:3000/"})
	if FormKey(err) != FormKeyAlreadyConfigured {
		t.Errorf("form key = %q, want %q (err=%v)", FormKey(err), FormKeyAlreadyConfigured, err)
	}

	entries, _ := store.List(context.Background())
	if len(entries) != 1 {
		t.Errorf("store has %d entries, want 1", len(entries))
	}
}

func TestSubmitConnectionFailures(t *testing.T) {
	tests := []struct {
		name     string
		probeErr error
		wantKey  string
	}{
		{
			name:     "unreachable",
			probeErr: waha.Registry.New(waha.ErrCannotConnect),
			wantKey:  FormKeyCannotConnect,
		},
		{
			name:     "bad credentials",
			probeErr: waha.Registry.New(waha.ErrInvalidAuth),
			wantKey:  FormKeyInvalidAuth,
		},
		{
			name:     "server error",
			probeErr: waha.Registry.New(waha.ErrUnknown),
			wantKey:  FormKeyUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore()
			flow := NewSetupFlow(store, fixedFactory(&fakeConnClient{err: tt.probeErr}))

			_, err := flow.Submit(context.Background(), SetupInput{BaseURL: "http://waha:3000"})
			if FormKey(err) != tt.wantKey {
				t.Errorf("form key = %q, want %q (err=%v)", FormKey(err), tt.wantKey, err)
			}
			assertStoreEmpty(t, store)
		})
	}
}

func TestUpdateOptions(t *testing.T) {
	store := NewMemoryStore()
	setup := NewSetupFlow(store, fixedFactory(&fakeConnClient{}))
	created, err := setup.Submit(context.Background(), SetupInput{
		BaseURL:    "http://waha:3000",
		Recipients: "+51999888777",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	options := NewOptionsFlow(store)
	updated, err := options.UpdateOptions(context.Background(), created.ID, OptionsInput{
		Recipients:  "+14155550100",
		SessionName: "second",
	})
	if err != nil {
		t.Fatalf("UpdateOptions unexpected error: %v", err)
	}

	if len(updated.DefaultRecipients) != 1 || updated.DefaultRecipients[0] != "+14155550100" {
		t.Errorf("DefaultRecipients = %v", updated.DefaultRecipients)
	}
	if updated.SessionName != "second" {
		t.Errorf("SessionName = %q, want second", updated.SessionName)
	}
	if updated.BaseURL != created.BaseURL || updated.ID != created.ID {
		t.Errorf("connection settings changed: %+v", updated)
	}
}

func TestUpdateOptionsInvalidRecipients(t *testing.T) {
	store := NewMemoryStore()
	setup := NewSetupFlow(store, fixedFactory(&fakeConnClient{}))
	created, _ := setup.Submit(context.Background(), SetupInput{
		BaseURL:    "http://waha:3000",
		Recipients: "+51999888777",
	})

	options := NewOptionsFlow(store)
	_, err := options.UpdateOptions(context.Background(), created.ID, OptionsInput{Recipients: "nope"})
	if FormKey(err) != FormKeyInvalidFormat {
		t.Errorf("form key = %q, want %q", FormKey(err), FormKeyInvalidFormat)
	}

	// The stored entry is untouched on failure
	stored, _ := store.FindByID(context.Background(), created.ID)
	if len(stored.DefaultRecipients) != 1 || stored.DefaultRecipients[0] != "+51999888777" {
		t.Errorf("stored recipients = %v", stored.DefaultRecipients)
	}
}

func TestUpdateOptionsUnknownEntry(t *testing.T) {
	options := NewOptionsFlow(NewMemoryStore())
	_, err := options.UpdateOptions(context.Background(), "missing", OptionsInput{})
	if !storex.IsRecordNotFound(err) {
		t.Errorf("error = %v, want record not found", err)
	}
}

func assertStoreEmpty(t *testing.T, store Store) {
	t.Helper()
	entries, _ := store.List(context.Background())
	if len(entries) != 0 {
		t.Errorf("store has %d entries, want 0 after a failed flow", len(entries))
	}
}
