package entry

import (
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/Abraxas-365/wahax/errx"
	"github.com/Abraxas-365/wahax/logx"
	"github.com/Abraxas-365/wahax/phonex"
	"github.com/Abraxas-365/wahax/validatex"
	"github.com/Abraxas-365/wahax/waha"
)

// ClientFactory builds a messaging client for a connection config. Injected so
// flow tests can substitute fakes for a live server.
type ClientFactory func(waha.Config) waha.MessagingClient

func defaultClientFactory(config waha.Config) waha.MessagingClient {
	return waha.NewClient(config)
}

// SetupInput is what a user submits to configure a new WAHA server
type SetupInput struct {
	Title       string `json:"title"`
	BaseURL     string `json:"base_url" validatex:"required,url"`
	APIKey      string `json:"api_key"`
	SessionName string `json:"session_name" validatex:"max=64"`

	// Recipients is a comma-separated list of default notification targets
	Recipients string `json:"recipients"`
}

// SetupFlow validates a new server connection end to end before anything is
// persisted: input format, duplicate detection, then a live connectivity
// probe. A failure at any step leaves the store untouched.
type SetupFlow struct {
	store     Store
	newClient ClientFactory
}

// NewSetupFlow creates a setup flow over a store. A nil factory uses real
// HTTP clients.
func NewSetupFlow(store Store, factory ClientFactory) *SetupFlow {
	if factory == nil {
		factory = defaultClientFactory
	}
	return &SetupFlow{store: store, newClient: factory}
}

// Submit runs the full setup flow and persists the entry on success. On
// failure the returned error carries a form key via FormKey.
func (f *SetupFlow) Submit(ctx context.Context, input SetupInput) (*ConfigEntry, error) {
	if err := validatex.Validate(input); err != nil {
		return nil, Registry.NewWithCause(ErrInvalidFormat, err).
			WithDetail("field", "base_url")
	}

	recipients, err := phonex.NormalizeAll(phonex.SplitList(input.Recipients))
	if err != nil {
		return nil, Registry.NewWithCause(ErrInvalidFormat, err)
	}

	canonical := canonicalBaseURL(input.BaseURL)
	_, err = f.store.FindOne(ctx, func(e ConfigEntry) bool {
		return canonicalBaseURL(e.BaseURL) == canonical
	})
	if err == nil {
		return nil, Registry.New(ErrAlreadyConfigured).
			WithDetail("base_url", input.BaseURL)
	}

	sessionName := input.SessionName
	if sessionName == "" {
		sessionName = "default"
	}

	client := f.newClient(waha.Config{
		BaseURL:     input.BaseURL,
		APIKey:      input.APIKey,
		SessionName: sessionName,
	})
	if err := client.CheckConnection(ctx); err != nil {
		logx.Warn("Setup connectivity check failed for %s: %v", input.BaseURL, err)
		return nil, connectionError(err)
	}

	now := time.Now()
	configEntry := ConfigEntry{
		ID:                uuid.New().String(),
		Title:             entryTitle(input),
		BaseURL:           input.BaseURL,
		APIKey:            input.APIKey,
		SessionName:       sessionName,
		DefaultRecipients: recipients,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	created, err := f.store.Create(ctx, configEntry)
	if err != nil {
		return nil, Registry.NewWithCause(ErrUnknown, err)
	}

	logx.Info("Configured WAHA server %s (%s)", created.Title, created.BaseURL)
	return &created, nil
}

// connectionError translates a client error into the flow taxonomy
func connectionError(err error) error {
	switch {
	case errx.IsCode(err, waha.ErrCannotConnect):
		return Registry.NewWithCause(ErrCannotConnect, err)
	case errx.IsCode(err, waha.ErrInvalidAuth):
		return Registry.NewWithCause(ErrInvalidAuth, err)
	default:
		return Registry.NewWithCause(ErrUnknown, err)
	}
}

// entryTitle derives a display title when the user leaves it blank
func entryTitle(input SetupInput) string {
	if input.Title != "" {
		return input.Title
	}
	if parsed, err := url.Parse(input.BaseURL); err == nil && parsed.Host != "" {
		return "WAHA " + parsed.Host
	}
	return "WAHA"
}
