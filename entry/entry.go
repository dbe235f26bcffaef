package entry

import (
	"net/http"
	"strings"
	"time"

	"github.com/Abraxas-365/wahax/errx"
	"github.com/Abraxas-365/wahax/storex"
)

// ConfigEntry is one configured WAHA server connection plus its notification
// options. Entries are what the store persists; everything else is derived.
type ConfigEntry struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	BaseURL           string    `json:"base_url"`
	APIKey            string    `json:"api_key,omitempty"`
	SessionName       string    `json:"session_name"`
	DefaultRecipients []string  `json:"default_recipients,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Store persists config entries
type Store = storex.Repository[ConfigEntry]

func entryID(e ConfigEntry) string { return e.ID }

// NewMemoryStore creates a non-persistent entry store
func NewMemoryStore() Store {
	return storex.NewTypedMemory(entryID)
}

// NewFileStore creates an entry store backed by a JSON file
func NewFileStore(path string) (Store, error) {
	return storex.NewTypedFile(path, entryID)
}

// Registry for setup and options flow errors
var Registry = errx.NewRegistry("SETUP")

var (
	ErrCannotConnect = Registry.Register("CANNOT_CONNECT", errx.TypeExternal,
		http.StatusBadGateway, "Failed to connect to WAHA server")

	ErrInvalidAuth = Registry.Register("INVALID_AUTH", errx.TypeAuthorization,
		http.StatusUnauthorized, "Authentication failed")

	ErrUnknown = Registry.Register("UNKNOWN", errx.TypeInternal,
		http.StatusInternalServerError, "Unexpected error")

	ErrAlreadyConfigured = Registry.Register("ALREADY_CONFIGURED", errx.TypeConflict,
		http.StatusConflict, "This WAHA server is already configured")

	ErrInvalidFormat = Registry.Register("INVALID_FORMAT", errx.TypeValidation,
		http.StatusBadRequest, "Invalid phone number format")
)

// Form error keys, stable identifiers a UI can translate on
const (
	FormKeyCannotConnect     = "cannot_connect"
	FormKeyInvalidAuth       = "invalid_auth"
	FormKeyUnknown           = "unknown"
	FormKeyAlreadyConfigured = "already_configured"
	FormKeyInvalidFormat     = "invalid_format"
)

// FormKey maps a flow error to its form error key. Errors from outside the
// flow taxonomy map to "unknown".
func FormKey(err error) string {
	switch {
	case errx.IsCode(err, ErrCannotConnect):
		return FormKeyCannotConnect
	case errx.IsCode(err, ErrInvalidAuth):
		return FormKeyInvalidAuth
	case errx.IsCode(err, ErrAlreadyConfigured):
		return FormKeyAlreadyConfigured
	case errx.IsCode(err, ErrInvalidFormat):
		return FormKeyInvalidFormat
	default:
		return FormKeyUnknown
	}
}

// canonicalBaseURL is the duplicate-detection key for a server address:
// trailing slashes and case differences in the scheme/host do not make two
// entries distinct
func canonicalBaseURL(baseURL string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
}
