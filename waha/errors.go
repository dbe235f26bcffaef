package waha

import (
	"io"
	"net/http"

	"github.com/Abraxas-365/wahax/errx"
)

// Registry for WAHA client errors
var Registry = errx.NewRegistry("WAHA")

var (
	// ErrCannotConnect covers transport failures and timeouts
	ErrCannotConnect = Registry.Register("CANNOT_CONNECT", errx.TypeExternal,
		http.StatusBadGateway, "Failed to connect to WAHA server")

	// ErrInvalidAuth covers rejected credentials (HTTP 401/403)
	ErrInvalidAuth = Registry.Register("INVALID_AUTH", errx.TypeAuthorization,
		http.StatusUnauthorized, "Authentication failed")

	// ErrRateLimited covers HTTP 429 responses from the server
	ErrRateLimited = Registry.Register("RATE_LIMITED", errx.TypeRateLimit,
		http.StatusTooManyRequests, "WAHA rate limit exceeded")

	// ErrUnknown covers every other non-2xx response or malformed body
	ErrUnknown = Registry.Register("UNKNOWN", errx.TypeInternal,
		http.StatusBadGateway, "Unexpected error")
)

// transportError maps a failed HTTP round trip to ErrCannotConnect. Timeouts
// land here too: an unreachable server and a server that never answers are the
// same failure to the caller.
func (c *Client) transportError(operation string, err error) error {
	return Registry.NewWithCause(ErrCannotConnect, err).
		WithDetail("operation", operation).
		WithDetail("base_url", c.config.BaseURL)
}

// statusError maps a non-2xx response to the error taxonomy
func (c *Client) statusError(operation string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var code errx.Code
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		code = ErrInvalidAuth
	case http.StatusTooManyRequests:
		code = ErrRateLimited
	default:
		code = ErrUnknown
	}

	return Registry.New(code).
		WithDetail("operation", operation).
		WithDetail("http_status", resp.StatusCode).
		WithDetail("response_body", string(body))
}
