/*
Package errx provides structured error handling for the wahax packages.
It supports typed errors with codes, details, HTTP status mapping, error
wrapping, and renderers for both standard net/http and Fiber.

# Error Registry

Each package defines its own registry with prefixed error codes:

	// Registry for WAHA client errors
	wahaErrors := errx.NewRegistry("WAHA")

	ErrCannotConnect := wahaErrors.Register("CANNOT_CONNECT", errx.TypeExternal,
		http.StatusBadGateway, "Failed to connect to WAHA server")

	// Create instances of registered errors
	err := wahaErrors.New(ErrCannotConnect)

	// Create with custom message
	err := wahaErrors.NewWithMessage(ErrCannotConnect, "WAHA unreachable at http://waha:3000")

# Adding Details

Provide additional context with details:

	err := wahaErrors.New(ErrCannotConnect).
		WithDetail("base_url", baseURL).
		WithDetail("operation", "send_text")

# Error Wrapping

Wrap transport errors to add context while preserving the original cause:

	err := wahaErrors.NewWithCause(ErrCannotConnect, dialErr)

	// The original error stays reachable through errors.As / errors.Is

# HTTP Integration

Return structured errors from handlers:

	// Using Fiber
	func sendHandler(c *fiber.Ctx) error {
		if err := svc.Send(c.Context(), msg); err != nil {
			var xerr *errx.Error
			if errors.As(err, &xerr) {
				return xerr.ToFiber(c)
			}
			return errx.Wrap(err, "Internal server error", errx.TypeInternal).ToFiber(c)
		}
		return c.SendStatus(fiber.StatusOK)
	}

# Error Checking

	if errx.IsCode(err, waha.ErrInvalidAuth) {
		// rejected credentials
	}

	if errx.IsType(err, errx.TypeExternal) {
		// WAHA-side failure
	}
*/
package errx
