package phonex

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/Abraxas-365/wahax/errx"
)

// Registry for phone number errors
var Registry = errx.NewRegistry("PHONE")

var (
	ErrInvalidNumber = Registry.Register("INVALID_NUMBER", errx.TypeValidation,
		http.StatusBadRequest, "Invalid phone number format")
)

// internationalFormat is what WAHA expects: '+' followed by country code and
// subscriber number, 7 to 15 digits, no separators.
var internationalFormat = regexp.MustCompile(`^\+[0-9]{7,15}$`)

// separatorReplacer strips the separators people commonly type into phone
// numbers before validation.
var separatorReplacer = strings.NewReplacer(
	" ", "",
	"\t", "",
	"-", "",
	".", "",
	"(", "",
	")", "",
)

// Normalize validates and reformats a raw phone number into the international
// format WAHA expects. It strips whitespace, dashes, dots and parentheses; the
// result must be '+' followed by 7-15 digits. Normalize is pure and
// idempotent: normalizing an already normalized number returns it unchanged.
func Normalize(raw string) (string, error) {
	cleaned := separatorReplacer.Replace(strings.TrimSpace(raw))

	if !internationalFormat.MatchString(cleaned) {
		return "", Registry.New(ErrInvalidNumber).
			WithDetail("phone_number", raw).
			WithDetail("cleaned", cleaned)
	}

	return cleaned, nil
}

// IsValid reports whether a raw phone number normalizes successfully
func IsValid(raw string) bool {
	_, err := Normalize(raw)
	return err == nil
}

// NormalizeAll normalizes a list of raw phone numbers, failing on the first
// invalid one
func NormalizeAll(raw []string) ([]string, error) {
	normalized := make([]string, 0, len(raw))
	for _, number := range raw {
		cleaned, err := Normalize(number)
		if err != nil {
			return nil, err
		}
		normalized = append(normalized, cleaned)
	}
	return normalized, nil
}

// SplitList splits a comma-separated recipient list into trimmed, non-empty
// entries. Used by the setup flow where recipients arrive as a single string.
func SplitList(list string) []string {
	parts := strings.Split(list, ",")
	numbers := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			numbers = append(numbers, trimmed)
		}
	}
	return numbers
}
