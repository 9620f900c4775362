package metoffice

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAPIKey is returned when neither the caller nor the key store supplies a key.
	ErrNoAPIKey = errors.New("no API key provided")
	// ErrUnauthorized is returned for HTTP 401 responses.
	ErrUnauthorized = errors.New("unauthorized, invalid API key?")
)

// APIError carries a non-200 upstream status and its body for diagnostics.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: status %d; body %s", e.StatusCode, e.Body)
}
