package feed

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrFetchFailure covers network errors and non-2xx responses.
	ErrFetchFailure = errors.New("fetch failed")
	// ErrMalformedPayload means the body had no recognized article shape.
	ErrMalformedPayload = errors.New("malformed payload")
	ErrNotFound         = errors.New("not found")
	ErrUnauthorized     = errors.New("unauthorized")
)

// HTTPError is a non-2xx response. Message carries the server's own
// explanation when the body had one.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("HTTP error: %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() []error {
	errs := []error{ErrFetchFailure}
	switch e.StatusCode {
	case http.StatusNotFound:
		errs = append(errs, ErrNotFound)
	case http.StatusUnauthorized, http.StatusForbidden:
		errs = append(errs, ErrUnauthorized)
	}
	return errs
}

// ServerMessage returns the server-provided message from err, if any.
func ServerMessage(err error) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Message
	}
	return ""
}
