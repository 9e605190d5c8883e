package mailerlite

import (
	"errors"
	"fmt"
)

// Sentinel errors for lookups that came back empty. Callers treat these as
// normal control flow, not failures.
var (
	ErrSubscriberNotFound = errors.New("subscriber not found")
	ErrGroupNotFound      = errors.New("group not found")
)

// APIError is a non-2xx response from the MailerLite API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

func isStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}
