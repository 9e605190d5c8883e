package relay

import "errors"

// Sentinel errors for the classification stage. The HTTP layer maps each to
// a response status.
var (
	ErrMalformedPayload = errors.New("malformed webhook payload")
	ErrMissingEmail     = errors.New("missing customer email")
	ErrTokenMismatch    = errors.New("webhook token mismatch")
)
