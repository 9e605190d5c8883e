// Package kiwify defines the webhook payload sent by the Kiwify checkout
// platform and helpers for pulling the fields the relay cares about out of
// it. Payloads are inconsistent across event types: the same logical field
// shows up under different names (customer_email vs email) and product_id
// arrives as either a JSON string or a number, so access goes through the
// alias helpers instead of the raw struct fields.
package kiwify

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// EventType is the event name from the webhook envelope.
type EventType string

// Purchase-lifecycle events the relay acts on. Anything else is acknowledged
// and ignored.
const (
	EventOrderApproved     EventType = "order.approved"
	EventOrderRefunded     EventType = "order.refunded"
	EventOrderChargeback   EventType = "order.chargeback"
	EventOrderCanceled     EventType = "order.canceled"
	EventCheckoutAbandoned EventType = "checkout.abandoned"
)

// Header names Kiwify uses to carry the shared webhook token.
const (
	HeaderToken    = "x-kiwify-token"
	HeaderTokenAlt = "x-token"
)

// Event is the webhook envelope.
type Event struct {
	Event EventType `json:"event"`
	Token string    `json:"token,omitempty"`
	Data  EventData `json:"data"`
}

// EventData carries the order fields. Kiwify uses customer_email on order
// events and email on abandoned-checkout events; same split for the name.
type EventData struct {
	CustomerEmail string `json:"customer_email,omitempty"`
	Email         string `json:"email,omitempty"`
	CustomerName  string `json:"customer_name,omitempty"`
	Name          string `json:"name,omitempty"`
	ProductID     FlexID `json:"product_id,omitempty"`
	ProductName   string `json:"product_name,omitempty"`
}

// FlexID is a product identifier that Kiwify serializes as either a JSON
// string or a bare number depending on the event type.
type FlexID string

// UnmarshalJSON accepts strings, numbers, and null. Numbers keep their
// original textual form, so 12345 becomes "12345".
func (f *FlexID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("product_id must be a string or number: %w", err)
	}
	*f = FlexID(n.String())
	return nil
}

// ParseEvent decodes a webhook payload.
func ParseEvent(body []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(body, &e); err != nil {
		return nil, fmt.Errorf("decoding event: %w", err)
	}
	return &e, nil
}

// CustomerEmail returns the subscriber email, preferring customer_email over
// the abandoned-checkout email alias. Empty when the payload carries neither.
func (e *Event) CustomerEmail() string {
	if e.Data.CustomerEmail != "" {
		return e.Data.CustomerEmail
	}
	return e.Data.Email
}

// CustomerName returns the subscriber name, preferring customer_name.
func (e *Event) CustomerName() string {
	if e.Data.CustomerName != "" {
		return e.Data.CustomerName
	}
	return e.Data.Name
}

// ProductID returns the stringified product identifier, empty when absent.
func (e *Event) ProductID() string {
	return string(e.Data.ProductID)
}

// TokenFromHeader returns the shared-secret token from the request headers.
// The x-kiwify-token header wins over x-token; callers fall back to the
// payload token field when both are absent.
func TokenFromHeader(h http.Header) string {
	if v := h.Get(HeaderToken); v != "" {
		return v
	}
	return h.Get(HeaderTokenAlt)
}
