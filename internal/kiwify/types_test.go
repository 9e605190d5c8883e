package kiwify

import (
	"net/http"
	"testing"
)

func TestParseEventOrderApproved(t *testing.T) {
	body := `{
		"event": "order.approved",
		"token": "abc123",
		"data": {
			"customer_email": "maria@example.com",
			"customer_name": "Maria Silva",
			"product_id": "98765",
			"product_name": "Curso Completo"
		}
	}`

	e, err := ParseEvent([]byte(body))
	if err != nil {
		t.Fatalf("ParseEvent() error = %v", err)
	}

	if e.Event != EventOrderApproved {
		t.Errorf("Event = %q, want %q", e.Event, EventOrderApproved)
	}
	if e.Token != "abc123" {
		t.Errorf("Token = %q, want %q", e.Token, "abc123")
	}
	if got := e.CustomerEmail(); got != "maria@example.com" {
		t.Errorf("CustomerEmail() = %q, want %q", got, "maria@example.com")
	}
	if got := e.CustomerName(); got != "Maria Silva" {
		t.Errorf("CustomerName() = %q, want %q", got, "Maria Silva")
	}
	if got := e.ProductID(); got != "98765" {
		t.Errorf("ProductID() = %q, want %q", got, "98765")
	}
}

func TestParseEventNumericProductID(t *testing.T) {
	body := `{"event": "checkout.abandoned", "data": {"email": "joao@example.com", "product_id": 12345}}`

	e, err := ParseEvent([]byte(body))
	if err != nil {
		t.Fatalf("ParseEvent() error = %v", err)
	}
	if got := e.ProductID(); got != "12345" {
		t.Errorf("ProductID() = %q, want %q", got, "12345")
	}
}

func TestParseEventMalformed(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", "this is not json"},
		{"truncated", `{"event": "order.approved", "data"`},
		{"product id object", `{"event": "x", "data": {"product_id": {"id": 1}}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseEvent([]byte(tc.body)); err == nil {
				t.Errorf("ParseEvent(%q) expected error, got nil", tc.body)
			}
		})
	}
}

func TestFlexID(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"string", `{"data": {"product_id": "abc-1"}}`, "abc-1"},
		{"integer", `{"data": {"product_id": 42}}`, "42"},
		{"large integer", `{"data": {"product_id": 9007199254740993}}`, "9007199254740993"},
		{"decimal", `{"data": {"product_id": 1.5}}`, "1.5"},
		{"null", `{"data": {"product_id": null}}`, ""},
		{"absent", `{"data": {}}`, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, err := ParseEvent([]byte(tc.body))
			if err != nil {
				t.Fatalf("ParseEvent() error = %v", err)
			}
			if got := e.ProductID(); got != tc.want {
				t.Errorf("ProductID() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestEmailAliases(t *testing.T) {
	cases := []struct {
		name string
		data EventData
		want string
	}{
		{"customer_email only", EventData{CustomerEmail: "a@x.com"}, "a@x.com"},
		{"email only", EventData{Email: "b@x.com"}, "b@x.com"},
		{"customer_email wins", EventData{CustomerEmail: "a@x.com", Email: "b@x.com"}, "a@x.com"},
		{"neither", EventData{}, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := &Event{Data: tc.data}
			if got := e.CustomerEmail(); got != tc.want {
				t.Errorf("CustomerEmail() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNameAliases(t *testing.T) {
	e := &Event{Data: EventData{Name: "Fallback Name"}}
	if got := e.CustomerName(); got != "Fallback Name" {
		t.Errorf("CustomerName() = %q, want %q", got, "Fallback Name")
	}

	e.Data.CustomerName = "Primary Name"
	if got := e.CustomerName(); got != "Primary Name" {
		t.Errorf("CustomerName() = %q, want %q", got, "Primary Name")
	}
}

func TestTokenFromHeader(t *testing.T) {
	h := http.Header{}
	if got := TokenFromHeader(h); got != "" {
		t.Errorf("TokenFromHeader() = %q, want empty", got)
	}

	h.Set("x-token", "alt")
	if got := TokenFromHeader(h); got != "alt" {
		t.Errorf("TokenFromHeader() = %q, want %q", got, "alt")
	}

	h.Set("x-kiwify-token", "primary")
	if got := TokenFromHeader(h); got != "primary" {
		t.Errorf("TokenFromHeader() = %q, want %q", got, "primary")
	}
}
