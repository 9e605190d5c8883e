//go:build ignore
// +build ignore

// Webhook Smoke Test Tool
// Posts sample Kiwify events at a running relay so the full pipeline can be
// exercised without waiting for a real checkout.
//
// Usage:
//   go run scripts/send_test_events.go \
//     --url=http://localhost:8080/webhook \
//     --token=my-shared-secret \
//     --email=test@example.com \
//     --product=101
//
// Send a single event type:
//   go run scripts/send_test_events.go --event=checkout.abandoned

package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

var allEvents = []string{
	"order.approved",
	"order.refunded",
	"order.chargeback",
	"order.canceled",
	"checkout.abandoned",
}

func main() {
	url := flag.String("url", "http://localhost:8080/webhook", "relay webhook URL")
	token := flag.String("token", "", "shared webhook token (x-kiwify-token header)")
	email := flag.String("email", "smoke-test@example.com", "customer email to send")
	name := flag.String("name", "Smoke Test", "customer name to send")
	product := flag.String("product", "101", "product id to send")
	event := flag.String("event", "", "send only this event type (default: all)")
	pause := flag.Duration("pause", 500*time.Millisecond, "pause between events")
	flag.Parse()

	events := allEvents
	if *event != "" {
		events = []string{*event}
	}

	client := &http.Client{Timeout: 10 * time.Second}
	for i, ev := range events {
		if i > 0 {
			time.Sleep(*pause)
		}
		status, body, err := send(client, *url, *token, ev, *email, *name, *product)
		if err != nil {
			log.Fatalf("%s: %v", ev, err)
		}
		fmt.Printf("%-20s -> %d %s\n", ev, status, body)
	}
}

func send(client *http.Client, url, token, event, email, name, product string) (int, string, error) {
	payload := map[string]interface{}{
		"event": event,
		"data": map[string]interface{}{
			"customer_email": email,
			"customer_name":  name,
			"product_id":     product,
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, "", err
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("x-kiwify-token", token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", err
	}
	return resp.StatusCode, string(body), nil
}
