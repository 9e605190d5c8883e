// Package mailerlite is a thin client for the slice of the MailerLite API
// the relay uses: subscriber lookup/creation, group membership, and tags.
// Calls are single-shot with no retry; a failed call surfaces to the caller,
// which decides whether the reconciliation step is skippable.
package mailerlite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ignite/kiwify-relay/internal/config"
)

// HTTPDoer executes HTTP requests. Satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a MailerLite API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient HTTPDoer
}

// NewClient creates a new MailerLite API client.
func NewClient(cfg config.MailerLiteConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
	}
}

// SetHTTPClient sets a custom HTTP client (useful for testing)
func (c *Client) SetHTTPClient(client HTTPDoer) {
	c.httpClient = client
}

// doRequest makes an authenticated request to the MailerLite API.
func (c *Client) doRequest(ctx context.Context, method, path string, params url.Values, body interface{}) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return respBody, nil
}

// GetSubscriber fetches a subscriber by email. Returns ErrSubscriberNotFound
// when the directory has no record for the address.
func (c *Client) GetSubscriber(ctx context.Context, email string) (*Subscriber, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/subscribers/"+url.PathEscape(email), nil, nil)
	if err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, ErrSubscriberNotFound
		}
		return nil, fmt.Errorf("fetching subscriber: %w", err)
	}

	var response subscriberResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("parsing subscriber: %w", err)
	}

	return &response.Data, nil
}

// GetSubscriberWithGroups fetches a subscriber by email including group
// memberships, for the abandoned-cart guard.
func (c *Client) GetSubscriberWithGroups(ctx context.Context, email string) (*Subscriber, error) {
	params := url.Values{}
	params.Set("include", "groups")

	body, err := c.doRequest(ctx, http.MethodGet, "/subscribers/"+url.PathEscape(email), params, nil)
	if err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, ErrSubscriberNotFound
		}
		return nil, fmt.Errorf("fetching subscriber with groups: %w", err)
	}

	var response subscriberResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("parsing subscriber: %w", err)
	}

	return &response.Data, nil
}

// CreateSubscriber creates (or upserts) a subscriber. The name is stored in
// the name custom field when non-empty.
func (c *Client) CreateSubscriber(ctx context.Context, email, name string) (*Subscriber, error) {
	reqBody := createSubscriberRequest{Email: email}
	if name != "" {
		reqBody.Fields = &SubscriberFields{Name: name}
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/subscribers", nil, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating subscriber: %w", err)
	}

	var response subscriberResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("parsing created subscriber: %w", err)
	}

	return &response.Data, nil
}

// FindGroupByName resolves a group name to its remote record. The API
// filters server-side; the first result wins. Returns ErrGroupNotFound when
// no group matches exactly.
func (c *Client) FindGroupByName(ctx context.Context, name string) (*Group, error) {
	params := url.Values{}
	params.Set("filter[name]", name)

	body, err := c.doRequest(ctx, http.MethodGet, "/groups", params, nil)
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}

	var response groupListResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("parsing groups: %w", err)
	}

	// The filter matches substrings, so insist on an exact name match.
	for _, g := range response.Data {
		if g.Name == name {
			return &g, nil
		}
	}

	return nil, ErrGroupNotFound
}

// AddSubscriberToGroup adds a subscriber to a group. Idempotent on the
// remote side; re-adding an existing member succeeds.
func (c *Client) AddSubscriberToGroup(ctx context.Context, groupID, subscriberID string) error {
	path := fmt.Sprintf("/groups/%s/subscribers/%s", url.PathEscape(groupID), url.PathEscape(subscriberID))
	if _, err := c.doRequest(ctx, http.MethodPost, path, nil, nil); err != nil {
		return fmt.Errorf("adding subscriber to group: %w", err)
	}
	return nil
}

// RemoveSubscriberFromGroup removes a subscriber from a group. Removing a
// non-member is treated as success.
func (c *Client) RemoveSubscriberFromGroup(ctx context.Context, subscriberID, groupID string) error {
	path := fmt.Sprintf("/subscribers/%s/groups/%s", url.PathEscape(subscriberID), url.PathEscape(groupID))
	if _, err := c.doRequest(ctx, http.MethodDelete, path, nil, nil); err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil
		}
		return fmt.Errorf("removing subscriber from group: %w", err)
	}
	return nil
}

// ListTags fetches all tags in the account.
func (c *Client) ListTags(ctx context.Context) ([]Tag, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/tags", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	var response tagListResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("parsing tags: %w", err)
	}

	return response.Data, nil
}

// AttachTag attaches a tag to a subscriber, creating the tag if it does not
// exist yet. The API folds both into one call.
func (c *Client) AttachTag(ctx context.Context, name, subscriberID string) (*Tag, error) {
	reqBody := attachTagRequest{Name: name, Subscribers: []string{subscriberID}}

	body, err := c.doRequest(ctx, http.MethodPost, "/tags", nil, reqBody)
	if err != nil {
		return nil, fmt.Errorf("attaching tag: %w", err)
	}

	var response tagResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("parsing tag: %w", err)
	}

	return &response.Data, nil
}

// DetachTag removes a tag from a subscriber. Detaching a tag the subscriber
// does not carry is treated as success.
func (c *Client) DetachTag(ctx context.Context, tagID, subscriberID string) error {
	path := fmt.Sprintf("/tags/%s/subscribers/%s", url.PathEscape(tagID), url.PathEscape(subscriberID))
	if _, err := c.doRequest(ctx, http.MethodDelete, path, nil, nil); err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil
		}
		return fmt.Errorf("detaching tag: %w", err)
	}
	return nil
}
