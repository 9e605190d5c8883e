package mailerlite

// Subscriber is a contact record in the directory. Groups is only populated
// by lookups that request group memberships.
type Subscriber struct {
	ID     string           `json:"id"`
	Email  string           `json:"email"`
	Status string           `json:"status,omitempty"`
	Fields SubscriberFields `json:"fields,omitempty"`
	Groups []Group          `json:"groups,omitempty"`
}

// SubscriberFields holds the custom fields the relay writes.
type SubscriberFields struct {
	Name string `json:"name,omitempty"`
}

// InGroup reports whether the subscriber is a member of the group id. Only
// meaningful on subscribers fetched with group memberships included.
func (s *Subscriber) InGroup(groupID string) bool {
	for _, g := range s.Groups {
		if g.ID == groupID {
			return true
		}
	}
	return false
}

// Group is a named subscriber segment.
type Group struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Tag is a named label attachable per subscriber.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// API request/response envelopes. The API wraps single resources and lists
// in a data field.

type subscriberResponse struct {
	Data Subscriber `json:"data"`
}

type groupListResponse struct {
	Data []Group `json:"data"`
}

type tagResponse struct {
	Data Tag `json:"data"`
}

type tagListResponse struct {
	Data []Tag `json:"data"`
}

type createSubscriberRequest struct {
	Email  string            `json:"email"`
	Fields *SubscriberFields `json:"fields,omitempty"`
}

type attachTagRequest struct {
	Name        string   `json:"name"`
	Subscribers []string `json:"subscribers"`
}
