package relay

import (
	"context"

	"github.com/ignite/kiwify-relay/internal/mailerlite"
)

// Directory is the slice of the remote email-marketing API the reconciler
// needs. *mailerlite.Client satisfies it; tests substitute an in-memory
// implementation.
type Directory interface {
	// GetSubscriber fetches a subscriber by email. Absence is signaled with
	// mailerlite.ErrSubscriberNotFound, not an error wrapping it.
	GetSubscriber(ctx context.Context, email string) (*mailerlite.Subscriber, error)

	// GetSubscriberWithGroups is GetSubscriber with group memberships
	// populated, for the abandoned-cart guard.
	GetSubscriberWithGroups(ctx context.Context, email string) (*mailerlite.Subscriber, error)

	// CreateSubscriber creates a subscriber, storing the name when non-empty.
	CreateSubscriber(ctx context.Context, email, name string) (*mailerlite.Subscriber, error)

	// FindGroupByName resolves a group name to its remote record by exact
	// match. Absence is signaled with mailerlite.ErrGroupNotFound.
	FindGroupByName(ctx context.Context, name string) (*mailerlite.Group, error)

	AddSubscriberToGroup(ctx context.Context, groupID, subscriberID string) error
	RemoveSubscriberFromGroup(ctx context.Context, subscriberID, groupID string) error

	ListTags(ctx context.Context) ([]mailerlite.Tag, error)

	// AttachTag tags a subscriber, creating the tag when it does not exist.
	AttachTag(ctx context.Context, name, subscriberID string) (*mailerlite.Tag, error)

	DetachTag(ctx context.Context, tagID, subscriberID string) error
}
