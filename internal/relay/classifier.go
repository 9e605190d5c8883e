package relay

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/ignite/kiwify-relay/internal/catalog"
	"github.com/ignite/kiwify-relay/internal/config"
	"github.com/ignite/kiwify-relay/internal/kiwify"
)

// Classifier turns raw webhook payloads into reconciliation intents. It is
// a pure transformation: no I/O, safe for concurrent use.
type Classifier struct {
	products       *catalog.Catalog
	sharedToken    string
	processUnknown bool
}

// NewClassifier creates a classifier. sharedToken empty disables token
// checking.
func NewClassifier(products *catalog.Catalog, sharedToken string, cfg config.RelayConfig) *Classifier {
	return &Classifier{
		products:       products,
		sharedToken:    sharedToken,
		processUnknown: cfg.ProcessUnknownProducts,
	}
}

// Classify parses and validates a webhook payload and maps it to an intent.
// headerToken is the token presented via request header; the payload token
// field is the fallback. Returns ErrMalformedPayload, ErrTokenMismatch, or
// ErrMissingEmail for rejected requests.
func (c *Classifier) Classify(body []byte, headerToken string) (*Classification, error) {
	event, err := kiwify.ParseEvent(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if c.sharedToken != "" {
		token := headerToken
		if token == "" {
			token = event.Token
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(c.sharedToken)) != 1 {
			return nil, ErrTokenMismatch
		}
	}

	// Emails are the lookup key on the directory side; normalize them so a
	// re-capitalized checkout does not create a duplicate subscriber.
	email := strings.ToLower(strings.TrimSpace(event.CustomerEmail()))
	if email == "" {
		return nil, ErrMissingEmail
	}
	name := strings.TrimSpace(event.CustomerName())

	product, known := c.products.Resolve(event.ProductID())
	if !known && !c.processUnknown {
		return &Classification{
			Outcome:   OutcomeSuppressed,
			EventType: event.Event,
			Product:   product,
			Reason:    fmt.Sprintf("unknown product %q and unknown-product processing is off", event.ProductID()),
		}, nil
	}

	switch event.Event {
	case kiwify.EventOrderApproved:
		return &Classification{
			Outcome:   OutcomeApply,
			EventType: event.Event,
			Product:   product,
			Intent: Intent{
				Email:        email,
				Name:         name,
				AddGroups:    groupRefs(product.GroupClient),
				RemoveGroups: groupRefs(product.GroupCartRecovery),
				AddTags:      tagNames(product.TagBought),
				RemoveTags:   tagNames(product.TagAbandonedCart, product.TagRefund),
			},
		}, nil

	case kiwify.EventOrderRefunded, kiwify.EventOrderChargeback, kiwify.EventOrderCanceled:
		return &Classification{
			Outcome:   OutcomeApply,
			EventType: event.Event,
			Product:   product,
			Intent: Intent{
				Email:        email,
				RemoveGroups: groupRefs(product.GroupClient),
				AddTags:      tagNames(product.TagRefund),
			},
		}, nil

	case kiwify.EventCheckoutAbandoned:
		return &Classification{
			Outcome:   OutcomeApply,
			EventType: event.Event,
			Product:   product,
			Intent: Intent{
				Email:         email,
				Name:          name,
				AddGroups:     groupRefs(product.GroupCartRecovery),
				AddTags:       tagNames(product.TagAbandonedCart),
				SkipIfInGroup: GroupByName(product.GroupClient),
			},
		}, nil

	default:
		return &Classification{
			Outcome:   OutcomeIgnored,
			EventType: event.Event,
			Product:   product,
			Reason:    fmt.Sprintf("unhandled event type %q", event.Event),
		}, nil
	}
}

// groupRefs builds by-name references, dropping empty names so products
// without a given group simply skip that mutation.
func groupRefs(names ...string) []GroupRef {
	var refs []GroupRef
	for _, n := range names {
		if n != "" {
			refs = append(refs, GroupByName(n))
		}
	}
	return refs
}

func tagNames(names ...string) []string {
	var tags []string
	for _, n := range names {
		if n != "" {
			tags = append(tags, n)
		}
	}
	return tags
}
