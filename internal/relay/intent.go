package relay

import (
	"github.com/ignite/kiwify-relay/internal/catalog"
	"github.com/ignite/kiwify-relay/internal/kiwify"
)

// GroupRef identifies a remote group either by display name or by remote id.
// Catalog configuration carries names; by-id references resolve without a
// directory lookup.
type GroupRef struct {
	name string
	id   string
}

// GroupByName references a group by its display name.
func GroupByName(name string) GroupRef { return GroupRef{name: name} }

// GroupByID references a group by its remote id.
func GroupByID(id string) GroupRef { return GroupRef{id: id} }

// Name returns the display name, empty for by-id references.
func (r GroupRef) Name() string { return r.name }

// ID returns the remote id, empty for by-name references.
func (r GroupRef) ID() string { return r.id }

// IsZero reports whether the reference points at nothing.
func (r GroupRef) IsZero() bool { return r.name == "" && r.id == "" }

// String returns the human-readable form used in reports and logs.
func (r GroupRef) String() string {
	if r.id != "" {
		return "id:" + r.id
	}
	return r.name
}

// Intent is the set of directory mutations one event calls for. Computed by
// the Classifier, applied by the Reconciler.
type Intent struct {
	Email string
	// Name is stored on the subscriber when it has to be created. Empty for
	// events that do not carry one.
	Name string

	AddGroups    []GroupRef
	RemoveGroups []GroupRef
	AddTags      []string
	RemoveTags   []string

	// SkipIfInGroup suppresses the whole intent when the subscriber already
	// belongs to the group. Set on abandoned-cart events so a customer who
	// converted is not re-flagged as a lead.
	SkipIfInGroup GroupRef
}

// Outcome is what classification decided to do with an event.
type Outcome int

const (
	// OutcomeApply means the intent should be reconciled against the directory.
	OutcomeApply Outcome = iota
	// OutcomeIgnored means the event type is not one the relay acts on.
	OutcomeIgnored
	// OutcomeSuppressed means the event was understood but deliberately not
	// applied, e.g. an unknown product without the opt-in switch.
	OutcomeSuppressed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApply:
		return "apply"
	case OutcomeIgnored:
		return "ignored"
	case OutcomeSuppressed:
		return "suppressed"
	default:
		return "unknown"
	}
}

// Classification is the full result of classifying one webhook payload.
// Intent is only meaningful when Outcome is OutcomeApply.
type Classification struct {
	Outcome   Outcome
	Intent    Intent
	EventType kiwify.EventType
	Product   catalog.Product
	// Reason explains ignored and suppressed outcomes.
	Reason string
}
