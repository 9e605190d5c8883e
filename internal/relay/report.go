package relay

// Step is one remote mutation attempted (or deliberately not attempted)
// during a reconciliation.
type Step struct {
	// Op names the mutation, e.g. "group.add", "tag.remove".
	Op string
	// Target is the group or tag the step acted on.
	Target string
	// Skipped marks steps that were never issued: missing group, tag
	// management disabled, dry run.
	Skipped bool
	// Note explains skips and records resolve outcomes.
	Note string
	// Err is the remote failure, nil for successful or skipped steps.
	Err error
}

// Report is the best-effort outcome of one reconciliation. Failed steps do
// not invalidate the others; the directory converges on a later event.
type Report struct {
	Email        string
	SubscriberID string
	// Suppressed marks runs stopped by the abandoned-cart guard.
	Suppressed bool
	DryRun     bool
	Steps      []Step
}

// Failed reports whether any step hit a remote failure.
func (r *Report) Failed() bool {
	for _, s := range r.Steps {
		if s.Err != nil {
			return true
		}
	}
	return false
}

// Counts returns how many steps were applied, skipped, and failed.
func (r *Report) Counts() (applied, skipped, failed int) {
	for _, s := range r.Steps {
		switch {
		case s.Err != nil:
			failed++
		case s.Skipped:
			skipped++
		default:
			applied++
		}
	}
	return applied, skipped, failed
}

// FailedOps returns the op names of failed steps, for metrics.
func (r *Report) FailedOps() []string {
	var ops []string
	for _, s := range r.Steps {
		if s.Err != nil {
			ops = append(ops, s.Op)
		}
	}
	return ops
}
