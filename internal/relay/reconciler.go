package relay

import (
	"context"
	"errors"
	"fmt"

	"github.com/ignite/kiwify-relay/internal/config"
	"github.com/ignite/kiwify-relay/internal/mailerlite"
	"github.com/ignite/kiwify-relay/internal/pkg/logger"
)

// Reconciler applies intents against the remote directory, one call at a
// time. Steps are independent and best-effort; only a failed subscriber
// resolve/create aborts the run.
type Reconciler struct {
	directory  Directory
	manageTags bool
	dryRun     bool
}

// NewReconciler creates a reconciler for the given directory.
func NewReconciler(directory Directory, cfg config.RelayConfig) *Reconciler {
	return &Reconciler{
		directory:  directory,
		manageTags: cfg.TagsEnabled(),
		dryRun:     cfg.DryRun,
	}
}

// Reconcile applies one intent. The returned report is non-nil even on
// error. A non-nil error means the run aborted before the group/tag steps;
// individual step failures are carried in the report instead.
func (r *Reconciler) Reconcile(ctx context.Context, intent Intent) (*Report, error) {
	report := &Report{Email: intent.Email, DryRun: r.dryRun}

	if intent.Email == "" {
		return report, ErrMissingEmail
	}

	if r.dryRun {
		report.Steps = r.plan(intent)
		logger.Info("dry run, no directory calls issued",
			"email", intent.Email,
			"steps", len(report.Steps))
		return report, nil
	}

	if !intent.SkipIfInGroup.IsZero() && r.converted(ctx, intent, report) {
		report.Suppressed = true
		logger.Info("intent suppressed, subscriber already converted",
			"email", intent.Email,
			"group", intent.SkipIfInGroup.String())
		return report, nil
	}

	sub, created, err := r.resolveSubscriber(ctx, intent)
	if err != nil {
		report.Steps = append(report.Steps, Step{Op: "subscriber.resolve", Target: intent.Email, Err: err})
		return report, fmt.Errorf("resolving subscriber: %w", err)
	}
	report.SubscriberID = sub.ID
	note := "existing"
	if created {
		note = "created"
	}
	report.Steps = append(report.Steps, Step{Op: "subscriber.resolve", Target: intent.Email, Note: note})

	for _, ref := range intent.AddGroups {
		r.addGroup(ctx, report, ref, sub.ID)
	}
	for _, ref := range intent.RemoveGroups {
		r.removeGroup(ctx, report, ref, sub.ID)
	}

	if !r.manageTags {
		if len(intent.AddTags)+len(intent.RemoveTags) > 0 {
			report.Steps = append(report.Steps, Step{Op: "tags", Skipped: true, Note: "tag management disabled"})
		}
		return report, nil
	}

	for _, name := range intent.AddTags {
		step := Step{Op: "tag.attach", Target: name}
		if _, err := r.directory.AttachTag(ctx, name, sub.ID); err != nil {
			step.Err = err
			logger.Warn("tag attach failed", "tag", name, "email", intent.Email, "error", err.Error())
		}
		report.Steps = append(report.Steps, step)
	}

	r.removeTags(ctx, report, intent, sub.ID)

	return report, nil
}

// converted reports whether the subscriber already belongs to the guard
// group. Guard lookups fail open: on error the intent proceeds.
func (r *Reconciler) converted(ctx context.Context, intent Intent, report *Report) bool {
	groupID, err := r.resolveGroup(ctx, intent.SkipIfInGroup)
	if err != nil {
		if !errors.Is(err, mailerlite.ErrGroupNotFound) {
			report.Steps = append(report.Steps, Step{Op: "guard.check", Target: intent.SkipIfInGroup.String(), Err: err, Note: "proceeding"})
			logger.Warn("guard group lookup failed, proceeding", "group", intent.SkipIfInGroup.String(), "error", err.Error())
		}
		return false
	}

	sub, err := r.directory.GetSubscriberWithGroups(ctx, intent.Email)
	if err != nil {
		if !errors.Is(err, mailerlite.ErrSubscriberNotFound) {
			report.Steps = append(report.Steps, Step{Op: "guard.check", Target: intent.Email, Err: err, Note: "proceeding"})
			logger.Warn("guard membership lookup failed, proceeding", "email", intent.Email, "error", err.Error())
		}
		return false
	}

	return sub.InGroup(groupID)
}

func (r *Reconciler) resolveSubscriber(ctx context.Context, intent Intent) (*mailerlite.Subscriber, bool, error) {
	sub, err := r.directory.GetSubscriber(ctx, intent.Email)
	if err == nil {
		return sub, false, nil
	}
	if !errors.Is(err, mailerlite.ErrSubscriberNotFound) {
		return nil, false, err
	}

	sub, err = r.directory.CreateSubscriber(ctx, intent.Email, intent.Name)
	if err != nil {
		return nil, false, err
	}
	return sub, true, nil
}

// resolveGroup turns a group reference into a remote id. By-id references
// resolve locally; names go through the directory, exact match only.
func (r *Reconciler) resolveGroup(ctx context.Context, ref GroupRef) (string, error) {
	if ref.ID() != "" {
		return ref.ID(), nil
	}
	group, err := r.directory.FindGroupByName(ctx, ref.Name())
	if err != nil {
		return "", err
	}
	return group.ID, nil
}

func (r *Reconciler) addGroup(ctx context.Context, report *Report, ref GroupRef, subscriberID string) {
	step := Step{Op: "group.add", Target: ref.String()}
	defer func() { report.Steps = append(report.Steps, step) }()

	groupID, err := r.resolveGroup(ctx, ref)
	if err != nil {
		if errors.Is(err, mailerlite.ErrGroupNotFound) {
			step.Skipped = true
			step.Note = "group does not exist"
			logger.Warn("group not found, skipping add", "group", ref.String())
			return
		}
		step.Err = err
		logger.Warn("group resolve failed", "group", ref.String(), "error", err.Error())
		return
	}

	if err := r.directory.AddSubscriberToGroup(ctx, groupID, subscriberID); err != nil {
		step.Err = err
		logger.Warn("group add failed", "group", ref.String(), "error", err.Error())
	}
}

func (r *Reconciler) removeGroup(ctx context.Context, report *Report, ref GroupRef, subscriberID string) {
	step := Step{Op: "group.remove", Target: ref.String()}
	defer func() { report.Steps = append(report.Steps, step) }()

	groupID, err := r.resolveGroup(ctx, ref)
	if err != nil {
		if errors.Is(err, mailerlite.ErrGroupNotFound) {
			step.Skipped = true
			step.Note = "group does not exist"
			return
		}
		step.Err = err
		logger.Warn("group resolve failed", "group", ref.String(), "error", err.Error())
		return
	}

	if err := r.directory.RemoveSubscriberFromGroup(ctx, subscriberID, groupID); err != nil {
		step.Err = err
		logger.Warn("group remove failed", "group", ref.String(), "error", err.Error())
	}
}

// removeTags detaches tags by exact name. The tag list is fetched once per
// run; an absent tag is a no-op.
func (r *Reconciler) removeTags(ctx context.Context, report *Report, intent Intent, subscriberID string) {
	if len(intent.RemoveTags) == 0 {
		return
	}

	tags, err := r.directory.ListTags(ctx)
	if err != nil {
		report.Steps = append(report.Steps, Step{Op: "tag.list", Err: err, Note: "skipping tag removals"})
		logger.Warn("tag list failed, skipping removals", "email", intent.Email, "error", err.Error())
		return
	}

	// first match wins on duplicate names
	byName := make(map[string]string, len(tags))
	for _, t := range tags {
		if _, seen := byName[t.Name]; !seen {
			byName[t.Name] = t.ID
		}
	}

	for _, name := range intent.RemoveTags {
		id, ok := byName[name]
		if !ok {
			report.Steps = append(report.Steps, Step{Op: "tag.remove", Target: name, Skipped: true, Note: "tag does not exist"})
			continue
		}
		step := Step{Op: "tag.remove", Target: name}
		if err := r.directory.DetachTag(ctx, id, subscriberID); err != nil {
			step.Err = err
			logger.Warn("tag detach failed", "tag", name, "email", intent.Email, "error", err.Error())
		}
		report.Steps = append(report.Steps, step)
	}
}

// plan lists the steps a live run would attempt, all marked skipped.
func (r *Reconciler) plan(intent Intent) []Step {
	var steps []Step
	add := func(op, target string) {
		steps = append(steps, Step{Op: op, Target: target, Skipped: true, Note: "dry run"})
	}

	if !intent.SkipIfInGroup.IsZero() {
		add("guard.check", intent.SkipIfInGroup.String())
	}
	add("subscriber.resolve", intent.Email)
	for _, ref := range intent.AddGroups {
		add("group.add", ref.String())
	}
	for _, ref := range intent.RemoveGroups {
		add("group.remove", ref.String())
	}
	if r.manageTags {
		for _, name := range intent.AddTags {
			add("tag.attach", name)
		}
		for _, name := range intent.RemoveTags {
			add("tag.remove", name)
		}
	}
	return steps
}
