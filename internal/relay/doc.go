// Package relay implements the core webhook-to-directory workflow.
//
// Two pieces, deliberately separated:
//
// The Classifier is a pure function from a raw webhook payload to a
// reconciliation intent: it authenticates the shared token, extracts the
// subscriber, resolves the product against the catalog, and maps the event
// type to the group/tag deltas that should hold afterwards. It performs no
// I/O.
//
// The Reconciler applies an intent against the remote directory, one call at
// a time, best-effort: independent steps that fail are recorded and skipped,
// and the whole run is summarized in a Report. Only a failed subscriber
// lookup/creation aborts the run, since nothing later is meaningful without
// a subscriber id. The remote directory is the source of truth; a later
// event can converge whatever a partial run left behind.
//
// The package depends on the Directory interface defined in directory.go and
// never imports net/http.
package relay
