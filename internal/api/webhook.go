package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/ignite/kiwify-relay/internal/kiwify"
	"github.com/ignite/kiwify-relay/internal/metrics"
	"github.com/ignite/kiwify-relay/internal/pkg/httputil"
	"github.com/ignite/kiwify-relay/internal/pkg/logger"
	"github.com/ignite/kiwify-relay/internal/relay"
)

// Limit webhook payload to 1MB; Kiwify events are a few KB.
const maxWebhookBody = 1 << 20

// eventUnknown labels metrics for requests rejected before the event type
// could be established.
const eventUnknown = "unknown"

// HandleWebhook receives a Kiwify event, classifies it, and reconciles the
// subscriber against the directory. Kiwify only looks at the status code, so
// responses are short plain text.
func (h *Handlers) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.classifier == nil || h.reconciler == nil {
		metrics.EventsTotal.WithLabelValues(eventUnknown, "error").Inc()
		logger.Error("webhook received without directory configuration")
		httputil.Text(w, http.StatusInternalServerError, "Missing API configuration")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBody)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		metrics.EventsTotal.WithLabelValues(eventUnknown, "rejected").Inc()
		logger.Warn("webhook body unreadable", "error", err.Error())
		httputil.Text(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	classification, err := h.classifier.Classify(body, kiwify.TokenFromHeader(r.Header))
	if err != nil {
		h.respondClassifyError(w, err)
		return
	}

	event := string(classification.EventType)

	switch classification.Outcome {
	case relay.OutcomeIgnored:
		metrics.EventsTotal.WithLabelValues(event, "ignored").Inc()
		logger.Info("event ignored", "event", event, "reason", classification.Reason)
		httputil.OK(w)
		return

	case relay.OutcomeSuppressed:
		metrics.EventsTotal.WithLabelValues(event, "suppressed").Inc()
		logger.Info("event suppressed", "event", event, "reason", classification.Reason)
		httputil.Text(w, http.StatusAccepted, "Accepted")
		return
	}

	report, err := h.reconciler.Reconcile(ctx, classification.Intent)
	recordDirectoryErrors(report)
	if err != nil {
		metrics.EventsTotal.WithLabelValues(event, "error").Inc()
		logger.Error("reconciliation aborted",
			"event", event,
			"email", classification.Intent.Email,
			"error", err.Error())
		httputil.Text(w, http.StatusInternalServerError, "Internal error")
		return
	}

	if report.Suppressed {
		metrics.EventsTotal.WithLabelValues(event, "suppressed").Inc()
		logger.Info("reconciliation suppressed by cart guard", "event", event, "email", report.Email)
		httputil.OK(w)
		return
	}

	applied, skipped, failed := report.Counts()
	metrics.EventsTotal.WithLabelValues(event, "apply").Inc()
	logger.Info("event processed",
		"event", event,
		"email", report.Email,
		"subscriber_id", report.SubscriberID,
		"dry_run", report.DryRun,
		"steps_applied", applied,
		"steps_skipped", skipped,
		"steps_failed", failed)
	httputil.OK(w)
}

// respondClassifyError maps classification failures to status codes. Bodies
// stay generic; the detail goes to the log.
func (h *Handlers) respondClassifyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, relay.ErrTokenMismatch):
		metrics.EventsTotal.WithLabelValues(eventUnknown, "rejected").Inc()
		logger.Warn("webhook token mismatch")
		httputil.Text(w, http.StatusUnauthorized, "Unauthorized")

	case errors.Is(err, relay.ErrMissingEmail):
		metrics.EventsTotal.WithLabelValues(eventUnknown, "rejected").Inc()
		logger.Warn("webhook missing customer email")
		httputil.Text(w, http.StatusBadRequest, "Missing email")

	case errors.Is(err, relay.ErrMalformedPayload):
		metrics.EventsTotal.WithLabelValues(eventUnknown, "rejected").Inc()
		logger.Warn("webhook payload malformed", "error", err.Error())
		httputil.Text(w, http.StatusBadRequest, "Invalid payload")

	default:
		metrics.EventsTotal.WithLabelValues(eventUnknown, "error").Inc()
		httputil.InternalError(w, err)
	}
}

func recordDirectoryErrors(report *relay.Report) {
	if report == nil {
		return
	}
	for _, op := range report.FailedOps() {
		metrics.DirectoryErrors.WithLabelValues(op).Inc()
	}
}
