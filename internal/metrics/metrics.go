// Package metrics exposes Prometheus counters for the webhook relay.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// EventsTotal counts webhook events by event type and classification
	// outcome (apply, suppressed, ignored, rejected, error).
	EventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_events_total",
		Help: "Total number of webhook events by event type and outcome",
	}, []string{"event", "outcome"})

	// DirectoryErrors counts failed remote directory calls by operation.
	DirectoryErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_directory_errors_total",
		Help: "Total number of failed directory API calls by operation",
	}, []string{"op"})
)

func init() {
	prometheus.MustRegister(EventsTotal, DirectoryErrors)
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
