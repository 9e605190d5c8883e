package api

import (
	"net/http"
	"time"

	"github.com/ignite/kiwify-relay/internal/catalog"
	"github.com/ignite/kiwify-relay/internal/pkg/httputil"
	"github.com/ignite/kiwify-relay/internal/relay"
)

// Handlers holds the webhook endpoint dependencies.
type Handlers struct {
	classifier *relay.Classifier
	reconciler *relay.Reconciler
	products   *catalog.Catalog
	started    time.Time
}

// NewHandlers creates the handler set.
func NewHandlers(classifier *relay.Classifier, reconciler *relay.Reconciler, products *catalog.Catalog) *Handlers {
	return &Handlers{
		classifier: classifier,
		reconciler: reconciler,
		products:   products,
		started:    time.Now(),
	}
}

// HealthCheck reports process health and configuration readiness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if h.classifier == nil || h.reconciler == nil {
		status = "degraded"
	}

	productCount := 0
	if h.products != nil {
		productCount = h.products.Len()
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"status":     status,
		"timestamp":  time.Now(),
		"uptime":     time.Since(h.started).Round(time.Second).String(),
		"configured": h.classifier != nil && h.reconciler != nil,
		"products":   productCount,
	})
}

// LivenessCheck is a bare liveness probe for the load balancer.
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
