package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/ignite/kiwify-relay/internal/pkg/logger"
)

// Text writes a plain-text response with the given status code. The webhook
// contract never returns structured bodies to the sender.
func Text(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

// OK writes the generic 200 "OK" acknowledgement.
func OK(w http.ResponseWriter) {
	Text(w, http.StatusOK, "OK")
}

// JSON writes a JSON response with the given status code. Content-Type is set
// automatically; encode failures are logged, not surfaced.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("httputil: JSON encode failed", "error", err)
	}
}

// InternalError writes a generic 500 text body. The real error is logged
// server-side and never leaks to the webhook sender.
func InternalError(w http.ResponseWriter, err error) {
	if err != nil {
		logger.Error("internal error", "error", err)
	}
	Text(w, http.StatusInternalServerError, "Internal error")
}
