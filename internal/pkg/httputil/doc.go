// Package httputil provides shared HTTP response helpers for handlers.
//
// The webhook surface answers the sender with a bare status code and a short
// text body (Text and friends); operational endpoints such as /health use the
// JSON helpers. Handlers should use these instead of writing raw
// http.ResponseWriter calls so that formatting and internal-error logging stay
// consistent.
package httputil
