package middleware

import (
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/maskserve/maskserve/internal/metrics"
	"github.com/maskserve/maskserve/internal/net/gphttp"
)

// WithMetrics records status, size and duration of every request
// handled by next under the given server name.
//
// The wrapped writer keeps the optional interfaces of w,
// so io.ReaderFrom and http.Flusher still reach the connection.
func WithMetrics(server string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		metrics.ObserveRequest(server, r.Method, m.Code, m.Written, m.Duration)
		gphttp.LogDebug(r).
			Int("status", m.Code).
			Int64("size", m.Written).
			Dur("elapsed", m.Duration).
			Msg("request served")
	})
}
