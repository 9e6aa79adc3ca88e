package middleware

import (
	"net/http"
	"time"

	"github.com/kbukum/sessionstream/logger"
)

// Runtime probes are polled constantly and stay out of the request log.
var quietPaths = map[string]bool{
	"/health": true,
	"/alive":  true,
	"/ready":  true,
}

// RequestLogger logs one line per request once the handler returns. For an
// event stream that is when the stream closes, so duration is its lifetime
// and flushes counts the frames pushed.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if quietPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rw := record(w)
			next.ServeHTTP(rw, r)

			fields := map[string]interface{}{
				"method":             r.Method,
				"path":               r.URL.Path,
				"bytes":              rw.bytes,
				logger.FieldStatus:   rw.status,
				logger.FieldDuration: time.Since(start).Milliseconds(),
			}
			if rw.flushes > 0 {
				fields["flushes"] = rw.flushes
			}
			logByStatus(log.WithContext(r.Context()), fields, rw.status)
		})
	}
}

// logByStatus logs request fields at the level matching the status code.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Debug("Request completed", fields)
	}
}
