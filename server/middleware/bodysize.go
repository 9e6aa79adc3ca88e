package middleware

import (
	"net/http"

	apperrors "github.com/kbukum/sessionstream/errors"
)

// BodySizeLimit caps request bodies at maxBytes. A declared Content-Length
// over the cap is refused before the handler runs; otherwise reads past the
// cap fail with *http.MaxBytesError.
func BodySizeLimit(maxBytes int64) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				w.Header().Set("Connection", "close")
				writeError(w, apperrors.PayloadTooLarge(maxBytes))
				return
			}
			if r.Body != nil && r.Body != http.NoBody {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
