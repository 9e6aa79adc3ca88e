package middleware

import "net/http"

// recorder remembers the status, body size and flush count of a response.
// Flush and Unwrap pass through so event streams keep working behind it.
type recorder struct {
	http.ResponseWriter
	status  int
	bytes   int64
	flushes int
	started bool
}

func record(w http.ResponseWriter) *recorder {
	return &recorder{ResponseWriter: w, status: http.StatusOK}
}

func (rw *recorder) WriteHeader(code int) {
	if !rw.started {
		rw.status = code
		rw.started = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recorder) Write(b []byte) (int, error) {
	rw.started = true
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += int64(n)
	return n, err
}

func (rw *recorder) Flush() {
	rw.flushes++
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the connection to http.ResponseController, which the
// stream handler uses to clear its write deadline.
func (rw *recorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
