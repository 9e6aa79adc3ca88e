package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// InvalidSessionMessage is the error text sent for an unknown session id.
const InvalidSessionMessage = "Invalid session ID"

// KeepAliveComment is the text of the keep-alive comment frame.
const KeepAliveComment = "keep-alive"

// ErrorFrame is the payload of the single frame sent for an unknown session.
type ErrorFrame struct {
	Error string `json:"error"`
}

// frameWriter writes SSE frames and flushes after each one.
type frameWriter struct {
	rw      http.ResponseWriter
	flusher http.Flusher
}

// newFrameWriter reports false when w cannot flush.
func newFrameWriter(w http.ResponseWriter) (*frameWriter, bool) {
	f, ok := w.(http.Flusher)
	if !ok {
		return nil, false
	}
	return &frameWriter{rw: w, flusher: f}, true
}

// data writes v as one JSON "data:" frame.
func (fw *frameWriter) data(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	if _, err := fmt.Fprintf(fw.rw, "data: %s\n\n", payload); err != nil {
		return err
	}
	fw.flush()
	return nil
}

// comment writes an SSE comment frame, ignored by conforming clients.
func (fw *frameWriter) comment(text string) error {
	if _, err := fmt.Fprintf(fw.rw, ": %s\n\n", text); err != nil {
		return err
	}
	fw.flush()
	return nil
}

func (fw *frameWriter) flush() {
	fw.flusher.Flush()
}
