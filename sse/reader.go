package sse

import (
	"bufio"
	"io"
	"strings"
)

// Event is one frame read from a stream.
type Event struct {
	// Event is the event type from an "event:" line. Empty for data-only frames.
	Event string
	// Data is the payload. Multi-line data is joined with newlines.
	Data string
	// ID is the event id from an "id:" line.
	ID string
	// Comment holds the text of a comment-only frame, such as a keep-alive.
	// Only set when the reader was created WithComments.
	Comment string
}

// IsComment reports whether e is a comment-only frame.
func (e *Event) IsComment() bool {
	return e.Data == "" && e.Comment != ""
}

// Reader reads server-sent events from a stream.
type Reader interface {
	// Next returns the next frame. Returns io.EOF when the stream ends.
	Next() (*Event, error)
	// Close releases the underlying resources.
	Close() error
}

// ReaderOption configures a Reader.
type ReaderOption func(*reader)

// WithComments makes Next return comment-only frames instead of skipping them.
func WithComments() ReaderOption {
	return func(r *reader) { r.comments = true }
}

type reader struct {
	scanner  *bufio.Scanner
	body     io.ReadCloser
	comments bool
}

// NewReader creates an SSE reader from a readable stream.
func NewReader(body io.ReadCloser, opts ...ReaderOption) Reader {
	r := &reader{
		scanner: bufio.NewScanner(body),
		body:    body,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Next returns the next frame. Returns io.EOF when the stream ends.
func (r *reader) Next() (*Event, error) {
	var event Event
	var hasData, hasComment bool

	for r.scanner.Scan() {
		line := r.scanner.Text()

		// Blank line ends the frame
		if line == "" {
			if hasData || (r.comments && hasComment) {
				return &event, nil
			}
			continue
		}

		if strings.HasPrefix(line, ":") {
			if r.comments && !hasComment {
				event.Comment = strings.TrimPrefix(line[1:], " ")
				hasComment = true
			}
			continue
		}

		field, value := parseLine(line)
		switch field {
		case "data":
			if hasData {
				event.Data += "\n" + value
			} else {
				event.Data = value
				hasData = true
			}
		case "event":
			event.Event = value
		case "id":
			event.ID = value
		}
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	if hasData || (r.comments && hasComment) {
		return &event, nil
	}
	return nil, io.EOF
}

// Close releases the underlying stream.
func (r *reader) Close() error {
	return r.body.Close()
}

// parseLine splits a field line into name and value.
func parseLine(line string) (field, value string) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return line, ""
	}
	field = line[:idx]
	value = line[idx+1:]
	if value != "" && value[0] == ' ' {
		value = value[1:]
	}
	return field, value
}
