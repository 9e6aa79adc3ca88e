package session

import (
	"time"

	"github.com/kbukum/sessionstream/util"
)

// StatusDone marks the completion event of a session.
const StatusDone = "done"

// CompletionMessage is the update text carried by the completion event.
const CompletionMessage = "Processing complete"

// Event is one unit of data produced for a session. Ordinary updates carry
// a timestamp; the completion event carries Status instead.
type Event struct {
	Username  string   `json:"username"`
	Update    string   `json:"update"`
	Timestamp *float64 `json:"timestamp,omitempty"`
	Status    string   `json:"status,omitempty"`
}

// NewUpdate builds an ordinary update event.
func NewUpdate(username, update string, timestamp float64) Event {
	return Event{
		Username:  username,
		Update:    update,
		Timestamp: util.Ptr(timestamp),
	}
}

// NewCompletion builds the terminal event for a session.
func NewCompletion(username string) Event {
	return Event{
		Username: username,
		Update:   CompletionMessage,
		Status:   StatusDone,
	}
}

// IsCompletion reports whether e is the terminal event of its session.
func (e Event) IsCompletion() bool {
	return e.Status == StatusDone
}

// Clock yields monotonic event timestamps in seconds since its origin.
type Clock struct {
	origin time.Time
}

// NewClock returns a clock whose origin is now.
func NewClock() *Clock {
	return &Clock{origin: time.Now()}
}

// Now returns the seconds elapsed since the clock origin. time.Since reads
// the monotonic clock, so values never go backwards.
func (c *Clock) Now() float64 {
	return time.Since(c.origin).Seconds()
}
