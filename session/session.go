package session

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

var (
	// ErrSessionClosed is returned when publishing to a torn-down session.
	ErrSessionClosed = errors.New("session: torn down")
	// ErrSessionCompleted is returned when publishing after the completion event.
	ErrSessionCompleted = errors.New("session: already completed")
)

// State is the lifecycle state of a session.
type State int32

const (
	StateActive State = iota
	StateCompleted
	StateTornDown
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateCompleted:
		return "completed"
	case StateTornDown:
		return "torn_down"
	default:
		return "unknown"
	}
}

// Session binds one client submission to its event queue.
type Session struct {
	id        string
	payload   string
	createdAt time.Time
	queue     *Queue
	state     atomic.Int32
	attached  atomic.Bool
}

func newSession(id, payload string, now time.Time) *Session {
	return &Session{
		id:        id,
		payload:   payload,
		createdAt: now,
		queue:     NewQueue(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Payload returns the client-supplied value echoed back in every event.
func (s *Session) Payload() string { return s.payload }

// CreatedAt returns when the session was registered.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// State returns the current lifecycle state.
func (s *Session) State() State { return State(s.state.Load()) }

// Pending returns the number of events waiting to be streamed.
func (s *Session) Pending() int { return s.queue.Len() }

// Publish enqueues ev. Publishing the completion event moves the session to
// StateCompleted, after which every further Publish fails.
func (s *Session) Publish(ev Event) error {
	switch s.State() {
	case StateCompleted:
		return ErrSessionCompleted
	case StateTornDown:
		return ErrSessionClosed
	}

	if err := s.queue.Push(ev); err != nil {
		return ErrSessionClosed
	}
	if ev.IsCompletion() {
		s.state.CompareAndSwap(int32(StateActive), int32(StateCompleted))
	}
	return nil
}

// Next waits up to timeout for the next event. See Queue.Pop for the errors.
func (s *Session) Next(ctx context.Context, timeout time.Duration) (Event, error) {
	return s.queue.Pop(ctx, timeout)
}

// Attach claims the session for a stream. It returns false when another
// stream already holds it.
func (s *Session) Attach() bool {
	return s.attached.CompareAndSwap(false, true)
}

// Attached reports whether a stream currently holds the session.
func (s *Session) Attached() bool {
	return s.attached.Load()
}

func (s *Session) tearDown() {
	s.state.Store(int32(StateTornDown))
	s.queue.Close()
}
