package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/eapache/queue"
)

var (
	// ErrTimeout is returned by Pop when no event arrived within the wait window.
	ErrTimeout = errors.New("session: no event within wait window")
	// ErrQueueClosed is returned once the queue has been closed by teardown.
	ErrQueueClosed = errors.New("session: queue closed")
)

// Queue is an unbounded FIFO of events with one writer and one reader.
// Push never blocks; Pop waits up to a timeout for the next event.
type Queue struct {
	mu     sync.Mutex
	items  *queue.Queue
	closed bool
	notify chan struct{}
	done   chan struct{}
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{
		items:  queue.New(),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Push appends ev to the tail of the queue.
func (q *Queue) Push(ev Event) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.items.Add(ev)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return nil
}

// Pop removes and returns the head of the queue. It waits at most timeout
// for an event to arrive and returns ErrTimeout when none did, ctx.Err()
// when ctx ends first, and ErrQueueClosed after Close.
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (Event, error) {
	if ev, ok, err := q.tryPop(); ok || err != nil {
		return ev, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-q.notify:
		case <-q.done:
		case <-timer.C:
			return Event{}, ErrTimeout
		case <-ctx.Done():
			return Event{}, ctx.Err()
		}
		if ev, ok, err := q.tryPop(); ok || err != nil {
			return ev, err
		}
	}
}

func (q *Queue) tryPop() (Event, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return Event{}, false, ErrQueueClosed
	}
	if q.items.Length() == 0 {
		return Event{}, false, nil
	}
	return q.items.Remove().(Event), true, nil
}

// Len returns the number of buffered events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Length()
}

// Close discards buffered events and wakes a waiting reader. Safe to call
// more than once.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.items = queue.New()
	close(q.done)
}
