package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue()
	for i := 0; i < 3; i++ {
		if err := q.Push(NewUpdate("alice", string(rune('a'+i)), float64(i))); err != nil {
			t.Fatalf("Push failed: %v", err)
		}
	}
	if q.Len() != 3 {
		t.Fatalf("expected 3 buffered events, got %d", q.Len())
	}
	for i := 0; i < 3; i++ {
		ev, err := q.Pop(context.Background(), 10*time.Millisecond)
		if err != nil {
			t.Fatalf("Pop failed: %v", err)
		}
		if want := string(rune('a' + i)); ev.Update != want {
			t.Errorf("expected %q at position %d, got %q", want, i, ev.Update)
		}
	}
}

func TestQueuePopTimeout(t *testing.T) {
	q := NewQueue()
	start := time.Now()
	_, err := q.Pop(context.Background(), 20*time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("expected Pop to wait the full window, waited %v", elapsed)
	}
}

func TestQueuePopWakesOnPush(t *testing.T) {
	q := NewQueue()
	go func() {
		time.Sleep(10 * time.Millisecond)
		q.Push(NewCompletion("bob"))
	}()

	ev, err := q.Pop(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("Pop failed: %v", err)
	}
	if !ev.IsCompletion() {
		t.Errorf("expected completion event, got %+v", ev)
	}
}

func TestQueueClose(t *testing.T) {
	q := NewQueue()
	q.Push(NewUpdate("alice", "x", 0))
	q.Close()
	q.Close()

	if err := q.Push(NewUpdate("alice", "y", 0)); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("expected ErrQueueClosed on push, got %v", err)
	}
	if _, err := q.Pop(context.Background(), time.Millisecond); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("expected ErrQueueClosed on pop, got %v", err)
	}
	if q.Len() != 0 {
		t.Errorf("expected buffered events to be discarded, got %d", q.Len())
	}
}

func TestQueueCloseWakesReader(t *testing.T) {
	q := NewQueue()
	errc := make(chan error, 1)
	go func() {
		_, err := q.Pop(context.Background(), time.Second)
		errc <- err
	}()
	time.Sleep(10 * time.Millisecond)
	q.Close()

	select {
	case err := <-errc:
		if !errors.Is(err, ErrQueueClosed) {
			t.Errorf("expected ErrQueueClosed, got %v", err)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("reader was not woken by Close")
	}
}

func TestQueuePopContextCancel(t *testing.T) {
	q := NewQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := q.Pop(ctx, time.Second); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
