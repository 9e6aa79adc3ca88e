package producer

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/sessionstream/session"
)

func drain(t *testing.T, s *session.Session, n int) []session.Event {
	t.Helper()
	events := make([]session.Event, 0, n)
	for len(events) < n {
		ev, err := s.Next(context.Background(), time.Second)
		if err != nil {
			t.Fatalf("Next after %d events: %v", len(events), err)
		}
		events = append(events, ev)
	}
	return events
}

func TestRunProducesUpdatesThenCompletion(t *testing.T) {
	reg := session.NewRegistry(session.Config{})
	s, _ := reg.Create("alice")
	p := New(Config{Updates: 5, Interval: time.Millisecond}, reg)

	if got := p.Run(context.Background(), s.ID(), s.Payload()); got != OutcomeCompleted {
		t.Fatalf("expected completed, got %s", got)
	}

	events := drain(t, s, 6)
	var last float64
	for i, ev := range events[:5] {
		want := "Update " + string(rune('1'+i)) + " for alice"
		if ev.Update != want {
			t.Errorf("event %d: expected %q, got %q", i, want, ev.Update)
		}
		if ev.Username != "alice" {
			t.Errorf("event %d: expected username alice, got %q", i, ev.Username)
		}
		if ev.Timestamp == nil {
			t.Fatalf("event %d: missing timestamp", i)
		}
		if *ev.Timestamp < last {
			t.Errorf("event %d: timestamp went backwards", i)
		}
		last = *ev.Timestamp
	}
	if !events[5].IsCompletion() || events[5].Update != "Processing complete" {
		t.Errorf("expected completion event, got %+v", events[5])
	}
	if s.State() != session.StateCompleted {
		t.Errorf("expected session completed, got %s", s.State())
	}
}

func TestRunSleepsAfterEveryUpdate(t *testing.T) {
	reg := session.NewRegistry(session.Config{})
	s, _ := reg.Create("bob")
	p := New(Config{Updates: 2, Interval: 15 * time.Millisecond}, reg)

	start := time.Now()
	p.Run(context.Background(), s.ID(), s.Payload())
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("expected at least two intervals, took %v", elapsed)
	}
}

func TestRunAbandonsRemovedSession(t *testing.T) {
	reg := session.NewRegistry(session.Config{})
	s, _ := reg.Create("carol")
	p := New(Config{Updates: 5, Interval: 10 * time.Millisecond}, reg)

	go func() {
		time.Sleep(15 * time.Millisecond)
		reg.Remove(s.ID())
	}()

	if got := p.Run(context.Background(), s.ID(), s.Payload()); got != OutcomeAbandoned {
		t.Errorf("expected abandoned, got %s", got)
	}
}

func TestRunUnknownSession(t *testing.T) {
	reg := session.NewRegistry(session.Config{})
	p := New(Config{Updates: 1, Interval: time.Millisecond}, reg)
	if got := p.Run(context.Background(), "ffff", "x"); got != OutcomeAbandoned {
		t.Errorf("expected abandoned, got %s", got)
	}
}

func TestRunCancelled(t *testing.T) {
	reg := session.NewRegistry(session.Config{})
	s, _ := reg.Create("dave")
	p := New(Config{Updates: 5, Interval: time.Second}, reg)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	if got := p.Run(ctx, s.ID(), s.Payload()); got != OutcomeCancelled {
		t.Errorf("expected cancelled, got %s", got)
	}
	if s.Pending() != 1 {
		t.Errorf("expected only the first update to be queued, got %d", s.Pending())
	}
}

func TestScheduleAndWait(t *testing.T) {
	reg := session.NewRegistry(session.Config{})
	p := New(Config{Updates: 2, Interval: time.Millisecond}, reg)

	a, _ := reg.Create("a")
	b, _ := reg.Create("b")
	p.Schedule(a)
	p.Schedule(b)
	p.Wait()

	if p.Running() != 0 {
		t.Errorf("expected no runs in flight, got %d", p.Running())
	}
	if a.Pending() != 3 || b.Pending() != 3 {
		t.Errorf("expected 3 events per session, got %d/%d", a.Pending(), b.Pending())
	}
}

func TestStopCancelsRuns(t *testing.T) {
	reg := session.NewRegistry(session.Config{})
	p := New(Config{Updates: 5, Interval: time.Hour}, reg)
	s, _ := reg.Create("erin")
	p.Schedule(s)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := p.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if p.Running() != 0 {
		t.Errorf("expected no runs in flight after Stop, got %d", p.Running())
	}

	late, _ := reg.Create("late")
	p.Schedule(late)
	if late.Pending() != 0 || p.Running() != 0 {
		t.Error("expected Schedule after Stop to be ignored")
	}
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *recordingObserver) ProducerFinished(_ context.Context, outcome string, _ time.Duration) {
	r.mu.Lock()
	r.outcomes = append(r.outcomes, outcome)
	r.mu.Unlock()
}

func TestRunNotifiesObserver(t *testing.T) {
	reg := session.NewRegistry(session.Config{})
	obs := &recordingObserver{}
	p := New(Config{Updates: 1, Interval: time.Millisecond}, reg, WithObserver(obs))

	s, _ := reg.Create("frank")
	p.Run(context.Background(), s.ID(), s.Payload())
	p.Run(context.Background(), "missing", "ghost")

	if got := strings.Join(obs.outcomes, ","); got != "completed,abandoned" {
		t.Errorf("expected completed,abandoned, got %s", got)
	}
}

func TestConfig(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Updates != 5 || cfg.Interval != 2*time.Second {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	for _, n := range []int{-1, 0} {
		if err := (&Config{Updates: n, Interval: time.Second}).Validate(); err == nil {
			t.Errorf("expected error for %d updates", n)
		}
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
