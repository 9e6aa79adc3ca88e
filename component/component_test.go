package component

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
)

// mockComponent implements Component for testing.
type mockComponent struct {
	name       string
	startErr   error
	stopErr    error
	health     Health
	slow       time.Duration
	startOrder *[]string
	stopOrder  *[]string
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	if m.startOrder != nil {
		*m.startOrder = append(*m.startOrder, m.name)
	}
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	if m.stopOrder != nil {
		*m.stopOrder = append(*m.stopOrder, m.name)
	}
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) Health {
	if m.slow > 0 {
		time.Sleep(m.slow)
	}
	return m.health
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&mockComponent{name: "sessions"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(&mockComponent{name: "sessions"}); err == nil {
		t.Error("expected error for duplicate registration")
	}
}

func TestGet(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockComponent{name: "sessions"})

	got := r.Get("sessions")
	if got == nil {
		t.Fatal("expected to get registered component")
	}
	if got.Name() != "sessions" {
		t.Errorf("expected 'sessions', got %q", got.Name())
	}
	if r.Get("missing") != nil {
		t.Error("expected nil for unregistered component")
	}
}

func TestStartAllOrder(t *testing.T) {
	r := NewRegistry()
	order := []string{}

	r.Register(&mockComponent{name: "sessions", startOrder: &order})
	r.Register(&mockComponent{name: "http-server", startOrder: &order})

	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	if len(order) != 2 || order[0] != "sessions" || order[1] != "http-server" {
		t.Errorf("expected start order [sessions, http-server], got %v", order)
	}
}

func TestStartAllError(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockComponent{name: "http-server", startErr: fmt.Errorf("address in use")})

	if err := r.StartAll(context.Background()); err == nil {
		t.Error("expected error from StartAll")
	}
}

func TestStartAllRollsBackOnFailure(t *testing.T) {
	r := NewRegistry()
	var started, stopped []string

	r.Register(&mockComponent{name: "telemetry", startOrder: &started, stopOrder: &stopped})
	r.Register(&mockComponent{name: "sessions", startOrder: &started, stopOrder: &stopped})
	r.Register(&mockComponent{name: "http-server", startOrder: &started, stopOrder: &stopped,
		startErr: fmt.Errorf("address in use")})

	err := r.StartAll(context.Background())
	if err == nil || !strings.Contains(err.Error(), "start http-server") {
		t.Fatalf("expected start error naming http-server, got %v", err)
	}
	if strings.Join(stopped, ",") != "sessions,telemetry" {
		t.Errorf("expected rollback [sessions telemetry], got %v", stopped)
	}

	stopped = nil
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll after rollback: %v", err)
	}
	if len(stopped) != 0 {
		t.Errorf("expected nothing left to stop, got %v", stopped)
	}
}

func TestStopAllReverseOrder(t *testing.T) {
	r := NewRegistry()
	order := []string{}

	r.Register(&mockComponent{name: "sessions", stopOrder: &order})
	r.Register(&mockComponent{name: "producers", stopOrder: &order})
	r.Register(&mockComponent{name: "http-server", stopOrder: &order})

	r.StartAll(context.Background())
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}

	if len(order) != 3 || order[0] != "http-server" || order[1] != "producers" || order[2] != "sessions" {
		t.Errorf("expected reverse stop order, got %v", order)
	}
}

func TestStopAllSkipsUnstarted(t *testing.T) {
	r := NewRegistry()
	order := []string{}
	r.Register(&mockComponent{name: "sessions", stopOrder: &order})

	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if len(order) != 0 {
		t.Errorf("expected 0 stops for unstarted components, got %d", len(order))
	}
}

func TestStopAllWithErrors(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockComponent{name: "sessions", stopErr: fmt.Errorf("drain failed")})
	r.Register(&mockComponent{name: "producers"})
	r.Register(&mockComponent{name: "http-server", stopErr: fmt.Errorf("shutdown timed out")})
	r.StartAll(context.Background())

	err := r.StopAll(context.Background())
	if err == nil {
		t.Fatal("expected error from StopAll")
	}
	for _, want := range []string{"stop sessions: drain failed", "stop http-server: shutdown timed out"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %q", want, err.Error())
		}
	}
}

func TestHealthAll(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockComponent{
		name:   "sessions",
		health: Health{Name: "sessions", Status: StatusHealthy, Message: "3 active sessions"},
	})
	r.Register(&mockComponent{
		name:   "http-server",
		health: Health{Name: "http-server", Status: StatusUnhealthy, Message: "not started"},
	})

	results := r.HealthAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Status != StatusHealthy {
		t.Errorf("expected sessions healthy, got %s", results[0].Status)
	}
	if results[1].Status != StatusUnhealthy {
		t.Errorf("expected http-server unhealthy, got %s", results[1].Status)
	}
}

func TestHealthAllTimeout(t *testing.T) {
	r := NewRegistry()
	r.healthTimeout = 20 * time.Millisecond
	r.Register(&mockComponent{name: "stuck", slow: time.Second,
		health: Health{Name: "stuck", Status: StatusHealthy}})
	r.Register(&mockComponent{name: "sessions",
		health: Health{Name: "sessions", Status: StatusHealthy}})

	results := r.HealthAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Name != "stuck" || results[0].Status != StatusUnhealthy {
		t.Errorf("expected stuck to be reported unhealthy, got %+v", results[0])
	}
	if results[1].Name != "sessions" || results[1].Status != StatusHealthy {
		t.Errorf("expected sessions healthy in second position, got %+v", results[1])
	}
}

func TestAll(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockComponent{name: "a"})
	r.Register(&mockComponent{name: "b"})

	all := r.All()
	if len(all) != 2 || all[0].Name() != "a" || all[1].Name() != "b" {
		t.Errorf("expected [a b] in registration order, got %v", all)
	}
}
