package component

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/sessionstream/logger"
)

const (
	defaultStopTimeout   = 10 * time.Second
	defaultHealthTimeout = 2 * time.Second
)

type slot struct {
	c       Component
	running bool
}

// Registry owns the lifecycle of the service's components. Start follows
// registration order, stop runs it backwards.
type Registry struct {
	mu     sync.RWMutex
	slots  []*slot
	byName map[string]*slot

	stopTimeout   time.Duration
	healthTimeout time.Duration
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:        make(map[string]*slot),
		stopTimeout:   defaultStopTimeout,
		healthTimeout: defaultHealthTimeout,
	}
}

func (r *Registry) log() *logger.Logger {
	return logger.Get("components")
}

// Register appends c. Names must be unique; register dependencies first.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, dup := r.byName[name]; dup {
		return fmt.Errorf("component %s already registered", name)
	}
	s := &slot{c: c}
	r.slots = append(r.slots, s)
	r.byName[name] = s
	return nil
}

// StartAll starts every component in order. When one fails, the ones that
// already started are stopped again before the error is returned.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log().Info("Starting components", logger.Fields("count", len(r.slots)))
	for i, s := range r.slots {
		name := s.c.Name()
		if err := s.c.Start(ctx); err != nil {
			r.log().Error("Component start failed", logger.ErrorFields(name, err))
			if rbErr := r.stopFrom(context.WithoutCancel(ctx), i-1); rbErr != nil {
				r.log().Warn("Rollback incomplete", logger.Fields("error", rbErr.Error()))
			}
			return fmt.Errorf("start %s: %w", name, err)
		}
		s.running = true
		r.log().Debug("Component started", logger.Fields(logger.FieldComponent, name))
	}
	return nil
}

// StopAll stops running components in reverse order. Every component gets
// its own stop deadline; all failures are joined into the returned error.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.stopFrom(ctx, len(r.slots)-1)
	if err != nil {
		r.log().Error("Components stopped with errors", logger.Fields("error", err.Error()))
		return err
	}
	r.log().Info("Components stopped")
	return nil
}

// stopFrom stops slots[last], slots[last-1], ... slots[0]. Caller holds mu.
func (r *Registry) stopFrom(ctx context.Context, last int) error {
	var errs []error
	for i := last; i >= 0; i-- {
		s := r.slots[i]
		if !s.running {
			continue
		}
		name := s.c.Name()
		stopCtx, cancel := context.WithTimeout(ctx, r.stopTimeout)
		err := s.c.Stop(stopCtx)
		cancel()
		s.running = false
		if err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", name, err))
			continue
		}
		r.log().Debug("Component stopped", logger.Fields(logger.FieldComponent, name))
	}
	return errors.Join(errs...)
}

// HealthAll probes all components concurrently and returns their reports in
// registration order. A probe that outlives the health timeout is reported
// unhealthy.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.RLock()
	slots := append([]*slot(nil), r.slots...)
	timeout := r.healthTimeout
	r.mu.RUnlock()

	out := make([]Health, len(slots))
	var wg sync.WaitGroup
	for i, s := range slots {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out[i] = probe(ctx, s.c, timeout)
		}()
	}
	wg.Wait()
	return out
}

func probe(ctx context.Context, c Component, timeout time.Duration) Health {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan Health, 1)
	go func() { done <- c.Health(ctx) }()

	select {
	case h := <-done:
		return h
	case <-ctx.Done():
		return Health{Name: c.Name(), Status: StatusUnhealthy, Message: "health check timed out"}
	}
}

// Get returns the component registered under name, or nil.
func (r *Registry) Get(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.byName[name]; ok {
		return s.c
	}
	return nil
}

// All returns the components in registration order.
func (r *Registry) All() []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]Component, len(r.slots))
	for i, s := range r.slots {
		all[i] = s.c
	}
	return all
}
