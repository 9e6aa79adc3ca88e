package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/sessionstream/component"
	"github.com/kbukum/sessionstream/logger"
)

// Observer is notified when sessions enter and leave the registry.
type Observer interface {
	SessionCreated(ctx context.Context)
	SessionRemoved(ctx context.Context)
}

type nopObserver struct{}

func (nopObserver) SessionCreated(context.Context) {}
func (nopObserver) SessionRemoved(context.Context) {}

// Option configures a Registry.
type Option func(*Registry)

// WithIDGenerator replaces the default random UUID generator.
func WithIDGenerator(fn func() (string, error)) Option {
	return func(r *Registry) { r.newID = fn }
}

// WithObserver installs an observer for create/remove notifications.
func WithObserver(o Observer) Option {
	return func(r *Registry) {
		if o != nil {
			r.observer = o
		}
	}
}

// WithClock sets the clock used to timestamp events.
func WithClock(c *Clock) Option {
	return func(r *Registry) { r.clock = c }
}

// Registry maps session ids to live sessions. It is safe for concurrent use
// by request handlers, producers and stream dispatchers.
type Registry struct {
	cfg      Config
	mu       sync.RWMutex
	sessions map[string]*Session
	clock    *Clock
	newID    func() (string, error)
	observer Observer
	log      *logger.Logger

	stopSweep chan struct{}
	sweepDone chan struct{}
}

var _ component.Component = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry(cfg Config, opts ...Option) *Registry {
	r := &Registry{
		cfg:      cfg,
		sessions: make(map[string]*Session),
		clock:    NewClock(),
		newID:    randomID,
		observer: nopObserver{},
		log:      logger.Get("sessions"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func randomID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Create registers a new session for payload and returns it. The id is
// unique among live sessions.
func (r *Registry) Create(payload string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for attempt := 0; attempt < 3; attempt++ {
		id, err := r.newID()
		if err != nil {
			return nil, fmt.Errorf("generate session id: %w", err)
		}
		if _, exists := r.sessions[id]; exists {
			continue
		}
		s := newSession(id, payload, time.Now())
		r.sessions[id] = s
		r.observer.SessionCreated(context.Background())
		r.log.Debug("Session created", logger.SessionFields(id))
		return s, nil
	}
	return nil, fmt.Errorf("generate session id: collision after retries")
}

// Lookup returns the live session for id.
func (r *Registry) Lookup(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Remove tears down the session for id and reports whether it was present.
// Removing an unknown id is a no-op.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	s.tearDown()
	r.observer.SessionRemoved(context.Background())
	r.log.Debug("Session removed", logger.SessionFields(id))
	return true
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// IDs returns the live session ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Now returns the current event timestamp.
func (r *Registry) Now() float64 {
	return r.clock.Now()
}

// Sweep removes sessions older than maxIdle that no stream has attached to.
// It returns the number of sessions removed.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	r.mu.RLock()
	var stale []string
	for id, s := range r.sessions {
		if !s.Attached() && s.CreatedAt().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	r.mu.RUnlock()

	removed := 0
	for _, id := range stale {
		if r.removeIfIdle(id, cutoff) {
			removed++
		}
	}
	if removed > 0 {
		r.log.Info("Swept idle sessions", logger.Fields("count", removed))
	}
	return removed
}

// removeIfIdle removes id only if it was created before cutoff and no stream
// holds it. The session is claimed under the write lock, so a stream that
// attaches after the check gets ResultBusy instead of a torn-down queue.
func (r *Registry) removeIfIdle(id string, cutoff time.Time) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if !ok || !s.CreatedAt().Before(cutoff) || !s.Attach() {
		r.mu.Unlock()
		return false
	}
	delete(r.sessions, id)
	r.mu.Unlock()

	s.tearDown()
	r.observer.SessionRemoved(context.Background())
	r.log.Debug("Session expired", logger.SessionFields(id))
	return true
}

// --- component.Component ---

// Name returns the component name.
func (r *Registry) Name() string { return "sessions" }

// Start launches the idle-session sweeper when sweeping is enabled.
func (r *Registry) Start(ctx context.Context) error {
	if r.cfg.MaxIdle <= 0 || r.cfg.SweepInterval <= 0 {
		return nil
	}
	r.stopSweep = make(chan struct{})
	r.sweepDone = make(chan struct{})
	go r.sweepLoop()
	return nil
}

func (r *Registry) sweepLoop() {
	defer close(r.sweepDone)
	ticker := time.NewTicker(r.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.Sweep(r.cfg.MaxIdle)
		case <-r.stopSweep:
			return
		}
	}
}

// Stop halts the sweeper and tears down every remaining session.
func (r *Registry) Stop(ctx context.Context) error {
	if r.stopSweep != nil {
		close(r.stopSweep)
		select {
		case <-r.sweepDone:
		case <-ctx.Done():
			return ctx.Err()
		}
		r.stopSweep = nil
	}
	for _, id := range r.IDs() {
		r.Remove(id)
	}
	return nil
}

// Health reports the number of live sessions.
func (r *Registry) Health(ctx context.Context) component.Health {
	return component.Health{
		Name:    r.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d active sessions", r.Len()),
	}
}

// Describe returns the startup summary entry.
func (r *Registry) Describe() component.Description {
	details := "sweeper disabled"
	if r.cfg.MaxIdle > 0 && r.cfg.SweepInterval > 0 {
		details = fmt.Sprintf("max idle %s, sweep every %s", r.cfg.MaxIdle, r.cfg.SweepInterval)
	}
	return component.Description{Name: "Session Registry", Type: "registry", Details: details}
}
