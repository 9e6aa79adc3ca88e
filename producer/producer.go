package producer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/sessionstream/component"
	"github.com/kbukum/sessionstream/logger"
	"github.com/kbukum/sessionstream/observability"
	"github.com/kbukum/sessionstream/session"
)

// Sessions is the view of the registry a producer needs.
type Sessions interface {
	Lookup(id string) (*session.Session, bool)
	Now() float64
}

// Outcome describes how a producer run ended.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeAbandoned Outcome = "abandoned"
	OutcomeCancelled Outcome = "cancelled"
)

// Observer is notified when a run ends.
type Observer interface {
	ProducerFinished(ctx context.Context, outcome string, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) ProducerFinished(context.Context, string, time.Duration) {}

// Option configures a Producer.
type Option func(*Producer)

// WithObserver installs a run observer.
func WithObserver(o Observer) Option {
	return func(p *Producer) {
		if o != nil {
			p.observer = o
		}
	}
}

// Producer schedules and tracks producer runs. It is a component: Stop
// cancels every in-flight run and waits for them to return.
type Producer struct {
	cfg      Config
	sessions Sessions
	observer Observer
	log      *logger.Logger

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running atomic.Int64
}

var (
	_ component.Component   = (*Producer)(nil)
	_ component.Describable = (*Producer)(nil)
)

// New creates a Producer reading sessions from the given registry.
func New(cfg Config, sessions Sessions, opts ...Option) *Producer {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Producer{
		cfg:      cfg,
		sessions: sessions,
		observer: nopObserver{},
		log:      logger.Get("producer"),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Schedule starts a run for s in the background and returns immediately.
func (p *Producer) Schedule(s *session.Session) {
	p.mu.Lock()
	ctx := p.ctx
	if ctx.Err() != nil {
		p.mu.Unlock()
		p.log.Warn("Producer stopped, run not scheduled", logger.SessionFields(s.ID()))
		return
	}
	p.wg.Add(1)
	p.mu.Unlock()

	p.running.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.running.Add(-1)
		p.Run(ctx, s.ID(), s.Payload())
	}()
}

// Run produces the full event sequence for the session id. Before each
// enqueue the session is looked up again, so a run whose session has been
// removed stops without error.
func (p *Producer) Run(ctx context.Context, id, payload string) Outcome {
	ctx, span := observability.StartSpan(ctx, observability.SpanProducer,
		trace.WithAttributes(attribute.String(observability.AttrSessionID, id)))
	defer span.End()

	start := time.Now()
	outcome := p.run(ctx, id, payload)
	span.SetAttributes(attribute.String(observability.AttrProducerResult, string(outcome)))
	p.observer.ProducerFinished(ctx, string(outcome), time.Since(start))
	p.log.Debug("Producer finished", logger.SessionFields(id,
		logger.FieldStatus, string(outcome),
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))
	return outcome
}

func (p *Producer) run(ctx context.Context, id, payload string) Outcome {
	for i := 1; i <= p.cfg.Updates; i++ {
		ev := session.NewUpdate(payload, fmt.Sprintf("Update %d for %s", i, payload), p.sessions.Now())
		if !p.publish(id, ev) {
			return OutcomeAbandoned
		}

		select {
		case <-time.After(p.cfg.Interval):
		case <-ctx.Done():
			return OutcomeCancelled
		}
	}

	if !p.publish(id, session.NewCompletion(payload)) {
		return OutcomeAbandoned
	}
	return OutcomeCompleted
}

func (p *Producer) publish(id string, ev session.Event) bool {
	s, ok := p.sessions.Lookup(id)
	if !ok {
		return false
	}
	if err := s.Publish(ev); err != nil {
		if !errors.Is(err, session.ErrSessionClosed) {
			p.log.Warn("Publish failed", logger.SessionFields(id, logger.FieldError, err.Error()))
		}
		return false
	}
	return true
}

// Running returns the number of in-flight runs.
func (p *Producer) Running() int64 { return p.running.Load() }

// Wait blocks until every scheduled run has returned.
func (p *Producer) Wait() { p.wg.Wait() }

// --- component.Component ---

// Name returns the component name.
func (p *Producer) Name() string { return "producers" }

// Start is a no-op; runs are started by Schedule.
func (p *Producer) Start(ctx context.Context) error { return nil }

// Stop cancels in-flight runs and waits for them, bounded by ctx.
func (p *Producer) Stop(ctx context.Context) error {
	p.mu.Lock()
	p.cancel()
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("producers: %d runs still in flight: %w", p.Running(), ctx.Err())
	}
}

// Health reports the number of in-flight runs.
func (p *Producer) Health(ctx context.Context) component.Health {
	return component.Health{
		Name:    p.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d runs in flight", p.Running()),
	}
}

// Describe returns the startup summary entry.
func (p *Producer) Describe() component.Description {
	return component.Description{
		Name:    "Producer",
		Type:    "worker",
		Details: fmt.Sprintf("%d updates every %s", p.cfg.Updates, p.cfg.Interval),
	}
}
