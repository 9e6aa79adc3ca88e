package sse

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/sessionstream/logger"
	"github.com/kbukum/sessionstream/observability"
	"github.com/kbukum/sessionstream/resilience"
	"github.com/kbukum/sessionstream/session"
)

// Result describes why a stream ended.
type Result string

const (
	// ResultCompleted means the completion event was delivered.
	ResultCompleted Result = "completed"
	// ResultDisconnected means the client went away first.
	ResultDisconnected Result = "disconnected"
	// ResultInvalidSession means the id was unknown and one error frame was sent.
	ResultInvalidSession Result = "invalid_session"
	// ResultWriteFailed means writing to the client failed.
	ResultWriteFailed Result = "write_failed"
	// ResultSessionClosed means the session was torn down under the stream.
	ResultSessionClosed Result = "session_closed"
	// ResultBusy means another stream already holds the session. Nothing was
	// written and the session is left in place.
	ResultBusy Result = "busy"
	// ResultOverloaded means MaxStreams streams were already open. Nothing
	// was written and the session is left in place.
	ResultOverloaded Result = "overloaded"
	// ResultUnsupported means the response writer cannot flush, so frames
	// would never reach the client. Nothing was written and the session is
	// left in place.
	ResultUnsupported Result = "unsupported"
)

// Sessions is the view of the registry a dispatcher needs.
type Sessions interface {
	Lookup(id string) (*session.Session, bool)
	Remove(id string) bool
}

// Observer receives stream lifecycle notifications.
type Observer interface {
	StreamOpened(ctx context.Context)
	StreamClosed(ctx context.Context, result string, d time.Duration)
	EventDelivered(ctx context.Context)
	KeepAliveSent(ctx context.Context)
}

type nopObserver struct{}

func (nopObserver) StreamOpened(context.Context)                        {}
func (nopObserver) StreamClosed(context.Context, string, time.Duration) {}
func (nopObserver) EventDelivered(context.Context)                      {}
func (nopObserver) KeepAliveSent(context.Context)                       {}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithObserver installs a stream observer.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) {
		if o != nil {
			d.observer = o
		}
	}
}

// Dispatcher streams queued session events to HTTP clients.
type Dispatcher struct {
	cfg      Config
	sessions Sessions
	observer Observer
	limit    *resilience.Bulkhead
	log      *logger.Logger
}

// NewDispatcher creates a dispatcher over the given registry.
func NewDispatcher(cfg Config, sessions Sessions, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		cfg:      cfg,
		sessions: sessions,
		observer: nopObserver{},
		log:      logger.Get("sse"),
	}
	if cfg.MaxStreams > 0 {
		d.limit = resilience.NewBulkhead(resilience.BulkheadConfig{
			Name:          "streams",
			MaxConcurrent: cfg.MaxStreams,
		})
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Serve streams the session id to w until the stream ends. Unless the
// result is ResultBusy, ResultOverloaded or ResultUnsupported, the session
// has been removed from the registry when Serve returns. Unknown ids get
// their error frame even when every stream slot is taken.
func (d *Dispatcher) Serve(w http.ResponseWriter, r *http.Request, id string) Result {
	fw, ok := newFrameWriter(w)
	if !ok {
		d.log.WithContext(r.Context()).Error("Streaming not supported by response writer", logger.SessionFields(id))
		return ResultUnsupported
	}

	s, found := d.sessions.Lookup(id)
	if !found || d.limit == nil {
		return d.serve(fw, r, id, s)
	}

	release, err := d.limit.Acquire(r.Context())
	if err != nil {
		d.log.WithContext(r.Context()).Warn("Stream rejected, at capacity",
			logger.SessionFields(id, "max_streams", d.limit.MaxConcurrent()))
		return ResultOverloaded
	}
	defer release()
	return d.serve(fw, r, id, s)
}

// Open returns the number of streams currently holding a slot, or -1 when
// streams are unlimited.
func (d *Dispatcher) Open() int {
	if d.limit == nil {
		return -1
	}
	return d.limit.InUse()
}

// serve runs one stream. A nil s means the id was not found.
func (d *Dispatcher) serve(fw *frameWriter, r *http.Request, id string, s *session.Session) (result Result) {
	ctx, span := observability.StartSpan(r.Context(), observability.SpanStream,
		trace.WithAttributes(attribute.String(observability.AttrSessionID, id)))
	defer func() {
		span.SetAttributes(attribute.String(observability.AttrStreamResult, string(result)))
		span.End()
	}()
	log := d.log.WithContext(ctx)

	found := s != nil
	if found && !s.Attach() {
		log.Warn("Stream rejected, session already attached", logger.SessionFields(id))
		return ResultBusy
	}
	defer d.sessions.Remove(id)

	prepare(fw.rw, log, id)
	fw.flush()

	if !found {
		log.Debug("Unknown session", logger.SessionFields(id))
		if err := fw.data(ErrorFrame{Error: InvalidSessionMessage}); err != nil {
			return ResultWriteFailed
		}
		return ResultInvalidSession
	}

	start := time.Now()
	d.observer.StreamOpened(ctx)
	log.Debug("Stream opened", logger.SessionFields(id, "remote_addr", r.RemoteAddr))
	defer func() {
		elapsed := time.Since(start)
		d.observer.StreamClosed(ctx, string(result), elapsed)
		log.Info("Stream closed", logger.SessionFields(id,
			"result", string(result),
			logger.FieldDuration, elapsed.Milliseconds(),
		))
	}()

	return d.stream(ctx, fw, s)
}

func (d *Dispatcher) stream(ctx context.Context, fw *frameWriter, s *session.Session) Result {
	for {
		if ctx.Err() != nil {
			return ResultDisconnected
		}

		ev, err := s.Next(ctx, d.cfg.KeepAliveTimeout)
		switch {
		case err == nil:
			if err := fw.data(ev); err != nil {
				observability.SetSpanError(ctx, err)
				return ResultWriteFailed
			}
			d.observer.EventDelivered(ctx)
			if ev.IsCompletion() {
				return ResultCompleted
			}
		case errors.Is(err, session.ErrTimeout):
			if err := fw.comment(KeepAliveComment); err != nil {
				observability.SetSpanError(ctx, err)
				return ResultWriteFailed
			}
			d.observer.KeepAliveSent(ctx)
		case errors.Is(err, session.ErrQueueClosed):
			return ResultSessionClosed
		default:
			return ResultDisconnected
		}
	}
}

// prepare sets the stream headers and lifts the server write deadline,
// which would otherwise cut the stream off.
func prepare(w http.ResponseWriter, log *logger.Logger, id string) {
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		log.Warn("Could not disable write deadline", logger.SessionFields(id, logger.FieldError, err.Error()))
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
}
