package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/sessionstream/component"
	"github.com/kbukum/sessionstream/logger"
)

// Hook is a lifecycle callback.
type Hook func(ctx context.Context) error

// App drives one service process: components, hooks, summary and shutdown.
// C is the concrete config type.
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	grace     time.Duration
	summaryTo io.Writer

	configure []func(ctx context.Context, app *App[C]) error
	onStart   []Hook
	onReady   []Hook
	onStop    []Hook
}

// NewApp applies defaults to cfg, validates it and sets up logging.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	base := cfg.GetServiceConfig()
	s := newSettings(opts)

	log := s.log
	if log == nil {
		logger.Init(base.Logging)
		log = logger.GetGlobalLogger()
	}

	return &App[C]{
		Name:       base.Name,
		Version:    base.Version,
		Cfg:        cfg,
		Components: component.NewRegistry(),
		Logger:     log,
		Summary:    NewSummary(base.Name, base.Version),
		grace:      s.grace,
		summaryTo:  s.summaryTo,
	}, nil
}

// RegisterComponent adds c to the registry. Registration order is start
// order.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// OnStart hooks run once every component is up, before configuration.
func (a *App[C]) OnStart(hooks ...Hook) { a.onStart = append(a.onStart, hooks...) }

// OnReady hooks run after the ready check.
func (a *App[C]) OnReady(hooks ...Hook) { a.onReady = append(a.onReady, hooks...) }

// OnStop hooks run at shutdown before any component is stopped.
func (a *App[C]) OnStop(hooks ...Hook) { a.onStop = append(a.onStop, hooks...) }

// OnConfigure callbacks run after the OnStart hooks and receive the App, so
// they can wire components together.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.configure = append(a.configure, fn)
}

// ReadyCheck fails when any component reports a status other than healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var errs []error
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status == component.StatusHealthy {
			continue
		}
		if h.Message != "" {
			errs = append(errs, fmt.Errorf("%s=%s(%s)", h.Name, h.Status, h.Message))
		} else {
			errs = append(errs, fmt.Errorf("%s=%s", h.Name, h.Status))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("unhealthy components: %w", errors.Join(errs...))
	}
	return nil
}

// Run starts everything, blocks until SIGINT, SIGTERM or ctx ends, then
// shuts down.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.start(ctx); err != nil {
		return err
	}
	a.Logger.Info("Application ready, waiting for shutdown signal")
	a.wait(ctx)
	return a.Shutdown(context.Background())
}

func (a *App[C]) start(ctx context.Context) error {
	began := time.Now()
	a.Logger.Info("Starting application", logger.Fields("name", a.Name, "version", a.Version))

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	steps := []struct {
		what string
		run  func() error
	}{
		{"onStart hook failed", func() error { return runHooks(ctx, a.onStart) }},
		{"configuration failed", func() error {
			for _, fn := range a.configure {
				if err := fn(ctx, a); err != nil {
					return err
				}
			}
			return nil
		}},
		{"ready check", func() error {
			if err := a.ReadyCheck(ctx); err != nil {
				a.Logger.Warn("Ready check reported issues", logger.Fields("error", err.Error()))
			}
			return nil
		}},
		{"onReady hook failed", func() error { return runHooks(ctx, a.onReady) }},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			a.teardown()
			return fmt.Errorf("%s: %w", step.what, err)
		}
	}

	a.Summary.SetStartupDuration(time.Since(began))
	a.Summary.Collect(ctx, a.Components)
	a.Summary.Write(a.summaryTo)
	return nil
}

// teardown stops components after a startup step failed past StartAll.
func (a *App[C]) teardown() {
	ctx, cancel := context.WithTimeout(context.Background(), a.grace)
	defer cancel()
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Warn("Teardown after failed startup", logger.Fields("error", err.Error()))
	}
}

func (a *App[C]) wait(ctx context.Context) {
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	if ctx.Err() != nil {
		a.Logger.Info("Context canceled, shutting down")
		return
	}
	a.Logger.Info("Received shutdown signal, graceful shutdown starting")
}

// Shutdown runs the OnStop hooks and stops all components, bounded by the
// graceful timeout. Use it directly when the caller owns the lifecycle
// instead of Run.
func (a *App[C]) Shutdown(ctx context.Context) error {
	a.Logger.Info("Shutting down application", logger.Fields("timeout", a.grace.String()))

	ctx, cancel := context.WithTimeout(ctx, a.grace)
	defer cancel()

	hookErr := runHooks(ctx, a.onStop)
	if hookErr != nil {
		a.Logger.Error("OnStop hook error", logger.Fields("error", hookErr.Error()))
	}
	stopErr := a.Components.StopAll(ctx)

	a.Logger.Info("Application shutdown complete")
	return errors.Join(hookErr, stopErr)
}

func runHooks(ctx context.Context, hooks []Hook) error {
	for i, h := range hooks {
		if err := h(ctx); err != nil {
			return fmt.Errorf("hook %d: %w", i, err)
		}
	}
	return nil
}
