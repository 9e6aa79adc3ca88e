package observability

import (
	"context"
	"errors"
	"fmt"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/sessionstream/component"
	"github.com/kbukum/sessionstream/logger"
)

// Telemetry owns the tracer and meter providers for the application.
type Telemetry struct {
	cfg Config
	svc ServiceInfo
	log *logger.Logger

	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
}

var (
	_ component.Component   = (*Telemetry)(nil)
	_ component.Describable = (*Telemetry)(nil)
)

// NewTelemetry creates the telemetry component. Nothing is exported until
// Start and only when cfg.Enabled is set.
func NewTelemetry(cfg Config, svc ServiceInfo) *Telemetry {
	return &Telemetry{cfg: cfg, svc: svc, log: logger.Get("telemetry")}
}

// Name returns the component name.
func (t *Telemetry) Name() string { return "telemetry" }

// Start installs the OTLP tracer and meter providers.
func (t *Telemetry) Start(ctx context.Context) error {
	if !t.cfg.Enabled {
		return nil
	}

	res, err := newResource(ctx, t.svc)
	if err != nil {
		return fmt.Errorf("creating resource: %w", err)
	}
	tp, err := newTracerProvider(ctx, t.cfg, res)
	if err != nil {
		return err
	}
	mp, err := newMeterProvider(ctx, t.cfg, res)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return err
	}
	t.tp, t.mp = tp, mp

	t.log.Info("Telemetry export started", logger.Fields(
		"endpoint", t.cfg.Endpoint,
		"sample_rate", t.cfg.SampleRate,
		"interval", t.cfg.Interval.String(),
	))
	return nil
}

// Stop flushes and shuts down both providers.
func (t *Telemetry) Stop(ctx context.Context) error {
	var errs []error
	if t.mp != nil {
		errs = append(errs, t.mp.Shutdown(ctx))
	}
	if t.tp != nil {
		errs = append(errs, t.tp.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

// Health reports whether export is active.
func (t *Telemetry) Health(ctx context.Context) component.Health {
	msg := "export disabled"
	if t.tp != nil {
		msg = "exporting to " + t.cfg.Endpoint
	}
	return component.Health{Name: t.Name(), Status: component.StatusHealthy, Message: msg}
}

// Describe returns the startup summary entry.
func (t *Telemetry) Describe() component.Description {
	details := "disabled"
	if t.cfg.Enabled {
		details = fmt.Sprintf("OTLP %s, sample rate %.2f", t.cfg.Endpoint, t.cfg.SampleRate)
	}
	return component.Description{Name: "Telemetry", Type: "observability", Details: details}
}
