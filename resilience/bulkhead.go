package resilience

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrBulkheadFull is returned when no slot is free and waiting is off.
	ErrBulkheadFull = errors.New("bulkhead is full")
	// ErrBulkheadTimeout is returned when MaxWait passed without a free slot.
	ErrBulkheadTimeout = errors.New("bulkhead wait timeout")
)

const defaultSlots = 10

// BulkheadConfig configures a Bulkhead.
type BulkheadConfig struct {
	Name string
	// MaxConcurrent is the slot count. Values <= 0 mean 10.
	MaxConcurrent int
	// MaxWait bounds how long Acquire queues for a slot. Zero fails fast.
	MaxWait time.Duration
	// OnReject, when set, sees every refused Acquire.
	OnReject func(name string, err error)
}

// Bulkhead is a counting semaphore over a fixed number of slots.
type Bulkhead struct {
	cfg   BulkheadConfig
	slots chan struct{}
}

// NewBulkhead returns a Bulkhead with every slot free.
func NewBulkhead(cfg BulkheadConfig) *Bulkhead {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = defaultSlots
	}
	return &Bulkhead{cfg: cfg, slots: make(chan struct{}, cfg.MaxConcurrent)}
}

// Acquire takes a slot and returns the func that gives it back. The release
// func is safe to call more than once.
func (b *Bulkhead) Acquire(ctx context.Context) (release func(), err error) {
	if err := b.take(ctx); err != nil {
		if b.cfg.OnReject != nil {
			b.cfg.OnReject(b.cfg.Name, err)
		}
		return nil, err
	}
	done := false
	return func() {
		if !done {
			done = true
			<-b.slots
		}
	}, nil
}

// Execute runs fn inside a slot. fn is never called when Acquire fails.
func (b *Bulkhead) Execute(ctx context.Context, fn func() error) error {
	release, err := b.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}

func (b *Bulkhead) take(ctx context.Context) error {
	select {
	case b.slots <- struct{}{}:
		return nil
	default:
		if b.cfg.MaxWait <= 0 {
			return ErrBulkheadFull
		}
	}

	wait := time.NewTimer(b.cfg.MaxWait)
	defer wait.Stop()
	select {
	case b.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-wait.C:
		return ErrBulkheadTimeout
	}
}

// InUse is the number of held slots.
func (b *Bulkhead) InUse() int { return len(b.slots) }

// Available is the number of free slots.
func (b *Bulkhead) Available() int { return cap(b.slots) - len(b.slots) }

// MaxConcurrent is the slot count.
func (b *Bulkhead) MaxConcurrent() int { return cap(b.slots) }
