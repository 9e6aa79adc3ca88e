package bootstrap

import (
	"io"
	"os"
	"time"

	"github.com/kbukum/sessionstream/logger"
)

// Option tweaks how NewApp builds the App. Options are not generic so the
// same value works for any config type.
type Option func(*settings)

type settings struct {
	log       *logger.Logger
	grace     time.Duration
	summaryTo io.Writer
}

func newSettings(opts []Option) settings {
	s := settings{grace: 15 * time.Second, summaryTo: os.Stdout}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithLogger replaces the logger that NewApp would otherwise build from the
// config's logging section.
func WithLogger(l *logger.Logger) Option {
	return func(s *settings) { s.log = l }
}

// WithGracefulTimeout bounds the whole shutdown sequence.
func WithGracefulTimeout(d time.Duration) Option {
	return func(s *settings) { s.grace = d }
}

// WithSummaryOutput redirects the startup summary. io.Discard silences it.
func WithSummaryOutput(w io.Writer) Option {
	return func(s *settings) { s.summaryTo = w }
}
