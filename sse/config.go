package sse

import (
	"fmt"
	"time"
)

// Config controls stream pacing.
type Config struct {
	// KeepAliveTimeout is how long the dispatcher waits for an event before
	// writing a keep-alive comment.
	KeepAliveTimeout time.Duration `yaml:"keepalive_timeout" mapstructure:"keepalive_timeout"`
	// MaxStreams caps concurrently open streams. Zero means unlimited.
	MaxStreams int `yaml:"max_streams" mapstructure:"max_streams"`
}

// ApplyDefaults sets unset fields to their defaults.
func (c *Config) ApplyDefaults() {
	if c.KeepAliveTimeout == 0 {
		c.KeepAliveTimeout = time.Second
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.KeepAliveTimeout <= 0 {
		return fmt.Errorf("stream.keepalive_timeout must be positive (got: %s)", c.KeepAliveTimeout)
	}
	if c.MaxStreams < 0 {
		return fmt.Errorf("stream.max_streams must be non-negative (got: %d)", c.MaxStreams)
	}
	return nil
}
