package session

import (
	"fmt"
	"time"
)

// Config controls registry housekeeping.
type Config struct {
	// MaxIdle is how long a session may wait for its stream before the
	// sweeper removes it.
	MaxIdle time.Duration `yaml:"max_idle" mapstructure:"max_idle"`
	// SweepInterval is how often the sweeper runs.
	SweepInterval time.Duration `yaml:"sweep_interval" mapstructure:"sweep_interval"`
}

// ApplyDefaults sets unset fields to their defaults.
func (c *Config) ApplyDefaults() {
	if c.MaxIdle == 0 {
		c.MaxIdle = 5 * time.Minute
	}
	if c.SweepInterval == 0 {
		c.SweepInterval = time.Minute
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.MaxIdle < 0 {
		return fmt.Errorf("session.max_idle must be non-negative (got: %s)", c.MaxIdle)
	}
	if c.SweepInterval < 0 {
		return fmt.Errorf("session.sweep_interval must be non-negative (got: %s)", c.SweepInterval)
	}
	return nil
}
