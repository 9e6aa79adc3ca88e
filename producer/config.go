package producer

import (
	"fmt"
	"time"
)

// Config controls the shape of each producer run.
type Config struct {
	// Updates is the number of ordinary updates sent before completion.
	// Zero means unset and defaults to 5; every run sends at least one.
	Updates int `yaml:"updates" mapstructure:"updates"`
	// Interval is the pause after each update.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// ApplyDefaults sets unset fields to their defaults.
func (c *Config) ApplyDefaults() {
	if c.Updates == 0 {
		c.Updates = 5
	}
	if c.Interval == 0 {
		c.Interval = 2 * time.Second
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Updates < 1 {
		return fmt.Errorf("producer.updates must be at least 1 (got: %d)", c.Updates)
	}
	if c.Interval < 0 {
		return fmt.Errorf("producer.interval must be non-negative (got: %s)", c.Interval)
	}
	return nil
}
