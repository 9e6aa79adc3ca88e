package main

import (
	"github.com/kbukum/sessionstream/config"
	"github.com/kbukum/sessionstream/observability"
	"github.com/kbukum/sessionstream/producer"
	"github.com/kbukum/sessionstream/server"
	"github.com/kbukum/sessionstream/session"
	"github.com/kbukum/sessionstream/sse"
)

// Config is the application configuration, loaded from config.yml and
// SESSIONSTREAM_* environment variables.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Producer      producer.Config      `yaml:"producer" mapstructure:"producer"`
	Stream        sse.Config           `yaml:"stream" mapstructure:"stream"`
	Session       session.Config       `yaml:"session" mapstructure:"session"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills every section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Producer.ApplyDefaults()
	c.Stream.ApplyDefaults()
	c.Session.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks every section and returns the first failure.
func (c *Config) Validate() error {
	validators := []func() error{
		c.ServiceConfig.Validate,
		c.Server.Validate,
		c.Producer.Validate,
		c.Stream.Validate,
		c.Session.Validate,
		c.Observability.Validate,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}
