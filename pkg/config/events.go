package config

import (
	"fmt"
	"strings"
)

type EventsConfig struct {
	Enabled    bool             `koanf:"enabled"`
	Stream     string           `koanf:"stream"`
	Nats       NATSConfig       `koanf:"nats"`
	Resilience ResilienceConfig `koanf:"resilience"`
}

// String returns a string representation of the events configuration.
func (c *EventsConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Events ---\n")
	b.WriteString(fmt.Sprintf("  enabled: %t\n", c.Enabled))
	b.WriteString(fmt.Sprintf("  stream: %s\n", c.Stream))
	if c.Enabled {
		b.WriteString(c.Nats.String())
		b.WriteString(c.Resilience.String())
	}
	return b.String()
}

func (c *EventsConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Stream == "" {
		return fmt.Errorf("events stream name is not configured")
	}
	if err := c.Nats.Validate(); err != nil {
		return err
	}
	return c.Resilience.Validate()
}
