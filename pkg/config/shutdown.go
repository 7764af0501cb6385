package config

import (
	"context"
	"fmt"
	"time"
)

// maxShutdownTimeout caps how long a stop signal can be held up by draining servers.
const maxShutdownTimeout = 5 * time.Minute

// ShutdownConfig bounds the graceful stop of the servers, the NATS connection and the telemetry exporters.
type ShutdownConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

// Context returns a context that expires after Timeout.
// It is not derived from the signal context, which is already done when shutdown begins.
func (c *ShutdownConfig) Context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.Timeout)
}

func (c *ShutdownConfig) String() string {
	return fmt.Sprintf("\n--- Shutdown ---\n  timeout: %s\n", c.Timeout)
}

func (c *ShutdownConfig) Validate() error {
	switch {
	case c.Timeout <= 0:
		return fmt.Errorf("shutdown.timeout must be positive, got %s", c.Timeout)
	case c.Timeout > maxShutdownTimeout:
		return fmt.Errorf("shutdown.timeout %s exceeds the %s limit", c.Timeout, maxShutdownTimeout)
	}
	return nil
}
