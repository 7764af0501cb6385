package config

import (
	"fmt"
	"net"
)

// PProfConfig serves net/http/pprof on its own listener, apart from the shop API.
type PProfConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

func (c *PProfConfig) String() string {
	if !c.Enabled {
		return "\n--- PProf ---\n  disabled\n"
	}
	return fmt.Sprintf("\n--- PProf ---\n  addr: %s\n", c.Addr)
}

// Validate requires a host:port address when pprof is enabled.
func (c *PProfConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("pprof.addr must be host:port: %w", err)
	}
	return nil
}
