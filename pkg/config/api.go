package config

import (
	"fmt"
	"strings"
)

// APIConfig controls how the REST layer reports store failures.
// With StrictErrors disabled, POST and DELETE routes keep the historical
// behaviour of never surfacing validation or not-found failures to clients.
type APIConfig struct {
	StrictErrors bool `koanf:"stricterrors"`
}

// String returns a string representation of the API configuration.
func (c *APIConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- API ---\n")
	b.WriteString(fmt.Sprintf("  stricterrors: %t\n", c.StrictErrors))
	return b.String()
}

func (c *APIConfig) Validate() error {
	return nil
}
