package config

import (
	"fmt"
	"strings"
)

// Storage drivers.
const (
	StorageDriverFile     = "file"
	StorageDriverPostgres = "postgres"
)

type StorageConfig struct {
	Driver string `koanf:"driver"`
	File   struct {
		Products string `koanf:"products"`
		Carts    string `koanf:"carts"`
	} `koanf:"file"`
	Database DatabaseConfig `koanf:"database"`
}

// String returns a string representation of the storage configuration.
func (c *StorageConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Storage ---\n")
	b.WriteString(fmt.Sprintf("  driver: %s\n", c.Driver))
	switch c.Driver {
	case StorageDriverFile:
		b.WriteString(fmt.Sprintf("  file.products: %s\n", c.File.Products))
		b.WriteString(fmt.Sprintf("  file.carts: %s\n", c.File.Carts))
	case StorageDriverPostgres:
		b.WriteString(c.Database.String())
	}
	return b.String()
}

func (c *StorageConfig) Validate() error {
	switch c.Driver {
	case StorageDriverFile:
		if c.File.Products == "" || c.File.Carts == "" {
			return fmt.Errorf("storage file paths for products and carts must be configured")
		}
		if c.File.Products == c.File.Carts {
			return fmt.Errorf("products and carts must use different files: %s", c.File.Products)
		}
		return nil
	case StorageDriverPostgres:
		return c.Database.Validate()
	default:
		return fmt.Errorf("unknown storage driver: %q", c.Driver)
	}
}
