package config

import (
	"strings"

	"github.com/abgdnv/flatshop/pkg/config"
	"github.com/abgdnv/flatshop/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig       `koanf:"server"`
	API        config.APIConfig        `koanf:"api"`
	Storage    config.StorageConfig    `koanf:"storage"`
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	GRPC       config.GrpcServerConfig `koanf:"grpc"`
	Events     config.EventsConfig     `koanf:"events"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
}

// Defaults returns the values used when neither config.yaml nor the environment set a key.
func Defaults() map[string]any {
	return map[string]any{
		"server.port":               8080,
		"server.maxheaderbytes":     1 << 20,
		"server.timeout.read":       "10s",
		"server.timeout.write":      "10s",
		"server.timeout.idle":       "60s",
		"server.timeout.readheader": "5s",

		"storage.driver":           config.StorageDriverFile,
		"storage.file.products":    "data/products.json",
		"storage.file.carts":       "data/carts.json",
		"storage.database.timeout": "10s",

		"log.level": "info",

		"grpc.enabled": false,
		"grpc.port":    "9090",

		"events.stream":             "SHOP",
		"events.nats.name":          "flatshop",
		"events.nats.timeout":       "5s",
		"events.nats.maxreconnects": 10,

		"events.resilience.retry.maxattempts":    2,
		"events.resilience.retry.initialbackoff": "100ms",

		"events.resilience.circuitbreaker.consecutivefailures": 5,
		"events.resilience.circuitbreaker.errorratepercent":    50,
		"events.resilience.circuitbreaker.opentimeout":         "30s",

		"telemetry.traces.otlphttp.timeout": "5s",
		"telemetry.metrics.path":            "/metrics",

		"shutdown.timeout": "15s",
	}
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.API.String())
	b.WriteString(c.Storage.String())
	b.WriteString(c.GRPC.String())
	b.WriteString(c.Events.String())
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	if err := c.API.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	if err := c.GRPC.Validate(); err != nil {
		return err
	}
	if err := c.Events.Validate(); err != nil {
		return err
	}
	if err := c.Telemetry.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}
	return nil
}
