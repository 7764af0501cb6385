package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abgdnv/flatshop/pkg/config"
	"github.com/abgdnv/flatshop/pkg/config/configloader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory so no config.yaml or .env is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func Test_Load_Defaults(t *testing.T) {
	// given
	isolate(t)
	// when
	cfg, err := configloader.Load[*Config]("shop", Defaults())
	// then
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTPServer.Port)
	assert.Equal(t, 10*time.Second, cfg.HTTPServer.Timeout.Read)
	assert.Equal(t, config.StorageDriverFile, cfg.Storage.Driver)
	assert.Equal(t, "data/products.json", cfg.Storage.File.Products)
	assert.Equal(t, "data/carts.json", cfg.Storage.File.Carts)
	assert.False(t, cfg.API.StrictErrors)
	assert.False(t, cfg.Events.Enabled)
	assert.Equal(t, "/metrics", cfg.Telemetry.Metrics.Path)
	assert.Equal(t, 15*time.Second, cfg.Shutdown.Timeout)
}

func Test_Load_Layers(t *testing.T) {
	t.Run("YAML file overrides defaults", func(t *testing.T) {
		// given
		dir := isolate(t)
		yamlPath := filepath.Join(dir, "custom.yaml")
		require.NoError(t, os.WriteFile(yamlPath, []byte(`
server:
  port: 9000
api:
  stricterrors: true
storage:
  file:
    products: /var/lib/shop/products.json
`), 0o644))
		t.Setenv("SHOP_CONFIG_FILE", yamlPath)
		// when
		cfg, err := configloader.Load[*Config]("shop", Defaults())
		// then
		require.NoError(t, err)
		assert.Equal(t, 9000, cfg.HTTPServer.Port)
		assert.True(t, cfg.API.StrictErrors)
		assert.Equal(t, "/var/lib/shop/products.json", cfg.Storage.File.Products)
		assert.Equal(t, "data/carts.json", cfg.Storage.File.Carts)
	})

	t.Run("Environment overrides YAML", func(t *testing.T) {
		// given
		dir := isolate(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server:\n  port: 9000\n"), 0o644))
		t.Setenv("SHOP_SERVER_PORT", "9100")
		t.Setenv("SHOP_API_STRICTERRORS", "true")
		// when
		cfg, err := configloader.Load[*Config]("shop", Defaults())
		// then
		require.NoError(t, err)
		assert.Equal(t, 9100, cfg.HTTPServer.Port)
		assert.True(t, cfg.API.StrictErrors)
	})

	t.Run(".env file is read", func(t *testing.T) {
		// given
		dir := isolate(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
			[]byte("SHOP_LOG_LEVEL=debug\nOTHER_SETTING=ignored\n"), 0o644))
		// when
		cfg, err := configloader.Load[*Config]("shop", Defaults())
		// then
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.Log.Level)
	})
}

func Test_Load_ValidationFailure(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "Invalid port", env: map[string]string{"SHOP_SERVER_PORT": "70000"}},
		{name: "Unknown storage driver", env: map[string]string{"SHOP_STORAGE_DRIVER": "sqlite"}},
		{name: "Same file for both collections", env: map[string]string{"SHOP_STORAGE_FILE_CARTS": "data/products.json"}},
		{name: "Unknown log level", env: map[string]string{"SHOP_LOG_LEVEL": "verbose"}},
		{name: "Postgres without url", env: map[string]string{"SHOP_STORAGE_DRIVER": "postgres"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// given
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			// when
			_, err := configloader.Load[*Config]("shop", Defaults())
			// then
			assert.ErrorContains(t, err, "config validation failed")
		})
	}
}

func Test_Config_String(t *testing.T) {
	// given
	isolate(t)
	cfg, err := configloader.Load[*Config]("shop", Defaults())
	require.NoError(t, err)
	// when
	out := cfg.String()
	// then
	assert.Contains(t, out, "--- Storage ---")
	assert.Contains(t, out, "stricterrors: false")
}
