package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-sync/src/helpers"
)

// -----------------------------------------------------------------------------

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// -----------------------------------------------------------------------------

func TestNewConfig(t *testing.T) {
	t.Run("loads and applies defaults", func(t *testing.T) {
		path := writeConfig(t, `
name: pos-sync
host: 127.0.0.1
port: 8090
backend:
  kind: sqlite
storage:
  db_path: pos.db
`)

		cfg, err := NewConfig(path)
		require.NoError(t, err)

		assert.Equal(t, "pos_changes", cfg.Sync.Channel)
		assert.Equal(t, 500, cfg.Sync.DebounceMs)
		assert.Equal(t, 3, cfg.Metrics.KitchenHandles)
		assert.Equal(t, 30, cfg.Metrics.AutoCancelMinutes)
		assert.Equal(t, 10, cfg.Metrics.RateLimitMax)
		assert.Equal(t, 60000, cfg.Metrics.RateLimitWindowMs)
	})

	t.Run("explicit values survive defaulting", func(t *testing.T) {
		path := writeConfig(t, `
name: pos-sync
host: 127.0.0.1
port: 8090
backend:
  kind: sqlite
storage:
  db_path: pos.db
sync:
  debounce_ms: 250
metrics:
  kitchen_handles: 5
`)

		cfg, err := NewConfig(path)
		require.NoError(t, err)

		assert.Equal(t, 250, cfg.Sync.DebounceMs)
		assert.Equal(t, 5, cfg.Metrics.KitchenHandles)
	})

	t.Run("http backend requires both URLs", func(t *testing.T) {
		path := writeConfig(t, `
name: pos-sync
host: 127.0.0.1
port: 8090
backend:
  kind: http
  base_url: http://192.168.1.10:8000
`)

		_, err := NewConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ws_url")

		var cfgErr *helpers.ConfigurationError
		assert.True(t, errors.As(err, &cfgErr))
	})

	t.Run("rejects out-of-range port", func(t *testing.T) {
		path := writeConfig(t, `
name: pos-sync
host: 127.0.0.1
port: 80
backend:
  kind: sqlite
storage:
  db_path: pos.db
`)

		_, err := NewConfig(path)
		require.Error(t, err)
	})

	t.Run("rejects unknown backend kind", func(t *testing.T) {
		path := writeConfig(t, `
name: pos-sync
host: 127.0.0.1
port: 8090
backend:
  kind: redis
`)

		_, err := NewConfig(path)
		require.Error(t, err)
	})
}
