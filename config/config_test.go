package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/fmuweb/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, config.BackendMemory, cfg.StoreBackend)
	assert.Equal(t, 24*time.Hour, cfg.MaxUploadAge)
}

func TestLoadYAMLThenEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fmuweb.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 9000\nstore_backend: disk\n"), 0o644))
	t.Setenv("FMUWEB_CONFIG", path)
	t.Setenv("FMUWEB_PORT", "9100")

	cfg, err := config.Load()
	require.NoError(t, err)

	// Env beats file, file beats default.
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, config.BackendDisk, cfg.StoreBackend)
	assert.Equal(t, "0.0.0.0", cfg.Host)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("FMUWEB_STORE_BACKEND", "redis")
	_, err := config.Load()
	assert.Error(t, err)
}
