package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, time.Minute, cfg.ReminderInterval)
	assert.Equal(t, "*/15 * * * *", cfg.SyncCron)
	assert.Equal(t, 5*time.Second, cfg.SyncDebounce)
	assert.Equal(t, "default", cfg.Profile)
}

func TestSaveTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "config.yaml")

	cfg := DefaultConfig()
	cfg.Storage = BackendSQLite
	cfg.Timezone = "Europe/Berlin"
	cfg.ICSURL = "https://example.com/cal.ics"
	require.NoError(t, cfg.SaveTo(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, loaded.Storage)
	assert.Equal(t, "https://example.com/cal.ics", loaded.ICSURL)
	assert.Equal(t, "Europe/Berlin", loaded.Location().String())
}

func TestNormalize_UnknownBackendAndSameFallback(t *testing.T) {
	cfg := &Config{Storage: "cloud", Fallback: "file"}
	cfg.Normalize()

	assert.Equal(t, DefaultConfig().Storage, cfg.Storage)
	if cfg.Storage == BackendFile {
		assert.Empty(t, cfg.Fallback)
	}
	assert.Equal(t, "127.0.0.1:8080", cfg.Listen)
	assert.Equal(t, 5*time.Second, cfg.SyncDebounce)
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage: [unclosed"), 0600))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestLocation_BadZoneFallsBackToLocal(t *testing.T) {
	cfg := &Config{Timezone: "Mars/Olympus"}
	assert.Equal(t, time.Local, cfg.Location())
}
