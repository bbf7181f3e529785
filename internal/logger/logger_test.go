package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel("WARNING"))
	assert.Equal(t, ERROR, ParseLevel("ERROR"))
	assert.Equal(t, INFO, ParseLevel("nonsense"))
}

func TestLogger_FiltersByLevelAndWritesFields(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: WARN, Output: &buf})
	require.NoError(t, err)

	l.Info("hidden")
	l.WithFields(F("component", "saver")).Warn("save failed", F("attempt", 1))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WARN logger_test.go:")
	assert.Contains(t, out, "save failed | component=saver attempt=1")
}

func TestLogger_RotatesBySize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("x"), 64), 0644))

	l, err := New(Config{Level: DEBUG, FilePath: path, MaxSize: 32, MaxBackups: 2})
	require.NoError(t, err)
	l.Info("fresh")
	require.NoError(t, l.Close())

	_, err = os.Stat(path + ".1")
	assert.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "fresh")
}

func TestGlobal_NoopBeforeInit(t *testing.T) {
	globalMu.Lock()
	globalLogger = nil
	globalMu.Unlock()

	assert.NotPanics(t, func() { Info("nobody listens") })
	assert.Nil(t, WithFields(F("a", 1)))
}
