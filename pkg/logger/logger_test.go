package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webgrab/pkg/config"
)

func TestNew(t *testing.T) {
	log, err := New(&config.LoggingConfig{Level: "debug"})
	require.NoError(t, err)
	require.NotNil(t, log)

	// Chained field loggers must not panic
	log.WithField("url", "https://example.com").
		WithFields(map[string]interface{}{"count": 3}).
		Info("test message")
	log.WithError(nil).Info("nil error is a no-op")
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New(&config.LoggingConfig{Level: "chatty"})
	assert.Error(t, err)
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "webgrab.log")

	log, err := New(&config.LoggingConfig{Level: "info", File: path})
	require.NoError(t, err)

	log.WithField("marker", "file-output-test").Info("written to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "file-output-test")
	assert.Contains(t, string(data), "webgrab")
}

func TestGetLoggerFallback(t *testing.T) {
	globalLogger = nil
	log := GetLogger()
	require.NotNil(t, log)

	// Repeat calls return the same instance
	assert.Equal(t, log, GetLogger())
}
