package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "./collected", cfg.Output.RootDirectory)
	assert.Equal(t, 5, cfg.Download.ConcurrentDownloads)
	assert.Equal(t, 30*time.Second, cfg.Download.DownloadTimeout)
	assert.Equal(t, int64(MinFileSizeDefault), cfg.Download.MinFileSize)
	assert.Equal(t, 15, cfg.Discovery.CandidateCap)
	assert.Equal(t, SelectionAuto, cfg.Discovery.SelectionMode)
	assert.False(t, cfg.Discovery.DailyMode)
	assert.Equal(t, RenderEngineChrome, cfg.Render.Engine)
	assert.True(t, cfg.Article.Enabled)
	assert.Equal(t, 60, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, "info", cfg.Logging.Level)

	assert.NoError(t, cfg.Validate())
}

func TestMinFileSizeDefault(t *testing.T) {
	assert.Equal(t, 389120, MinFileSizeDefault)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "empty output directory",
			mutate:  func(c *Config) { c.Output.RootDirectory = "" },
			wantErr: true,
		},
		{
			name:    "zero concurrent downloads",
			mutate:  func(c *Config) { c.Download.ConcurrentDownloads = 0 },
			wantErr: true,
		},
		{
			name:    "too many concurrent downloads",
			mutate:  func(c *Config) { c.Download.ConcurrentDownloads = 11 },
			wantErr: true,
		},
		{
			name:    "negative min file size",
			mutate:  func(c *Config) { c.Download.MinFileSize = -1 },
			wantErr: true,
		},
		{
			name:    "zero min file size is allowed",
			mutate:  func(c *Config) { c.Download.MinFileSize = 0 },
			wantErr: false,
		},
		{
			name:    "zero candidate cap",
			mutate:  func(c *Config) { c.Discovery.CandidateCap = 0 },
			wantErr: true,
		},
		{
			name:    "unknown selection mode",
			mutate:  func(c *Config) { c.Discovery.SelectionMode = "psychic" },
			wantErr: true,
		},
		{
			name:    "unknown render engine",
			mutate:  func(c *Config) { c.Render.Engine = "lynx" },
			wantErr: true,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "config.yaml")

	content := `
output:
  root_directory: /data/grabs
download:
  concurrent_downloads: 3
  min_file_size: 1024
discovery:
  candidate_cap: 7
  selection_mode: interactive
  daily_mode: true
render:
  engine: http
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "/data/grabs", cfg.Output.RootDirectory)
	assert.Equal(t, 3, cfg.Download.ConcurrentDownloads)
	assert.Equal(t, int64(1024), cfg.Download.MinFileSize)
	assert.Equal(t, 7, cfg.Discovery.CandidateCap)
	assert.Equal(t, SelectionInteractive, cfg.Discovery.SelectionMode)
	assert.True(t, cfg.Discovery.DailyMode)
	assert.Equal(t, RenderEngineHTTP, cfg.Render.Engine)

	// Untouched sections keep their defaults
	assert.Equal(t, 30*time.Second, cfg.Download.DownloadTimeout)
	assert.Equal(t, 60, cfg.RateLimit.RequestsPerMinute)
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("WEBGRAB_OUTPUT_DIR", "/env/output")
	t.Setenv("WEBGRAB_CONCURRENT_DOWNLOADS", "8")
	t.Setenv("WEBGRAB_MIN_FILE_SIZE", "2048")
	t.Setenv("WEBGRAB_SELECTION_MODE", "interactive")
	t.Setenv("WEBGRAB_RENDER_ENGINE", "http")
	t.Setenv("WEBGRAB_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "/env/output", cfg.Output.RootDirectory)
	assert.Equal(t, 8, cfg.Download.ConcurrentDownloads)
	assert.Equal(t, int64(2048), cfg.Download.MinFileSize)
	assert.Equal(t, SelectionInteractive, cfg.Discovery.SelectionMode)
	assert.Equal(t, RenderEngineHTTP, cfg.Render.Engine)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()

	cfg.MergeCommandLineFlags(map[string]interface{}{
		"output":         "/flag/output",
		"concurrent":     2,
		"min-size":       int64(512),
		"candidate-cap":  3,
		"selection-mode": SelectionInteractive,
		"daily":          true,
		"render-engine":  RenderEngineHTTP,
		"articles":       false,
		"log-level":      "warn",
	})

	assert.Equal(t, "/flag/output", cfg.Output.RootDirectory)
	assert.Equal(t, 2, cfg.Download.ConcurrentDownloads)
	assert.Equal(t, int64(512), cfg.Download.MinFileSize)
	assert.Equal(t, 3, cfg.Discovery.CandidateCap)
	assert.Equal(t, SelectionInteractive, cfg.Discovery.SelectionMode)
	assert.True(t, cfg.Discovery.DailyMode)
	assert.Equal(t, RenderEngineHTTP, cfg.Render.Engine)
	assert.False(t, cfg.Article.Enabled)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestFlagsOverrideEnvAndFile(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("download:\n  concurrent_downloads: 2\n"), 0644))

	t.Setenv("WEBGRAB_CONCURRENT_DOWNLOADS", "4")

	cfg, err := Load(path, map[string]interface{}{"concurrent": 9})
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Download.ConcurrentDownloads)

	// Without a flag the environment beats the file
	cfg, err = Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Download.ConcurrentDownloads)
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Output.RootDirectory = "/saved/root"
	cfg.Discovery.CandidateCap = 4
	require.NoError(t, cfg.Save(path))

	reloaded := DefaultConfig()
	require.NoError(t, reloaded.LoadFromFile(path))
	assert.Equal(t, "/saved/root", reloaded.Output.RootDirectory)
	assert.Equal(t, 4, reloaded.Discovery.CandidateCap)
}
