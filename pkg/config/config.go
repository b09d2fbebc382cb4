package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Selection modes for discovered candidates
const (
	SelectionAuto        = "auto"
	SelectionInteractive = "interactive"
)

// Rendering engines
const (
	RenderEngineChrome = "chrome"
	RenderEngineHTTP   = "http"
)

// MinFileSizeDefault filters out thumbnails and icons that pass the
// resolution heuristics but are not meaningful content (380 KiB).
const MinFileSizeDefault = 380 * 1024

// Config holds all configuration options for the collector
type Config struct {
	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Candidate discovery and selection
	Discovery DiscoveryConfig `yaml:"discovery" json:"discovery"`

	// Page rendering settings
	Render RenderConfig `yaml:"render" json:"render"`

	// Article extraction settings
	Article ArticleConfig `yaml:"article" json:"article"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	RootDirectory string `yaml:"root_directory" json:"root_directory"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	ConcurrentDownloads int           `yaml:"concurrent_downloads" json:"concurrent_downloads"`
	DownloadTimeout     time.Duration `yaml:"download_timeout" json:"download_timeout"`
	MinFileSize         int64         `yaml:"min_file_size" json:"min_file_size"`
	UserAgent           string        `yaml:"user_agent" json:"user_agent"`
}

// DiscoveryConfig holds candidate discovery and selection configuration
type DiscoveryConfig struct {
	CandidateCap  int    `yaml:"candidate_cap" json:"candidate_cap"`
	SelectionMode string `yaml:"selection_mode" json:"selection_mode"`
	DailyMode     bool   `yaml:"daily_mode" json:"daily_mode"`
}

// RenderConfig holds page rendering configuration
type RenderConfig struct {
	Engine          string        `yaml:"engine" json:"engine"`
	PageTimeout     time.Duration `yaml:"page_timeout" json:"page_timeout"`
	SettleDelay     time.Duration `yaml:"settle_delay" json:"settle_delay"`
	DisableHeadless bool          `yaml:"disable_headless" json:"disable_headless"`
}

// ArticleConfig holds article extraction configuration
type ArticleConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			RootDirectory: "./collected",
		},
		Download: DownloadConfig{
			ConcurrentDownloads: 5,
			DownloadTimeout:     30 * time.Second,
			MinFileSize:         MinFileSizeDefault,
			UserAgent:           "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
		},
		Discovery: DiscoveryConfig{
			CandidateCap:  15,
			SelectionMode: SelectionAuto,
			DailyMode:     false,
		},
		Render: RenderConfig{
			Engine:      RenderEngineChrome,
			PageTimeout: 30 * time.Second,
			SettleDelay: 2 * time.Second,
		},
		Article: ArticleConfig{
			Enabled: true,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 60,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if rootDir := os.Getenv("WEBGRAB_OUTPUT_DIR"); rootDir != "" {
		c.Output.RootDirectory = rootDir
	}
	if concurrent := os.Getenv("WEBGRAB_CONCURRENT_DOWNLOADS"); concurrent != "" {
		var val int
		fmt.Sscanf(concurrent, "%d", &val)
		if val > 0 {
			c.Download.ConcurrentDownloads = val
		}
	}
	if minSize := os.Getenv("WEBGRAB_MIN_FILE_SIZE"); minSize != "" {
		var val int64
		fmt.Sscanf(minSize, "%d", &val)
		if val >= 0 {
			c.Download.MinFileSize = val
		}
	}
	if cap := os.Getenv("WEBGRAB_CANDIDATE_CAP"); cap != "" {
		var val int
		fmt.Sscanf(cap, "%d", &val)
		if val > 0 {
			c.Discovery.CandidateCap = val
		}
	}
	if mode := os.Getenv("WEBGRAB_SELECTION_MODE"); mode != "" {
		c.Discovery.SelectionMode = mode
	}
	if engine := os.Getenv("WEBGRAB_RENDER_ENGINE"); engine != "" {
		c.Render.Engine = engine
	}
	if rpm := os.Getenv("WEBGRAB_REQUESTS_PER_MINUTE"); rpm != "" {
		var val int
		fmt.Sscanf(rpm, "%d", &val)
		if val > 0 {
			c.RateLimit.RequestsPerMinute = val
		}
	}
	if logLevel := os.Getenv("WEBGRAB_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".webgrab.yaml",
		".webgrab.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "webgrab", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "webgrab", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".webgrab.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Output.RootDirectory == "" {
		errs = append(errs, errors.New("output root directory is required"))
	}

	if c.Download.ConcurrentDownloads <= 0 {
		errs = append(errs, errors.New("concurrent downloads must be positive"))
	}
	if c.Download.ConcurrentDownloads > 10 {
		errs = append(errs, errors.New("concurrent downloads should not exceed 10"))
	}
	if c.Download.DownloadTimeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}
	if c.Download.MinFileSize < 0 {
		errs = append(errs, errors.New("minimum file size cannot be negative"))
	}

	if c.Discovery.CandidateCap <= 0 {
		errs = append(errs, errors.New("candidate cap must be positive"))
	}
	switch c.Discovery.SelectionMode {
	case SelectionAuto, SelectionInteractive:
	default:
		errs = append(errs, fmt.Errorf("invalid selection mode: %s", c.Discovery.SelectionMode))
	}

	switch c.Render.Engine {
	case RenderEngineChrome, RenderEngineHTTP:
	default:
		errs = append(errs, fmt.Errorf("invalid render engine: %s", c.Render.Engine))
	}
	if c.Render.PageTimeout <= 0 {
		errs = append(errs, errors.New("page timeout must be positive"))
	}

	if c.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if rootDir, ok := flags["output"].(string); ok && rootDir != "" {
		c.Output.RootDirectory = rootDir
	}
	if concurrent, ok := flags["concurrent"].(int); ok && concurrent > 0 {
		c.Download.ConcurrentDownloads = concurrent
	}
	if minSize, ok := flags["min-size"].(int64); ok && minSize >= 0 {
		c.Download.MinFileSize = minSize
	}
	if cap, ok := flags["candidate-cap"].(int); ok && cap > 0 {
		c.Discovery.CandidateCap = cap
	}
	if mode, ok := flags["selection-mode"].(string); ok && mode != "" {
		c.Discovery.SelectionMode = mode
	}
	if daily, ok := flags["daily"].(bool); ok {
		c.Discovery.DailyMode = daily
	}
	if engine, ok := flags["render-engine"].(string); ok && engine != "" {
		c.Render.Engine = engine
	}
	if articles, ok := flags["articles"].(bool); ok {
		c.Article.Enabled = articles
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".webgrab.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
