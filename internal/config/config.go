package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

const appName = "mbrowse"

type Config struct {
	Network NetworkConfig `koanf:"network"`
	API     APIConfig     `koanf:"api"`
	UI      UIConfig      `koanf:"ui"`
	Log     LogConfig     `koanf:"log"`
}

// NetworkConfig holds HTTP transport settings.
type NetworkConfig struct {
	TimeoutMs    int    `koanf:"timeout_ms"`     // per request (default: 60000)
	MaxRetries   int    `koanf:"max_retries"`    // retries on 5xx/network errors (default: 3)
	RetryDelayMs int    `koanf:"retry_delay_ms"` // first backoff step (default: 1000)
	UserAgent    string `koanf:"user_agent"`
}

// APIConfig holds MusicBrainz service and detail loading settings.
type APIConfig struct {
	BaseURL              string `koanf:"base_url"`
	DefaultLimit         int    `koanf:"default_limit"`           // results per page (1-100, default: 25)
	RateLimitMs          int    `koanf:"rate_limit_ms"`           // min spacing between requests (>= 500, default: 1000)
	DetailDebounceMs     int    `koanf:"detail_debounce_ms"`      // >= 100, default: 500
	DetailItemDelayMs    int    `koanf:"detail_item_delay_ms"`    // default: 100
	DetailFailureDelayMs int    `koanf:"detail_failure_delay_ms"` // default: 200
	DetailTimeoutMs      int    `koanf:"detail_timeout_ms"`       // default: 30000
}

// UIConfig holds terminal client preferences.
type UIConfig struct {
	ShowWelcome    *bool  `koanf:"show_welcome"`     // default: true
	MaxTabs        int    `koanf:"max_tabs"`         // default: 20
	LastEntityType string `koanf:"last_entity_type"` // default: "artist"
}

// LogConfig holds log output settings.
type LogConfig struct {
	FileEnabled bool   `koanf:"file_enabled"`
	Level       string `koanf:"level"`  // debug, info, warn, error (default: info)
	Format      string `koanf:"format"` // text or json (default: text)
	FilePath    string `koanf:"file_path"`
	MaxFiles    int    `koanf:"max_files"`   // default: 5
	MaxSizeMB   int    `koanf:"max_size_mb"` // default: 10
}

// Default returns the configuration used when no file sets a value.
func Default() Config {
	return Config{
		Network: NetworkConfig{
			TimeoutMs:    60000,
			MaxRetries:   3,
			RetryDelayMs: 1000,
		},
		API: APIConfig{
			BaseURL:              "https://musicbrainz.org/ws/2",
			DefaultLimit:         25,
			RateLimitMs:          1000,
			DetailDebounceMs:     500,
			DetailItemDelayMs:    100,
			DetailFailureDelayMs: 200,
			DetailTimeoutMs:      30000,
		},
		UI: UIConfig{
			MaxTabs:        20,
			LastEntityType: "artist",
		},
		Log: LogConfig{
			Level:     "info",
			Format:    "text",
			MaxFiles:  5,
			MaxSizeMB: 10,
		},
	}
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/mbrowse/config.toml
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		// 2. ./config.toml (pwd, highest priority)
		"config.toml",
	}
}

// DefaultLogPath returns the log file used when log.file_path is unset.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, appName, appName+".log")
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

func (c *Config) normalize() {
	c.API.BaseURL = strings.TrimSuffix(c.API.BaseURL, "/")
	c.Log.FilePath = expandPath(c.Log.FilePath)
}

// GetNetworkConfig returns the network configuration with defaults applied.
func (c *Config) GetNetworkConfig() NetworkConfig {
	cfg := c.Network
	if cfg.TimeoutMs <= 0 {
		cfg.TimeoutMs = 60000
	}
	if cfg.MaxRetries < 0 || cfg.MaxRetries > 10 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelayMs <= 0 {
		cfg.RetryDelayMs = 1000
	}
	return cfg
}

// GetAPIConfig returns the API configuration with defaults applied.
func (c *Config) GetAPIConfig() APIConfig {
	cfg := c.API
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://musicbrainz.org/ws/2"
	}
	if cfg.DefaultLimit <= 0 || cfg.DefaultLimit > 100 {
		cfg.DefaultLimit = 25
	}
	if cfg.RateLimitMs <= 0 {
		cfg.RateLimitMs = 1000
	}
	cfg.RateLimitMs = max(cfg.RateLimitMs, 500)
	if cfg.DetailDebounceMs <= 0 {
		cfg.DetailDebounceMs = 500
	}
	cfg.DetailDebounceMs = max(cfg.DetailDebounceMs, 100)
	if cfg.DetailItemDelayMs < 0 {
		cfg.DetailItemDelayMs = 100
	}
	if cfg.DetailFailureDelayMs < 0 {
		cfg.DetailFailureDelayMs = 200
	}
	if cfg.DetailTimeoutMs <= 0 {
		cfg.DetailTimeoutMs = 30000
	}
	return cfg
}

// GetUIConfig returns the UI configuration with defaults applied.
func (c *Config) GetUIConfig() UIConfig {
	cfg := c.UI
	if cfg.ShowWelcome == nil {
		t := true
		cfg.ShowWelcome = &t
	}
	if cfg.MaxTabs <= 0 {
		cfg.MaxTabs = 20
	}
	if cfg.LastEntityType == "" {
		cfg.LastEntityType = "artist"
	}
	return cfg
}

// GetLogConfig returns the log configuration with defaults applied.
func (c *Config) GetLogConfig() LogConfig {
	cfg := c.Log
	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "error":
		cfg.Level = strings.ToLower(cfg.Level)
	default:
		cfg.Level = "info"
	}
	if cfg.Format != "json" {
		cfg.Format = "text"
	}
	if cfg.FilePath == "" {
		cfg.FilePath = DefaultLogPath()
	}
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = 5
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 10
	}
	return cfg
}
