//nolint:goconst // test cases intentionally repeat strings for readability
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "tilde expands to home",
			input:    "~/logs/mbrowse.log",
			expected: filepath.Join(home, "logs", "mbrowse.log"),
		},
		{
			name:     "absolute path unchanged",
			input:    "/var/log/mbrowse.log",
			expected: "/var/log/mbrowse.log",
		},
		{
			name:     "relative path unchanged",
			input:    "logs/mbrowse.log",
			expected: "logs/mbrowse.log",
		},
		{
			name:     "empty string unchanged",
			input:    "",
			expected: "",
		},
		{
			name:     "tilde only",
			input:    "~",
			expected: home,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			if result != tt.expected {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGetConfigPaths(t *testing.T) {
	paths := getConfigPaths()

	if len(paths) != 2 {
		t.Fatalf("getConfigPaths() returned %d paths, want 2", len(paths))
	}
	if paths[1] != "config.toml" {
		t.Errorf("last config path = %q, want %q", paths[1], "config.toml")
	}
	if filepath.Base(filepath.Dir(paths[0])) != "mbrowse" {
		t.Errorf("first config path = %q, want it under an mbrowse dir", paths[0])
	}
}

func TestGetNetworkConfig(t *testing.T) {
	tests := []struct {
		name     string
		input    NetworkConfig
		expected NetworkConfig
	}{
		{
			name:     "zero values get defaults",
			input:    NetworkConfig{},
			expected: NetworkConfig{TimeoutMs: 60000, MaxRetries: 0, RetryDelayMs: 1000},
		},
		{
			name:     "custom values kept",
			input:    NetworkConfig{TimeoutMs: 5000, MaxRetries: 5, RetryDelayMs: 250, UserAgent: "x/1"},
			expected: NetworkConfig{TimeoutMs: 5000, MaxRetries: 5, RetryDelayMs: 250, UserAgent: "x/1"},
		},
		{
			name:     "out of range retries",
			input:    NetworkConfig{MaxRetries: 50},
			expected: NetworkConfig{TimeoutMs: 60000, MaxRetries: 3, RetryDelayMs: 1000},
		},
		{
			name:     "negative retries",
			input:    NetworkConfig{MaxRetries: -1},
			expected: NetworkConfig{TimeoutMs: 60000, MaxRetries: 3, RetryDelayMs: 1000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Network: tt.input}
			if got := cfg.GetNetworkConfig(); got != tt.expected {
				t.Errorf("GetNetworkConfig() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestGetAPIConfig(t *testing.T) {
	tests := []struct {
		name  string
		input APIConfig
		check func(t *testing.T, got APIConfig)
	}{
		{
			name:  "zero values get defaults",
			input: APIConfig{},
			check: func(t *testing.T, got APIConfig) {
				assert.Equal(t, Default().API, got)
			},
		},
		{
			name:  "rate limit floor",
			input: APIConfig{RateLimitMs: 100},
			check: func(t *testing.T, got APIConfig) {
				assert.Equal(t, 500, got.RateLimitMs)
			},
		},
		{
			name:  "debounce floor",
			input: APIConfig{DetailDebounceMs: 10},
			check: func(t *testing.T, got APIConfig) {
				assert.Equal(t, 100, got.DetailDebounceMs)
			},
		},
		{
			name:  "limit above maximum",
			input: APIConfig{DefaultLimit: 500},
			check: func(t *testing.T, got APIConfig) {
				assert.Equal(t, 25, got.DefaultLimit)
			},
		},
		{
			name:  "zero delays kept",
			input: APIConfig{DetailItemDelayMs: 0, DetailFailureDelayMs: 0},
			check: func(t *testing.T, got APIConfig) {
				assert.Zero(t, got.DetailItemDelayMs)
				assert.Zero(t, got.DetailFailureDelayMs)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{API: tt.input}
			tt.check(t, cfg.GetAPIConfig())
		})
	}
}

func TestGetUIConfig_ShowWelcomeDefault(t *testing.T) {
	cfg := Config{}
	ui := cfg.GetUIConfig()
	require.NotNil(t, ui.ShowWelcome)
	assert.True(t, *ui.ShowWelcome)
	assert.Equal(t, 20, ui.MaxTabs)
	assert.Equal(t, "artist", ui.LastEntityType)

	off := false
	cfg.UI.ShowWelcome = &off
	assert.False(t, *cfg.GetUIConfig().ShowWelcome)
}

func TestGetLogConfig(t *testing.T) {
	cfg := Config{Log: LogConfig{Level: "DEBUG", Format: "yaml"}}
	got := cfg.GetLogConfig()
	assert.Equal(t, "debug", got.Level)
	assert.Equal(t, "text", got.Format)
	assert.Equal(t, DefaultLogPath(), got.FilePath)
	assert.Equal(t, 5, got.MaxFiles)
	assert.Equal(t, 10, got.MaxSizeMB)

	cfg.Log.Level = "verbose"
	assert.Equal(t, "info", cfg.GetLogConfig().Level)
}
