package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/mbrowse/internal/config"
	"github.com/llehouerou/mbrowse/internal/detail"
)

func TestClientOptions(t *testing.T) {
	cfg := config.Default()
	cfg.API.BaseURL = "http://localhost:5000/ws/2"
	cfg.API.RateLimitMs = 200
	cfg.Network.TimeoutMs = 1500
	cfg.Network.UserAgent = "test/1.0"

	opts := ClientOptions(cfg)

	assert.Equal(t, "http://localhost:5000/ws/2", opts.BaseURL)
	assert.Equal(t, "test/1.0", opts.UserAgent)
	assert.Equal(t, 500*time.Millisecond, opts.MinInterval, "rate limit is floored")
	assert.Equal(t, 1500*time.Millisecond, opts.Timeout)
}

func TestClientOptions_Retries(t *testing.T) {
	tests := []struct {
		name    string
		retries int
		want    int
	}{
		{"configured", 5, 5},
		{"zero disables", 0, -1},
		{"out of range falls back", 42, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Network.MaxRetries = tt.retries
			assert.Equal(t, tt.want, ClientOptions(cfg).MaxRetries)
		})
	}
}

func TestFetcherOptions(t *testing.T) {
	assert.Len(t, FetcherOptions(config.Default()), 4)
}

func TestStart_FollowsDebounceChanges(t *testing.T) {
	store := config.Open(nil, filepath.Join(t.TempDir(), "config.toml"))
	s := Start(t.Context(), store.Config(), nil)
	s.Follow(store)

	store.Update(func(c *config.Config) { c.API.DetailDebounceMs = 250 })
	assert.Equal(t, detail.Idle, s.Fetcher.State())

	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Fetcher.Clear(), detail.ErrClosed)

	// unsubscribed: no callback into the closed fetcher
	store.Update(func(c *config.Config) { c.API.DetailDebounceMs = 400 })
}
