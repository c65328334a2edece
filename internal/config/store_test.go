package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestStore_LoadLastWins(t *testing.T) {
	dir := t.TempDir()
	user := filepath.Join(dir, "user.toml")
	local := filepath.Join(dir, "local.toml")
	writeFile(t, user, `
[api]
default_limit = 50
rate_limit_ms = 2000

[log]
level = "debug"
`)
	writeFile(t, local, `
[api]
default_limit = 10
`)

	s := Open(nil, user, local)
	require.NoError(t, s.Load())

	cfg := s.Config()
	assert.Equal(t, 10, cfg.API.DefaultLimit)
	assert.Equal(t, 2000, cfg.API.RateLimitMs)
	assert.Equal(t, "debug", cfg.Log.Level)
	// untouched keys keep their defaults
	assert.Equal(t, 500, cfg.API.DetailDebounceMs)
	assert.Equal(t, 60000, cfg.Network.TimeoutMs)
}

func TestStore_LoadMissingFiles(t *testing.T) {
	s := Open(nil, filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, s.Load())
	assert.Equal(t, Default(), s.Config())
}

func TestStore_LoadInvalidToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	writeFile(t, path, "[api\nlimit = ")

	s := Open(nil, path)
	assert.Error(t, s.Load())
	assert.Equal(t, Default(), s.Config())
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	s := Open(nil, path)

	welcome := false
	s.Update(func(c *Config) {
		c.Network.UserAgent = "tester/1.0 (me@example.com)"
		c.API.DefaultLimit = 40
		c.UI.ShowWelcome = &welcome
		c.UI.LastEntityType = "release-group"
		c.Log.FileEnabled = true
		c.Log.FilePath = "/tmp/mb.log"
	})
	require.NoError(t, s.Save())

	loaded := Open(nil, path)
	require.NoError(t, loaded.Load())
	assert.Equal(t, s.Config(), loaded.Config())
}

func TestStore_UpdateNotifiesChangedSections(t *testing.T) {
	s := Open(nil, filepath.Join(t.TempDir(), "c.toml"))

	var got []Section
	for _, sec := range Sections {
		s.Subscribe(sec, func(Config) { got = append(got, sec) })
	}

	s.Update(func(c *Config) { c.API.DefaultLimit = 30 })
	assert.Equal(t, []Section{SectionAPI}, got)

	got = nil
	s.Update(func(c *Config) { c.API.DefaultLimit = 30 })
	assert.Empty(t, got, "no change, no notification")

	got = nil
	s.Update(func(c *Config) {
		c.Network.MaxRetries = 1
		c.Log.Level = "warn"
	})
	assert.Equal(t, []Section{SectionNetwork, SectionLog}, got)
}

func TestStore_ConcurrentUpdatesKeepEveryWrite(t *testing.T) {
	s := Open(nil, filepath.Join(t.TempDir(), "config.toml"))
	start := s.Config().API.RateLimitMs

	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			s.Update(func(c *Config) { c.API.RateLimitMs++ })
		})
	}
	wg.Wait()

	assert.Equal(t, start+50, s.Config().API.RateLimitMs)
}

func TestStore_SubscriberMayUpdate(t *testing.T) {
	s := Open(nil, filepath.Join(t.TempDir(), "config.toml"))
	s.Subscribe(SectionAPI, func(Config) {
		s.Update(func(c *Config) { c.UI.MaxTabs = 7 })
	})

	s.Update(func(c *Config) { c.API.DefaultLimit = 42 })
	assert.Equal(t, 7, s.Config().UI.MaxTabs)
}

func TestStore_ResetNotifiesAllSections(t *testing.T) {
	s := Open(nil, filepath.Join(t.TempDir(), "c.toml"))
	s.Update(func(c *Config) { c.UI.MaxTabs = 3 })

	var got []Section
	for _, sec := range Sections {
		s.Subscribe(sec, func(Config) { got = append(got, sec) })
	}
	s.Reset()

	assert.Equal(t, Sections, got)
	assert.Equal(t, Default(), s.Config())
}

func TestStore_Unsubscribe(t *testing.T) {
	s := Open(nil, filepath.Join(t.TempDir(), "c.toml"))

	calls := 0
	unsub := s.Subscribe(SectionUI, func(Config) { calls++ })
	s.Update(func(c *Config) { c.UI.MaxTabs = 5 })
	unsub()
	s.Update(func(c *Config) { c.UI.MaxTabs = 6 })

	assert.Equal(t, 1, calls)
}

func TestStore_SubscriberSeesNewConfig(t *testing.T) {
	s := Open(nil, filepath.Join(t.TempDir(), "c.toml"))

	var seen Config
	s.Subscribe(SectionLog, func(c Config) { seen = c })
	s.Update(func(c *Config) { c.Log.Level = "error" })

	assert.Equal(t, "error", seen.Log.Level)
}

func TestStore_UpdateDoesNotAliasShowWelcome(t *testing.T) {
	s := Open(nil, filepath.Join(t.TempDir(), "c.toml"))
	on := true
	s.Update(func(c *Config) { c.UI.ShowWelcome = &on })

	before := s.Config()
	s.Update(func(c *Config) { *c.UI.ShowWelcome = false })

	assert.True(t, *before.UI.ShowWelcome)
	assert.False(t, *s.Config().UI.ShowWelcome)
}

func TestStore_BaseURLTrailingSlash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.toml")
	writeFile(t, path, "[api]\nbase_url = \"http://localhost:5000/ws/2/\"\n")

	s := Open(nil, path)
	require.NoError(t, s.Load())
	assert.Equal(t, "http://localhost:5000/ws/2", s.Config().API.BaseURL)
}
