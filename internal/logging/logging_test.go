package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/mbrowse/internal/config"
)

func TestManager_LevelSwap(t *testing.T) {
	mgr, logger := NewManager(Config{Level: "info"}, nil)
	defer mgr.Close() //nolint:errcheck

	ctx := context.Background()
	assert.True(t, logger.Enabled(ctx, slog.LevelInfo))
	assert.False(t, logger.Enabled(ctx, slog.LevelDebug))

	mgr.Reconfigure(Config{Level: "debug"})
	assert.True(t, logger.Enabled(ctx, slog.LevelDebug))

	mgr.Reconfigure(Config{Level: "error"})
	assert.False(t, logger.Enabled(ctx, slog.LevelInfo))
	assert.True(t, logger.Enabled(ctx, slog.LevelError))
}

func TestManager_FallbackWriter(t *testing.T) {
	var buf bytes.Buffer
	mgr, logger := NewManager(Config{Level: "info", Format: "text"}, &buf)
	defer mgr.Close() //nolint:errcheck

	logger.Info("hello", "n", 1)
	logger.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "msg=hello")
	assert.Contains(t, out, "n=1")
	assert.NotContains(t, out, "hidden")
}

func TestManager_DerivedLoggerFollowsSwap(t *testing.T) {
	var buf bytes.Buffer
	mgr, logger := NewManager(Config{Level: "info", Format: "text"}, &buf)
	defer mgr.Close() //nolint:errcheck

	component := logger.With("component", "detail").WithGroup("batch")
	mgr.Reconfigure(Config{Level: "info", Format: "json"})

	component.Info("done", "loaded", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	assert.Equal(t, "detail", rec["component"])
	assert.Equal(t, map[string]any{"loaded": float64(3)}, rec["batch"])
}

func TestManager_FileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "mbrowse.log")

	var fallback bytes.Buffer
	mgr, logger := NewManager(Config{
		Level:       "info",
		Format:      "json",
		FileEnabled: true,
		FilePath:    logFile,
		MaxSizeMB:   1,
		MaxFiles:    1,
	}, &fallback)

	logger.Info("to file")
	require.NoError(t, mgr.Close())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"to file"`)
	assert.Empty(t, fallback.String())
}

func TestManager_DisableFileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "mbrowse.log")

	var fallback bytes.Buffer
	cfg := Config{Level: "info", FileEnabled: true, FilePath: logFile}
	mgr, logger := NewManager(cfg, &fallback)
	defer mgr.Close() //nolint:errcheck

	logger.Info("first")
	cfg.FileEnabled = false
	mgr.Reconfigure(cfg)
	logger.Info("second")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "first")
	assert.NotContains(t, string(data), "second")
	assert.Contains(t, fallback.String(), "second")
}

func TestManager_FollowsConfigStore(t *testing.T) {
	store := config.Open(nil, filepath.Join(t.TempDir(), "config.toml"))

	cfg := store.Config()
	var buf bytes.Buffer
	mgr, logger := NewManager(FromConfig(cfg.GetLogConfig()), &buf)
	defer mgr.Close() //nolint:errcheck
	unsub := mgr.Follow(store)
	defer unsub()

	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))

	store.Update(func(c *config.Config) { c.Log.Level = "debug" })
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
	assert.Equal(t, "debug", mgr.Config().Level)
}

func TestConfigString(t *testing.T) {
	c := Config{Level: "warn", Format: "text"}
	assert.Equal(t, "level=warn format=text", c.String())

	c.FileEnabled = true
	c.FilePath = "/tmp/x.log"
	c.MaxSizeMB = 10
	c.MaxFiles = 5
	assert.True(t, strings.HasSuffix(c.String(), "file=/tmp/x.log max_size=10MB max_files=5"))
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"trace": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}
