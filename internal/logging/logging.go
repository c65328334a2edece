// Package logging builds the application's slog logger and reconfigures it
// when the log settings change.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/llehouerou/mbrowse/internal/config"
)

// Config describes the log output.
type Config struct {
	Level       string
	Format      string // text or json
	FileEnabled bool
	FilePath    string
	MaxSizeMB   int
	MaxFiles    int
}

// FromConfig converts the log section of the application config.
func FromConfig(c config.LogConfig) Config {
	return Config{
		Level:       c.Level,
		Format:      c.Format,
		FileEnabled: c.FileEnabled,
		FilePath:    c.FilePath,
		MaxSizeMB:   c.MaxSizeMB,
		MaxFiles:    c.MaxFiles,
	}
}

func (c Config) String() string {
	s := fmt.Sprintf("level=%s format=%s", c.Level, c.Format)
	if c.FileEnabled {
		s += fmt.Sprintf(" file=%s max_size=%dMB max_files=%d", c.FilePath, c.MaxSizeMB, c.MaxFiles)
	}
	return s
}

// swapHandler forwards records to the handler currently installed by the
// Manager. Handlers derived through WithAttrs and WithGroup keep following
// swaps, so component loggers created at startup see later reconfiguration.
type swapHandler struct {
	root   *atomic.Pointer[slog.Handler]
	derive []func(slog.Handler) slog.Handler
}

func (h *swapHandler) current() slog.Handler {
	inner := *h.root.Load()
	for _, fn := range h.derive {
		inner = fn(inner)
	}
	return inner
}

func (h *swapHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return (*h.root.Load()).Enabled(ctx, level)
}

func (h *swapHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.current().Handle(ctx, r)
}

func (h *swapHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.with(func(inner slog.Handler) slog.Handler { return inner.WithAttrs(attrs) })
}

func (h *swapHandler) WithGroup(name string) slog.Handler {
	return h.with(func(inner slog.Handler) slog.Handler { return inner.WithGroup(name) })
}

func (h *swapHandler) with(fn func(slog.Handler) slog.Handler) slog.Handler {
	derive := make([]func(slog.Handler) slog.Handler, len(h.derive), len(h.derive)+1)
	copy(derive, h.derive)
	return &swapHandler{root: h.root, derive: append(derive, fn)}
}

// Manager owns the log output and the level.
type Manager struct {
	levelVar *slog.LevelVar
	root     *atomic.Pointer[slog.Handler]
	fallback io.Writer

	mu     sync.Mutex
	config Config
	closer io.Closer // lumberjack writer, if any
}

// NewManager creates a Manager and its logger. When file output is disabled
// records go to fallback; a nil fallback discards them.
func NewManager(cfg Config, fallback io.Writer) (*Manager, *slog.Logger) {
	if fallback == nil {
		fallback = io.Discard
	}
	m := &Manager{
		levelVar: &slog.LevelVar{},
		root:     &atomic.Pointer[slog.Handler]{},
		fallback: fallback,
	}
	m.levelVar.Set(parseLevel(cfg.Level))
	m.install(cfg)
	m.config = cfg

	return m, slog.New(&swapHandler{root: m.root})
}

// Reconfigure applies cfg. A level change takes effect immediately; format
// or output changes rebuild the handler.
func (m *Manager) Reconfigure(cfg Config) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.levelVar.Set(parseLevel(cfg.Level))
	if outputChanged(m.config, cfg) {
		if m.closer != nil {
			_ = m.closer.Close()
			m.closer = nil
		}
		m.install(cfg)
	}
	m.config = cfg
}

func outputChanged(a, b Config) bool {
	return a.Format != b.Format ||
		a.FileEnabled != b.FileEnabled ||
		a.FilePath != b.FilePath ||
		a.MaxSizeMB != b.MaxSizeMB ||
		a.MaxFiles != b.MaxFiles
}

func (m *Manager) install(cfg Config) {
	w, closer := m.buildWriter(cfg)
	h := buildHandler(w, m.levelVar, cfg.Format)
	m.root.Store(&h)
	m.closer = closer
}

// Config returns the active configuration.
func (m *Manager) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

// Close closes the log file, if any.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closer == nil {
		return nil
	}
	err := m.closer.Close()
	m.closer = nil
	return err
}

func (m *Manager) buildWriter(cfg Config) (io.Writer, io.Closer) {
	if !cfg.FileEnabled || cfg.FilePath == "" {
		return m.fallback, nil
	}
	// lumberjack creates the directory on first write
	lj := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    max(cfg.MaxSizeMB, 1),
		MaxBackups: max(cfg.MaxFiles, 1),
	}
	return lj, lj
}

func buildHandler(w io.Writer, leveler slog.Leveler, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: leveler}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Follow reconfigures m whenever the log section of store changes. It
// returns the unsubscribe function.
func (m *Manager) Follow(store *config.Store) func() {
	return store.Subscribe(config.SectionLog, func(c config.Config) {
		m.Reconfigure(FromConfig(c.GetLogConfig()))
	})
}
