package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Section names one top-level table of the config file.
type Section string

const (
	SectionNetwork Section = "network"
	SectionAPI     Section = "api"
	SectionUI      Section = "ui"
	SectionLog     Section = "log"
)

// Sections lists every section in file order.
var Sections = []Section{SectionNetwork, SectionAPI, SectionUI, SectionLog}

type subscriber struct {
	id int
	fn func(Config)
}

// Store owns the loaded configuration. Components receive it explicitly and
// subscribe to the sections they depend on.
type Store struct {
	paths    []string // read in order, last wins
	savePath string
	logger   *slog.Logger

	// updateMu serializes writers; mu guards the fields below
	updateMu sync.Mutex

	mu     sync.RWMutex
	cfg    Config
	subs   map[Section][]subscriber
	nextID int

	watchMu  sync.Mutex
	watchers []*file.File
}

// Open creates a store reading paths in order. Without paths the XDG config
// file and ./config.toml are used. Save writes to the first path.
func Open(logger *slog.Logger, paths ...string) *Store {
	if len(paths) == 0 {
		paths = getConfigPaths()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		paths:    paths,
		savePath: paths[0],
		logger:   logger.With("component", "config"),
		cfg:      Default(),
		subs:     make(map[Section][]subscriber),
	}
}

// Load reads every existing config file and notifies sections whose values
// changed.
func (s *Store) Load() error {
	cfg, err := s.read()
	if err != nil {
		return err
	}
	s.replace(cfg, false)
	return nil
}

func (s *Store) read() (Config, error) {
	k := koanf.New(".")
	for _, path := range s.paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return Config{}, fmt.Errorf("loading %s: %w", path, err)
			}
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

// Save writes the current configuration to the save path.
func (s *Store) Save() error {
	s.mu.RLock()
	m := s.cfg.toMap()
	s.mu.RUnlock()

	data, err := toml.Parser().Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.savePath), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(s.savePath, data, 0o644); err != nil { //nolint:gosec // config is not secret
		return fmt.Errorf("writing config: %w", err)
	}
	s.logger.Info("config saved", "path", s.savePath)
	return nil
}

// Reset restores the defaults and notifies every section.
func (s *Store) Reset() {
	s.replace(Default(), true)
}

// Config returns a copy of the current configuration.
func (s *Store) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Update applies fn to a copy of the configuration, stores it and notifies
// the sections it changed.
func (s *Store) Update(fn func(*Config)) {
	s.updateMu.Lock()
	s.mu.RLock()
	cfg := s.cfg
	s.mu.RUnlock()
	if cfg.UI.ShowWelcome != nil {
		v := *cfg.UI.ShowWelcome
		cfg.UI.ShowWelcome = &v
	}

	fn(&cfg)
	cfg.normalize()
	calls := s.swap(cfg, false)
	s.updateMu.Unlock()

	notify(calls, cfg)
}

// Subscribe registers fn for changes of section and returns a function that
// removes it. fn runs on the goroutine that made the change.
func (s *Store) Subscribe(section Section, fn func(Config)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.subs[section] = append(s.subs[section], subscriber{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		subs := s.subs[section]
		for i, sub := range subs {
			if sub.id == id {
				s.subs[section] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) replace(cfg Config, all bool) {
	s.updateMu.Lock()
	calls := s.swap(cfg, all)
	s.updateMu.Unlock()
	notify(calls, cfg)
}

// swap installs cfg and returns the subscribers to notify.
func (s *Store) swap(cfg Config, all bool) []func(Config) {
	s.mu.Lock()
	old := s.cfg
	s.cfg = cfg
	var calls []func(Config)
	for _, sec := range Sections {
		if !all && sectionEqual(sec, old, cfg) {
			continue
		}
		for _, sub := range s.subs[sec] {
			calls = append(calls, sub.fn)
		}
	}
	s.mu.Unlock()
	return calls
}

func notify(calls []func(Config), cfg Config) {
	for _, fn := range calls {
		fn(cfg)
	}
}

func sectionEqual(sec Section, a, b Config) bool {
	switch sec {
	case SectionNetwork:
		return a.Network == b.Network
	case SectionAPI:
		return a.API == b.API
	case SectionUI:
		return a.UI.MaxTabs == b.UI.MaxTabs &&
			a.UI.LastEntityType == b.UI.LastEntityType &&
			boolPtrEqual(a.UI.ShowWelcome, b.UI.ShowWelcome)
	case SectionLog:
		return a.Log == b.Log
	}
	return true
}

func boolPtrEqual(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Watch reloads the configuration whenever one of the existing config files
// changes. Stop with Close.
func (s *Store) Watch() error {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	for _, path := range s.paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		f := file.Provider(path)
		err := f.Watch(func(_ any, err error) {
			if err != nil {
				s.logger.Warn("config watch", "path", path, "err", err)
				return
			}
			if err := s.Load(); err != nil {
				s.logger.Warn("config reload failed", "path", path, "err", err)
				return
			}
			s.logger.Info("config reloaded", "path", path)
		})
		if err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		s.watchers = append(s.watchers, f)
	}
	return nil
}

// Close stops watching config files.
func (s *Store) Close() error {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	for _, f := range s.watchers {
		_ = f.Unwatch()
	}
	s.watchers = nil
	return nil
}

func (c *Config) toMap() map[string]any {
	ui := map[string]any{
		"max_tabs":         int64(c.UI.MaxTabs),
		"last_entity_type": c.UI.LastEntityType,
	}
	if c.UI.ShowWelcome != nil {
		ui["show_welcome"] = *c.UI.ShowWelcome
	}
	return map[string]any{
		"network": map[string]any{
			"timeout_ms":     int64(c.Network.TimeoutMs),
			"max_retries":    int64(c.Network.MaxRetries),
			"retry_delay_ms": int64(c.Network.RetryDelayMs),
			"user_agent":     c.Network.UserAgent,
		},
		"api": map[string]any{
			"base_url":                c.API.BaseURL,
			"default_limit":           int64(c.API.DefaultLimit),
			"rate_limit_ms":           int64(c.API.RateLimitMs),
			"detail_debounce_ms":      int64(c.API.DetailDebounceMs),
			"detail_item_delay_ms":    int64(c.API.DetailItemDelayMs),
			"detail_failure_delay_ms": int64(c.API.DetailFailureDelayMs),
			"detail_timeout_ms":       int64(c.API.DetailTimeoutMs),
		},
		"ui": ui,
		"log": map[string]any{
			"file_enabled": c.Log.FileEnabled,
			"level":        c.Log.Level,
			"format":       c.Log.Format,
			"file_path":    c.Log.FilePath,
			"max_files":    int64(c.Log.MaxFiles),
			"max_size_mb":  int64(c.Log.MaxSizeMB),
		},
	}
}
