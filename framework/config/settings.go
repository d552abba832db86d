// Package config provides the application settings store: a YAML settings
// file overlaid with environment variables, plus change notification.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment variables that override settings keys.
// OBSERVE_APP_THEME overrides "app.theme", OBSERVE_LOG_LEVEL "log.level".
const EnvPrefix = "OBSERVE_"

// ── Settings ─────────────────────────────────────────────────────────────────

// Settings is the shared key/value settings accessor. Precedence, highest
// first: environment variables, YAML settings file, caller defaults.
type Settings struct {
	mu   sync.RWMutex
	k    *koanf.Koanf
	path string
}

// Load reads .env files (if present), the YAML settings file at path (if
// present) and the OBSERVE_* environment, in that order. Call once at
// bootstrap:
//
//	s, err := config.Load("settings.yaml")
func Load(path string, envFiles ...string) (*Settings, error) {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist outside development
	_ = godotenv.Load(files...)

	k, err := load(path)
	if err != nil {
		return nil, err
	}
	return &Settings{k: k, path: path}, nil
}

func load(path string) (*koanf.Koanf, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// First run: the settings file appears once the app saves it.
		default:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	// OBSERVE_APP_THEME -> app.theme
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}
	return k, nil
}

// Path returns the settings file path ("" when running file-less).
func (s *Settings) Path() string { return s.path }

// Reload re-reads the settings file and environment, replacing the store
// atomically.
func (s *Settings) Reload() error {
	k, err := load(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.k = k
	s.mu.Unlock()
	return nil
}

// ── Accessors ────────────────────────────────────────────────────────────────

// GetValue returns the raw value for key, or nil if absent.
func (s *Settings) GetValue(key string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.k.Get(key)
}

// Has reports whether key is set.
func (s *Settings) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.k.Exists(key)
}

// String returns the string value for key, or def if absent.
func (s *Settings) String(key, def string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.k.Exists(key) {
		return def
	}
	return s.k.String(key)
}

// Int returns the int value for key, or def if absent.
func (s *Settings) Int(key string, def int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.k.Exists(key) {
		return def
	}
	return s.k.Int(key)
}

// Bool returns the bool value for key, or def if absent.
func (s *Settings) Bool(key string, def bool) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.k.Exists(key) {
		return def
	}
	return s.k.Bool(key)
}

// Duration returns the duration value for key, or def if absent.
func (s *Settings) Duration(key string, def time.Duration) time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.k.Exists(key) {
		return def
	}
	return s.k.Duration(key)
}

// ── Change notification ──────────────────────────────────────────────────────

// Watch reloads the store and calls onChange whenever the settings file is
// rewritten. It returns a stop function suitable for the teardown ledger:
//
//	stop, err := settings.Watch(func() { theme.Apply(settings) })
//	if err != nil {
//	    return err
//	}
//	app.Effect(stop)
func (s *Settings) Watch(onChange func()) (func() error, error) {
	if s.path == "" {
		return nil, fmt.Errorf("config: no settings file to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: create watcher: %w", err)
	}
	// Watch the directory: editors and the settings writer replace the file,
	// which would orphan a watch on the file itself.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("config: watch %s: %w", filepath.Dir(s.path), err)
	}

	target := filepath.Base(s.path)
	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != target {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if err := s.Reload(); err != nil {
					continue
				}
				if onChange != nil {
					onChange()
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return watcher.Close, nil
}
