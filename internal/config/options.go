// Package config loads and saves the user's persistent options.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/luki/proctemp/internal/logger"
)

// Refresh bounds. The viewer never waits longer than MaxRefresh for
// input, so it stays responsive without key presses.
const (
	MinRefresh     = 100 * time.Millisecond
	MaxRefresh     = time.Second
	DefaultRefresh = time.Second
)

// Options are the persisted user preferences.
type Options struct {
	Fahrenheit bool          `yaml:"fahrenheit"`
	Refresh    time.Duration `yaml:"refresh"`
	Source     string        `yaml:"source"`
	Logging    logger.Config `yaml:"logging"`
}

// Default returns the options used when no file exists.
func Default() Options {
	return Options{
		Refresh: DefaultRefresh,
		Source:  "auto",
		Logging: logger.DefaultConfig(),
	}
}

// normalize clamps out-of-range values back into their bounds.
func (o *Options) normalize() {
	if o.Refresh <= 0 {
		o.Refresh = DefaultRefresh
	}
	o.Refresh = min(max(o.Refresh, MinRefresh), MaxRefresh)
	if o.Source == "" {
		o.Source = "auto"
	}
}

// DefaultPath returns proctemp.yaml in the user's config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "proctemp", "proctemp.yaml")
}

// Load reads options from path. The returned Options are always usable:
// a missing file yields the defaults and no error, a corrupt one yields
// the defaults and the parse error.
func Load(path string) (Options, error) {
	opts := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return opts, nil
	}
	if err != nil {
		return opts, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	opts.normalize()
	return opts, nil
}

// WriteError reports that options could not be persisted.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("save config %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Save writes opts to path, replacing the file atomically.
func Save(path string, opts Options) error {
	data, err := yaml.Marshal(opts)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &WriteError{Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".proctemp-*.yaml")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &WriteError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}
