// Package config loads the optional YAML configuration shared by the CLI
// commands. Flags override file values; Defaults fills whatever is left.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formpreview/internal/logging"
	"github.com/goliatone/go-formpreview/pkg/preview"
	"github.com/goliatone/go-formpreview/pkg/theme"
)

const (
	DefaultAddr = "127.0.0.1:8080"
	// EnvPath names the environment variable consulted when no --config
	// flag is given.
	EnvPath = "FORMPREVIEW_CONFIG"
)

// Config is the file layout.
type Config struct {
	Addr           string        `yaml:"addr"`
	Schema         string        `yaml:"schema"`
	Preferences    string        `yaml:"preferences"`
	NoticeDuration time.Duration `yaml:"notice_duration"`
	Sanitize       bool          `yaml:"sanitize"`
	Log            Log           `yaml:"log"`
	Theme          Theme         `yaml:"theme"`
}

// Log configures logging.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Theme configures the initial theme when no preference is stored.
type Theme struct {
	Name string `yaml:"name"`
}

// Load reads path. An empty path returns an empty Config; a named file that
// does not exist is an error.
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("config: %s not found", path)
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes and validates the result. Unknown keys are
// rejected so typos surface.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated values.
func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Theme.Name != "" {
		if _, ok := theme.ParseMode(c.Theme.Name); !ok {
			return fmt.Errorf("config: unknown theme %q", c.Theme.Name)
		}
	}
	if c.NoticeDuration < 0 {
		return fmt.Errorf("config: notice_duration must not be negative")
	}
	return nil
}

// Defaults fills unset values.
func (c Config) Defaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.Preferences == "" {
		if path, err := theme.DefaultPreferencesPath(); err == nil {
			c.Preferences = path
		}
	}
	if c.NoticeDuration == 0 {
		c.NoticeDuration = preview.DefaultNoticeDuration
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = string(logging.FormatAuto)
	}
	return c
}

// Logging returns the logging settings.
func (c Config) Logging() logging.Config {
	return logging.Config{Level: c.Log.Level, Format: logging.Format(c.Log.Format)}
}

// ThemeMode returns the configured initial mode, if any.
func (c Config) ThemeMode() (theme.Mode, bool) {
	return theme.ParseMode(c.Theme.Name)
}
