package theme

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileStore keeps preferences in a small YAML mapping on disk.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store backed by path. The file is created on the
// first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPreferencesPath is <user config dir>/formpreview/preferences.yaml.
func DefaultPreferencesPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("theme: resolve config dir: %w", err)
	}
	return filepath.Join(dir, "formpreview", "preferences.yaml"), nil
}

func (s *FileStore) Load(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return "", false, err
	}
	value, ok := values[key]
	return value, ok, nil
}

func (s *FileStore) Save(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}
	values[key] = value

	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("theme: encode preferences: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("theme: create preferences dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("theme: write preferences: %w", err)
	}
	return nil
}

func (s *FileStore) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("theme: read preferences: %w", err)
	}
	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("theme: decode preferences %s: %w", s.path, err)
	}
	return values, nil
}

// MemoryStore keeps preferences in process.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStore returns a store seeded with a copy of values.
func NewMemoryStore(values map[string]string) *MemoryStore {
	return &MemoryStore{values: maps.Clone(values)}
}

func (s *MemoryStore) Load(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	return value, ok, nil
}

func (s *MemoryStore) Save(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.values[key] = value
	return nil
}

// ColorSchemeEnv overrides the detected scheme ("dark" or "light").
const ColorSchemeEnv = "FORMPREVIEW_COLOR_SCHEME"

// EnvSignal derives the system preference from the environment:
// ColorSchemeEnv first, then the terminal's COLORFGBG background.
type EnvSignal struct {
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

func (s EnvSignal) PrefersDark() bool {
	getenv := s.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if mode, ok := ParseMode(getenv(ColorSchemeEnv)); ok {
		return mode == Dark
	}

	// COLORFGBG is "fg;bg" or "fg;other;bg"; ANSI backgrounds 0-6 and 8
	// are dark.
	parts := strings.Split(getenv("COLORFGBG"), ";")
	bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1]))
	if err != nil {
		return false
	}
	return (bg >= 0 && bg <= 6) || bg == 8
}
