// Package theme holds the light/dark preference as an explicit value: it is
// initialised from a durable Store (falling back to a system Signal),
// toggled by the user, and resolved into go-theme renderer configuration.
package theme

import "strings"

// Mode is the active color scheme.
type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

// PreferenceKey is the storage key holding the mode.
const PreferenceKey = "theme"

// ParseMode accepts "light" or "dark", case-insensitively.
func ParseMode(value string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case Light:
		return Light, true
	case Dark:
		return Dark, true
	default:
		return "", false
	}
}

// Toggle returns the opposite mode.
func (m Mode) Toggle() Mode {
	if m == Dark {
		return Light
	}
	return Dark
}

func (m Mode) String() string {
	return string(m)
}
