package editor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/atotto/clipboard"
)

// Clipboard provides clipboard integration for the workspace.
type Clipboard interface {
	ReadText() (string, error)
	WriteText(s string) error
}

// ErrClipboardUnavailable is returned when no clipboard backend exists on
// the host (for example a headless Linux box without xclip or xsel).
var ErrClipboardUnavailable = errors.New("editor: clipboard unavailable")

// SystemClipboard talks to the operating system clipboard.
type SystemClipboard struct{}

func (SystemClipboard) ReadText() (string, error) {
	if clipboard.Unsupported {
		return "", ErrClipboardUnavailable
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("editor: read clipboard: %w", err)
	}
	return text, nil
}

func (SystemClipboard) WriteText(s string) error {
	if clipboard.Unsupported {
		return ErrClipboardUnavailable
	}
	if err := clipboard.WriteAll(s); err != nil {
		return fmt.Errorf("editor: write clipboard: %w", err)
	}
	return nil
}

// MemoryClipboard keeps text in process. Useful when the system clipboard
// is unavailable and in tests.
type MemoryClipboard struct {
	mu   sync.Mutex
	text string
}

func (c *MemoryClipboard) ReadText() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text, nil
}

func (c *MemoryClipboard) WriteText(s string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = s
	return nil
}
