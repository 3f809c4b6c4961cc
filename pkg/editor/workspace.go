// Package editor adapts a text editor to the schema pipeline: every edit is
// parsed, valid text replaces the live schema, and invalid text leaves the
// previous schema in place with the error recorded for display.
package editor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/goliatone/go-formpreview/pkg/model"
	"github.com/goliatone/go-formpreview/pkg/schema"
)

// Option configures a Workspace.
type Option func(*Workspace)

// WithClipboard sets the clipboard used by Copy.
func WithClipboard(cb Clipboard) Option {
	return func(w *Workspace) {
		w.clipboard = cb
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workspace) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithSchemaListener registers fn to run after each accepted edit. fn runs
// outside the workspace lock.
func WithSchemaListener(fn func(model.FormSchema)) Option {
	return func(w *Workspace) {
		if fn != nil {
			w.listeners = append(w.listeners, fn)
		}
	}
}

// Workspace holds the editor text, the last valid schema and the latest
// parse error.
type Workspace struct {
	mu        sync.Mutex
	text      string
	current   model.FormSchema
	hasSchema bool
	err       error

	clipboard Clipboard
	logger    *slog.Logger
	listeners []func(model.FormSchema)
}

// New creates a workspace seeded with initial text. An invalid initial text
// is not an error; it is recorded like any other edit and reported by Err.
func New(initial string, options ...Option) *Workspace {
	w := &Workspace{logger: slog.Default()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(w)
	}
	_ = w.OnTextChanged(initial)
	return w
}

// NewDefault creates a workspace seeded with model.DefaultSchemaText.
func NewDefault(options ...Option) *Workspace {
	return New(model.DefaultSchemaText(), options...)
}

// OnTextChanged records the new text and parses it. On success the schema
// is replaced, the error cleared, and listeners notified. On failure the
// previous schema is kept and the error returned and recorded.
func (w *Workspace) OnTextChanged(text string) error {
	parsed, err := schema.Parse(text)

	w.mu.Lock()
	w.text = text
	if err != nil {
		w.err = err
		w.mu.Unlock()
		w.logger.Debug("schema edit rejected", "error", err)
		return err
	}
	w.current = parsed
	w.hasSchema = true
	w.err = nil
	listeners := append([]func(model.FormSchema){}, w.listeners...)
	w.mu.Unlock()

	for _, fn := range listeners {
		fn(parsed)
	}
	return nil
}

// Text returns the raw editor text, valid or not.
func (w *Workspace) Text() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.text
}

// Schema returns the last valid schema. The bool is false until some text
// has parsed successfully.
func (w *Workspace) Schema() (model.FormSchema, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current, w.hasSchema
}

// Err returns the error from the latest edit, or nil.
func (w *Workspace) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// ErrorMessage returns the message to display for Err: the parser's
// diagnostic or the fixed shape message. Empty when the text is valid.
func (w *Workspace) ErrorMessage() string {
	if err := w.Err(); err != nil {
		return err.Error()
	}
	return ""
}

// Copy writes the raw text verbatim to the clipboard. Failures are logged
// and returned; the workspace state is untouched.
func (w *Workspace) Copy(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	text := w.text
	cb := w.clipboard
	w.mu.Unlock()

	if cb == nil {
		w.logger.Warn("copy requested without clipboard")
		return ErrClipboardUnavailable
	}
	if err := cb.WriteText(text); err != nil {
		w.logger.Warn("copy to clipboard failed", "error", err)
		return fmt.Errorf("editor: copy: %w", err)
	}
	w.logger.Debug("schema copied to clipboard", "bytes", len(text))
	return nil
}
