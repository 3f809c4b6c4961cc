package theme

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Store persists preference values between runs.
type Store interface {
	Load(key string) (value string, ok bool, err error)
	Save(key, value string) error
}

// Signal reports the system color-scheme preference.
type Signal interface {
	PrefersDark() bool
}

// SignalFunc adapts a function into a Signal.
type SignalFunc func() bool

func (f SignalFunc) PrefersDark() bool { return f() }

// Preference is the current mode plus the store it is persisted to.
type Preference struct {
	mu        sync.Mutex
	mode      Mode
	store     Store
	listeners map[int]func(Mode)
	nextID    int
	logger    *slog.Logger
}

// InitOption configures Init.
type InitOption func(*Preference)

// WithLogger sets the logger used for store failures.
func WithLogger(logger *slog.Logger) InitOption {
	return func(p *Preference) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Init resolves the starting mode: a valid stored value wins, otherwise the
// signal decides. A failing or unreadable store is logged and treated as
// empty so the preview still starts.
func Init(store Store, signal Signal, options ...InitOption) *Preference {
	p := &Preference{
		store:     store,
		listeners: make(map[int]func(Mode)),
		logger:    slog.Default(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(p)
		}
	}

	if mode, ok := p.load(); ok {
		p.mode = mode
		return p
	}
	p.mode = Light
	if signal != nil && signal.PrefersDark() {
		p.mode = Dark
	}
	return p
}

func (p *Preference) load() (Mode, bool) {
	if p.store == nil {
		return "", false
	}
	raw, ok, err := p.store.Load(PreferenceKey)
	if err != nil {
		p.logger.Warn("theme preference unreadable", "error", err)
		return "", false
	}
	if !ok {
		return "", false
	}
	mode, valid := ParseMode(raw)
	if !valid {
		p.logger.Warn("ignoring invalid theme preference", "value", raw)
	}
	return mode, valid
}

// Mode returns the current mode.
func (p *Preference) Mode() Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

// IsDark reports whether the dark mode is active.
func (p *Preference) IsDark() bool {
	return p.Mode() == Dark
}

// Toggle flips the mode, persists it and notifies subscribers. The new mode
// applies even when persisting fails; the store error is returned.
func (p *Preference) Toggle() (Mode, error) {
	p.mu.Lock()
	next := p.mode.Toggle()
	p.mu.Unlock()
	return next, p.Set(next)
}

// Set applies mode, persists it and notifies subscribers.
func (p *Preference) Set(mode Mode) error {
	if _, ok := ParseMode(string(mode)); !ok {
		return fmt.Errorf("theme: invalid mode %q", mode)
	}

	p.mu.Lock()
	p.mode = mode
	listeners := make([]func(Mode), 0, len(p.listeners))
	for _, fn := range p.listeners {
		listeners = append(listeners, fn)
	}
	store := p.store
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(mode)
	}

	if store == nil {
		return nil
	}
	if err := store.Save(PreferenceKey, string(mode)); err != nil {
		p.logger.Warn("theme preference not saved", "error", err)
		return fmt.Errorf("theme: save preference: %w", err)
	}
	return nil
}

// Subscribe registers fn for mode changes and returns a function removing
// it.
func (p *Preference) Subscribe(fn func(Mode)) (cancel func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.listeners, id)
	}
}

type contextKey struct{}

// WithPreference returns a context carrying p.
func WithPreference(ctx context.Context, p *Preference) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the preference stored by WithPreference.
func FromContext(ctx context.Context) (*Preference, bool) {
	p, ok := ctx.Value(contextKey{}).(*Preference)
	return p, ok && p != nil
}
