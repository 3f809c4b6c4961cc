package components

import (
	"bytes"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-formpreview/pkg/model"
	"github.com/goliatone/go-formpreview/pkg/validation"
)

// Renderer writes the control markup for one field into buf. Label, required
// marker and error line are added by the caller.
type Renderer func(buf *bytes.Buffer, field model.FormField, data ComponentData) error

// ComponentData carries the per-field state a renderer needs.
type ComponentData struct {
	// Value is the field's current value from the form state.
	Value string
	// Rules are the compiled constraints, mirrored into HTML attributes.
	Rules validation.Rules
	// Invalid marks a field currently holding an error.
	Invalid bool
	Logger  *slog.Logger
}

// Descriptor bundles a renderer with the type tag it is registered under.
type Descriptor struct {
	Type     model.FieldType
	Renderer Renderer
}

// Registry is the field-type dispatch table. Types without an entry resolve
// to the fallback type.
type Registry struct {
	mu         sync.RWMutex
	components map[model.FieldType]Descriptor
	fallback   model.FieldType
}

// New creates an empty registry whose fallback is model.FieldTypeText.
func New() *Registry {
	return &Registry{
		components: make(map[model.FieldType]Descriptor),
		fallback:   model.FieldTypeText,
	}
}

// Clone returns a copy of the registry to allow isolated mutations.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cloned := New()
	cloned.fallback = r.fallback
	for key, descriptor := range r.components {
		cloned.components[key] = descriptor
	}
	return cloned
}

// Register associates a renderer with a field type. Existing entries are
// replaced. Tags are matched exactly, so "Select" is not "select".
func (r *Registry) Register(fieldType model.FieldType, descriptor Descriptor) error {
	if strings.TrimSpace(string(fieldType)) == "" {
		return fmt.Errorf("components: field type is required")
	}
	if descriptor.Renderer == nil {
		return fmt.Errorf("components: renderer for %q is nil", fieldType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	descriptor.Type = fieldType
	r.components[fieldType] = descriptor
	return nil
}

// MustRegister mirrors Register but panics on error.
func (r *Registry) MustRegister(fieldType model.FieldType, descriptor Descriptor) {
	if err := r.Register(fieldType, descriptor); err != nil {
		panic(err)
	}
}

// SetFallback changes the type used for unregistered tags.
func (r *Registry) SetFallback(fieldType model.FieldType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = fieldType
}

// Descriptor fetches the exact entry for a field type.
func (r *Registry) Descriptor(fieldType model.FieldType) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	descriptor, ok := r.components[fieldType]
	return descriptor, ok
}

// Resolve returns the entry for fieldType, falling back to the fallback
// type's entry. The bool reports whether a renderer was found at all.
func (r *Registry) Resolve(fieldType model.FieldType) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if descriptor, ok := r.components[fieldType]; ok {
		return descriptor, true
	}
	descriptor, ok := r.components[r.fallback]
	return descriptor, ok
}

// Types returns the registered field types, sorted.
func (r *Registry) Types() []model.FieldType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]model.FieldType, 0, len(r.components))
	for key := range r.components {
		types = append(types, key)
	}
	slices.Sort(types)
	return types
}
