// Package form provides the registration capability field renderers use to
// attach validation rules and read form state. It replaces an ambient,
// framework-owned form object with an explicit value passed to renderers.
package form

import (
	"fmt"
	"maps"
	"slices"

	"github.com/goliatone/go-formpreview/pkg/model"
	"github.com/goliatone/go-formpreview/pkg/validation"
)

// Registrar is the capability handed to field renderers: register a field's
// constraints, then read its current value and error.
type Registrar interface {
	Register(field model.FormField) error
	Value(id string) string
	Error(id string) (validation.FieldError, bool)
}

// Controller holds the state of one mounted form: registered rules, current
// values and the errors from the latest validation pass. It is not safe for
// concurrent use; callers serialise access (see preview.Preview).
type Controller struct {
	order  []string
	rules  map[string]validation.Rules
	values map[string]string
	errors map[string]validation.FieldError
}

var _ Registrar = (*Controller)(nil)

// New returns an empty controller.
func New() *Controller {
	return &Controller{
		rules:  make(map[string]validation.Rules),
		values: make(map[string]string),
		errors: make(map[string]validation.FieldError),
	}
}

// Register compiles and stores the field's rules. Registering the same id
// again replaces the previous rules instead of stacking them.
func (c *Controller) Register(field model.FormField) error {
	rules, err := validation.Compile(field)
	if err != nil {
		return fmt.Errorf("form: register %q: %w", field.ID, err)
	}
	if _, exists := c.rules[field.ID]; !exists {
		c.order = append(c.order, field.ID)
	}
	c.rules[field.ID] = rules
	return nil
}

// RegisterAll registers every field of the schema in order.
func (c *Controller) RegisterAll(schema model.FormSchema) error {
	for _, field := range schema.Fields {
		if err := c.Register(field); err != nil {
			return err
		}
	}
	return nil
}

// Fields returns registered ids in registration order.
func (c *Controller) Fields() []string {
	return slices.Clone(c.order)
}

// Rules returns the compiled rules for id.
func (c *Controller) Rules(id string) (validation.Rules, bool) {
	rules, ok := c.rules[id]
	return rules, ok
}

// Value returns the current value for id, or "" when unset.
func (c *Controller) Value(id string) string {
	return c.values[id]
}

// SetValue stores a single value. Ids that were never registered are kept
// so callers can round-trip unknown inputs, but they are never validated.
func (c *Controller) SetValue(id, value string) {
	c.values[id] = value
}

// SetValues replaces all current values with the supplied map.
func (c *Controller) SetValues(values map[string]string) {
	c.values = make(map[string]string, len(values))
	maps.Copy(c.values, values)
}

// Values returns a copy of the registered fields' values. Every registered
// field is present, unset ones as "".
func (c *Controller) Values() map[string]string {
	out := make(map[string]string, len(c.order))
	for _, id := range c.order {
		out[id] = c.values[id]
	}
	return out
}

// Error returns the current error for id.
func (c *Controller) Error(id string) (validation.FieldError, bool) {
	fieldErr, ok := c.errors[id]
	return fieldErr, ok
}

// Errors returns a copy of the current error set keyed by field id.
func (c *Controller) Errors() map[string]validation.FieldError {
	return maps.Clone(c.errors)
}

// Validate checks every registered field without short-circuiting and
// replaces the error set with the result, so repeated passes never
// accumulate duplicates. It reports whether all fields passed.
func (c *Controller) Validate() bool {
	next := make(map[string]validation.FieldError)
	for _, id := range c.order {
		if fieldErr, failed := c.rules[id].Check(c.values[id]); failed {
			next[id] = fieldErr
		}
	}
	c.errors = next
	return len(next) == 0
}

// ClearErrors drops all current errors.
func (c *Controller) ClearErrors() {
	c.errors = make(map[string]validation.FieldError)
}

// Reset clears values and errors while keeping registrations.
func (c *Controller) Reset() {
	c.values = make(map[string]string)
	c.errors = make(map[string]validation.FieldError)
}

// SetError records an error reported outside the field rules, such as a
// rejection from a submit sink. Unregistered ids are ignored.
func (c *Controller) SetError(fieldErr validation.FieldError) {
	if _, ok := c.rules[fieldErr.Field]; !ok {
		return
	}
	c.errors[fieldErr.Field] = fieldErr
}
