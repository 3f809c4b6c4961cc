package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formpreview/pkg/model"
)

const (
	// RequiredMessage is shown when a required field is left empty.
	RequiredMessage = "This field is required"
	// InvalidFormatMessage is shown when a pattern fails and the rule has no
	// message of its own.
	InvalidFormatMessage = "Invalid format"
	// NotANumberMessage is shown when a number field holds non-numeric text.
	NotANumberMessage = "Please enter a number"
)

// Kind identifies a constraint.
type Kind string

const (
	KindRequired Kind = "required"
	KindPattern  Kind = "pattern"
	KindNumber   Kind = "number"
	KindMin      Kind = "min"
	KindMax      Kind = "max"
	// KindRejected marks errors reported by a submit sink rather than a
	// compiled constraint.
	KindRejected Kind = "rejected"
)

// Constraint is one compiled rule attached to a field.
type Constraint struct {
	Kind    Kind
	Message string
	// Pattern holds the source expression for pattern constraints so
	// renderers can mirror it into HTML attributes.
	Pattern string
	// Bound holds the threshold for min/max constraints.
	Bound float64

	re matcher
}

// FieldError is the single validation failure reported for a field.
type FieldError struct {
	Field   string `json:"field"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Rules groups the constraints compiled for one field, in evaluation order.
type Rules struct {
	Field       string
	Type        model.FieldType
	Constraints []Constraint
}

// Compile builds the constraints for a field. Required is attached when the
// field or its rule asks for it; pattern only for free-text fields; min/max
// only for number fields. An invalid pattern is reported as an error.
func Compile(field model.FormField) (Rules, error) {
	rules := Rules{Field: field.ID, Type: field.Type}
	rule := field.Validation

	if field.RequiresValue() {
		rules.Constraints = append(rules.Constraints, Constraint{
			Kind:    KindRequired,
			Message: requiredMessage(rule),
		})
	}

	if rule == nil {
		return rules, nil
	}

	if rule.Pattern != "" && !field.Type.IsChoice() {
		re, err := compilePattern(rule.Pattern)
		if err != nil {
			return Rules{}, fmt.Errorf("validation: field %q: invalid pattern %q: %w", field.ID, rule.Pattern, err)
		}
		message := rule.Message
		if message == "" {
			message = InvalidFormatMessage
		}
		rules.Constraints = append(rules.Constraints, Constraint{
			Kind:    KindPattern,
			Message: message,
			Pattern: rule.Pattern,
			re:      re,
		})
	}

	if field.Type == model.FieldTypeNumber {
		if rule.Min != nil || rule.Max != nil {
			rules.Constraints = append(rules.Constraints, Constraint{Kind: KindNumber, Message: NotANumberMessage})
		}
		if rule.Min != nil {
			rules.Constraints = append(rules.Constraints, Constraint{
				Kind:    KindMin,
				Message: boundMessage(rule.Message, "Must be at least %s", *rule.Min),
				Bound:   *rule.Min,
			})
		}
		if rule.Max != nil {
			rules.Constraints = append(rules.Constraints, Constraint{
				Kind:    KindMax,
				Message: boundMessage(rule.Message, "Must be at most %s", *rule.Max),
				Bound:   *rule.Max,
			})
		}
	}

	return rules, nil
}

// MustCompile panics when Compile fails. Useful for tests and static schemas.
func MustCompile(field model.FormField) Rules {
	rules, err := Compile(field)
	if err != nil {
		panic(err)
	}
	return rules
}

// Check evaluates the constraints against value and returns the first
// failure. Constraints other than required are skipped for empty values.
func (r Rules) Check(value string) (FieldError, bool) {
	empty := value == ""
	var number float64
	for _, constraint := range r.Constraints {
		if constraint.Kind != KindRequired && empty {
			continue
		}
		switch constraint.Kind {
		case KindRequired:
			if empty {
				return r.fail(constraint), true
			}
		case KindPattern:
			if constraint.re != nil && !constraint.re.match(value) {
				return r.fail(constraint), true
			}
		case KindNumber:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil {
				return r.fail(constraint), true
			}
			number = parsed
		case KindMin:
			if number < constraint.Bound {
				return r.fail(constraint), true
			}
		case KindMax:
			if number > constraint.Bound {
				return r.fail(constraint), true
			}
		}
	}
	return FieldError{}, false
}

// Required reports whether the rules include a required constraint.
func (r Rules) Required() bool {
	_, ok := r.find(KindRequired)
	return ok
}

// PatternSource returns the pattern expression, if any.
func (r Rules) PatternSource() string {
	if c, ok := r.find(KindPattern); ok {
		return c.Pattern
	}
	return ""
}

// Bound returns the min or max threshold, if declared.
func (r Rules) Bound(kind Kind) (float64, bool) {
	if c, ok := r.find(kind); ok {
		return c.Bound, true
	}
	return 0, false
}

func (r Rules) find(kind Kind) (Constraint, bool) {
	for _, c := range r.Constraints {
		if c.Kind == kind {
			return c, true
		}
	}
	return Constraint{}, false
}

func (r Rules) fail(c Constraint) FieldError {
	return FieldError{Field: r.Field, Kind: c.Kind, Message: c.Message}
}

// requiredMessage applies the per-field override: a rule that itself sets
// required with a message and no pattern owns that message.
func requiredMessage(rule *model.ValidationRule) string {
	if rule != nil && rule.Required != nil && *rule.Required && rule.Message != "" && rule.Pattern == "" {
		return rule.Message
	}
	return RequiredMessage
}

func boundMessage(custom, format string, bound float64) string {
	if custom != "" {
		return custom
	}
	return fmt.Sprintf(format, strconv.FormatFloat(bound, 'f', -1, 64))
}
