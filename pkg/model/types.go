package model

// FieldType is the tag selecting how a field is rendered and validated.
// Unknown values are allowed and render as single-line text inputs.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeEmail    FieldType = "email"
	FieldTypeSelect   FieldType = "select"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeNumber   FieldType = "number"
)

// KnownFieldTypes lists the field types in declaration order.
var KnownFieldTypes = []FieldType{
	FieldTypeText,
	FieldTypeEmail,
	FieldTypeSelect,
	FieldTypeRadio,
	FieldTypeTextarea,
	FieldTypeNumber,
}

// Known reports whether t is one of the declared field types.
func (t FieldType) Known() bool {
	for _, known := range KnownFieldTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsChoice reports whether the field offers a fixed set of options.
func (t FieldType) IsChoice() bool {
	return t == FieldTypeSelect || t == FieldTypeRadio
}

// FieldOption is a single choice for select and radio fields. Value is the
// submitted datum, Label the display text.
type FieldOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ValidationRule carries the optional constraints declared on a field.
// Pattern and Message apply to free-text inputs only; Min and Max apply to
// number fields.
type ValidationRule struct {
	Pattern  string   `json:"pattern,omitempty"`
	Message  string   `json:"message,omitempty"`
	Required *bool    `json:"required,omitempty"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
}

// FormField models one input unit. ID is unique within a schema and is used
// both as the form-state key and the control id suffix.
type FormField struct {
	ID          string          `json:"id"`
	Type        FieldType       `json:"type"`
	Label       string          `json:"label"`
	Required    bool            `json:"required"`
	Placeholder string          `json:"placeholder,omitempty"`
	Options     []FieldOption   `json:"options,omitempty"`
	Validation  *ValidationRule `json:"validation,omitempty"`
}

// RequiresValue reports whether either the field or its validation rule marks
// it as required.
func (f FormField) RequiresValue() bool {
	if f.Required {
		return true
	}
	return f.Validation != nil && f.Validation.Required != nil && *f.Validation.Required
}

// FormSchema is the top-level document edited by the user. Fields are kept in
// display order.
type FormSchema struct {
	FormTitle       string      `json:"formTitle"`
	FormDescription string      `json:"formDescription"`
	Fields          []FormField `json:"fields"`
}

// Field returns the first field with the supplied id.
func (s FormSchema) Field(id string) (FormField, bool) {
	for _, field := range s.Fields {
		if field.ID == id {
			return field, true
		}
	}
	return FormField{}, false
}

// FieldIDs returns field ids in display order.
func (s FormSchema) FieldIDs() []string {
	ids := make([]string, 0, len(s.Fields))
	for _, field := range s.Fields {
		ids = append(ids, field.ID)
	}
	return ids
}
