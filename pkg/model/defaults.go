package model

import (
	"github.com/goccy/go-json"
)

// DefaultSchema returns the starter schema shown when the editor opens.
func DefaultSchema() FormSchema {
	return FormSchema{
		FormTitle:       "Project Requirements Survey",
		FormDescription: "Please fill out this survey about your project needs",
		Fields: []FormField{
			{
				ID:          "name",
				Type:        FieldTypeText,
				Label:       "Full Name",
				Required:    true,
				Placeholder: "Enter your full name",
			},
			{
				ID:          "email",
				Type:        FieldTypeEmail,
				Label:       "Email Address",
				Required:    true,
				Placeholder: "you@example.com",
				Validation: &ValidationRule{
					Pattern: `^[^\s@]+@[^\s@]+\.[^\s@]+$`,
					Message: "Please enter a valid email address",
				},
			},
			{
				ID:       "companySize",
				Type:     FieldTypeSelect,
				Label:    "Company Size",
				Required: true,
				Options: []FieldOption{
					{Value: "1-50", Label: "1-50 employees"},
					{Value: "51-200", Label: "51-200 employees"},
					{Value: "201-1000", Label: "201-1000 employees"},
					{Value: "1000+", Label: "1000+ employees"},
				},
			},
			{
				ID:          "comments",
				Type:        FieldTypeTextarea,
				Label:       "Additional Comments",
				Required:    false,
				Placeholder: "Any other details you'd like to share...",
			},
		},
	}
}

// DefaultSchemaText returns DefaultSchema as two-space indented JSON, the
// initial editor content.
func DefaultSchemaText() string {
	payload, err := json.MarshalIndent(DefaultSchema(), "", "  ")
	if err != nil {
		// The default schema only holds strings, bools and slices.
		panic(err)
	}
	return string(payload)
}
