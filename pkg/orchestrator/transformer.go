package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-formpreview/pkg/model"
)

// Transformer mutates a parsed schema before decorators run.
type Transformer interface {
	Transform(ctx context.Context, form *model.FormSchema) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, form *model.FormSchema) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, form *model.FormSchema) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, form)
}

// JSONPresetTransformer applies declarative overrides loaded from a JSON file.
// The document shape supports form-level text and per-field patches keyed by
// field id:
//
//	{
//	  "formTitle": "Custom",
//	  "fields": {
//	    "email": {"label": "Work email", "placeholder": "you@company.com", "required": true}
//	  }
//	}
type JSONPresetTransformer struct {
	document jsonTransformDocument
}

type jsonTransformDocument struct {
	FormTitle       string                    `json:"formTitle"`
	FormDescription string                    `json:"formDescription"`
	Fields          map[string]jsonFieldPatch `json:"fields"`
}

type jsonFieldPatch struct {
	Label       string `json:"label"`
	Placeholder string `json:"placeholder"`
	Rename      string `json:"rename"`
	Required    *bool  `json:"required"`
	Pattern     string `json:"pattern"`
	Message     string `json:"message"`
}

// NewJSONPresetTransformer constructs a transformer from raw JSON bytes.
func NewJSONPresetTransformer(data []byte) (*JSONPresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("json preset transformer: document is empty")
	}
	var document jsonTransformDocument
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("json preset transformer: parse document: %w", err)
	}
	return &JSONPresetTransformer{document: document}, nil
}

// NewJSONPresetTransformerFromFS loads a JSON transformer document from the
// provided filesystem path.
func NewJSONPresetTransformerFromFS(fsys fs.FS, path string) (*JSONPresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("json preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("json preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("json preset transformer: read %s: %w", path, err)
	}
	return NewJSONPresetTransformer(data)
}

// Transform applies the declarative patches onto the supplied schema.
func (t *JSONPresetTransformer) Transform(ctx context.Context, form *model.FormSchema) error {
	if form == nil {
		return errors.New("json preset transformer: schema is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if t.document.FormTitle != "" {
		form.FormTitle = t.document.FormTitle
	}
	if t.document.FormDescription != "" {
		form.FormDescription = t.document.FormDescription
	}

	for id, patch := range t.document.Fields {
		field := findField(form.Fields, id)
		if field == nil {
			return fmt.Errorf("json preset transformer: field %q not found", id)
		}
		applyFieldPatch(field, patch)
	}
	return nil
}

func applyFieldPatch(field *model.FormField, patch jsonFieldPatch) {
	if patch.Label != "" {
		field.Label = patch.Label
	}
	if patch.Placeholder != "" {
		field.Placeholder = patch.Placeholder
	}
	if patch.Required != nil {
		field.Required = *patch.Required
	}
	if patch.Pattern != "" || patch.Message != "" {
		rule := model.ValidationRule{}
		if field.Validation != nil {
			rule = *field.Validation
		}
		if patch.Pattern != "" {
			rule.Pattern = patch.Pattern
		}
		if patch.Message != "" {
			rule.Message = patch.Message
		}
		field.Validation = &rule
	}
	if rename := strings.TrimSpace(patch.Rename); rename != "" {
		field.ID = rename
	}
}

func findField(fields []model.FormField, id string) *model.FormField {
	for idx := range fields {
		if fields[idx].ID == id {
			return &fields[idx]
		}
	}
	return nil
}
