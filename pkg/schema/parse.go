package schema

import (
	"errors"
	"math"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-formpreview/pkg/model"
)

// Parse turns raw editor text into a FormSchema. It fails with a *ParseError
// when the text is not well-formed JSON and with a *ShapeError when the
// parsed value lacks a truthy formTitle or a fields array. Field-level
// semantics (for example choice fields without options) are not checked.
func Parse(raw string) (model.FormSchema, error) {
	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return model.FormSchema{}, newParseError(err)
	}

	root, missing := checkShape(parsed)
	if len(missing) > 0 {
		return model.FormSchema{}, &ShapeError{Missing: missing}
	}
	return decodeSchema(root), nil
}

// Validate reports whether raw would be accepted by Parse.
func Validate(raw string) error {
	_, err := Parse(raw)
	return err
}

func newParseError(err error) *ParseError {
	out := &ParseError{Message: err.Error(), Offset: -1, Err: err}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		out.Offset = syntaxErr.Offset
	}
	return out
}

func checkShape(parsed any) (map[string]any, []string) {
	root, ok := parsed.(map[string]any)
	if !ok {
		return nil, []string{"formTitle", "fields"}
	}

	var missing []string
	if !truthy(root["formTitle"]) {
		missing = append(missing, "formTitle")
	}
	if _, ok := root["fields"].([]any); !ok {
		missing = append(missing, "fields")
	}
	return root, missing
}

// truthy mirrors the loose truthiness users expect from hand-written JSON:
// empty strings, zero, false and null are falsy, everything else is truthy.
func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0 && !math.IsNaN(v)
	default:
		return true
	}
}
