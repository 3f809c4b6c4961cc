package schema

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formpreview/pkg/model"
)

func TestParse_DefaultSchemaRoundTrip(t *testing.T) {
	got, err := Parse(model.DefaultSchemaText())
	if err != nil {
		t.Fatalf("parse default schema: %v", err)
	}
	if diff := cmp.Diff(model.DefaultSchema(), got); diff != "" {
		t.Fatalf("default schema mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_MalformedTextReturnsParseError(t *testing.T) {
	for _, raw := range []string{"", "{", `{"formTitle": }`, "not json", `{"formTitle":"T","fields":[]} trailing`} {
		_, err := Parse(raw)
		if err == nil {
			t.Fatalf("expected parse error for %q", raw)
		}
		if !errors.Is(err, ErrParse) {
			t.Fatalf("expected ErrParse for %q, got %v", raw, err)
		}
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("expected *ParseError for %q, got %T", raw, err)
		}
		if parseErr.Message == "" {
			t.Fatalf("expected parser diagnostic for %q", raw)
		}
		if errors.Is(err, ErrShape) {
			t.Fatalf("parse error must not classify as shape error")
		}
	}
}

func TestParse_ShapeFailures(t *testing.T) {
	cases := map[string]string{
		"missing title":       `{"fields": []}`,
		"empty title":         `{"formTitle": "", "fields": []}`,
		"zero title":          `{"formTitle": 0, "fields": []}`,
		"false title":         `{"formTitle": false, "fields": []}`,
		"missing fields":      `{"formTitle": "T"}`,
		"object fields":       `{"formTitle": "T", "fields": {}}`,
		"string fields":       `{"formTitle": "T", "fields": "name"}`,
		"array root":          `[]`,
		"scalar root":         `42`,
		"null root":           `null`,
		"null title":          `{"formTitle": null, "fields": []}`,
		"fields null":         `{"formTitle": "T", "fields": null}`,
		"both missing":        `{}`,
		"description only":    `{"formDescription": "D"}`,
		"title inside fields": `{"fields": [{"formTitle": "T"}]}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(raw)
			if !errors.Is(err, ErrShape) {
				t.Fatalf("expected ErrShape, got %v", err)
			}
			if err.Error() != ShapeMessage {
				t.Fatalf("unexpected message %q", err.Error())
			}
		})
	}
}

func TestParse_AcceptsTruthyTitlesAndEmptyFields(t *testing.T) {
	for _, raw := range []string{
		`{"formTitle": "T", "fields": []}`,
		`{"formTitle": 7, "fields": []}`,
		`{"formTitle": true, "fields": []}`,
		`{"formTitle": {"nested": 1}, "fields": []}`,
	} {
		got, err := Parse(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if len(got.Fields) != 0 {
			t.Fatalf("expected no fields for %q", raw)
		}
	}
}

func TestParse_LenientFieldDecoding(t *testing.T) {
	raw := `{
		"formTitle": 12,
		"formDescription": "D",
		"fields": [
			{"id": "n", "type": "text", "label": "Name", "required": true},
			{"id": "s", "type": "select", "label": "Size", "required": 1},
			{"id": "r", "type": "radio", "label": "Pick", "options": [{"value": 1, "label": "One"}, "bad"]},
			{"id": "age", "type": "number", "label": "Age", "validation": {"min": 18, "max": "99", "required": false}},
			"not-a-field",
			{"id": "x", "type": "color", "label": "Colour"}
		]
	}`

	got, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	min, max := 18.0, 99.0
	notRequired := false
	want := model.FormSchema{
		FormTitle:       "12",
		FormDescription: "D",
		Fields: []model.FormField{
			{ID: "n", Type: model.FieldTypeText, Label: "Name", Required: true},
			{ID: "s", Type: model.FieldTypeSelect, Label: "Size", Required: true},
			{ID: "r", Type: model.FieldTypeRadio, Label: "Pick", Options: []model.FieldOption{{Value: "1", Label: "One"}, {}}},
			{ID: "age", Type: model.FieldTypeNumber, Label: "Age", Validation: &model.ValidationRule{Min: &min, Max: &max, Required: &notRequired}},
			{},
			{ID: "x", Type: model.FieldType("color"), Label: "Colour"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decoded schema mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_ChoiceWithoutOptionsIsNotRejected(t *testing.T) {
	got, err := Parse(`{"formTitle":"T","fields":[{"id":"s","type":"select","label":"S"}]}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got.Fields[0].Options) != 0 {
		t.Fatalf("expected no options, got %v", got.Fields[0].Options)
	}
}

func TestLoadFileAndFS(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.json")
	if err := os.WriteFile(path, []byte(model.DefaultSchemaText()), 0o644); err != nil {
		t.Fatalf("write schema: %v", err)
	}

	doc, err := LoadFile(context.Background(), path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if doc.Source().Kind() != SourceKindFile {
		t.Fatalf("expected file source, got %s", doc.Source().Kind())
	}
	if _, err := doc.Schema(); err != nil {
		t.Fatalf("parse loaded document: %v", err)
	}

	fsys := fstest.MapFS{"forms/survey.json": {Data: []byte(`{"formTitle":"T","fields":[]}`)}}
	doc, err = LoadFS(context.Background(), fsys, "forms/survey.json")
	if err != nil {
		t.Fatalf("load fs: %v", err)
	}
	if doc.Location() != "forms/survey.json" {
		t.Fatalf("unexpected location %q", doc.Location())
	}

	if _, err := LoadFile(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if _, err := LoadFS(context.Background(), nil, "x"); err == nil {
		t.Fatalf("expected error for nil fs")
	}
}
