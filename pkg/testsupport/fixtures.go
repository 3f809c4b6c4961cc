package testsupport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formpreview/pkg/model"
	"github.com/goliatone/go-formpreview/pkg/schema"
)

// MustLoadSchema reads a schema fixture and parses it with schema.Parse.
// Testing helpers fail the test on error to keep contract tests concise.
func MustLoadSchema(t *testing.T, path string) model.FormSchema {
	t.Helper()

	parsed, err := LoadSchema(path)
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	return parsed
}

// LoadSchema returns a parsed schema without requiring testing.T, allowing
// callers to wire fixtures in setup functions.
func LoadSchema(path string) (model.FormSchema, error) {
	if path == "" {
		return model.FormSchema{}, errors.New("testsupport: schema path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.FormSchema{}, fmt.Errorf("testsupport: read schema: %w", err)
	}
	parsed, err := schema.Parse(string(data))
	if err != nil {
		return model.FormSchema{}, fmt.Errorf("testsupport: parse schema: %w", err)
	}
	return parsed, nil
}

// CompareGolden returns a cmp diff when want and got differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// AssertContains fails the test for every fragment missing from output.
func AssertContains(t *testing.T, output string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(output, fragment) {
			t.Errorf("output missing %q\n---\n%s", fragment, output)
		}
	}
}

// AssertNotContains fails the test for every fragment present in output.
func AssertNotContains(t *testing.T, output string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if strings.Contains(output, fragment) {
			t.Errorf("output unexpectedly contains %q\n---\n%s", fragment, output)
		}
	}
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
