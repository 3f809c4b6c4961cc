package gotemplate_test

import (
	"embed"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-formpreview/pkg/model"
	"github.com/goliatone/go-formpreview/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formpreview/pkg/testsupport"
)

//go:embed testdata/templates/*.tmpl
var embeddedTemplates embed.FS

func TestEngine_RenderTemplate(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("hello", map[string]any{"name": "Ada"}, w)
	})

	want := "Hello Ada!\n"
	if result != want || written != want {
		t.Fatalf("render template mismatch\nwant: %q\n got: %q / %q", want, result, written)
	}
}

func TestEngine_GlobalData(t *testing.T) {
	engine := newEngine(t, gotemplate.WithGlobalData(map[string]any{
		"settings": map[string]any{"env": "staging"},
	}))

	result, err := engine.RenderTemplate("use-global", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "env=staging\n" {
		t.Fatalf("unexpected output %q", result)
	}

	result, err = engine.RenderTemplate("use-global", map[string]any{
		"settings": map[string]any{"env": "local"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "env=local\n" {
		t.Fatalf("render data should shadow globals, got %q", result)
	}
}

func TestEngine_BaseDirShadowsFS(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "hello.tmpl"), []byte("Hi {{ name }}."), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	engine := newEngine(t, gotemplate.WithBaseDir(dir))

	result, err := engine.RenderTemplate("hello", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "Hi Ada." {
		t.Fatalf("expected on-disk template, got %q", result)
	}

	result, err = engine.RenderTemplate("use-global", nil)
	if err != nil {
		t.Fatalf("render fs fallback: %v", err)
	}
	if result != "env=\n" {
		t.Fatalf("expected embedded template, got %q", result)
	}
}

func TestEngine_StructContextUsesJSONNames(t *testing.T) {
	engine := newEngine(t)

	schema := model.FormSchema{
		FormTitle: "T",
		Fields: []model.FormField{
			{ID: "name", Type: model.FieldTypeText, Label: " Name "},
			{ID: "email", Type: model.FieldTypeEmail, Label: "Email"},
		},
	}

	result, err := engine.RenderTemplate("fields", schema)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "<name:Name><email:Email>\n" {
		t.Fatalf("unexpected output %q", result)
	}
}

func TestNew_RequiresLoader(t *testing.T) {
	if _, err := gotemplate.New(); err == nil {
		t.Fatal("expected error without loaders")
	}
}

func newEngine(t *testing.T, options ...gotemplate.Option) *gotemplate.Engine {
	t.Helper()

	templatesFS, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}

	engine, err := gotemplate.New(append([]gotemplate.Option{gotemplate.WithFS(templatesFS)}, options...)...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}
