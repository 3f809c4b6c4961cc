package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formpreview/pkg/form"
	"github.com/goliatone/go-formpreview/pkg/model"
	"github.com/goliatone/go-formpreview/pkg/render"
	"github.com/goliatone/go-formpreview/pkg/validation"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	textAreas    []string
	infoMessages []string
	selects      []SelectConfig
	inputPos     int
	selectPos    int
	textPos      int
}

func (s *stubDriver) Input(_ context.Context, _ InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.selects = append(s.selects, cfg)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func TestRenderer_DefaultSchemaJSON(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Ada", "ada@example.com"},
		selectIdx: []int{2},
		textAreas: []string{"hello\n"},
	}
	r := New(WithPromptDriver(driver))

	out, err := r.Render(context.Background(), model.DefaultSchema(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	want := `{"comments":"hello","companySize":"51-200","email":"ada@example.com","name":"Ada"}`
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	if got := r.ContentType(); got != "application/json" {
		t.Fatalf("content type = %q", got)
	}

	if len(driver.selects) != 1 {
		t.Fatalf("expected one select prompt, got %d", len(driver.selects))
	}
	if got := driver.selects[0].Options[0]; got != "Select an option" {
		t.Fatalf("first option = %q", got)
	}
}

func TestRenderer_RepromptsUntilValid(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"", "Ada", "not-an-email", "ada@example.com"},
		selectIdx: []int{0, 1},
		textAreas: []string{""},
	}
	r := New(WithPromptDriver(driver), WithTheme(Theme{ErrorPrefix: "! "}))

	if _, err := r.Render(context.Background(), model.DefaultSchema(), render.RenderOptions{}); err != nil {
		t.Fatalf("render: %v", err)
	}

	want := []string{
		"Project Requirements Survey",
		"! " + validation.RequiredMessage,
		"! Please enter a valid email address",
		"! " + validation.RequiredMessage,
	}
	if diff := cmp.Diff(want, driver.infoMessages); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderer_StoresValuesOnController(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Ada", "ada@example.com"},
		selectIdx: []int{4},
		textAreas: []string{""},
	}
	controller := form.New()
	r := New(WithPromptDriver(driver), WithOutputFormat(OutputFormatPrettyText))

	out, err := r.Render(context.Background(), model.DefaultSchema(), render.RenderOptions{Form: controller})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	want := "name=Ada\nemail=ada@example.com\ncompanySize=1000+\ncomments=\n"
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Fatalf("pretty mismatch (-want +got):\n%s", diff)
	}
	if got := controller.Value("companySize"); got != "1000+" {
		t.Fatalf("controller value = %q", got)
	}
}

func TestRenderer_DefaultsFromRegistrar(t *testing.T) {
	driver := &stubDriver{inputs: []string{"x"}, selectIdx: []int{3}}
	controller := form.New()
	controller.SetValue("size", "b")
	schema := model.FormSchema{
		FormTitle: "T",
		Fields: []model.FormField{
			{ID: "size", Type: model.FieldTypeRadio, Label: "Size", Options: []model.FieldOption{
				{Value: "a", Label: "A"}, {Value: "b", Label: "B"}, {Value: "c"},
			}},
		},
	}

	out, err := New(WithPromptDriver(driver)).Render(context.Background(), schema, render.RenderOptions{Form: controller})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := driver.selects[0].DefaultIndex; got != 2 {
		t.Fatalf("default index = %d, want 2", got)
	}
	if diff := cmp.Diff([]string{"Select an option", "A", "B", "c"}, driver.selects[0].Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if string(out) != `{"size":"c"}` {
		t.Fatalf("unexpected output %s", out)
	}
}

func TestRenderer_RequiredChoiceWithoutOptions(t *testing.T) {
	schema := model.FormSchema{
		FormTitle: "T",
		Fields:    []model.FormField{{ID: "size", Type: model.FieldTypeSelect, Required: true}},
	}
	_, err := New(WithPromptDriver(&stubDriver{})).Render(context.Background(), schema, render.RenderOptions{})
	if !errors.Is(err, ErrNoOptions) {
		t.Fatalf("expected ErrNoOptions, got %v", err)
	}
}

func TestRenderer_FormEncodingAndTransformer(t *testing.T) {
	driver := &stubDriver{inputs: []string{"5"}}
	schema := model.FormSchema{
		FormTitle: "T",
		Fields:    []model.FormField{{ID: "count", Type: model.FieldTypeNumber}},
	}
	r := New(
		WithPromptDriver(driver),
		WithOutputFormat(OutputFormatFormURLEncoded),
		WithSubmitTransformer(func(values map[string]string) (map[string]string, error) {
			values["source"] = "cli tool"
			return values, nil
		}),
	)

	out, err := r.Render(context.Background(), schema, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := string(out); got != "count=5&source=cli+tool" {
		t.Fatalf("unexpected form payload %q", got)
	}
	if !strings.HasPrefix(r.ContentType(), "application/x-www-form-urlencoded") {
		t.Fatalf("content type = %q", r.ContentType())
	}
}

func TestRenderer_NumberBounds(t *testing.T) {
	low := 1.0
	driver := &stubDriver{inputs: []string{"abc", "0", "3"}}
	schema := model.FormSchema{
		FormTitle: "T",
		Fields: []model.FormField{{
			ID: "count", Type: model.FieldTypeNumber, Label: "Count",
			Validation: &model.ValidationRule{Min: &low},
		}},
	}

	out, err := New(WithPromptDriver(driver)).Render(context.Background(), schema, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != `{"count":"3"}` {
		t.Fatalf("unexpected output %s", out)
	}
	if len(driver.infoMessages) != 3 {
		t.Fatalf("expected title plus two rejections, got %v", driver.infoMessages)
	}
}

func TestRenderer_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(WithPromptDriver(&stubDriver{})).Render(ctx, model.DefaultSchema(), render.RenderOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
