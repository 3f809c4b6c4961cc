package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"slices"
	"strings"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-formpreview/pkg/form"
	"github.com/goliatone/go-formpreview/pkg/model"
	"github.com/goliatone/go-formpreview/pkg/render"
	"github.com/goliatone/go-formpreview/pkg/renderers/vanilla/components"
	"github.com/goliatone/go-formpreview/pkg/validation"
)

// Name is the identifier the renderer registers under.
const Name = "tui"

// Renderer implements render.Renderer for terminal-driven sessions. Each
// field is prompted in schema order and re-prompted until its rules pass.
type Renderer struct {
	driver            PromptDriver
	messages          io.Writer
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
	logger            *slog.Logger
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) *Renderer {
	r := &Renderer{
		messages:     os.Stderr,
		outputFormat: OutputFormatJSON,
		logger:       slog.Default(),
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if r.driver == nil {
		r.driver = newSurveyDriver(r.messages)
	}

	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// valueSetter is implemented by registrars that also store answers, such as
// form.Controller.
type valueSetter interface {
	SetValue(id, value string)
}

// Render prompts every field, validates each answer against the compiled
// rules and serializes the collected values.
func (r *Renderer) Render(ctx context.Context, schema model.FormSchema, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	registrar := opts.Form
	if registrar == nil {
		registrar = form.New()
	}

	if schema.FormTitle != "" {
		if err := r.info(ctx, schema.FormTitle); err != nil {
			return nil, err
		}
	}

	values := make(map[string]string, len(schema.Fields))
	for _, field := range schema.Fields {
		if err := registrar.Register(field); err != nil {
			return nil, fmt.Errorf("tui: %w", err)
		}
		rules, err := validation.Compile(field)
		if err != nil {
			return nil, fmt.Errorf("tui: %w", err)
		}
		value, err := r.promptField(ctx, field, rules, registrar.Value(field.ID))
		if err != nil {
			return nil, err
		}
		values[field.ID] = value
		if setter, ok := registrar.(valueSetter); ok {
			setter.SetValue(field.ID, value)
		}
	}

	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}

	return r.serialize(schema, values)
}

func (r *Renderer) promptField(ctx context.Context, field model.FormField, rules validation.Rules, current string) (string, error) {
	if field.Type.IsChoice() && len(field.Options) == 0 {
		if rules.Required() {
			return "", fmt.Errorf("%w: %q", ErrNoOptions, field.ID)
		}
		r.logger.Warn("choice field has no options", "field", field.ID, "type", string(field.Type))
		return "", nil
	}

	for {
		value, err := r.ask(ctx, field, current)
		if err != nil {
			return "", err
		}
		fieldErr, failed := rules.Check(value)
		if !failed {
			return value, nil
		}
		if err := r.errorf(ctx, fieldErr.Message); err != nil {
			return "", err
		}
		current = value
	}
}

func (r *Renderer) ask(ctx context.Context, field model.FormField, current string) (string, error) {
	message := displayLabel(field)
	switch field.Type {
	case model.FieldTypeSelect, model.FieldTypeRadio:
		options := make([]string, 0, len(field.Options)+1)
		options = append(options, components.EmptyOptionLabel)
		defaultIndex := 0
		for idx, option := range field.Options {
			options = append(options, optionLabel(option))
			if current != "" && option.Value == current {
				defaultIndex = idx + 1
			}
		}
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      options,
			DefaultIndex: defaultIndex,
			Help:         field.Placeholder,
		})
		if err != nil {
			return "", err
		}
		if idx <= 0 || idx > len(field.Options) {
			return "", nil
		}
		return field.Options[idx-1].Value, nil
	case model.FieldTypeTextarea:
		value, err := r.driver.TextArea(ctx, TextAreaConfig{
			Message: message,
			Default: current,
			Help:    field.Placeholder,
		})
		return strings.TrimRight(value, "\n"), err
	default:
		return r.driver.Input(ctx, InputConfig{
			Message: message,
			Default: current,
			Help:    field.Placeholder,
		})
	}
}

func (r *Renderer) info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Renderer) errorf(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.ErrorPrefix+msg)
}

func (r *Renderer) serialize(schema model.FormSchema, values map[string]string) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(encodeForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(schema, values)), nil
	default:
		out, err := json.Marshal(values)
		if err != nil {
			return nil, fmt.Errorf("tui: encode json: %w", err)
		}
		return out, nil
	}
}

func displayLabel(field model.FormField) string {
	label := field.Label
	if label == "" {
		label = field.ID
	}
	if field.RequiresValue() {
		label += " *"
	}
	return label
}

func optionLabel(option model.FieldOption) string {
	if option.Label != "" {
		return option.Label
	}
	return option.Value
}

func encodeForm(values map[string]string) string {
	out := url.Values{}
	for key, value := range values {
		out.Set(key, value)
	}
	return out.Encode()
}

// prettyPrint lists values in schema order followed by any extra keys a
// submit transformer introduced.
func prettyPrint(schema model.FormSchema, values map[string]string) string {
	var b strings.Builder
	seen := make(map[string]bool, len(values))
	for _, field := range schema.Fields {
		value, ok := values[field.ID]
		if !ok || seen[field.ID] {
			continue
		}
		seen[field.ID] = true
		fmt.Fprintf(&b, "%s=%s\n", field.ID, value)
	}
	extras := make([]string, 0)
	for key := range values {
		if !seen[key] {
			extras = append(extras, key)
		}
	}
	if len(extras) > 0 {
		slices.Sort(extras)
		for _, key := range extras {
			fmt.Fprintf(&b, "%s=%s\n", key, values[key])
		}
	}
	return b.String()
}
