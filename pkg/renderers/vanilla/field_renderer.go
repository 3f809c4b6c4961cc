package vanilla

import (
	"bytes"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/goliatone/go-formpreview/pkg/form"
	"github.com/goliatone/go-formpreview/pkg/model"
	"github.com/goliatone/go-formpreview/pkg/renderers/vanilla/components"
	"github.com/goliatone/go-formpreview/pkg/validation"
)

// RequiredMarker is appended to the label of required fields.
const RequiredMarker = `<span class="text-red-500 ml-1">*</span>`

type fieldRenderer struct {
	registry  *components.Registry
	registrar form.Registrar
	logger    *slog.Logger
}

func newFieldRenderer(registry *components.Registry, registrar form.Registrar, logger *slog.Logger) *fieldRenderer {
	if registry == nil {
		registry = components.NewDefaultRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &fieldRenderer{
		registry:  registry,
		registrar: registrar,
		logger:    logger,
	}
}

// render registers the field's constraints with the form and returns the
// field markup: label, control and error line.
func (r *fieldRenderer) render(field model.FormField) (string, error) {
	rules, err := validation.Compile(field)
	if err != nil {
		return "", fmt.Errorf("field %q: %w", field.ID, err)
	}
	if err := r.registrar.Register(field); err != nil {
		return "", err
	}

	descriptor, ok := r.registry.Resolve(field.Type)
	if !ok {
		return "", fmt.Errorf("field %q: no component registered for type %q", field.ID, field.Type)
	}
	if !field.Type.Known() {
		r.logger.Debug("unknown field type rendered as text input",
			"field", field.ID,
			"type", string(field.Type),
		)
	}

	fieldErr, invalid := r.registrar.Error(field.ID)
	data := components.ComponentData{
		Value:   r.registrar.Value(field.ID),
		Rules:   rules,
		Invalid: invalid,
		Logger:  r.logger,
	}

	var control bytes.Buffer
	if err := descriptor.Renderer(&control, field, data); err != nil {
		return "", fmt.Errorf("field %q: render %q component: %w", field.ID, descriptor.Type, err)
	}

	var errorMessage string
	if invalid {
		errorMessage = fieldErr.Message
	}
	return buildFieldMarkup(field, descriptor.Type, rules.Required(), control.String(), errorMessage), nil
}

func buildFieldMarkup(field model.FormField, component model.FieldType, required bool, control, errorMessage string) string {
	var builder strings.Builder
	builder.Grow(len(control) + 256)

	builder.WriteString(`    <div class="`)
	builder.WriteString(string(ClassField))
	builder.WriteString(`" data-field="`)
	builder.WriteString(html.EscapeString(field.ID))
	builder.WriteString(`" data-component="`)
	builder.WriteString(html.EscapeString(string(component)))
	builder.WriteString("\">\n")

	builder.WriteString(`      <label`)
	if field.Type == model.FieldTypeRadio {
		builder.WriteString(` id="`)
		builder.WriteString(html.EscapeString(components.LabelID(field.ID)))
	} else {
		builder.WriteString(` for="`)
		builder.WriteString(html.EscapeString(components.ControlID(field.ID)))
	}
	builder.WriteString(`" class="text-sm font-medium">`)
	builder.WriteString(html.EscapeString(field.Label))
	if required {
		builder.WriteString(RequiredMarker)
	}
	builder.WriteString("</label>\n")

	for _, line := range strings.Split(control, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		builder.WriteString("      ")
		builder.WriteString(line)
		builder.WriteByte('\n')
	}

	if errorMessage != "" {
		builder.WriteString(`      <p id="`)
		builder.WriteString(html.EscapeString(components.ErrorID(field.ID)))
		builder.WriteString(`" class="text-sm text-red-500" role="alert">`)
		builder.WriteString(html.EscapeString(errorMessage))
		builder.WriteString("</p>\n")
	}

	builder.WriteString("    </div>\n")
	return builder.String()
}
