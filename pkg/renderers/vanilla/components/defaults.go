package components

import (
	"bytes"
	"html"
	"strconv"
	"strings"

	"github.com/goliatone/go-formpreview/pkg/model"
	"github.com/goliatone/go-formpreview/pkg/validation"
)

// EmptyOptionLabel is the neutral first entry of every select.
const EmptyOptionLabel = "Select an option"

const (
	controlClass  = "flex h-10 w-full rounded-md border border-input bg-background px-3 py-2 text-sm"
	textareaClass = "flex min-h-[80px] w-full rounded-md border border-input bg-background px-3 py-2 text-sm"
	radioClass    = "h-4 w-4 border-primary text-primary"
)

// NewDefaultRegistry returns the dispatch table for the built-in field
// types. Unknown types fall back to the text input.
func NewDefaultRegistry() *Registry {
	registry := New()

	registry.MustRegister(model.FieldTypeText, Descriptor{Renderer: inputRenderer})
	registry.MustRegister(model.FieldTypeEmail, Descriptor{Renderer: inputRenderer})
	registry.MustRegister(model.FieldTypeNumber, Descriptor{Renderer: inputRenderer})
	registry.MustRegister(model.FieldTypeTextarea, Descriptor{Renderer: textareaRenderer})
	registry.MustRegister(model.FieldTypeSelect, Descriptor{Renderer: selectRenderer})
	registry.MustRegister(model.FieldTypeRadio, Descriptor{Renderer: radioRenderer})

	return registry
}

// InputType maps a field type to the HTML input type attribute.
func InputType(fieldType model.FieldType) string {
	switch fieldType {
	case model.FieldTypeEmail, model.FieldTypeNumber:
		return string(fieldType)
	default:
		return "text"
	}
}

func inputRenderer(buf *bytes.Buffer, field model.FormField, data ComponentData) error {
	buf.WriteString(`<input`)
	writeAttr(buf, "type", InputType(field.Type))
	writeAttr(buf, "id", ControlID(field.ID))
	writeAttr(buf, "name", field.ID)
	writeAttr(buf, "value", data.Value)
	if field.Placeholder != "" {
		writeAttr(buf, "placeholder", field.Placeholder)
	}
	writeConstraintAttrs(buf, field, data)
	writeAttr(buf, "class", controlClass)
	buf.WriteString(`>`)
	return nil
}

func textareaRenderer(buf *bytes.Buffer, field model.FormField, data ComponentData) error {
	buf.WriteString(`<textarea`)
	writeAttr(buf, "id", ControlID(field.ID))
	writeAttr(buf, "name", field.ID)
	if field.Placeholder != "" {
		writeAttr(buf, "placeholder", field.Placeholder)
	}
	writeConstraintAttrs(buf, field, data)
	writeAttr(buf, "class", textareaClass)
	buf.WriteString(`>`)
	buf.WriteString(html.EscapeString(data.Value))
	buf.WriteString(`</textarea>`)
	return nil
}

func selectRenderer(buf *bytes.Buffer, field model.FormField, data ComponentData) error {
	warnIfNoOptions(field, data)

	buf.WriteString(`<select`)
	writeAttr(buf, "id", ControlID(field.ID))
	writeAttr(buf, "name", field.ID)
	writeConstraintAttrs(buf, field, data)
	writeAttr(buf, "class", controlClass)
	buf.WriteString(">\n")

	buf.WriteString(`  <option value="">`)
	buf.WriteString(EmptyOptionLabel)
	buf.WriteString("</option>\n")
	for _, option := range field.Options {
		buf.WriteString(`  <option`)
		writeAttr(buf, "value", option.Value)
		if option.Value == data.Value && data.Value != "" {
			buf.WriteString(` selected`)
		}
		buf.WriteString(`>`)
		buf.WriteString(html.EscapeString(option.Label))
		buf.WriteString("</option>\n")
	}
	buf.WriteString(`</select>`)
	return nil
}

func radioRenderer(buf *bytes.Buffer, field model.FormField, data ComponentData) error {
	warnIfNoOptions(field, data)

	buf.WriteString(`<div role="radiogroup"`)
	writeAttr(buf, "id", ControlID(field.ID))
	writeAttr(buf, "aria-labelledby", LabelID(field.ID))
	if data.Invalid {
		writeAttr(buf, "aria-invalid", "true")
		writeAttr(buf, "aria-describedby", ErrorID(field.ID))
	}
	writeAttr(buf, "class", "grid gap-2")
	buf.WriteString(">\n")

	for idx, option := range field.Options {
		optionID := OptionID(field.ID, option.Value)
		buf.WriteString(`  <div class="flex items-center space-x-2">`)
		buf.WriteString(`<input type="radio"`)
		writeAttr(buf, "id", optionID)
		writeAttr(buf, "name", field.ID)
		writeAttr(buf, "value", option.Value)
		if option.Value == data.Value && data.Value != "" {
			buf.WriteString(` checked`)
		}
		// One required radio in a group makes the whole group required.
		if idx == 0 && data.Rules.Required() {
			buf.WriteString(` required`)
		}
		writeAttr(buf, "class", radioClass)
		buf.WriteString(`><label`)
		writeAttr(buf, "for", optionID)
		buf.WriteString(` class="text-sm">`)
		buf.WriteString(html.EscapeString(option.Label))
		buf.WriteString("</label></div>\n")
	}
	buf.WriteString(`</div>`)
	return nil
}

func writeConstraintAttrs(buf *bytes.Buffer, field model.FormField, data ComponentData) {
	if data.Rules.Required() {
		buf.WriteString(` required`)
	}
	if pattern := data.Rules.PatternSource(); pattern != "" {
		writeAttr(buf, "pattern", pattern)
	}
	if field.Type == model.FieldTypeNumber {
		if bound, ok := data.Rules.Bound(validation.KindMin); ok {
			writeAttr(buf, "min", strconv.FormatFloat(bound, 'f', -1, 64))
		}
		if bound, ok := data.Rules.Bound(validation.KindMax); ok {
			writeAttr(buf, "max", strconv.FormatFloat(bound, 'f', -1, 64))
		}
	}
	if data.Invalid {
		writeAttr(buf, "aria-invalid", "true")
		writeAttr(buf, "aria-describedby", ErrorID(field.ID))
	}
}

func warnIfNoOptions(field model.FormField, data ComponentData) {
	if len(field.Options) > 0 || data.Logger == nil {
		return
	}
	data.Logger.Warn("choice field has no options",
		"field", field.ID,
		"type", string(field.Type),
	)
}

func writeAttr(buf *bytes.Buffer, name, value string) {
	buf.WriteByte(' ')
	buf.WriteString(name)
	buf.WriteString(`="`)
	buf.WriteString(html.EscapeString(value))
	buf.WriteByte('"')
}

// ControlID is the DOM id of a field's control.
func ControlID(id string) string {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return ""
	}
	return "fg-" + trimmed
}

// OptionID is the DOM id of one radio item.
func OptionID(id, value string) string {
	return ControlID(id) + "-" + value
}

// LabelID is the DOM id of a field's label element.
func LabelID(id string) string {
	return ControlID(id) + "-label"
}

// ErrorID is the DOM id of a field's error line.
func ErrorID(id string) string {
	return ControlID(id) + "-error"
}
