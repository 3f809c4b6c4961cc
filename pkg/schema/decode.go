package schema

import (
	"strconv"

	"github.com/goliatone/go-formpreview/pkg/model"
)

// decodeSchema maps a shape-checked document onto model types. Decoding is
// lenient: scalars are coerced to strings where the model expects text and
// malformed entries decode to zero values instead of failing the parse.
func decodeSchema(root map[string]any) model.FormSchema {
	out := model.FormSchema{
		FormTitle:       asString(root["formTitle"]),
		FormDescription: asString(root["formDescription"]),
	}

	rawFields, _ := root["fields"].([]any)
	out.Fields = make([]model.FormField, 0, len(rawFields))
	for _, raw := range rawFields {
		out.Fields = append(out.Fields, decodeField(raw))
	}
	return out
}

func decodeField(raw any) model.FormField {
	obj, ok := raw.(map[string]any)
	if !ok {
		return model.FormField{}
	}

	field := model.FormField{
		ID:          asString(obj["id"]),
		Type:        model.FieldType(asString(obj["type"])),
		Label:       asString(obj["label"]),
		Required:    truthy(obj["required"]),
		Placeholder: asString(obj["placeholder"]),
	}

	if options, ok := obj["options"].([]any); ok {
		field.Options = make([]model.FieldOption, 0, len(options))
		for _, option := range options {
			field.Options = append(field.Options, decodeOption(option))
		}
	}

	if rule, ok := obj["validation"].(map[string]any); ok {
		field.Validation = decodeRule(rule)
	}
	return field
}

func decodeOption(raw any) model.FieldOption {
	obj, ok := raw.(map[string]any)
	if !ok {
		return model.FieldOption{}
	}
	return model.FieldOption{
		Value: asString(obj["value"]),
		Label: asString(obj["label"]),
	}
}

func decodeRule(obj map[string]any) *model.ValidationRule {
	rule := &model.ValidationRule{
		Pattern: asString(obj["pattern"]),
		Message: asString(obj["message"]),
		Min:     asNumber(obj["min"]),
		Max:     asNumber(obj["max"]),
	}
	if value, ok := obj["required"]; ok && value != nil {
		required := truthy(value)
		rule.Required = &required
	}
	return rule
}

func asString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func asNumber(value any) *float64 {
	switch v := value.(type) {
	case float64:
		return &v
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil
		}
		return &parsed
	default:
		return nil
	}
}
