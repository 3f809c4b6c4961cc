package render

import (
	"strings"

	"github.com/goliatone/go-formpreview/pkg/model"
)

// ErrorMapping splits an error payload into field-level messages keyed by
// field id and form-level messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors concatenates form-level messages, trimming whitespace and
// removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrors assigns payload messages to schema fields. Keys may be bare ids
// or pointer-like paths ("/email", "#/fields/email", "$.body.email"); the
// last segment naming a schema field wins. Unknown keys become form-level
// errors so messages are never lost.
func MapErrors(schema model.FormSchema, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{}
	if len(payload) == 0 {
		return mapping
	}

	ids := make(map[string]struct{}, len(schema.Fields))
	for _, field := range schema.Fields {
		if id := strings.TrimSpace(field.ID); id != "" {
			ids[id] = struct{}{}
		}
	}

	for raw, messages := range payload {
		normalized := normalizeMessages(messages)
		if len(normalized) == 0 {
			continue
		}
		id, ok := matchFieldID(raw, ids)
		if !ok {
			mapping.Form = append(mapping.Form, normalized...)
			continue
		}
		if mapping.Fields == nil {
			mapping.Fields = make(map[string][]string)
		}
		mapping.Fields[id] = normalizeMessages(append(mapping.Fields[id], normalized...))
	}

	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func matchFieldID(raw string, ids map[string]struct{}) (string, bool) {
	segments := pathSegments(raw)
	for i := len(segments) - 1; i >= 0; i-- {
		if _, ok := ids[segments[i]]; ok {
			return segments[i], true
		}
	}
	return "", false
}

func pathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	clean = strings.TrimLeft(clean, "#$./")
	if clean == "" {
		return nil
	}
	clean = strings.NewReplacer("[", ".", "]", "").Replace(clean)

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
