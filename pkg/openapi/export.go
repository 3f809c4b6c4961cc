package openapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formpreview/pkg/model"
	"github.com/goliatone/go-formpreview/pkg/render"
)

const (
	// DefaultPath is the submission endpoint described by Export.
	DefaultPath = "/submit"
	// DefaultVersion is the info.version used when none is supplied.
	DefaultVersion = "1.0.0"
	// OperationID identifies the submit operation.
	OperationID = "submitForm"

	specVersion = "3.0.3"
)

// Option customises the exported document.
type Option func(*exporter)

type exporter struct {
	path    string
	version string
	servers []string
}

// WithPath overrides the submission path.
func WithPath(path string) Option {
	return func(e *exporter) {
		if path = strings.TrimSpace(path); path != "" {
			if !strings.HasPrefix(path, "/") {
				path = "/" + path
			}
			e.path = path
		}
	}
}

// WithVersion sets info.version.
func WithVersion(version string) Option {
	return func(e *exporter) {
		if version != "" {
			e.version = version
		}
	}
}

// WithServer appends a server URL.
func WithServer(url string) Option {
	return func(e *exporter) {
		if url != "" {
			e.servers = append(e.servers, url)
		}
	}
}

// Export builds and validates the document for schema. The request body
// mirrors the form fields; a 422 response carries per-field messages in the
// shape accepted by render.MapErrors.
func Export(ctx context.Context, schema model.FormSchema, opts ...Option) (*openapi3.T, error) {
	e := &exporter{path: DefaultPath, version: DefaultVersion}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	title := strings.TrimSpace(schema.FormTitle)
	if title == "" {
		title = "Form"
	}

	body := SubmissionSchema(schema)

	operation := openapi3.NewOperation()
	operation.OperationID = OperationID
	operation.Summary = "Submit " + title
	operation.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().
			WithRequired(true).
			WithContent(openapi3.NewContentWithSchema(body, []string{
				"application/json",
				"application/x-www-form-urlencoded",
			})),
	}
	operation.Responses = openapi3.NewResponses(
		openapi3.WithStatus(200, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("Submission accepted"),
		}),
		openapi3.WithStatus(422, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription("Submission rejected").
				WithJSONSchema(errorSchema()),
		}),
	)

	doc := &openapi3.T{
		OpenAPI: specVersion,
		Info: &openapi3.Info{
			Title:       title,
			Description: schema.FormDescription,
			Version:     e.version,
		},
		Paths: openapi3.NewPaths(openapi3.WithPath(e.path, &openapi3.PathItem{Post: operation})),
	}
	for _, url := range e.servers {
		doc.AddServer(&openapi3.Server{URL: url})
	}

	// Field patterns use the ECMAScript dialect, which the validator's RE2
	// check would reject for lookaheads and backreferences.
	if err := doc.Validate(ctx, openapi3.DisableSchemaPatternValidation()); err != nil {
		return nil, fmt.Errorf("openapi: invalid document: %w", err)
	}
	return doc, nil
}

// ExportJSON renders Export's result as JSON.
func ExportJSON(ctx context.Context, schema model.FormSchema, opts ...Option) ([]byte, error) {
	doc, err := Export(ctx, schema, opts...)
	if err != nil {
		return nil, err
	}
	out, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("openapi: marshal: %w", err)
	}
	return out, nil
}

// SubmissionSchema returns the object schema of a submitted payload.
func SubmissionSchema(schema model.FormSchema) *openapi3.Schema {
	object := openapi3.NewObjectSchema()
	for _, field := range schema.Fields {
		if field.ID == "" {
			continue
		}
		object.WithProperty(field.ID, fieldSchema(field))
		if field.RequiresValue() {
			object.Required = append(object.Required, field.ID)
		}
	}
	object.WithProperty(render.RevisionFieldName, openapi3.NewStringSchema().
		WithPattern(`^[0-9]+$`))
	return object
}

func fieldSchema(field model.FormField) *openapi3.Schema {
	var s *openapi3.Schema
	rule := field.Validation

	switch field.Type {
	case model.FieldTypeNumber:
		s = openapi3.NewFloat64Schema()
		if rule != nil && rule.Min != nil {
			s.WithMin(*rule.Min)
		}
		if rule != nil && rule.Max != nil {
			s.WithMax(*rule.Max)
		}
	case model.FieldTypeSelect, model.FieldTypeRadio:
		s = openapi3.NewStringSchema()
		values := make([]any, 0, len(field.Options))
		for _, option := range field.Options {
			values = append(values, option.Value)
		}
		if len(values) > 0 {
			s.WithEnum(values...)
		}
	default:
		s = openapi3.NewStringSchema()
		if field.Type == model.FieldTypeEmail {
			s.WithFormat("email")
		}
		if rule != nil && rule.Pattern != "" {
			s.WithPattern(rule.Pattern)
		}
	}

	if s.Type.Is(openapi3.TypeString) && field.RequiresValue() {
		s.WithMinLength(1)
	}

	s.Title = field.Label
	s.Description = field.Placeholder
	if rule != nil && rule.Message != "" {
		if s.Extensions == nil {
			s.Extensions = map[string]any{}
		}
		s.Extensions["x-error-message"] = rule.Message
	}
	return s
}

func errorSchema() *openapi3.Schema {
	messages := openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema())
	return openapi3.NewObjectSchema().
		WithProperty("errors", openapi3.NewObjectSchema().WithAdditionalProperties(messages))
}
