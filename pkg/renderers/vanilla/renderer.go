package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formpreview/pkg/form"
	"github.com/goliatone/go-formpreview/pkg/model"
	"github.com/goliatone/go-formpreview/pkg/render"
	rendertemplate "github.com/goliatone/go-formpreview/pkg/render/template"
	"github.com/goliatone/go-formpreview/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formpreview/pkg/renderers/vanilla/components"
)

const (
	formTemplate = "templates/form.tmpl"
	// formPartial matches theme.FormPartial; themes may point it at their
	// own form shell.
	formPartial = "forms.form"
)

// Option configures the vanilla renderer.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templatesDir     string
	templateRenderer rendertemplate.TemplateRenderer
	registry         *components.Registry
	logger           *slog.Logger
	stylesheets      []string
	inlineStyles     bool
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir overlays templates from a directory on disk. Files there
// (for example templates/form.tmpl) shadow the bundled ones; anything
// missing still resolves from the templates FS.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		cfg.templatesDir = strings.TrimSpace(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponentRegistry replaces the field-type dispatch table.
func WithComponentRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

// WithLogger sets the logger used for rendering anomalies.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithStylesheet links an external stylesheet ahead of the form markup.
func WithStylesheet(href string) Option {
	return func(cfg *config) {
		if href = strings.TrimSpace(href); href != "" {
			cfg.stylesheets = append(cfg.stylesheets, href)
		}
	}
}

// WithDefaultStyles inlines the embedded stylesheet into the output.
func WithDefaultStyles() Option {
	return func(cfg *config) {
		cfg.inlineStyles = true
	}
}

// Renderer produces an HTML fragment for a schema.
type Renderer struct {
	templates    rendertemplate.TemplateRenderer
	registry     *components.Registry
	logger       *slog.Logger
	stylesheets  []string
	inlineStyles string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.registry == nil {
		cfg.registry = components.NewDefaultRegistry()
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	templates := cfg.templateRenderer
	if templates == nil {
		engine, err := gotemplate.New(
			gotemplate.WithBaseDir(cfg.templatesDir),
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		templates = engine
	}

	renderer := &Renderer{
		templates:   templates,
		registry:    cfg.registry,
		logger:      cfg.logger,
		stylesheets: append([]string(nil), cfg.stylesheets...),
	}
	if cfg.inlineStyles {
		renderer.inlineStyles = defaultStylesheet()
	}
	return renderer, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render registers every field with options.Form, in order, and renders the
// form. Values and errors shown are those the registrar holds.
func (r *Renderer) Render(_ context.Context, schema model.FormSchema, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	registrar := options.Form
	if registrar == nil {
		registrar = form.New()
	}

	fields := newFieldRenderer(r.registry, registrar, r.logger)
	markup := make([]string, 0, len(schema.Fields))
	for _, field := range schema.Fields {
		html, err := fields.render(field)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: %w", err)
		}
		markup = append(markup, html)
	}

	method := strings.ToUpper(strings.TrimSpace(options.Method))
	if method == "" {
		method = "POST"
	}

	var noticeMS string
	if options.Notice != "" && options.NoticeDismissAfter > 0 {
		noticeMS = strconv.FormatInt(options.NoticeDismissAfter.Milliseconds(), 10)
	}

	templateName := formTemplate
	if options.Theme != nil {
		if partial := strings.TrimSpace(options.Theme.Partials[formPartial]); partial != "" {
			templateName = partial
		}
	}

	result, err := r.templates.RenderTemplate(templateName, map[string]any{
		"title":         schema.FormTitle,
		"description":   schema.FormDescription,
		"fields":        markup,
		"notice":        options.Notice,
		"notice_ms":     noticeMS,
		"form_errors":   render.MergeFormErrors(nil, options.FormErrors...),
		"method":        method,
		"action":        options.Action,
		"hidden_fields": hiddenFieldsContext(options.Hidden),
		"classes":       chromeClasses(),
		"theme":         themeContext(options.Theme),
		"stylesheets":   r.stylesheets,
		"inline_styles": r.inlineStyles,
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func hiddenFieldsContext(hidden map[string]string) []map[string]any {
	sorted := render.SortedHiddenFields(hidden)
	if len(sorted) == 0 {
		return nil
	}
	out := make([]map[string]any, 0, len(sorted))
	for _, field := range sorted {
		out = append(out, map[string]any{"name": field.Name, "value": field.Value})
	}
	return out
}

func themeContext(cfg *theme.RendererConfig) map[string]any {
	if cfg == nil {
		return map[string]any{}
	}
	return map[string]any{
		"name":    cfg.Theme,
		"variant": cfg.Variant,
		"style":   cssVarsStyle(cfg.CSSVars),
	}
}

// cssVarsStyle renders variables as an inline style attribute value, sorted
// for deterministic output.
func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+vars[key])
	}
	return strings.Join(parts, "; ")
}
