package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-formpreview/pkg/model"
	"github.com/goliatone/go-formpreview/pkg/render"
	"github.com/goliatone/go-formpreview/pkg/renderers/vanilla"
	"github.com/goliatone/go-formpreview/pkg/schema"
	"github.com/goliatone/go-formpreview/pkg/theme"
)

const defaultRendererName = "vanilla"

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithRenderer registers an additional renderer on the orchestrator's
// registry. Registration errors surface from Generate.
func WithRenderer(renderer render.Renderer) Option {
	return func(o *Orchestrator) {
		o.extra = append(o.extra, renderer)
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithSchemaTransformer registers a Transformer that can mutate the parsed
// schema before decorators run.
func WithSchemaTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// WithDecorators registers decorators that run against the parsed schema
// before rendering.
func WithDecorators(decorators ...model.Decorator) Option {
	return func(o *Orchestrator) {
		o.decorators = append(o.decorators, decorators...)
	}
}

// WithThemeMode sets the theme used when neither the request nor the context
// carries one.
func WithThemeMode(mode theme.Mode) Option {
	return func(o *Orchestrator) {
		o.mode = mode
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator coordinates the full pipeline from schema text to rendered
// output.
type Orchestrator struct {
	registry        *render.Registry
	extra           []render.Renderer
	defaultRenderer string
	initialiseErr   error
	decorators      []model.Decorator
	transformer     Transformer
	mode            theme.Mode
	logger          *slog.Logger
}

// New constructs an Orchestrator applying any provided options. Missing
// dependencies are initialised with the built-in implementations so callers
// can start with a single constructor call.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
		mode:            theme.Light,
		logger:          slog.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes the inputs required to render a form.
type Request struct {
	// Text is the raw schema text. Ignored when Document is supplied.
	Text string

	// Document allows callers to pass text loaded through schema.LoadFile or
	// schema.LoadFS so errors carry its location.
	Document *schema.Document

	// Renderer names the renderer to use. If empty, the orchestrator falls back
	// to the configured default renderer.
	Renderer string

	// RenderOptions carries per-request instructions such as the registrar,
	// notice, theme and hidden fields.
	RenderOptions render.RenderOptions
}

// Generate parses the request text and renders it with the selected
// renderer. Parse and shape failures are returned unwrapped enough for
// errors.Is(err, schema.ErrParse) and errors.Is(err, schema.ErrShape).
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}

	form, err := o.Schema(ctx, req)
	if err != nil {
		return nil, err
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}

	opts := req.RenderOptions
	if opts.Theme == nil {
		opts.Theme = theme.RendererConfig(o.modeFor(ctx))
	}

	output, err := renderer.Render(ctx, form, opts)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

// Schema runs the parse, transform and decorate stages without rendering.
func (o *Orchestrator) Schema(ctx context.Context, req Request) (model.FormSchema, error) {
	var (
		form model.FormSchema
		err  error
	)
	if req.Document != nil {
		form, err = req.Document.Schema()
		if err != nil {
			return model.FormSchema{}, fmt.Errorf("orchestrator: %s: %w", req.Document.Location(), err)
		}
	} else {
		form, err = schema.Parse(req.Text)
		if err != nil {
			return model.FormSchema{}, fmt.Errorf("orchestrator: %w", err)
		}
	}

	if err := o.applyTransformer(ctx, &form); err != nil {
		return model.FormSchema{}, err
	}
	if err := o.applyDecorators(&form); err != nil {
		return model.FormSchema{}, err
	}
	return form, nil
}

// Renderers lists the registered renderer names.
func (o *Orchestrator) Renderers() []string {
	if o.registry == nil {
		return nil
	}
	return o.registry.List()
}

func (o *Orchestrator) modeFor(ctx context.Context) theme.Mode {
	if pref, ok := theme.FromContext(ctx); ok {
		return pref.Mode()
	}
	return o.mode
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}

	renderer, err := o.registry.Get(names[0])
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", names[0], err)
	}
	return renderer, nil
}

func (o *Orchestrator) applyDecorators(form *model.FormSchema) error {
	for _, decorator := range o.decorators {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(form); err != nil {
			return fmt.Errorf("orchestrator: decorate schema: %w", err)
		}
	}
	return nil
}

func (o *Orchestrator) applyTransformer(ctx context.Context, form *model.FormSchema) error {
	if o.transformer == nil {
		return nil
	}
	if err := o.transformer.Transform(ctx, form); err != nil {
		return fmt.Errorf("orchestrator: transform schema: %w", err)
	}
	return nil
}

func (o *Orchestrator) applyDefaults() {
	if o.registry == nil {
		o.registry = render.NewRegistry()
		renderer, err := vanilla.New(vanilla.WithLogger(o.logger))
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
			return
		}
		o.registry.MustRegister(renderer)
	}
	for _, renderer := range o.extra {
		if err := o.registry.Register(renderer); err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: %w", err)
			return
		}
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
}
