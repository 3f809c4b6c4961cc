package render

import (
	"time"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formpreview/pkg/form"
)

// RenderOptions describe per-request data renderers use to customise their
// output without mutating the schema.
type RenderOptions struct {
	// Form is the registration capability field renderers attach their
	// constraints to and read values/errors from. When nil, renderers use a
	// fresh form.Controller, producing an unfilled, error-free form.
	Form form.Registrar
	// Notice is the transient success message shown above the form.
	Notice string
	// NoticeDismissAfter is emitted as data-dismiss-ms so pages can hide
	// the notice client-side.
	NoticeDismissAfter time.Duration
	// FormErrors are form-level messages not tied to a single field.
	FormErrors []string
	// Action and Method configure the HTML form element. Empty Method
	// defaults to POST.
	Action string
	Method string
	// Hidden carries hidden inputs emitted alongside the visible fields.
	Hidden map[string]string
	// Theme carries resolved theme tokens and CSS variables.
	Theme *theme.RendererConfig
}
