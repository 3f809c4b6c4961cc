// Package formpreview turns a JSON form schema into a live form preview.
// The root package exposes the orchestrator and a one-call HTML entry point;
// the editor, preview and theme packages hold the interactive state used by
// the preview server.
package formpreview

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-formpreview/pkg/orchestrator"
	"github.com/goliatone/go-formpreview/pkg/render"
	"github.com/goliatone/go-formpreview/pkg/renderers/vanilla"
)

// RenderOptions describes per-request overrides such as the registrar,
// notice and theme.
type RenderOptions = render.RenderOptions

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// GenerateHTML parses schema text and renders it with the vanilla renderer.
// Parse and shape failures keep their schema.ErrParse / schema.ErrShape
// classification.
func GenerateHTML(ctx context.Context, text string, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{Text: text})
}

// EmbeddedTemplates exposes the built-in vanilla renderer templates so callers
// can reuse or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// AssetsFS exposes the stylesheet served under the theme asset prefix.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(formpreview.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return vanilla.AssetsFS()
}
