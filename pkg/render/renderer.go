package render

import (
	"context"

	"github.com/goliatone/go-formpreview/pkg/model"
)

// Renderer converts a FormSchema into a byte representation (HTML, JSON
// collected from a terminal session, etc.).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, schema model.FormSchema, options RenderOptions) ([]byte, error)
}
