package template

import (
	"io"
)

// TemplateRenderer is the engine contract renderers rely on. Names resolve
// against the engine's loaders; the default extension is appended when
// missing.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
}
