package server

import (
	"fmt"
	"html"
	"runtime/debug"
	"strings"
)

const (
	sectionEditor  = "editor"
	sectionPreview = "preview"
)

var boundaryTitles = map[string]string{
	sectionEditor:  "The editor could not be displayed.",
	sectionPreview: "The preview could not be displayed.",
}

// boundary renders one page section. Errors and panics raised by fn become
// a fallback block marked with data-boundary so the rest of the page still
// renders.
func (s *Server) boundary(section string, fn func() (string, error)) (out string) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("section panicked",
				"section", section,
				"panic", fmt.Sprint(rec),
				"stack", string(debug.Stack()),
			)
			out = fallbackSection(section, "Unexpected error while rendering this section.")
		}
	}()

	body, err := fn()
	if err != nil {
		s.logger.Warn("section failed", "section", section, "error", err)
		return fallbackSection(section, err.Error())
	}
	return wrapSection(section, body)
}

func wrapSection(section, body string) string {
	var b strings.Builder
	b.WriteString(`<section class="formpreview-pane" data-section="`)
	b.WriteString(html.EscapeString(section))
	b.WriteString("\">\n")
	b.WriteString(body)
	b.WriteString("</section>")
	return b.String()
}

func fallbackSection(section, message string) string {
	title := boundaryTitles[section]
	if title == "" {
		title = "This section could not be displayed."
	}
	var b strings.Builder
	b.WriteString(`<section class="formpreview-pane formpreview-boundary" data-section="`)
	b.WriteString(html.EscapeString(section))
	b.WriteString(`" data-boundary="`)
	b.WriteString(html.EscapeString(section))
	b.WriteString("\" role=\"alert\">\n")
	b.WriteString("  <p>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</p>\n")
	if message != "" {
		b.WriteString("  <pre>")
		b.WriteString(html.EscapeString(message))
		b.WriteString("</pre>\n")
	}
	b.WriteString("</section>")
	return b.String()
}
