package server

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl templates/*.js
var embeddedTemplates embed.FS

func templatesFS() fs.FS {
	return embeddedTemplates
}

func pageScript() string {
	data, err := fs.ReadFile(embeddedTemplates, "templates/page.js")
	if err != nil {
		return ""
	}
	return string(data)
}
