package theme

import (
	"fmt"
	"maps"
	"path"
	"strings"

	gotheme "github.com/goliatone/go-theme"
)

// Name is the manifest name of the built-in theme.
const Name = "formpreview"

// FormPartial is the template key renderers look up for the form shell.
const FormPartial = "forms.form"

// AssetPrefix is the URL prefix theme assets are served under.
const AssetPrefix = "/assets"

var lightTokens = map[string]string{
	"background":         "#ffffff",
	"foreground":         "#0f172a",
	"muted":              "#64748b",
	"border":             "#e2e8f0",
	"primary":            "#0f172a",
	"primary-foreground": "#f8fafc",
	"destructive":        "#ef4444",
	"success":            "#16a34a",
}

var darkTokens = map[string]string{
	"background":         "#020617",
	"foreground":         "#f8fafc",
	"muted":              "#94a3b8",
	"border":             "#1e293b",
	"primary":            "#f8fafc",
	"primary-foreground": "#0f172a",
	"destructive":        "#f87171",
	"success":            "#4ade80",
}

// Manifest describes the built-in theme with one variant per Mode.
func Manifest() *gotheme.Manifest {
	return &gotheme.Manifest{
		Name:    Name,
		Version: "1.0.0",
		Tokens:  maps.Clone(lightTokens),
		Templates: map[string]string{
			FormPartial: "templates/form.tmpl",
		},
		Assets: gotheme.Assets{
			Prefix: AssetPrefix,
			Files: map[string]string{
				"stylesheet": "formpreview.css",
			},
		},
		Variants: map[string]gotheme.Variant{
			string(Light): {},
			string(Dark): {
				Tokens: maps.Clone(darkTokens),
			},
		},
	}
}

// ValidateManifest checks m by registering it with a go-theme registry.
func ValidateManifest(m *gotheme.Manifest) error {
	registry := gotheme.NewRegistry()
	if err := registry.Register(m); err != nil {
		return fmt.Errorf("theme: invalid manifest %q: %w", m.Name, err)
	}
	if _, ok := m.Variants[string(Light)]; !ok {
		return fmt.Errorf("theme: manifest %q has no %s variant", m.Name, Light)
	}
	if _, ok := m.Variants[string(Dark)]; !ok {
		return fmt.Errorf("theme: manifest %q has no %s variant", m.Name, Dark)
	}
	return nil
}

// RendererConfig resolves the built-in manifest for mode.
func RendererConfig(mode Mode) *gotheme.RendererConfig {
	return ResolveConfig(Manifest(), mode)
}

// ResolveConfig merges the manifest's base tokens, templates and assets
// with the variant named by mode. Tokens become CSS variables prefixed
// with --fp-.
func ResolveConfig(m *gotheme.Manifest, mode Mode) *gotheme.RendererConfig {
	if m == nil {
		return nil
	}
	variant := m.Variants[string(mode)]

	tokens := maps.Clone(m.Tokens)
	if tokens == nil {
		tokens = make(map[string]string)
	}
	maps.Copy(tokens, variant.Tokens)

	partials := maps.Clone(m.Templates)
	if partials == nil {
		partials = make(map[string]string)
	}
	maps.Copy(partials, variant.Templates)

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars[CSSVar(key)] = value
	}

	files := maps.Clone(m.Assets.Files)
	if files == nil {
		files = make(map[string]string)
	}
	maps.Copy(files, variant.Assets.Files)
	prefix := m.Assets.Prefix
	if variant.Assets.Prefix != "" {
		prefix = variant.Assets.Prefix
	}

	return &gotheme.RendererConfig{
		Theme:    m.Name,
		Variant:  string(mode),
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok {
				return ""
			}
			if strings.HasPrefix(file, "/") || strings.Contains(file, "://") {
				return file
			}
			return path.Join(prefix, file)
		},
	}
}

// CSSVar maps a token name to its CSS custom property.
func CSSVar(token string) string {
	return "--fp-" + strings.TrimSpace(token)
}
