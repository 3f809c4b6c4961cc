// Package render defines the renderer contract shared by the HTML and
// terminal renderers, a name-keyed registry, per-request RenderOptions, and
// helpers for hidden inputs and server-side error payloads.
package render
