// Package vanilla renders a form schema to a self-contained HTML fragment.
//
// Each field is dispatched on its type through a components.Registry and
// registered with the caller's form.Registrar, so the registrar's values and
// errors are reflected in the markup. The outer shell (title, description,
// notice, submit button) comes from templates/form.tmpl rendered with pongo2.
package vanilla
