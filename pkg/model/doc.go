// Package model defines the form schema shapes edited by users and consumed
// by renderers: FormSchema, FormField, FieldOption and ValidationRule. The
// types carry no behaviour beyond small lookups; parsing and shape checks live
// in package schema, constraint compilation in package validation. JSON tags
// follow the editor wire format (formTitle, formDescription, fields) so a
// schema marshals back to the text a user would type.
package model
