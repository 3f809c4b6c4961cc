// Package validation compiles the per-field constraints declared in a form
// schema (required, pattern, numeric bounds) and evaluates submitted values
// against them. Each field reports at most one FieldError: required runs
// first, the remaining constraints only run on non-empty values.
package validation
