// Package openapi describes the submission contract of a form schema as an
// OpenAPI 3 document, so the endpoint receiving previewed submissions can be
// built or checked against the same field rules the preview enforces.
package openapi
