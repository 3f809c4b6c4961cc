package schema

import (
	"errors"

	"github.com/goliatone/go-formpreview/pkg/model"
)

// Document wraps raw schema text and its origin.
type Document struct {
	source Source
	raw    string
}

// NewDocument constructs a Document wrapper while validating the inputs.
// Empty text is accepted here; Parse reports it as a ParseError.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("schema: source is required")
	}
	return Document{source: src, raw: string(raw)}, nil
}

// MustNewDocument panics if the document cannot be created. Useful for tests.
func MustNewDocument(src Source, raw []byte) Document {
	doc, err := NewDocument(src, raw)
	if err != nil {
		panic(err)
	}
	return doc
}

// Source returns the origin metadata for the document.
func (d Document) Source() Source {
	return d.source
}

// Text returns the raw schema text.
func (d Document) Text() string {
	return d.raw
}

// Location returns the string identifier for the origin.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// Schema parses the document text.
func (d Document) Schema() (model.FormSchema, error) {
	return Parse(d.raw)
}
