package schema

import (
	"errors"
	"fmt"
)

// ShapeMessage is the fixed user-facing message for schemas that parse but
// lack the required top-level keys.
const ShapeMessage = "Invalid schema format. Must include formTitle and fields array."

var (
	// ErrParse classifies failures of the structural (JSON) parse.
	ErrParse = errors.New("schema: parse error")
	// ErrShape classifies parsed documents missing formTitle or fields.
	ErrShape = errors.New("schema: shape error")
)

// ParseError reports text that is not well-formed JSON. Message carries the
// parser's own diagnostic; Offset is the byte offset when the parser exposes
// one, otherwise -1.
type ParseError struct {
	Message string
	Offset  int64
	Err     error
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// Unwrap returns the underlying parser error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is lets callers match any ParseError with errors.Is(err, ErrParse).
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ShapeError reports a parsed document without a truthy formTitle or an
// array of fields. Missing lists the offending keys for logging; the
// user-facing message is always ShapeMessage.
type ShapeError struct {
	Missing []string
}

func (e *ShapeError) Error() string {
	return ShapeMessage
}

// Is lets callers match any ShapeError with errors.Is(err, ErrShape).
func (e *ShapeError) Is(target error) bool {
	return target == ErrShape
}

// Detail returns a log-friendly description of the shape failure.
func (e *ShapeError) Detail() string {
	if e == nil || len(e.Missing) == 0 {
		return ShapeMessage
	}
	return fmt.Sprintf("%s (invalid: %v)", ShapeMessage, e.Missing)
}
