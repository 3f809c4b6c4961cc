package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoOptions is returned for a required choice field that offers no
	// options, since no answer could ever satisfy it.
	ErrNoOptions = errors.New("tui: required choice field has no options")
)
