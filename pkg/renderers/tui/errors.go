package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoOptions is returned when a select-like field resolves no choices.
	ErrNoOptions = errors.New("tui: field has no options")
)
