package upload

import "errors"

var (
	// ErrNoURL is returned when a session is created without a target.
	ErrNoURL = errors.New("upload: url is required")
	// ErrSingleFile is returned when several files are passed to a session
	// that does not allow multiple uploads.
	ErrSingleFile = errors.New("upload: multiple files not allowed")
)
