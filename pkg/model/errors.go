package model

import "errors"

var (
	ErrMissingID        = errors.New("field id is required")
	ErrDuplicateID      = errors.New("duplicate field id")
	ErrUnknownFieldType = errors.New("unknown field type")
)
