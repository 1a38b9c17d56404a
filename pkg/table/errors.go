package table

import "errors"

var (
	ErrNoParentURL = errors.New("table: parent table url is required")
	// ErrNoChild is returned for child operations on a single-level table.
	ErrNoChild = errors.New("table: no child level configured")
	// ErrSelection reports an action whose selection requirement is unmet.
	ErrSelection = errors.New("table: selection does not allow this action")
	// ErrRejected wraps a non-empty server message.
	ErrRejected = errors.New("table: request rejected")
	// ErrNoModal is returned by Submit when no form is open.
	ErrNoModal = errors.New("table: no form open")
)
