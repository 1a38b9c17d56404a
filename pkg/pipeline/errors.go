package pipeline

import "errors"

var (
	// ErrUnchanged reports that collected values equal the initial values and
	// nothing was sent.
	ErrUnchanged = errors.New("pipeline: values unchanged")
	// ErrBusy reports a submission attempt while another is in flight.
	ErrBusy = errors.New("pipeline: submission in progress")
	// ErrIllegalTransition reports a state change the lifecycle does not allow.
	ErrIllegalTransition = errors.New("pipeline: illegal state transition")
	// ErrNoTransport reports a remote endpoint without a configured transport.
	ErrNoTransport = errors.New("pipeline: transport is not configured")
)
