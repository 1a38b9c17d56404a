package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
)

// Kind categorises transport failures.
type Kind int

const (
	KindNetwork Kind = iota
	KindTimeout
	KindCanceled
	KindHTTP
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindCanceled:
		return "canceled"
	case KindHTTP:
		return "http"
	case KindDecode:
		return "decode"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is returned for every failure that happens before a well-formed
// envelope is received.
type Error struct {
	Kind   Kind
	URL    string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Kind == KindHTTP {
		return fmt.Sprintf("transport: %s %s: status %d", e.Kind, e.URL, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("transport: %s %s: %v", e.Kind, e.URL, e.Err)
	}
	return fmt.Sprintf("transport: %s %s", e.Kind, e.URL)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether repeating the request could succeed.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindNetwork, KindTimeout:
		return true
	case KindHTTP:
		return e.Status >= 500
	}
	return false
}

// IsTransport reports whether err carries a *Error.
func IsTransport(err error) bool {
	var target *Error
	return errors.As(err, &target)
}

func classify(url string, err error) *Error {
	switch {
	case errors.Is(err, context.Canceled):
		return &Error{Kind: KindCanceled, URL: url, Err: err}
	case errors.Is(err, context.DeadlineExceeded), os.IsTimeout(err):
		return &Error{Kind: KindTimeout, URL: url, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, URL: url, Err: err}
	}
	return &Error{Kind: KindNetwork, URL: url, Err: err}
}
