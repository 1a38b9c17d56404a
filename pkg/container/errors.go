package container

import "errors"

// ErrNotOpen is returned when submitting a container that holds no form.
var ErrNotOpen = errors.New("container: no form open")
