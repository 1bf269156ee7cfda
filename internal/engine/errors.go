package engine

import "errors"

// ErrNotFound marks a referenced component id that is absent from the
// snapshot. It surfaces to callers without aborting independent computations.
var ErrNotFound = errors.New("component not found")
