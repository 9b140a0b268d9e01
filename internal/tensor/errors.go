package tensor

import "errors"

// Common errors.
var (
	// ErrOutOfRange reports an index outside a tensor's extents.
	ErrOutOfRange = errors.New("index out of range")
	// ErrInvalidArgument reports a shape, length or rank that violates a tensor invariant.
	ErrInvalidArgument = errors.New("invalid argument")
)
