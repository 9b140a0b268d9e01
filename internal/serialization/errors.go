package serialization

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrChecksumMismatch  = errors.New("checksum mismatch: file may be corrupted")
	ErrInvalidMagic      = errors.New("invalid magic bytes")
	ErrMalformed         = errors.New("malformed model file")
	ErrShapeMismatch     = errors.New("stored shape does not match the layer")
	ErrTooManyTensors    = errors.New("too many tensors in file")
	ErrInvalidTensorName = errors.New("invalid tensor name")
)

// ValidationError provides detailed information about validation failures.
type ValidationError struct {
	Type    string // Type of error (e.g., "invalid_name", "size_mismatch")
	Tensor  string // Tensor name involved
	Details string // Additional details
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Tensor != "" {
		return fmt.Sprintf("%s: tensor %q: %s", e.Type, e.Tensor, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Details)
}

// Unwrap maps the validation type onto the matching sentinel error.
func (e *ValidationError) Unwrap() error {
	switch e.Type {
	case "invalid_name", "name_too_long":
		return ErrInvalidTensorName
	case "too_many_tensors":
		return ErrTooManyTensors
	default:
		return ErrMalformed
	}
}
