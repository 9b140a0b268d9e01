package serialization

import (
	"fmt"
	"strings"
)

// Validation limits for resource protection.
const (
	MaxTensorCount   = 10_000 // Maximum number of tensors in a snapshot
	MaxTensorNameLen = 256    // Maximum tensor name length
)

// ValidateTensorName checks tensor names for path traversal and malicious patterns.
func ValidateTensorName(name string) error {
	if name == "" {
		return &ValidationError{
			Type:    "invalid_name",
			Details: "empty name",
		}
	}

	if len(name) > MaxTensorNameLen {
		return &ValidationError{
			Type:    "name_too_long",
			Tensor:  name,
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxTensorNameLen),
		}
	}

	if strings.Contains(name, "..") {
		return &ValidationError{
			Type:    "invalid_name",
			Tensor:  name,
			Details: "contains '..' (path traversal attempt)",
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return &ValidationError{
			Type:    "invalid_name",
			Tensor:  name,
			Details: "contains path separator (/ or \\)",
		}
	}

	if strings.Contains(name, "\x00") {
		return &ValidationError{
			Type:    "invalid_name",
			Tensor:  name,
			Details: "contains null byte",
		}
	}

	return nil
}

// ValidateRecord checks a tensor record's name and that its shape accounts
// for every stored value.
func ValidateRecord(rec TensorRecord) error {
	if err := ValidateTensorName(rec.Name); err != nil {
		return err
	}

	if len(rec.Shape) == 0 {
		return &ValidationError{
			Type:    "invalid_shape",
			Tensor:  rec.Name,
			Details: "rank 0",
		}
	}

	n := 1
	for _, d := range rec.Shape {
		if d < 0 {
			return &ValidationError{
				Type:    "invalid_shape",
				Tensor:  rec.Name,
				Details: fmt.Sprintf("negative extent in %v", rec.Shape),
			}
		}
		n *= d
	}
	if n != len(rec.Data) {
		return &ValidationError{
			Type:    "size_mismatch",
			Tensor:  rec.Name,
			Details: fmt.Sprintf("shape %v needs %d values, got %d", rec.Shape, n, len(rec.Data)),
		}
	}

	return nil
}

// ValidateSnapshot validates every record of a snapshot.
func ValidateSnapshot(s *Snapshot) error {
	if len(s.Tensors) > MaxTensorCount {
		return &ValidationError{
			Type:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(s.Tensors), MaxTensorCount),
		}
	}

	seen := make(map[string]struct{}, len(s.Tensors))
	for _, rec := range s.Tensors {
		if err := ValidateRecord(rec); err != nil {
			return err
		}
		if _, dup := seen[rec.Name]; dup {
			return &ValidationError{
				Type:    "duplicate_name",
				Tensor:  rec.Name,
				Details: "tensor stored twice",
			}
		}
		seen[rec.Name] = struct{}{}
	}

	return nil
}
