// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/tinynn/internal/tensor"
)

// Float is the constraint for tensor element types: float32 or float64.
type Float = tensor.Float

// Tensor is a dense, row-major N-dimensional array of T.
type Tensor[T Float] = tensor.Tensor[T]

// Shape lists the extent of every dimension.
type Shape = tensor.Shape

// DataType represents the element type of a tensor at runtime.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
)

// Errors returned by tensor operations.
var (
	ErrOutOfRange      = tensor.ErrOutOfRange
	ErrInvalidArgument = tensor.ErrInvalidArgument
)

// New creates a zero-filled tensor with the given extents.
//
// Example:
//
//	t := tensor.New[float64](2, 3)
func New[T Float](shape ...int) *Tensor[T] {
	return tensor.New[T](shape...)
}

// FromSlice creates a tensor holding a copy of data.
// len(data) must equal the product of the extents.
func FromSlice[T Float](data []T, shape ...int) (*Tensor[T], error) {
	return tensor.FromSlice(data, shape...)
}

// Full creates a tensor with every element set to value.
func Full[T Float](value T, shape ...int) *Tensor[T] {
	return tensor.Full(value, shape...)
}

// DTypeOf returns the DataType of T.
func DTypeOf[T Float]() DataType {
	return tensor.DTypeOf[T]()
}
