package tensor

import (
	"fmt"
)

// Tensor is a dense, row-major N-dimensional array of T.
//
// The rank is fixed when the tensor is created; the contents are mutable.
// The backing buffer always holds exactly Shape().NumElements() values.
// Tensors are never aliased: Clone, Slice and every arithmetic method return
// a tensor with its own buffer.
//
// Example:
//
//	t := tensor.New[float64](2, 3)
//	_ = t.Set(1.5, 1, 2)
//	v, _ := t.At(1, 2) // 1.5
type Tensor[T Float] struct {
	shape   Shape
	strides []int
	data    []T
}

// New creates a zero-filled tensor with the given extents.
// Panics if no extents are given or any extent is negative.
//
// An all-zero shape (for example New[float32](0, 0)) is the valid empty tensor.
func New[T Float](shape ...int) *Tensor[T] {
	s := Shape(shape).Clone()
	if err := s.Validate(); err != nil {
		panic(fmt.Sprintf("tensor.New: %v", err))
	}
	return &Tensor[T]{
		shape:   s,
		strides: s.ComputeStrides(),
		data:    make([]T, s.NumElements()),
	}
}

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice[T Float](data []T, shape ...int) (*Tensor[T], error) {
	s := Shape(shape)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.NumElements() != len(data) {
		return nil, fmt.Errorf("%w: shape %v requires %d elements, but got %d",
			ErrInvalidArgument, s, s.NumElements(), len(data))
	}

	t := New[T](shape...)
	copy(t.data, data)
	return t, nil
}

// Full creates a tensor with every element set to value.
func Full[T Float](value T, shape ...int) *Tensor[T] {
	t := New[T](shape...)
	t.Fill(value)
	return t
}

// Shape returns a copy of the tensor's shape.
func (t *Tensor[T]) Shape() Shape {
	return t.shape.Clone()
}

// Dim returns the extent of dimension d.
func (t *Tensor[T]) Dim(d int) int {
	return t.shape[d]
}

// Rank returns the number of dimensions.
func (t *Tensor[T]) Rank() int {
	return len(t.shape)
}

// NumElements returns the total number of elements.
func (t *Tensor[T]) NumElements() int {
	return len(t.data)
}

// DType returns the tensor's data type.
func (t *Tensor[T]) DType() DataType {
	return DTypeOf[T]()
}

// Data returns a copy of the flat row-major buffer.
func (t *Tensor[T]) Data() []T {
	out := make([]T, len(t.data))
	copy(out, t.data)
	return out
}

// offset converts a multi-index into a flat offset, checking every component.
func (t *Tensor[T]) offset(indices []int) (int, error) {
	if len(indices) != len(t.shape) {
		return 0, fmt.Errorf("%w: expected %d indices, got %d", ErrOutOfRange, len(t.shape), len(indices))
	}

	offset := 0
	for i, idx := range indices {
		if idx < 0 || idx >= t.shape[i] {
			return 0, fmt.Errorf("%w: index %d out of bounds for dimension %d (size %d)",
				ErrOutOfRange, idx, i, t.shape[i])
		}
		offset += idx * t.strides[i]
	}
	return offset, nil
}

// At returns the element at the given indices.
//
// Example:
//
//	t := tensor.New[float32](3, 4)
//	value, err := t.At(1, 2) // Row 1, column 2
func (t *Tensor[T]) At(indices ...int) (T, error) {
	offset, err := t.offset(indices)
	if err != nil {
		var zero T
		return zero, err
	}
	return t.data[offset], nil
}

// Set sets the element at the given indices.
func (t *Tensor[T]) Set(value T, indices ...int) error {
	offset, err := t.offset(indices)
	if err != nil {
		return err
	}
	t.data[offset] = value
	return nil
}

// Flat returns the element at flat row-major offset i.
// Like slice indexing, it panics if i is out of range.
func (t *Tensor[T]) Flat(i int) T {
	return t.data[i]
}

// SetFlat sets the element at flat row-major offset i.
// Like slice indexing, it panics if i is out of range.
func (t *Tensor[T]) SetFlat(i int, value T) {
	t.data[i] = value
}

// Clone creates a deep copy of the tensor.
func (t *Tensor[T]) Clone() *Tensor[T] {
	return &Tensor[T]{
		shape:   t.shape.Clone(),
		strides: append([]int(nil), t.strides...),
		data:    t.Data(),
	}
}

// Equal reports whether both tensors have the same shape and elements.
func (t *Tensor[T]) Equal(other *Tensor[T]) bool {
	if other == nil || !t.shape.Equal(other.shape) {
		return false
	}
	for i := range t.data {
		if t.data[i] != other.data[i] {
			return false
		}
	}
	return true
}

// Raw exposes the backing buffer without copying.
// It is meant for kernels in sibling packages; writes through it modify the tensor.
func (t *Tensor[T]) Raw() []T {
	return t.data
}
