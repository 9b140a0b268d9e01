package tensor

import "fmt"

// Reshape changes the shape in place.
//
// The new shape must keep both the rank and the element count,
// otherwise ErrInvalidArgument is returned and the tensor is unchanged.
func (t *Tensor[T]) Reshape(shape ...int) error {
	s := Shape(shape)
	if len(s) != len(t.shape) {
		return fmt.Errorf("%w: reshape must keep rank %d, got %d dimensions",
			ErrInvalidArgument, len(t.shape), len(s))
	}
	if err := s.Validate(); err != nil {
		return err
	}
	if s.NumElements() != len(t.data) {
		return fmt.Errorf("%w: reshape must preserve total elements: %v has %d, tensor has %d",
			ErrInvalidArgument, s, s.NumElements(), len(t.data))
	}

	t.shape = s.Clone()
	t.strides = t.shape.ComputeStrides()
	return nil
}

// Slice returns a new rank-2 tensor holding rows [start, end).
//
// end is clamped to the row count. Only rank-2 tensors can be sliced.
func (t *Tensor[T]) Slice(start, end int) (*Tensor[T], error) {
	if len(t.shape) != 2 {
		return nil, fmt.Errorf("%w: slice is only defined for rank 2, got rank %d",
			ErrInvalidArgument, len(t.shape))
	}

	rows, cols := t.shape[0], t.shape[1]
	if end > rows {
		end = rows
	}
	if start < 0 || start > end {
		return nil, fmt.Errorf("%w: invalid row range [%d, %d) for %d rows",
			ErrOutOfRange, start, end, rows)
	}

	out := New[T](end-start, cols)
	copy(out.data, t.data[start*cols:end*cols])
	return out, nil
}

// Row returns a copy of row i of a rank-2 tensor as a 1×cols tensor.
func (t *Tensor[T]) Row(i int) (*Tensor[T], error) {
	if len(t.shape) == 2 && (i < 0 || i >= t.shape[0]) {
		return nil, fmt.Errorf("%w: row %d out of bounds (size %d)", ErrOutOfRange, i, t.shape[0])
	}
	return t.Slice(i, i+1)
}

// SetRows copies every row of src into t starting at row offset.
// Both tensors must be rank 2 with the same column count.
func (t *Tensor[T]) SetRows(offset int, src *Tensor[T]) error {
	if len(t.shape) != 2 || len(src.shape) != 2 {
		return fmt.Errorf("%w: SetRows needs rank-2 tensors", ErrInvalidArgument)
	}
	if t.shape[1] != src.shape[1] {
		return fmt.Errorf("%w: column mismatch: %d vs %d", ErrInvalidArgument, t.shape[1], src.shape[1])
	}
	if offset < 0 || offset+src.shape[0] > t.shape[0] {
		return fmt.Errorf("%w: rows [%d, %d) do not fit in %d rows",
			ErrOutOfRange, offset, offset+src.shape[0], t.shape[0])
	}

	cols := t.shape[1]
	copy(t.data[offset*cols:], src.data)
	return nil
}
