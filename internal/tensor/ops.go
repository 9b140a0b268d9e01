package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Fill sets every element to value.
func (t *Tensor[T]) Fill(value T) {
	for i := range t.data {
		t.data[i] = value
	}
}

// Assign copies values into the tensor in row-major order.
// The number of values must match the element count exactly.
func (t *Tensor[T]) Assign(values ...T) error {
	if len(values) != len(t.data) {
		return fmt.Errorf("%w: %d values do not match tensor size %d",
			ErrInvalidArgument, len(values), len(t.data))
	}
	copy(t.data, values)
	return nil
}

// Apply returns a new tensor with f applied to every element.
func (t *Tensor[T]) Apply(f func(T) T) *Tensor[T] {
	out := New[T](t.shape...)
	for i, v := range t.data {
		out.data[i] = f(v)
	}
	return out
}

// DivScalar returns t / s elementwise.
func (t *Tensor[T]) DivScalar(s T) *Tensor[T] {
	return t.Apply(func(v T) T { return v / s })
}

// ScalarDiv returns s / t elementwise.
func (t *Tensor[T]) ScalarDiv(s T) *Tensor[T] {
	return t.Apply(func(v T) T { return s / v })
}

// Sum returns the sum of all elements.
func (t *Tensor[T]) Sum() T {
	if d, ok := any(t.data).([]float64); ok {
		return T(floats.Sum(d))
	}
	var sum T
	for _, v := range t.data {
		sum += v
	}
	return sum
}
