package nn

import (
	"github.com/born-ml/tinynn/internal/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// The pointer identity of a Parameter is stable for the lifetime of its
// layer, which makes it the key optimizers use to find their state.
//
// Example:
//
//	weight := nn.NewParameter("weight", w)
//	grad := weight.Grad() // nil until the first backward pass
type Parameter[T tensor.Float] struct {
	name   string            // Parameter name (e.g., "weight", "bias")
	tensor *tensor.Tensor[T] // The parameter tensor
	grad   *tensor.Tensor[T] // Gradient from the last backward pass
}

// NewParameter creates a new trainable parameter.
func NewParameter[T tensor.Float](name string, t *tensor.Tensor[T]) *Parameter[T] {
	return &Parameter[T]{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter[T]) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter[T]) Tensor() *tensor.Tensor[T] {
	return p.tensor
}

// Grad returns the gradient tensor.
//
// Returns nil if no gradient has been computed yet.
func (p *Parameter[T]) Grad() *tensor.Tensor[T] {
	return p.grad
}

// SetGrad sets the gradient tensor.
func (p *Parameter[T]) SetGrad(grad *tensor.Tensor[T]) {
	p.grad = grad
}

// ZeroGrad clears the gradient tensor.
func (p *Parameter[T]) ZeroGrad() {
	p.grad = nil
}
