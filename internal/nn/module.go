// Package nn implements neural network layers, losses and the sequential
// network that trains them.
//
// This package provides building blocks for constructing neural networks:
//   - Layer interface: forward/backward/update contract for all layers
//   - Parameter: trainable tensor with its gradient
//   - Dense: fully connected layer
//   - Activations: ReLU, Sigmoid
//   - Loss functions: MSE, BCE
//   - Network: ordered container with a mini-batch training loop
//
// Layers keep no per-call state. Forward returns a Cache that the caller
// hands back to Backward, so one layer may serve concurrent forward passes.
package nn

import (
	"errors"

	"github.com/born-ml/tinynn/internal/optim"
	"github.com/born-ml/tinynn/internal/tensor"
)

// Common errors.
var (
	// ErrNoCache reports a Backward call without the cache of a matching Forward.
	ErrNoCache = errors.New("backward called without a forward cache")
	// ErrNoGradient reports UpdateParams before any Backward call.
	ErrNoGradient = errors.New("parameter has no gradient")
)

// Layer is the base interface for all network layers.
//
// Every layer must implement:
//   - Forward: compute output from input, returning what Backward needs
//   - Backward: compute the input gradient from the output gradient
//   - UpdateParams: apply one optimizer step to owned parameters
//   - Parameters: return all trainable parameters
//
// Inputs are rank-2 tensors shaped [batch_size, features].
type Layer[T tensor.Float] interface {
	// Forward computes the output of the layer for input x.
	//
	// The returned Cache must be passed to Backward for the same call.
	Forward(x *tensor.Tensor[T]) (*tensor.Tensor[T], Cache[T], error)

	// Backward computes the gradient with respect to the layer input.
	//
	// Layers with parameters store the parameter gradients on them.
	Backward(cache Cache[T], grad *tensor.Tensor[T]) (*tensor.Tensor[T], error)

	// UpdateParams applies the optimizer step to every owned parameter.
	// It is a no-op for parameter-free layers.
	UpdateParams(p optim.Provider[T]) error

	// Parameters returns all trainable parameters of this layer.
	//
	// Returns an empty slice for layers without trainable parameters.
	Parameters() []*Parameter[T]
}

// Cache carries the value a layer saved during Forward.
//
// The zero Cache is empty and makes Backward fail with ErrNoCache.
type Cache[T tensor.Float] struct {
	saved *tensor.Tensor[T]
}

func newCache[T tensor.Float](t *tensor.Tensor[T]) Cache[T] {
	return Cache[T]{saved: t}
}

// Empty reports whether the cache holds nothing.
func (c Cache[T]) Empty() bool {
	return c.saved == nil
}
