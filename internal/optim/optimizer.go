// Package optim implements optimization algorithms for training neural networks.
//
// This package provides:
//   - Optimizer interface: in-place update of one parameter tensor from its gradient
//   - Provider interface: hands each parameter the optimizer state that owns it
//   - SGD: plain gradient descent (stateless, safe to share)
//   - Adam: Adaptive Moment Estimation (stateful, one instance per parameter)
//
// Stateful optimizers must never be shared between parameters of different
// shapes. Use PerParameter to obtain one instance per parameter:
//
//	provider := optim.NewPerParameter(func() optim.Optimizer[float64] {
//	    return optim.NewAdam[float64](optim.AdamConfig{LR: 0.001})
//	})
//	err := network.UpdateParams(provider)
package optim

import (
	"errors"
	"fmt"
	"sync"

	"github.com/born-ml/tinynn/internal/tensor"
)

// Common errors.
var (
	// ErrShapeMismatch reports parameters and gradients of different shapes.
	ErrShapeMismatch = errors.New("parameter and gradient shapes differ")
	// ErrStateShape reports a stateful optimizer reused for a parameter whose
	// shape differs from the one its state was allocated for.
	ErrStateShape = errors.New("optimizer state belongs to a parameter of another shape")
)

// Optimizer is the base interface for all optimization algorithms.
//
// Update mutates params in place given grads of identical shape.
type Optimizer[T tensor.Float] interface {
	Update(params, grads *tensor.Tensor[T]) error
}

// Provider resolves the optimizer responsible for a given parameter.
//
// Keys are compared by identity; layers pass a pointer to the parameter.
type Provider[T tensor.Float] interface {
	For(key any) Optimizer[T]
}

// Stateful is implemented by optimizers whose state is sized for one parameter.
//
// Implementations must be comparable, typically pointer receivers.
type Stateful interface {
	// StateShape returns the shape the state was allocated for, or nil
	// before the first update.
	StateShape() tensor.Shape
}

// CheckUpdates reports ErrStateShape if applying opts[i] to params[i] in order
// would reuse a stateful optimizer for a second shape. Nothing is modified.
func CheckUpdates[T tensor.Float](opts []Optimizer[T], params []*tensor.Tensor[T]) error {
	claimed := make(map[Stateful]tensor.Shape, len(opts))
	for i, opt := range opts {
		s, ok := opt.(Stateful)
		if !ok {
			continue
		}
		shape, seen := claimed[s]
		if !seen {
			shape = s.StateShape()
		}
		if want := params[i].Shape(); shape != nil && !shape.Equal(want) {
			return fmt.Errorf("%w: state %v, params %v", ErrStateShape, shape, want)
		}
		claimed[s] = params[i].Shape()
	}
	return nil
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float64 // Learning rate
}

// checkShapes validates that params and grads can be updated together.
func checkShapes[T tensor.Float](params, grads *tensor.Tensor[T]) error {
	if !params.Shape().Equal(grads.Shape()) {
		return fmt.Errorf("%w: params %v, grads %v", ErrShapeMismatch, params.Shape(), grads.Shape())
	}
	return nil
}

// PerParameter lazily creates one optimizer per parameter key.
//
// It is safe for concurrent use.
type PerParameter[T tensor.Float] struct {
	mu     sync.Mutex
	newFn  func() Optimizer[T]
	states map[any]Optimizer[T]
}

// NewPerParameter creates a provider that builds optimizers with newFn on first use.
func NewPerParameter[T tensor.Float](newFn func() Optimizer[T]) *PerParameter[T] {
	return &PerParameter[T]{
		newFn:  newFn,
		states: make(map[any]Optimizer[T]),
	}
}

// For returns the optimizer owned by key, creating it if needed.
func (p *PerParameter[T]) For(key any) Optimizer[T] {
	p.mu.Lock()
	defer p.mu.Unlock()

	opt, ok := p.states[key]
	if !ok {
		opt = p.newFn()
		p.states[key] = opt
	}
	return opt
}

// Len returns the number of optimizer instances created so far.
func (p *PerParameter[T]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.states)
}

// shared hands one optimizer to every key.
type shared[T tensor.Float] struct {
	opt Optimizer[T]
}

// Shared returns a provider that gives every parameter the same optimizer.
//
// This is only correct for stateless optimizers such as SGD. A stateful
// optimizer shared this way reports ErrStateShape as soon as it meets a
// second parameter shape.
func Shared[T tensor.Float](opt Optimizer[T]) Provider[T] {
	return shared[T]{opt: opt}
}

func (s shared[T]) For(any) Optimizer[T] {
	return s.opt
}
