package optim

import (
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/tinynn/internal/tensor"
)

// SGD implements plain gradient descent.
//
// Update rule:
//
//	param = param - lr * gradient
//
// SGD keeps no state between calls, so one instance may serve every
// parameter of a network; it is its own Provider.
//
// Example:
//
//	sgd := optim.NewSGD[float64](optim.SGDConfig{LR: 0.1})
//	err := sgd.Update(weights, grads)
type SGD[T tensor.Float] struct {
	lr T
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR float64 // Learning rate (default: 0.01)
}

// NewSGD creates a new SGD optimizer.
func NewSGD[T tensor.Float](config SGDConfig) *SGD[T] {
	// Set defaults
	if config.LR == 0 {
		config.LR = 0.01
	}

	return &SGD[T]{lr: T(config.LR)}
}

// Update applies param -= lr * grad elementwise.
func (s *SGD[T]) Update(params, grads *tensor.Tensor[T]) error {
	if err := checkShapes(params, grads); err != nil {
		return err
	}

	p, g := params.Raw(), grads.Raw()
	if p64, ok := any(p).([]float64); ok {
		floats.AddScaled(p64, -float64(s.lr), any(g).([]float64))
		return nil
	}
	for i := range p {
		p[i] -= s.lr * g[i]
	}
	return nil
}

// For returns s for every key.
func (s *SGD[T]) For(any) Optimizer[T] {
	return s
}

// GetLR returns the current learning rate.
func (s *SGD[T]) GetLR() T {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD[T]) SetLR(lr T) {
	s.lr = lr
}
