package nn

import (
	"math"

	"github.com/born-ml/tinynn/internal/optim"
	"github.com/born-ml/tinynn/internal/tensor"
)

// ReLU is a Rectified Linear Unit activation layer.
//
// Applies the element-wise function: f(x) = max(0, x)
//
// The cache holds the pre-activation input; Backward passes the gradient
// through where that input was positive and zeroes it elsewhere.
//
// Example:
//
//	relu := nn.NewReLU[float32]()
//	out, cache, err := relu.Forward(input) // All negative values become 0
type ReLU[T tensor.Float] struct{}

// NewReLU creates a new ReLU activation layer.
func NewReLU[T tensor.Float]() *ReLU[T] {
	return &ReLU[T]{}
}

// Forward applies ReLU activation: f(x) = max(0, x).
func (r *ReLU[T]) Forward(x *tensor.Tensor[T]) (*tensor.Tensor[T], Cache[T], error) {
	if err := checkInput(x, -1, "ReLU.Forward"); err != nil {
		return nil, Cache[T]{}, err
	}
	y := x.Apply(func(v T) T {
		if v > 0 {
			return v
		}
		return 0
	})
	return y, newCache(x.Clone()), nil
}

// Backward zeroes grad wherever the cached input was <= 0.
func (r *ReLU[T]) Backward(cache Cache[T], grad *tensor.Tensor[T]) (*tensor.Tensor[T], error) {
	if cache.Empty() {
		return nil, ErrNoCache
	}
	x := cache.saved
	if err := checkGrad(grad, x.Dim(0), x.Dim(1), "ReLU.Backward"); err != nil {
		return nil, err
	}

	dx := grad.Clone()
	dxd, xd := dx.Raw(), x.Raw()
	for i := range dxd {
		if xd[i] <= 0 {
			dxd[i] = 0
		}
	}
	return dx, nil
}

// UpdateParams is a no-op (ReLU has no trainable parameters).
func (r *ReLU[T]) UpdateParams(optim.Provider[T]) error {
	return nil
}

// Parameters returns an empty slice (ReLU has no trainable parameters).
func (r *ReLU[T]) Parameters() []*Parameter[T] {
	return nil
}

// Sigmoid is a sigmoid activation layer.
//
// Applies the element-wise function: σ(x) = 1 / (1 + exp(-x))
//
// The cache holds the output s, since σ'(x) = s·(1-s).
//
// Example:
//
//	sigmoid := nn.NewSigmoid[float32]()
//	out, cache, err := sigmoid.Forward(input) // Values in range (0, 1)
type Sigmoid[T tensor.Float] struct{}

// NewSigmoid creates a new Sigmoid activation layer.
func NewSigmoid[T tensor.Float]() *Sigmoid[T] {
	return &Sigmoid[T]{}
}

// Forward applies Sigmoid activation: σ(x) = 1 / (1 + exp(-x)).
func (s *Sigmoid[T]) Forward(x *tensor.Tensor[T]) (*tensor.Tensor[T], Cache[T], error) {
	if err := checkInput(x, -1, "Sigmoid.Forward"); err != nil {
		return nil, Cache[T]{}, err
	}
	y := x.Apply(func(v T) T {
		return T(1.0 / (1.0 + math.Exp(-float64(v))))
	})
	return y, newCache(y.Clone()), nil
}

// Backward computes grad · s · (1 - s) from the cached output s.
func (s *Sigmoid[T]) Backward(cache Cache[T], grad *tensor.Tensor[T]) (*tensor.Tensor[T], error) {
	if cache.Empty() {
		return nil, ErrNoCache
	}
	out := cache.saved
	if err := checkGrad(grad, out.Dim(0), out.Dim(1), "Sigmoid.Backward"); err != nil {
		return nil, err
	}

	dx := grad.Clone()
	dxd, sd := dx.Raw(), out.Raw()
	for i := range dxd {
		dxd[i] *= sd[i] * (1 - sd[i])
	}
	return dx, nil
}

// UpdateParams is a no-op (Sigmoid has no trainable parameters).
func (s *Sigmoid[T]) UpdateParams(optim.Provider[T]) error {
	return nil
}

// Parameters returns an empty slice (Sigmoid has no trainable parameters).
func (s *Sigmoid[T]) Parameters() []*Parameter[T] {
	return nil
}
