package optim

import (
	"fmt"
	"math"

	"github.com/born-ml/tinynn/internal/tensor"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient       // First moment
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²      // Second moment
//	m_hat = m_t / (1 - beta1^t)                        // Bias correction
//	v_hat = v_t / (1 - beta2^t)                        // Bias correction
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)  // Parameter update
//
// The moment tensors are allocated on the first Update, sized to that
// call's parameters. An Adam instance therefore belongs to exactly one
// parameter tensor; Update fails with ErrStateShape when given another shape.
// Use PerParameter to hold one instance per parameter.
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
type Adam[T tensor.Float] struct {
	lr    float64
	beta1 float64
	beta2 float64
	eps   float64
	t     int               // Timestep for bias correction
	m     *tensor.Tensor[T] // First moment estimates
	v     *tensor.Tensor[T] // Second moment estimates
}

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	LR    float64    // Learning rate (default: 0.001)
	Betas [2]float64 // Coefficients for computing running averages (default: [0.9, 0.999])
	Eps   float64    // Term for numerical stability (default: 1e-8)
}

// NewAdam creates a new Adam optimizer with default hyperparameters if not specified.
func NewAdam[T tensor.Float](config AdamConfig) *Adam[T] {
	// Set defaults
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	return &Adam[T]{
		lr:    config.LR,
		beta1: config.Betas[0],
		beta2: config.Betas[1],
		eps:   config.Eps,
	}
}

// Update performs a single Adam step on params.
func (a *Adam[T]) Update(params, grads *tensor.Tensor[T]) error {
	if err := checkShapes(params, grads); err != nil {
		return err
	}

	if a.m == nil {
		a.m = tensor.New[T](params.Shape()...)
		a.v = tensor.New[T](params.Shape()...)
	} else if !a.m.Shape().Equal(params.Shape()) {
		return fmt.Errorf("%w: state %v, params %v", ErrStateShape, a.m.Shape(), params.Shape())
	}

	a.t++
	biasCorrection1 := 1.0 - math.Pow(a.beta1, float64(a.t))
	biasCorrection2 := 1.0 - math.Pow(a.beta2, float64(a.t))

	paramData := params.Raw()
	gradData := grads.Raw()
	mData := a.m.Raw()
	vData := a.v.Raw()

	for i := range paramData {
		g := float64(gradData[i])

		m := a.beta1*float64(mData[i]) + (1.0-a.beta1)*g
		v := a.beta2*float64(vData[i]) + (1.0-a.beta2)*g*g
		mData[i] = T(m)
		vData[i] = T(v)

		mHat := m / biasCorrection1
		vHat := v / biasCorrection2

		paramData[i] -= T(a.lr * mHat / (math.Sqrt(vHat) + a.eps))
	}

	return nil
}

// GetLR returns the current learning rate.
func (a *Adam[T]) GetLR() float64 {
	return a.lr
}

// SetLR updates the learning rate.
func (a *Adam[T]) SetLR(lr float64) {
	a.lr = lr
}

// StateShape returns the shape of the moment estimates, or nil before the
// first update.
func (a *Adam[T]) StateShape() tensor.Shape {
	if a.m == nil {
		return nil
	}
	return a.m.Shape()
}

// Timestep returns the number of updates applied so far.
func (a *Adam[T]) Timestep() int {
	return a.t
}
