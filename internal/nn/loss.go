package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/tinynn/internal/tensor"
)

// BCEEpsilon bounds predictions away from 0 and 1 before taking logarithms.
const BCEEpsilon = 1e-12

// Loss is an objective over one prediction/target pair.
//
// Value is the scalar loss; Gradient is its derivative with respect to the
// prediction and has the prediction's shape.
type Loss[T tensor.Float] interface {
	Value() T
	Gradient() *tensor.Tensor[T]
}

// LossFunc builds a Loss for a prediction/target pair.
//
// NewMSELoss and NewBCELoss satisfy it.
type LossFunc[T tensor.Float] func(pred, target *tensor.Tensor[T]) (Loss[T], error)

func checkPair[T tensor.Float](pred, target *tensor.Tensor[T], name string) error {
	if pred == nil || target == nil || !pred.Shape().Equal(target.Shape()) {
		return fmt.Errorf("%s: %w: predictions %v and targets %v must have the same shape",
			name, tensor.ErrInvalidArgument, shapeOf(pred), shapeOf(target))
	}
	return nil
}

// MSELoss computes Mean Squared Error loss.
//
// Loss = mean((predictions - targets)²)
// Gradient = 2 · (predictions - targets) / N
//
// Example:
//
//	loss, err := nn.NewMSELoss(predictions, targets)
//	value := loss.Value()
type MSELoss[T tensor.Float] struct {
	pred, target *tensor.Tensor[T]
}

// NewMSELoss creates an MSE loss over pred and target.
func NewMSELoss[T tensor.Float](pred, target *tensor.Tensor[T]) (Loss[T], error) {
	if err := checkPair(pred, target, "MSELoss"); err != nil {
		return nil, err
	}
	return &MSELoss[T]{pred: pred, target: target}, nil
}

// Value returns the mean squared difference.
func (m *MSELoss[T]) Value() T {
	p, t := m.pred.Raw(), m.target.Raw()
	if len(p) == 0 {
		return 0
	}
	if p64, ok := any(p).([]float64); ok {
		dist := floats.Distance(p64, any(t).([]float64), 2)
		return T(dist * dist / float64(len(p)))
	}
	var sum float64
	for i := range p {
		diff := float64(p[i] - t[i])
		sum += diff * diff
	}
	return T(sum / float64(len(p)))
}

// Gradient returns 2 · (pred - target) / N.
func (m *MSELoss[T]) Gradient() *tensor.Tensor[T] {
	grad := tensor.New[T](m.pred.Shape()...)
	g, p, t := grad.Raw(), m.pred.Raw(), m.target.Raw()
	n := T(len(p))
	for i := range p {
		g[i] = 2 * (p[i] - t[i]) / n
	}
	return grad
}

// BCELoss computes Binary Cross-Entropy loss.
//
// Predictions are clamped into [ε, 1-ε] with ε = BCEEpsilon, then:
//
//	Loss = -mean(t·log(p) + (1-t)·log(1-p))
//	Gradient = (p - t) / (p·(1-p)·N)
//
// Values are accumulated in float64 so the clamp holds for float32 inputs.
type BCELoss[T tensor.Float] struct {
	pred, target *tensor.Tensor[T]
}

// NewBCELoss creates a BCE loss over pred and target.
func NewBCELoss[T tensor.Float](pred, target *tensor.Tensor[T]) (Loss[T], error) {
	if err := checkPair(pred, target, "BCELoss"); err != nil {
		return nil, err
	}
	return &BCELoss[T]{pred: pred, target: target}, nil
}

func clampProb(p float64) float64 {
	return math.Max(BCEEpsilon, math.Min(1-BCEEpsilon, p))
}

// Value returns the mean binary cross-entropy.
func (b *BCELoss[T]) Value() T {
	p, t := b.pred.Raw(), b.target.Raw()
	if len(p) == 0 {
		return 0
	}
	var sum float64
	for i := range p {
		yp, yt := clampProb(float64(p[i])), float64(t[i])
		sum -= yt*math.Log(yp) + (1-yt)*math.Log(1-yp)
	}
	return T(sum / float64(len(p)))
}

// Gradient returns (p - t) / (p·(1-p)·N) with p clamped.
func (b *BCELoss[T]) Gradient() *tensor.Tensor[T] {
	grad := tensor.New[T](b.pred.Shape()...)
	g, p, t := grad.Raw(), b.pred.Raw(), b.target.Raw()
	n := float64(len(p))
	for i := range p {
		yp, yt := clampProb(float64(p[i])), float64(t[i])
		g[i] = T((yp - yt) / (yp * (1 - yp) * n))
	}
	return grad
}
