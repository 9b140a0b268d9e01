// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"github.com/born-ml/tinynn/internal/nn"
	"github.com/born-ml/tinynn/internal/tensor"
)

// Layer is one differentiable stage of a Network.
type Layer[T tensor.Float] = nn.Layer[T]

// Cache carries what a layer's Backward needs from its Forward.
type Cache[T tensor.Float] = nn.Cache[T]

// Parameter is a trainable tensor and its gradient.
type Parameter[T tensor.Float] = nn.Parameter[T]

// Errors returned by layers.
var (
	ErrNoCache    = nn.ErrNoCache
	ErrNoGradient = nn.ErrNoGradient
)

// Layers

// Dense is a fully connected layer: y = x @ W + b.
type Dense[T tensor.Float] = nn.Dense[T]

// DenseOption configures a Dense layer.
type DenseOption[T tensor.Float] = nn.DenseOption[T]

// NewDense creates a Dense layer with Xavier weights and zero bias.
//
// Example:
//
//	layer := nn.NewDense[float32](784, 128)
func NewDense[T tensor.Float](inFeatures, outFeatures int, opts ...DenseOption[T]) *Dense[T] {
	return nn.NewDense(inFeatures, outFeatures, opts...)
}

// WithInitializer sets the weight initializer (and the bias initializer
// unless WithBiasInitializer is given).
func WithInitializer[T tensor.Float](init Initializer[T]) DenseOption[T] {
	return nn.WithInitializer(init)
}

// WithBiasInitializer sets the bias initializer.
func WithBiasInitializer[T tensor.Float](init Initializer[T]) DenseOption[T] {
	return nn.WithBiasInitializer(init)
}

// WithRand sets the random source used by the initializers.
func WithRand[T tensor.Float](rng *rand.Rand) DenseOption[T] {
	return nn.WithRand[T](rng)
}

// ReLU applies max(0, x).
type ReLU[T tensor.Float] = nn.ReLU[T]

// NewReLU creates a ReLU activation layer.
func NewReLU[T tensor.Float]() *ReLU[T] {
	return nn.NewReLU[T]()
}

// Sigmoid applies 1 / (1 + exp(-x)).
type Sigmoid[T tensor.Float] = nn.Sigmoid[T]

// NewSigmoid creates a Sigmoid activation layer.
func NewSigmoid[T tensor.Float]() *Sigmoid[T] {
	return nn.NewSigmoid[T]()
}

// Initialization

// Initializer fills a freshly allocated parameter tensor.
type Initializer[T tensor.Float] = nn.Initializer[T]

// Xavier draws from U(-sqrt(6/(fan_in+fan_out)), sqrt(6/(fan_in+fan_out))).
func Xavier[T tensor.Float]() Initializer[T] {
	return nn.Xavier[T]()
}

// Uniform draws from U(lo, hi).
func Uniform[T tensor.Float](lo, hi float64) Initializer[T] {
	return nn.Uniform[T](lo, hi)
}

// Constant sets every value to v.
func Constant[T tensor.Float](v T) Initializer[T] {
	return nn.Constant(v)
}

// Zeros sets every value to zero.
func Zeros[T tensor.Float]() Initializer[T] {
	return nn.Zeros[T]()
}

// Losses

// Loss is an objective over one prediction/target pair.
type Loss[T tensor.Float] = nn.Loss[T]

// LossFunc builds a Loss for a prediction/target pair.
type LossFunc[T tensor.Float] = nn.LossFunc[T]

// NewMSELoss computes mean squared error.
func NewMSELoss[T tensor.Float](pred, target *tensor.Tensor[T]) (Loss[T], error) {
	return nn.NewMSELoss(pred, target)
}

// NewBCELoss computes binary cross-entropy over predictions in (0, 1).
func NewBCELoss[T tensor.Float](pred, target *tensor.Tensor[T]) (Loss[T], error) {
	return nn.NewBCELoss(pred, target)
}

// Networks

// Network is an ordered, concurrency-safe container of layers.
type Network[T tensor.Float] = nn.Network[T]

// Trace holds the per-layer caches of one forward pass.
type Trace[T tensor.Float] = nn.Trace[T]

// TrainConfig holds configuration for Network.Train.
type TrainConfig[T tensor.Float] = nn.TrainConfig[T]

// StateDict maps parameter names to parameter values.
type StateDict[T tensor.Float] = nn.StateDict[T]

// NewNetwork creates a network owning the given layers.
//
// Example:
//
//	net := nn.NewNetwork[float64](
//	    nn.NewDense[float64](2, 8),
//	    nn.NewReLU[float64](),
//	    nn.NewDense[float64](8, 1),
//	)
func NewNetwork[T tensor.Float](layers ...Layer[T]) *Network[T] {
	return nn.NewNetwork(layers...)
}
