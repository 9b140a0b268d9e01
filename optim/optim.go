// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/born-ml/tinynn/internal/optim"
	"github.com/born-ml/tinynn/internal/tensor"
)

// Optimizer updates a parameter tensor in place from its gradient.
type Optimizer[T tensor.Float] = optim.Optimizer[T]

// Provider returns the optimizer responsible for a parameter.
type Provider[T tensor.Float] = optim.Provider[T]

// Config represents the base configuration for optimizers.
type Config = optim.Config

// Errors returned by optimizers.
var (
	ErrShapeMismatch = optim.ErrShapeMismatch
	ErrStateShape    = optim.ErrStateShape
)

// SGD (Stochastic Gradient Descent)

// SGD applies p -= lr * g.
type SGD[T tensor.Float] = optim.SGD[T]

// SGDConfig contains configuration for SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer.
//
// Example:
//
//	sgd := optim.NewSGD[float32](optim.SGDConfig{LR: 0.01})
//	err := net.UpdateParams(sgd)
func NewSGD[T tensor.Float](config SGDConfig) *SGD[T] {
	return optim.NewSGD[T](config)
}

// Adam (Adaptive Moment Estimation)

// Adam represents the Adam optimizer for a single parameter.
type Adam[T tensor.Float] = optim.Adam[T]

// AdamConfig contains configuration for Adam optimizer.
type AdamConfig = optim.AdamConfig

// NewAdam creates a new Adam optimizer with bias correction.
// Use one instance per parameter, usually through NewPerParameter.
func NewAdam[T tensor.Float](config AdamConfig) *Adam[T] {
	return optim.NewAdam[T](config)
}

// Providers

// PerParameter builds one optimizer per parameter on first use.
type PerParameter[T tensor.Float] = optim.PerParameter[T]

// NewPerParameter creates a provider that calls newFn once per parameter.
func NewPerParameter[T tensor.Float](newFn func() Optimizer[T]) *PerParameter[T] {
	return optim.NewPerParameter(newFn)
}

// Shared hands the same optimizer to every parameter.
func Shared[T tensor.Float](opt Optimizer[T]) Provider[T] {
	return optim.Shared(opt)
}
