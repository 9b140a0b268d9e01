// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides parameter update rules.
//
// An Optimizer updates one parameter tensor from its gradient. Layers ask
// a Provider for the optimizer of each parameter, so stateful rules such
// as Adam keep separate moments per parameter:
//
//	adam := optim.NewPerParameter(func() optim.Optimizer[float32] {
//	    return optim.NewAdam[float32](optim.AdamConfig{LR: 0.001})
//	})
//	err := net.UpdateParams(adam)
//
// SGD has no state and is its own Provider.
package optim
