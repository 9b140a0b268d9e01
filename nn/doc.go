// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides layers, losses and the sequential Network that
// trains them.
//
// Layers are stateless during the forward pass: Forward returns the
// output together with a Cache, and Backward consumes that Cache. Several
// goroutines may therefore run Forward on one Network at the same time.
//
// # Basic Usage
//
//	net := nn.NewNetwork[float32](
//	    nn.NewDense[float32](3, 16),
//	    nn.NewReLU[float32](),
//	    nn.NewDense[float32](16, 3),
//	    nn.NewSigmoid[float32](),
//	)
//
//	adam := optim.NewPerParameter(func() optim.Optimizer[float32] {
//	    return optim.NewAdam[float32](optim.AdamConfig{LR: 0.001})
//	})
//	history, err := net.Train(x, y, nn.TrainConfig[float32]{
//	    Epochs:    2000,
//	    Loss:      nn.NewBCELoss[float32],
//	    Optimizer: adam,
//	})
//
// Dense layers persist to a small text format with SaveWeights and
// LoadWeights; whole networks use SaveSnapshot and LoadSnapshot.
package nn
