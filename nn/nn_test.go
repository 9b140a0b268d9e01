// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/tinynn/nn"
	"github.com/born-ml/tinynn/optim"
	"github.com/born-ml/tinynn/tensor"
)

// XOR needs the hidden layer; a linear model cannot fit it.
func TestNetwork_LearnsXOR(t *testing.T) {
	x, err := tensor.FromSlice([]float64{0, 0, 0, 1, 1, 0, 1, 1}, 4, 2)
	require.NoError(t, err)
	y, err := tensor.FromSlice([]float64{0, 1, 1, 0}, 4, 1)
	require.NoError(t, err)

	net := nn.NewNetwork[float64](
		nn.NewDense[float64](2, 8),
		nn.NewReLU[float64](),
		nn.NewDense[float64](8, 1),
		nn.NewSigmoid[float64](),
	)
	adam := optim.NewPerParameter(func() optim.Optimizer[float64] {
		return optim.NewAdam[float64](optim.AdamConfig{LR: 0.05})
	})

	history, err := net.Train(x, y, nn.TrainConfig[float64]{
		Epochs:    1000,
		Loss:      nn.NewBCELoss[float64],
		Optimizer: adam,
	})
	require.NoError(t, err)
	assert.Less(t, history[len(history)-1], 0.2)

	pred, err := net.Predict(x)
	require.NoError(t, err)
	for i, want := range []float64{0, 1, 1, 0} {
		got, err := pred.At(i, 0)
		require.NoError(t, err)
		assert.InDelta(t, want, got, 0.4, "row %d", i)
	}
}

func TestDense_SaveLoadWeights(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dense.weights")

	src := nn.NewDense[float32](3, 2, nn.WithInitializer(nn.Uniform[float32](-1, 1)))
	require.NoError(t, src.SaveWeights(path))

	dst := nn.NewDense[float32](3, 2, nn.WithInitializer(nn.Zeros[float32]()))
	require.NoError(t, dst.LoadWeights(path))
	assert.True(t, src.Weight().Tensor().Equal(dst.Weight().Tensor()))
	assert.True(t, src.Bias().Tensor().Equal(dst.Bias().Tensor()))
}

func TestLayer_BackwardWithoutForward(t *testing.T) {
	var relu nn.Layer[float32] = nn.NewReLU[float32]()
	_, err := relu.Backward(nn.Cache[float32]{}, tensor.New[float32](1, 1))
	require.ErrorIs(t, err, nn.ErrNoCache)
}
