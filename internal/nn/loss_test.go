package nn_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/tinynn/internal/nn"
	"github.com/born-ml/tinynn/internal/tensor"
)

func TestMSELoss(t *testing.T) {
	pred := mustTensor(t, []float64{1, 2}, 1, 2)
	target := tensor.New[float64](1, 2)

	loss, err := nn.NewMSELoss(pred, target)
	require.NoError(t, err)

	// (1 + 4) / 2
	assert.InDelta(t, 2.5, loss.Value(), 1e-12)
	// 2 · (p - t) / 2
	assert.InDeltaSlice(t, []float64{1, 2}, loss.Gradient().Data(), 1e-12)
}

func TestMSELoss_Float32(t *testing.T) {
	pred := mustTensor(t, []float32{1, 2, 3, 4}, 2, 2)
	target := mustTensor(t, []float32{1, 0, 3, 0}, 2, 2)

	loss, err := nn.NewMSELoss(pred, target)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, float64(loss.Value()), 1e-6)
	assert.Equal(t, []float32{0, 1, 0, 2}, loss.Gradient().Data())
}

func TestBCELoss(t *testing.T) {
	pred := mustTensor(t, []float64{0.9, 0.2}, 1, 2)
	target := mustTensor(t, []float64{1, 0}, 1, 2)

	loss, err := nn.NewBCELoss(pred, target)
	require.NoError(t, err)

	want := -(math.Log(0.9) + math.Log(0.8)) / 2
	assert.InDelta(t, want, loss.Value(), 1e-12)

	grad := loss.Gradient().Data()
	assert.InDelta(t, (0.9-1)/(0.9*0.1*2), grad[0], 1e-12)
	assert.InDelta(t, 0.2/(0.2*0.8*2), grad[1], 1e-12)
}

func TestBCELoss_ClampsSaturatedPredictions(t *testing.T) {
	pred := mustTensor(t, []float32{0, 1}, 1, 2)
	target := mustTensor(t, []float32{1, 0}, 1, 2)

	loss, err := nn.NewBCELoss(pred, target)
	require.NoError(t, err)

	v := float64(loss.Value())
	assert.False(t, math.IsInf(v, 0) || math.IsNaN(v))
	assert.InDelta(t, -math.Log(nn.BCEEpsilon), v, 1e-3)

	for _, g := range loss.Gradient().Data() {
		assert.False(t, math.IsInf(float64(g), 0) || math.IsNaN(float64(g)))
	}
}

func TestLoss_ShapeMismatch(t *testing.T) {
	pred := tensor.New[float64](2, 2)
	target := tensor.New[float64](2, 3)

	_, err := nn.NewMSELoss(pred, target)
	require.ErrorIs(t, err, tensor.ErrInvalidArgument)
	_, err = nn.NewBCELoss(pred, target)
	require.ErrorIs(t, err, tensor.ErrInvalidArgument)
}

func TestLoss_Empty(t *testing.T) {
	loss, err := nn.NewMSELoss(tensor.New[float64](0, 0), tensor.New[float64](0, 0))
	require.NoError(t, err)
	assert.Zero(t, loss.Value())
}
