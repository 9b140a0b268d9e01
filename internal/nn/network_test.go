package nn_test

import (
	"bytes"
	"log"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"

	"github.com/born-ml/tinynn/internal/nn"
	"github.com/born-ml/tinynn/internal/optim"
	"github.com/born-ml/tinynn/internal/tensor"
)

func newTestNetwork(seed int64) *nn.Network[float64] {
	rng := rand.New(rand.NewSource(seed))
	return nn.NewNetwork[float64](
		nn.NewDense[float64](3, 4, nn.WithRand[float64](rng)),
		nn.NewSigmoid[float64](),
		nn.NewDense[float64](4, 2, nn.WithRand[float64](rng)),
	)
}

func TestNetwork_Structure(t *testing.T) {
	net := nn.NewNetwork[float32]()
	net.Add(nn.NewDense[float32](3, 4))
	net.Add(nn.NewReLU[float32]())
	net.Add(nn.NewDense[float32](4, 2))

	assert.Equal(t, 3, net.Len())
	assert.IsType(t, &nn.ReLU[float32]{}, net.Layer(1))
	assert.Len(t, net.Parameters(), 4)
	assert.Panics(t, func() { net.Layer(3) })
}

func TestNetwork_ForwardBackward(t *testing.T) {
	net := newTestNetwork(1)
	x := randomTensor(rand.New(rand.NewSource(2)), 5, 3)

	y, trace, err := net.Forward(x)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{5, 2}, y.Shape())
	assert.Equal(t, 3, trace.Len())

	dx, err := net.Backward(trace, tensor.Full[float64](1, 5, 2))
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{5, 3}, dx.Shape())

	for _, p := range net.Parameters() {
		assert.NotNil(t, p.Grad(), p.Name())
	}
}

func TestNetwork_InputGradientMatchesFiniteDifferences(t *testing.T) {
	net := newTestNetwork(3)
	rng := rand.New(rand.NewSource(4))
	x := randomTensor(rng, 2, 3)
	r := randomTensor(rng, 2, 2)

	_, trace, err := net.Forward(x)
	require.NoError(t, err)
	dx, err := net.Backward(trace, r)
	require.NoError(t, err)

	orig := x.Data()
	numeric := fd.Gradient(nil, func(p []float64) float64 {
		in, err := tensor.FromSlice(p, 2, 3)
		require.NoError(t, err)
		y, err := net.Predict(in)
		require.NoError(t, err)
		var sum float64
		for i, v := range y.Raw() {
			sum += v * r.Flat(i)
		}
		return sum
	}, orig, &fd.Settings{Formula: fd.Central})

	assert.InDeltaSlice(t, numeric, dx.Data(), 1e-6)
}

func TestNetwork_BackwardNeedsMatchingTrace(t *testing.T) {
	net := newTestNetwork(1)
	_, err := net.Backward(nn.Trace[float64]{}, tensor.New[float64](1, 2))
	require.ErrorIs(t, err, nn.ErrNoCache)
}

func TestNetwork_ForwardReportsLayer(t *testing.T) {
	net := newTestNetwork(1)
	_, _, err := net.Forward(tensor.New[float64](2, 5))
	require.ErrorIs(t, err, tensor.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "layer 0")
}

func TestNetwork_PredictIsDeterministic(t *testing.T) {
	net := newTestNetwork(5)
	x := randomTensor(rand.New(rand.NewSource(6)), 4, 3)

	a, err := net.Predict(x)
	require.NoError(t, err)
	b, err := net.Predict(x)
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
}

func TestNetwork_TrainStep(t *testing.T) {
	net := nn.NewNetwork[float64](nn.NewDense[float64](1, 1, nn.WithInitializer(nn.Constant[float64](0))))
	x := mustTensor(t, []float64{1, 2}, 2, 1)
	y := mustTensor(t, []float64{2, 4}, 2, 1)
	sgd := optim.NewSGD[float64](optim.SGDConfig{LR: 0.1})

	loss, err := net.TrainStep(x, y, nn.NewMSELoss[float64], sgd)
	require.NoError(t, err)
	// Prediction is zero, so the loss is (4 + 16) / 2.
	assert.InDelta(t, 10.0, loss, 1e-12)

	next, err := net.TrainStep(x, y, nn.NewMSELoss[float64], sgd)
	require.NoError(t, err)
	assert.Less(t, next, loss)
}

func linearDataset(t *testing.T) (*tensor.Tensor[float64], *tensor.Tensor[float64]) {
	xs := []float64{0, 0.2, 0.4, 0.6, 0.8, 1}
	ys := make([]float64, len(xs))
	for i, v := range xs {
		ys[i] = 2*v + 1
	}
	return mustTensor(t, xs, len(xs), 1), mustTensor(t, ys, len(ys), 1)
}

func TestNetwork_TrainConverges(t *testing.T) {
	x, y := linearDataset(t)
	net := nn.NewNetwork[float64](nn.NewDense[float64](1, 1))

	history, err := net.Train(x, y, nn.TrainConfig[float64]{
		Epochs:    500,
		BatchSize: 4,
		Loss:      nn.NewMSELoss[float64],
		Optimizer: optim.NewPerParameter(func() optim.Optimizer[float64] {
			return optim.NewAdam[float64](optim.AdamConfig{LR: 0.05})
		}),
	})
	require.NoError(t, err)
	require.Len(t, history, 500)

	assert.Less(t, history[len(history)-1], 0.05)
	assert.Less(t, history[len(history)-1], history[0]/10)
}

func TestNetwork_TrainLogsProgress(t *testing.T) {
	x, y := linearDataset(t)
	net := nn.NewNetwork[float64](nn.NewDense[float64](1, 1))

	var buf bytes.Buffer
	_, err := net.Train(x, y, nn.TrainConfig[float64]{
		Epochs:   5,
		Verbose:  true,
		LogEvery: 2,
		Logger:   log.New(&buf, "", 0),
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Epoch 0, Loss: "))
	assert.True(t, strings.HasPrefix(lines[2], "Epoch 4, Loss: "))
}

func TestNetwork_TrainValidation(t *testing.T) {
	net := nn.NewNetwork[float64](nn.NewDense[float64](1, 1))
	x, y := linearDataset(t)

	_, err := net.Train(x, y, nn.TrainConfig[float64]{})
	require.ErrorIs(t, err, tensor.ErrInvalidArgument, "epochs are required")

	short, err := y.Slice(0, 3)
	require.NoError(t, err)
	_, err = net.Train(x, short, nn.TrainConfig[float64]{Epochs: 1})
	require.ErrorIs(t, err, tensor.ErrInvalidArgument)

	_, err = net.Train(x, y, nn.TrainConfig[float64]{Epochs: 1, BatchSize: -1})
	require.ErrorIs(t, err, tensor.ErrInvalidArgument)
}

func TestNetwork_TrainShortLastBatch(t *testing.T) {
	x, y := linearDataset(t)
	net := nn.NewNetwork[float64](nn.NewDense[float64](1, 1))

	// 6 rows in batches of 4: one full batch and one of 2.
	history, err := net.Train(x, y, nn.TrainConfig[float64]{Epochs: 1, BatchSize: 4})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Greater(t, history[0], 0.0)
}
