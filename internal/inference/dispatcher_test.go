package inference_test

import (
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/tinynn/internal/inference"
	"github.com/born-ml/tinynn/internal/nn"
	"github.com/born-ml/tinynn/internal/optim"
	"github.com/born-ml/tinynn/internal/parallel"
	"github.com/born-ml/tinynn/internal/tensor"
)

func newNetwork(seed int64) *nn.Network[float64] {
	rng := rand.New(rand.NewSource(seed))
	return nn.NewNetwork[float64](
		nn.NewDense[float64](3, 8, nn.WithRand[float64](rng)),
		nn.NewReLU[float64](),
		nn.NewDense[float64](8, 2, nn.WithRand[float64](rng)),
		nn.NewSigmoid[float64](),
	)
}

func randomBatch(rows, cols int, seed int64) *tensor.Tensor[float64] {
	rng := rand.New(rand.NewSource(seed))
	x := tensor.New[float64](rows, cols)
	for i := range x.Raw() {
		x.Raw()[i] = rng.Float64()
	}
	return x
}

func TestDispatcher_MatchesSequentialPredict(t *testing.T) {
	net := newNetwork(1)
	x := randomBatch(10, 3, 2)

	want, err := net.Predict(x)
	require.NoError(t, err)

	for _, workers := range []int{1, 2, 3, 10, 16} {
		d := inference.NewDispatcher[float64](net, parallel.Config{Enabled: true, NumWorkers: workers})
		got, err := d.RunBatch(x)
		d.Close()

		require.NoError(t, err, "workers=%d", workers)
		assert.True(t, want.Equal(got), "workers=%d", workers)
	}
}

func TestDispatcher_EmptyBatch(t *testing.T) {
	d := inference.NewDispatcher[float64](newNetwork(1), parallel.Config{Enabled: true, NumWorkers: 2})
	defer d.Close()

	out, err := d.RunBatch(tensor.New[float64](0, 3))
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{0, 0}, out.Shape())
}

func TestDispatcher_RejectsNonMatrix(t *testing.T) {
	d := inference.NewDispatcher[float64](newNetwork(1), parallel.Config{})
	defer d.Close()

	_, err := d.RunBatch(tensor.New[float64](3))
	require.ErrorIs(t, err, tensor.ErrInvalidArgument)
}

func TestDispatcher_ModelError(t *testing.T) {
	d := inference.NewDispatcher[float64](newNetwork(1), parallel.Config{Enabled: true, NumWorkers: 2})
	defer d.Close()

	_, err := d.RunBatch(tensor.New[float64](4, 5))
	require.ErrorIs(t, err, tensor.ErrInvalidArgument)
}

type flakyModel struct {
	inner *nn.Network[float64]
}

var errFlaky = errors.New("flaky")

func (m flakyModel) Predict(x *tensor.Tensor[float64]) (*tensor.Tensor[float64], error) {
	if x.Dim(0) > 1 {
		return nil, errFlaky
	}
	return m.inner.Predict(x)
}

func TestDispatcher_ChunkErrorIsReported(t *testing.T) {
	d := inference.NewDispatcher[float64](flakyModel{newNetwork(1)}, parallel.Config{Enabled: true, NumWorkers: 2})
	defer d.Close()

	_, err := d.RunBatch(randomBatch(6, 3, 1))
	require.ErrorIs(t, err, errFlaky)
}

func TestDispatcher_SharedPool(t *testing.T) {
	pool := parallel.NewPool(parallel.Config{Enabled: true, NumWorkers: 3})
	defer pool.Close()

	d := inference.NewDispatcherWithPool[float64](newNetwork(1), pool)
	assert.Equal(t, 3, d.Workers())

	out, err := d.RunBatch(randomBatch(7, 3, 4))
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{7, 2}, out.Shape())

	d.Close()
	_, err = parallel.Submit(pool, func() (int, error) { return 1, nil }).Wait()
	require.NoError(t, err, "a borrowed pool stays open")
}

// Inference and training on one network at the same time must be free of
// data races and keep every inference result well formed.
func TestDispatcher_ConcurrentWithTraining(t *testing.T) {
	net := newNetwork(5)
	d := inference.NewDispatcher[float64](net, parallel.Config{Enabled: true, NumWorkers: 4})
	defer d.Close()

	x := randomBatch(32, 3, 6)
	y := randomBatch(32, 2, 7)
	sgd := optim.NewSGD[float64](optim.SGDConfig{LR: 0.05})

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			_, err := net.TrainStep(x, y, nn.NewMSELoss[float64], sgd)
			assert.NoError(t, err)
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			out, err := d.RunBatch(x)
			if !assert.NoError(t, err) {
				return
			}
			assert.Equal(t, tensor.Shape{32, 2}, out.Shape())
			for _, v := range out.Raw() {
				assert.True(t, v >= 0 && v <= 1, "sigmoid output %v", v)
			}
		}
	}()

	wg.Wait()
}
