package pong

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"path/filepath"

	"github.com/born-ml/tinynn/internal/config"
	"github.com/born-ml/tinynn/internal/nn"
	"github.com/born-ml/tinynn/internal/optim"
	"github.com/born-ml/tinynn/internal/parallel"
	"github.com/born-ml/tinynn/internal/serialization"
	"github.com/born-ml/tinynn/internal/tensor"
)

// Weight file names inside a model directory.
const (
	HiddenWeightsFile = "pong_model_dense1.weights"
	OutputWeightsFile = "pong_model_dense2.weights"
)

// ErrNoSamples is returned when no sample carries a positive reward.
var ErrNoSamples = errors.New("no rewarded samples")

// NewModel builds Dense(3, hidden) → ReLU → Dense(hidden, 3) → Sigmoid.
// A nil rng uses the default layer seed.
func NewModel(hidden int, rng *rand.Rand) *nn.Network[float32] {
	if rng == nil {
		//nolint:gosec // weight initialization is not security-critical
		rng = rand.New(rand.NewSource(nn.DefaultSeed))
	}
	return nn.NewNetwork[float32](
		nn.NewDense[float32](3, hidden, nn.WithRand[float32](rng)),
		nn.NewReLU[float32](),
		nn.NewDense[float32](hidden, NumActions, nn.WithRand[float32](rng)),
		nn.NewSigmoid[float32](),
	)
}

// Dataset turns the rewarded samples into observations and one-hot action
// targets. Samples with reward <= 0 are ignored.
func Dataset(samples []Sample) (x, y *tensor.Tensor[float32], err error) {
	var rows int
	for _, s := range samples {
		if s.Reward > 0 {
			rows++
		}
	}
	if rows == 0 {
		return nil, nil, ErrNoSamples
	}

	x = tensor.New[float32](rows, 3)
	y = tensor.New[float32](rows, NumActions)
	xd, yd := x.Raw(), y.Raw()

	r := 0
	for i, s := range samples {
		if s.Reward <= 0 {
			continue
		}
		if s.Action < ActionDown || s.Action > ActionUp {
			return nil, nil, fmt.Errorf("%w: sample %d has action %d",
				tensor.ErrInvalidArgument, i, s.Action)
		}
		xd[r*3+0] = float32(s.BallX)
		xd[r*3+1] = float32(s.BallY)
		xd[r*3+2] = float32(s.PaddleY)
		yd[r*NumActions+s.Action+1] = 1
		r++
	}
	return x, y, nil
}

// Train fits net to the rewarded samples with the optimizer, loss and
// schedule in cfg and returns the per-epoch loss. Progress goes to logger
// when it is non-nil.
func Train(net *nn.Network[float32], samples []Sample, cfg config.Training, logger *log.Logger) ([]float32, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	x, y, err := Dataset(samples)
	if err != nil {
		return nil, err
	}

	return net.Train(x, y, nn.TrainConfig[float32]{
		Epochs:    cfg.Epochs,
		BatchSize: cfg.BatchSize,
		Loss:      lossFunc(cfg.Loss),
		Optimizer: provider(cfg.Optimizer, cfg.LearningRate),
		Verbose:   logger != nil,
		LogEvery:  cfg.LogEvery,
		Logger:    logger,
	})
}

func lossFunc(name string) nn.LossFunc[float32] {
	if name == config.LossMSE {
		return nn.NewMSELoss[float32]
	}
	return nn.NewBCELoss[float32]
}

func provider(name string, lr float64) optim.Provider[float32] {
	if name == config.OptimizerSGD {
		return optim.NewSGD[float32](optim.SGDConfig{LR: lr})
	}
	return optim.NewPerParameter(func() optim.Optimizer[float32] {
		return optim.NewAdam[float32](optim.AdamConfig{LR: lr})
	})
}

func denseLayers(net *nn.Network[float32]) (*nn.Dense[float32], *nn.Dense[float32], error) {
	var dense []*nn.Dense[float32]
	for i := 0; i < net.Len(); i++ {
		if d, ok := net.Layer(i).(*nn.Dense[float32]); ok {
			dense = append(dense, d)
		}
	}
	if len(dense) != 2 {
		return nil, nil, fmt.Errorf("%w: pong model needs 2 dense layers, found %d",
			tensor.ErrInvalidArgument, len(dense))
	}
	return dense[0], dense[1], nil
}

// SaveModel writes one weight file per dense layer into dir.
func SaveModel(net *nn.Network[float32], dir string) error {
	hidden, output, err := denseLayers(net)
	if err != nil {
		return err
	}
	if err := hidden.SaveWeights(filepath.Join(dir, HiddenWeightsFile)); err != nil {
		return err
	}
	return output.SaveWeights(filepath.Join(dir, OutputWeightsFile))
}

// LoadModel rebuilds a model from the weight files in dir. The hidden width
// is taken from the first file.
func LoadModel(dir string) (*nn.Network[float32], error) {
	path := filepath.Join(dir, HiddenWeightsFile)
	dw, err := serialization.ReadDenseFile(path, 32)
	if err != nil {
		return nil, err
	}
	if dw.Rows != 3 {
		return nil, fmt.Errorf("%s: %w: expected 3 inputs, got %d", path, serialization.ErrShapeMismatch, dw.Rows)
	}

	net := NewModel(dw.Cols, nil)
	hidden, output, err := denseLayers(net)
	if err != nil {
		return nil, err
	}
	if err := hidden.LoadWeights(path); err != nil {
		return nil, err
	}
	if err := output.LoadWeights(filepath.Join(dir, OutputWeightsFile)); err != nil {
		return nil, err
	}
	return net, nil
}

// Evaluate plays episodes independent games of steps ticks each, spread
// across cfg's workers. Episode i serves from a source seeded with seed+i,
// so results do not depend on scheduling.
func Evaluate(model *nn.Network[float32], episodes, steps int, seed int64, cfg parallel.Config) ([]Result, error) {
	if episodes < 0 || steps < 0 {
		return nil, fmt.Errorf("%w: episodes=%d steps=%d", tensor.ErrInvalidArgument, episodes, steps)
	}

	results := make([]Result, episodes)
	errs := make([]error, episodes)
	agent := NewAgent(model)

	parallel.For(episodes, func(i int) {
		//nolint:gosec // game physics is not security-critical
		env := NewEnv(rand.New(rand.NewSource(seed + int64(i))))
		results[i], errs[i] = Simulate(agent, env, steps, nil)
	}, cfg)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return results, nil
}
