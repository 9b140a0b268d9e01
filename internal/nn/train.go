package nn

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/born-ml/tinynn/internal/optim"
	"github.com/born-ml/tinynn/internal/tensor"
)

// DefaultLogEvery is the epoch interval of progress logging.
const DefaultLogEvery = 100

// TrainConfig holds configuration for Network.Train.
type TrainConfig[T tensor.Float] struct {
	Epochs    int               // Passes over the dataset (required)
	BatchSize int               // Rows per mini-batch (default: all rows)
	Loss      LossFunc[T]       // Objective (default: NewMSELoss)
	Optimizer optim.Provider[T] // Parameter update rule (default: SGD with lr 0.01)
	Verbose   bool              // Log the epoch loss every LogEvery epochs
	LogEvery  int               // Logging interval (default: 100)
	Logger    *log.Logger       // Destination for progress (default: discard)
}

func (c *TrainConfig[T]) setDefaults(rows int) error {
	if c.Epochs <= 0 {
		return fmt.Errorf("%w: epochs must be positive, got %d", tensor.ErrInvalidArgument, c.Epochs)
	}
	if c.BatchSize < 0 {
		return fmt.Errorf("%w: negative batch size %d", tensor.ErrInvalidArgument, c.BatchSize)
	}
	if c.BatchSize == 0 {
		c.BatchSize = rows
	}
	if c.Loss == nil {
		c.Loss = NewMSELoss[T]
	}
	if c.Optimizer == nil {
		c.Optimizer = optim.NewSGD[T](optim.SGDConfig{})
	}
	if c.LogEvery <= 0 {
		c.LogEvery = DefaultLogEvery
	}
	if c.Logger == nil {
		c.Logger = log.New(io.Discard, "", 0)
	}
	return nil
}

// Train fits the network to (x, y) with mini-batch gradient descent.
//
// Each epoch splits the rows into contiguous batches of cfg.BatchSize
// (the last one may be shorter) and runs one TrainStep per batch.
// Train returns the mean batch loss of every epoch.
func (n *Network[T]) Train(x, y *tensor.Tensor[T], cfg TrainConfig[T]) ([]T, error) {
	if x.Rank() != 2 || y.Rank() != 2 {
		return nil, fmt.Errorf("%w: Train expects 2D inputs and targets, got %v and %v",
			tensor.ErrInvalidArgument, x.Shape(), y.Shape())
	}
	rows := x.Dim(0)
	if y.Dim(0) != rows {
		return nil, fmt.Errorf("%w: %d input rows but %d target rows",
			tensor.ErrInvalidArgument, rows, y.Dim(0))
	}
	if rows == 0 {
		return nil, errors.New("train: empty dataset")
	}
	if err := cfg.setDefaults(rows); err != nil {
		return nil, err
	}

	numBatches := (rows + cfg.BatchSize - 1) / cfg.BatchSize
	history := make([]T, 0, cfg.Epochs)

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		var total T
		for batch := 0; batch < numBatches; batch++ {
			start := batch * cfg.BatchSize
			xb, err := x.Slice(start, start+cfg.BatchSize)
			if err != nil {
				return history, err
			}
			yb, err := y.Slice(start, start+cfg.BatchSize)
			if err != nil {
				return history, err
			}

			loss, err := n.TrainStep(xb, yb, cfg.Loss, cfg.Optimizer)
			if err != nil {
				return history, fmt.Errorf("epoch %d batch %d: %w", epoch, batch, err)
			}
			total += loss
		}

		epochLoss := total / T(numBatches)
		history = append(history, epochLoss)

		if cfg.Verbose && epoch%cfg.LogEvery == 0 {
			cfg.Logger.Printf("Epoch %d, Loss: %g", epoch, float64(epochLoss))
		}
	}

	return history, nil
}
