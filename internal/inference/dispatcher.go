// Package inference runs batched forward passes in parallel.
//
// A Dispatcher splits a batch into contiguous row chunks, submits one task
// per chunk to a worker pool, and writes each chunk's output at the chunk's
// row offset. Row order in the result never depends on scheduling.
package inference

import (
	"fmt"

	"github.com/born-ml/tinynn/internal/parallel"
	"github.com/born-ml/tinynn/internal/tensor"
)

// Predictor is the model contract the dispatcher needs.
//
// Predict is called from several goroutines at once and must be safe for
// concurrent use; *nn.Network satisfies this.
type Predictor[T tensor.Float] interface {
	Predict(x *tensor.Tensor[T]) (*tensor.Tensor[T], error)
}

// chunkResult is the pending output of rows [start, end).
type chunkResult[T tensor.Float] struct {
	start, end int
	future     *parallel.Future[*tensor.Tensor[T]]
}

// Dispatcher partitions batches across a worker pool.
type Dispatcher[T tensor.Float] struct {
	model    Predictor[T]
	pool     *parallel.Pool
	ownsPool bool
}

// NewDispatcher creates a dispatcher with its own pool built from cfg.
// Close releases the pool.
func NewDispatcher[T tensor.Float](model Predictor[T], cfg parallel.Config) *Dispatcher[T] {
	return &Dispatcher[T]{
		model:    model,
		pool:     parallel.NewPool(cfg),
		ownsPool: true,
	}
}

// NewDispatcherWithPool creates a dispatcher on an existing pool.
// The caller keeps ownership of the pool.
func NewDispatcherWithPool[T tensor.Float](model Predictor[T], pool *parallel.Pool) *Dispatcher[T] {
	return &Dispatcher[T]{
		model: model,
		pool:  pool,
	}
}

// Workers returns the pool size.
func (d *Dispatcher[T]) Workers() int {
	return d.pool.Size()
}

// Close shuts down the pool if the dispatcher created it.
func (d *Dispatcher[T]) Close() {
	if d.ownsPool {
		d.pool.Close()
	}
}

// RunBatch predicts every row of x and returns the outputs in row order.
//
// The batch is cut into chunks of ceil(rows/workers) rows. An empty batch
// yields an empty [0, 0] tensor.
func (d *Dispatcher[T]) RunBatch(x *tensor.Tensor[T]) (*tensor.Tensor[T], error) {
	if x == nil || x.Rank() != 2 {
		return nil, fmt.Errorf("%w: RunBatch expects a 2D batch", tensor.ErrInvalidArgument)
	}
	rows := x.Dim(0)
	if rows == 0 {
		return tensor.New[T](0, 0), nil
	}

	// Output width comes from the model, not the input.
	first, err := x.Row(0)
	if err != nil {
		return nil, err
	}
	head, err := d.model.Predict(first)
	if err != nil {
		return nil, fmt.Errorf("first row: %w", err)
	}
	if head.Rank() != 2 {
		return nil, fmt.Errorf("%w: model returned rank %d output", tensor.ErrInvalidArgument, head.Rank())
	}
	out := tensor.New[T](rows, head.Dim(1))

	workers := d.pool.Size()
	chunk := (rows + workers - 1) / workers

	results := make([]chunkResult[T], 0, workers)
	for start := 0; start < rows; start += chunk {
		end := min(start+chunk, rows)
		part, err := x.Slice(start, end)
		if err != nil {
			return nil, err
		}
		results = append(results, chunkResult[T]{
			start: start,
			end:   end,
			future: parallel.Submit(d.pool, func() (*tensor.Tensor[T], error) {
				return d.model.Predict(part)
			}),
		})
	}

	// Wait for every task, even after a failure, so no chunk outlives the call.
	var firstErr error
	for _, r := range results {
		y, err := r.future.Wait()
		if firstErr != nil {
			continue
		}
		if err != nil {
			firstErr = fmt.Errorf("rows [%d, %d): %w", r.start, r.end, err)
			continue
		}
		if err := out.SetRows(r.start, y); err != nil {
			firstErr = fmt.Errorf("rows [%d, %d): %w", r.start, r.end, err)
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}
