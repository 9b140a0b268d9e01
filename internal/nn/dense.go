package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/tinynn/internal/optim"
	"github.com/born-ml/tinynn/internal/tensor"
)

// Dense implements a fully connected (affine) layer.
//
// Performs the transformation: y = x @ W + b
// where:
//   - x is the input tensor with shape [batch_size, in_features]
//   - W is the weight matrix with shape [in_features, out_features]
//   - b is the bias vector with shape [out_features]
//   - y is the output tensor with shape [batch_size, out_features]
//
// Weights are initialized using Xavier/Glorot initialization.
// Biases are initialized to zeros.
//
// Example:
//
//	layer := nn.NewDense[float32](3, 16)
//	out, cache, err := layer.Forward(input) // shape: [batch, 16]
type Dense[T tensor.Float] struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter[T] // [in_features, out_features]
	bias        *Parameter[T] // [out_features]
}

// DenseOption configures a Dense layer.
type DenseOption[T tensor.Float] func(*denseConfig[T])

type denseConfig[T tensor.Float] struct {
	weightInit Initializer[T]
	biasInit   Initializer[T]
	rng        *rand.Rand
}

// WithInitializer sets the weight initializer.
// Unless WithBiasInitializer is also given, the bias uses it too.
func WithInitializer[T tensor.Float](init Initializer[T]) DenseOption[T] {
	return func(c *denseConfig[T]) {
		c.weightInit = init
		if c.biasInit == nil {
			c.biasInit = init
		}
	}
}

// WithBiasInitializer sets the bias initializer.
func WithBiasInitializer[T tensor.Float](init Initializer[T]) DenseOption[T] {
	return func(c *denseConfig[T]) {
		c.biasInit = init
	}
}

// WithRand sets the random source used by the initializers.
func WithRand[T tensor.Float](rng *rand.Rand) DenseOption[T] {
	return func(c *denseConfig[T]) {
		c.rng = rng
	}
}

// NewDense creates a new Dense layer.
//
// Without options, weights use Xavier uniform from a source seeded with
// DefaultSeed and biases start at zero.
func NewDense[T tensor.Float](inFeatures, outFeatures int, opts ...DenseOption[T]) *Dense[T] {
	var cfg denseConfig[T]
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.weightInit == nil {
		cfg.weightInit = Xavier[T]()
	}
	if cfg.biasInit == nil {
		cfg.biasInit = Zeros[T]()
	}
	if cfg.rng == nil {
		//nolint:gosec // weight initialization is not security-critical
		cfg.rng = rand.New(rand.NewSource(DefaultSeed))
	}

	w := tensor.New[T](inFeatures, outFeatures)
	cfg.weightInit(w, cfg.rng)

	// Initializers see the bias as a 1×out row, like the weight matrix.
	b := tensor.New[T](1, outFeatures)
	cfg.biasInit(b, cfg.rng)
	bias, _ := tensor.FromSlice(b.Raw(), outFeatures)

	return &Dense[T]{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("weight", w),
		bias:        NewParameter("bias", bias),
	}
}

// Forward computes y = x @ W + b.
//
// Input shape: [batch_size, in_features]
// Output shape: [batch_size, out_features]
//
// The cache holds the input.
func (d *Dense[T]) Forward(x *tensor.Tensor[T]) (*tensor.Tensor[T], Cache[T], error) {
	if err := checkInput(x, d.inFeatures, "Dense.Forward"); err != nil {
		return nil, Cache[T]{}, err
	}

	batch := x.Dim(0)
	in, out := d.inFeatures, d.outFeatures
	xd, wd, bd := x.Raw(), d.weight.Tensor().Raw(), d.bias.Tensor().Raw()

	y := tensor.New[T](batch, out)
	yd := y.Raw()
	for i := 0; i < batch; i++ {
		for j := 0; j < out; j++ {
			var sum T
			for k := 0; k < in; k++ {
				sum += xd[i*in+k] * wd[k*out+j]
			}
			yd[i*out+j] = sum + bd[j]
		}
	}

	return y, newCache(x.Clone()), nil
}

// Backward computes the parameter gradients and the input gradient.
//
//	dW = x^T @ grad
//	db = column sums of grad
//	dx = grad @ W^T
func (d *Dense[T]) Backward(cache Cache[T], grad *tensor.Tensor[T]) (*tensor.Tensor[T], error) {
	if cache.Empty() {
		return nil, ErrNoCache
	}
	x := cache.saved
	batch := x.Dim(0)
	if err := checkGrad(grad, batch, d.outFeatures, "Dense.Backward"); err != nil {
		return nil, err
	}

	in, out := d.inFeatures, d.outFeatures
	xd, gd, wd := x.Raw(), grad.Raw(), d.weight.Tensor().Raw()

	dW := tensor.New[T](in, out)
	dWd := dW.Raw()
	for i := 0; i < batch; i++ {
		for k := 0; k < in; k++ {
			xik := xd[i*in+k]
			for j := 0; j < out; j++ {
				dWd[k*out+j] += xik * gd[i*out+j]
			}
		}
	}

	db := tensor.New[T](out)
	dbd := db.Raw()
	for i := 0; i < batch; i++ {
		for j := 0; j < out; j++ {
			dbd[j] += gd[i*out+j]
		}
	}

	dx := tensor.New[T](batch, in)
	dxd := dx.Raw()
	for i := 0; i < batch; i++ {
		for k := 0; k < in; k++ {
			var sum T
			for j := 0; j < out; j++ {
				sum += gd[i*out+j] * wd[k*out+j]
			}
			dxd[i*in+k] = sum
		}
	}

	d.weight.SetGrad(dW)
	d.bias.SetGrad(db)
	return dx, nil
}

// UpdateParams applies one optimizer step to the weight and the bias.
//
// The bias is presented to the optimizer as a [1, out_features] row so that
// every optimizer sees rank-2 parameters. A stateful optimizer that would be
// reused for both shapes is refused before either parameter changes.
func (d *Dense[T]) UpdateParams(p optim.Provider[T]) error {
	if d.weight.Grad() == nil || d.bias.Grad() == nil {
		return fmt.Errorf("dense %dx%d: %w", d.inFeatures, d.outFeatures, ErrNoGradient)
	}

	b2d, err := tensor.FromSlice(d.bias.Tensor().Raw(), 1, d.outFeatures)
	if err != nil {
		return err
	}
	db2d, err := tensor.FromSlice(d.bias.Grad().Raw(), 1, d.outFeatures)
	if err != nil {
		return err
	}

	wOpt, bOpt := p.For(d.weight), p.For(d.bias)
	if err := optim.CheckUpdates(
		[]optim.Optimizer[T]{wOpt, bOpt},
		[]*tensor.Tensor[T]{d.weight.Tensor(), b2d},
	); err != nil {
		return fmt.Errorf("dense %dx%d: %w", d.inFeatures, d.outFeatures, err)
	}

	if err := wOpt.Update(d.weight.Tensor(), d.weight.Grad()); err != nil {
		return fmt.Errorf("update weight: %w", err)
	}
	if err := bOpt.Update(b2d, db2d); err != nil {
		return fmt.Errorf("update bias: %w", err)
	}
	copy(d.bias.Tensor().Raw(), b2d.Raw())

	return nil
}

// Parameters returns [weight, bias].
func (d *Dense[T]) Parameters() []*Parameter[T] {
	return []*Parameter[T]{d.weight, d.bias}
}

// Weight returns the weight parameter.
func (d *Dense[T]) Weight() *Parameter[T] {
	return d.weight
}

// Bias returns the bias parameter.
func (d *Dense[T]) Bias() *Parameter[T] {
	return d.bias
}

// InFeatures returns the number of input features.
func (d *Dense[T]) InFeatures() int {
	return d.inFeatures
}

// OutFeatures returns the number of output features.
func (d *Dense[T]) OutFeatures() int {
	return d.outFeatures
}

// checkInput validates a [batch, features] layer input.
func checkInput[T tensor.Float](x *tensor.Tensor[T], features int, op string) error {
	if x == nil || x.Rank() != 2 {
		return fmt.Errorf("%s: %w: expected 2D input [batch, features], got %v",
			op, tensor.ErrInvalidArgument, shapeOf(x))
	}
	if features >= 0 && x.Dim(1) != features {
		return fmt.Errorf("%s: %w: expected input with %d features, got %d",
			op, tensor.ErrInvalidArgument, features, x.Dim(1))
	}
	return nil
}

// checkGrad validates an output gradient against the forward shape.
func checkGrad[T tensor.Float](grad *tensor.Tensor[T], rows, cols int, op string) error {
	if grad == nil || !grad.Shape().Equal(tensor.Shape{rows, cols}) {
		return fmt.Errorf("%s: %w: expected gradient shape [%d %d], got %v",
			op, tensor.ErrInvalidArgument, rows, cols, shapeOf(grad))
	}
	return nil
}

func shapeOf[T tensor.Float](t *tensor.Tensor[T]) tensor.Shape {
	if t == nil {
		return nil
	}
	return t.Shape()
}
