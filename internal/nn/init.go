package nn

import (
	"math"
	"math/rand"

	"github.com/born-ml/tinynn/internal/tensor"
)

// DefaultSeed seeds the random source of layers built without WithRand.
const DefaultSeed = 42

// Initializer fills a freshly allocated parameter tensor.
//
// rng is the layer's random source; deterministic initializers ignore it.
type Initializer[T tensor.Float] func(t *tensor.Tensor[T], rng *rand.Rand)

// Xavier (Glorot) initialization for weights.
//
// Initializes weights with values drawn from a uniform distribution:
// U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out)))
//
// fan_in and fan_out are taken from the rows and columns of the tensor.
func Xavier[T tensor.Float]() Initializer[T] {
	return func(t *tensor.Tensor[T], rng *rand.Rand) {
		fanIn, fanOut := fans(t.Shape())
		bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
		Uniform[T](-bound, bound)(t, rng)
	}
}

// Uniform draws every value from U(lo, hi).
func Uniform[T tensor.Float](lo, hi float64) Initializer[T] {
	return func(t *tensor.Tensor[T], rng *rand.Rand) {
		data := t.Raw()
		for i := range data {
			data[i] = T(lo + rng.Float64()*(hi-lo))
		}
	}
}

// Constant sets every value to v.
func Constant[T tensor.Float](v T) Initializer[T] {
	return func(t *tensor.Tensor[T], _ *rand.Rand) {
		t.Fill(v)
	}
}

// Zeros sets every value to zero.
//
// This is commonly used for bias initialization.
func Zeros[T tensor.Float]() Initializer[T] {
	return Constant[T](0)
}

// fans returns the fan-in and fan-out of a parameter shape.
// Vectors are treated as a single row.
func fans(shape tensor.Shape) (int, int) {
	switch len(shape) {
	case 1:
		return 1, shape[0]
	default:
		return shape[0], shape[1]
	}
}
