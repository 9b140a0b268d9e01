package nn

import (
	"fmt"
	"sync"

	"github.com/born-ml/tinynn/internal/optim"
	"github.com/born-ml/tinynn/internal/tensor"
)

// Network is an ordered container of layers.
//
// Each layer's output becomes the next layer's input; Backward runs the
// layers in reverse order.
//
// Network is safe for concurrent use. Forward and Predict may run in
// parallel with each other; Backward, UpdateParams, TrainStep and
// LoadStateDict wait for them and run alone.
//
// Example:
//
//	net := nn.NewNetwork[float32](
//	    nn.NewDense[float32](3, 16),
//	    nn.NewReLU[float32](),
//	    nn.NewDense[float32](16, 3),
//	)
//	out, err := net.Predict(input)
type Network[T tensor.Float] struct {
	mu     sync.RWMutex
	layers []Layer[T]
}

// Trace holds the per-layer caches of one forward pass, in layer order.
type Trace[T tensor.Float] struct {
	caches []Cache[T]
}

// Len returns the number of cached layers.
func (t Trace[T]) Len() int {
	return len(t.caches)
}

// NewNetwork creates a network owning the given layers.
func NewNetwork[T tensor.Float](layers ...Layer[T]) *Network[T] {
	return &Network[T]{
		layers: layers,
	}
}

// Add appends a layer to the sequence.
func (n *Network[T]) Add(layer Layer[T]) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.layers = append(n.layers, layer)
}

// Len returns the number of layers.
func (n *Network[T]) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.layers)
}

// Layer returns the layer at the given index.
//
// Calling methods on the returned layer bypasses the network's lock.
// Panics if index is out of bounds.
func (n *Network[T]) Layer(index int) Layer[T] {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if index < 0 || index >= len(n.layers) {
		panic("Network.Layer: index out of bounds")
	}
	return n.layers[index]
}

// Parameters returns all trainable parameters, in layer order.
func (n *Network[T]) Parameters() []*Parameter[T] {
	n.mu.RLock()
	defer n.mu.RUnlock()

	var params []*Parameter[T]
	for _, layer := range n.layers {
		params = append(params, layer.Parameters()...)
	}
	return params
}

// Forward applies all layers in sequence.
//
// The returned Trace must be passed to Backward for this pass.
func (n *Network[T]) Forward(x *tensor.Tensor[T]) (*tensor.Tensor[T], Trace[T], error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.forward(x)
}

func (n *Network[T]) forward(x *tensor.Tensor[T]) (*tensor.Tensor[T], Trace[T], error) {
	trace := Trace[T]{caches: make([]Cache[T], len(n.layers))}
	out := x
	for i, layer := range n.layers {
		var err error
		out, trace.caches[i], err = layer.Forward(out)
		if err != nil {
			return nil, Trace[T]{}, fmt.Errorf("layer %d: %w", i, err)
		}
	}
	return out, trace, nil
}

// Predict runs a forward pass without keeping the caches.
func (n *Network[T]) Predict(x *tensor.Tensor[T]) (*tensor.Tensor[T], error) {
	out, _, err := n.Forward(x)
	return out, err
}

// Backward propagates grad through the layers in reverse order and returns
// the gradient with respect to the network input.
func (n *Network[T]) Backward(trace Trace[T], grad *tensor.Tensor[T]) (*tensor.Tensor[T], error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.backward(trace, grad)
}

func (n *Network[T]) backward(trace Trace[T], grad *tensor.Tensor[T]) (*tensor.Tensor[T], error) {
	if len(trace.caches) != len(n.layers) {
		return nil, fmt.Errorf("%w: trace has %d caches for %d layers",
			ErrNoCache, len(trace.caches), len(n.layers))
	}

	current := grad
	for i := len(n.layers) - 1; i >= 0; i-- {
		var err error
		current, err = n.layers[i].Backward(trace.caches[i], current)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
	}
	return current, nil
}

// UpdateParams applies the optimizer to every layer in forward order.
func (n *Network[T]) UpdateParams(p optim.Provider[T]) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.updateParams(p)
}

func (n *Network[T]) updateParams(p optim.Provider[T]) error {
	for i, layer := range n.layers {
		if err := layer.UpdateParams(p); err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
	}
	return nil
}

// TrainStep runs forward, loss, backward and update for one batch as a
// single exclusive operation and returns the batch loss.
func (n *Network[T]) TrainStep(x, y *tensor.Tensor[T], lossFn LossFunc[T], p optim.Provider[T]) (T, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	pred, trace, err := n.forward(x)
	if err != nil {
		return 0, err
	}

	loss, err := lossFn(pred, y)
	if err != nil {
		return 0, err
	}

	if _, err := n.backward(trace, loss.Gradient()); err != nil {
		return 0, err
	}

	if err := n.updateParams(p); err != nil {
		return 0, err
	}

	return loss.Value(), nil
}
