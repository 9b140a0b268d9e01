package nn

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/born-ml/tinynn/internal/serialization"
	"github.com/born-ml/tinynn/internal/tensor"
)

// StateDict maps parameter names to parameter values.
type StateDict[T tensor.Float] map[string]*tensor.Tensor[T]

// Stateful is implemented by layers whose parameters can be saved.
type Stateful[T tensor.Float] interface {
	StateDict() StateDict[T]
	LoadStateDict(sd StateDict[T]) error
}

// stateChecker validates a state dict without modifying the layer.
type stateChecker[T tensor.Float] interface {
	checkStateDict(sd StateDict[T]) error
}

func bitSize[T tensor.Float]() int {
	return tensor.DTypeOf[T]().Size() * 8
}

// StateDict returns copies of the weight and bias.
func (d *Dense[T]) StateDict() StateDict[T] {
	return StateDict[T]{
		"weight": d.weight.Tensor().Clone(),
		"bias":   d.bias.Tensor().Clone(),
	}
}

// LoadStateDict copies weight and bias values from sd.
func (d *Dense[T]) LoadStateDict(sd StateDict[T]) error {
	if err := d.checkStateDict(sd); err != nil {
		return err
	}
	copy(d.weight.Tensor().Raw(), sd["weight"].Raw())
	copy(d.bias.Tensor().Raw(), sd["bias"].Raw())
	return nil
}

func (d *Dense[T]) checkStateDict(sd StateDict[T]) error {
	w, ok := sd["weight"]
	if !ok {
		return fmt.Errorf("missing weight in state dict")
	}
	b, ok := sd["bias"]
	if !ok {
		return fmt.Errorf("missing bias in state dict")
	}

	if want := (tensor.Shape{d.inFeatures, d.outFeatures}); !w.Shape().Equal(want) {
		return fmt.Errorf("%w: weight expected %v, got %v", serialization.ErrShapeMismatch, want, w.Shape())
	}
	if want := (tensor.Shape{d.outFeatures}); !b.Shape().Equal(want) {
		return fmt.Errorf("%w: bias expected %v, got %v", serialization.ErrShapeMismatch, want, b.Shape())
	}
	return nil
}

// SaveWeights writes the layer to path in the dense weight text format.
func (d *Dense[T]) SaveWeights(path string) error {
	return serialization.WriteDenseFile(path, serialization.DenseWeights{
		Rows:    d.inFeatures,
		Cols:    d.outFeatures,
		Weights: toFloat64(d.weight.Tensor().Raw()),
		Bias:    toFloat64(d.bias.Tensor().Raw()),
	}, bitSize[T]())
}

// LoadWeights reads the layer from a dense weight text file.
//
// The stored dimensions must match the layer, otherwise the error wraps
// serialization.ErrShapeMismatch and the layer is left unchanged.
func (d *Dense[T]) LoadWeights(path string) error {
	dw, err := serialization.ReadDenseFile(path, bitSize[T]())
	if err != nil {
		return err
	}
	if dw.Rows != d.inFeatures || dw.Cols != d.outFeatures {
		return fmt.Errorf("%s: %w: file holds %dx%d, layer is %dx%d", path,
			serialization.ErrShapeMismatch, dw.Rows, dw.Cols, d.inFeatures, d.outFeatures)
	}

	copy(d.weight.Tensor().Raw(), fromFloat64[T](dw.Weights))
	copy(d.bias.Tensor().Raw(), fromFloat64[T](dw.Bias))
	return nil
}

// StateDict returns copies of every saved parameter.
//
// Parameters are prefixed with their layer index (e.g., "0.weight", "0.bias",
// "2.weight") to avoid name collisions.
func (n *Network[T]) StateDict() StateDict[T] {
	n.mu.RLock()
	defer n.mu.RUnlock()

	sd := make(StateDict[T])
	for i, layer := range n.layers {
		s, ok := layer.(Stateful[T])
		if !ok {
			continue
		}
		for name, t := range s.StateDict() {
			sd[fmt.Sprintf("%d.%s", i, name)] = t
		}
	}
	return sd
}

// LoadStateDict loads parameters from a state dictionary.
//
// Keys are prefixed with their layer index, as produced by StateDict. Every
// layer is checked before any is written; on error the network keeps its
// previous parameters.
func (n *Network[T]) LoadStateDict(sd StateDict[T]) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	subs := make(map[int]StateDict[T])
	for i, layer := range n.layers {
		if _, ok := layer.(Stateful[T]); !ok {
			continue
		}
		layerSD := layerStateDict(sd, i)
		if c, ok := layer.(stateChecker[T]); ok {
			if err := c.checkStateDict(layerSD); err != nil {
				return fmt.Errorf("failed to load layer %d: %w", i, err)
			}
		}
		subs[i] = layerSD
	}

	backups := make(map[int]StateDict[T], len(subs))
	for i, layer := range n.layers {
		layerSD, ok := subs[i]
		if !ok {
			continue
		}
		s := layer.(Stateful[T])
		backups[i] = s.StateDict()
		if err := s.LoadStateDict(layerSD); err != nil {
			for j, prev := range backups {
				if j != i {
					_ = n.layers[j].(Stateful[T]).LoadStateDict(prev)
				}
			}
			return fmt.Errorf("failed to load layer %d: %w", i, err)
		}
	}
	return nil
}

func layerStateDict[T tensor.Float](sd StateDict[T], i int) StateDict[T] {
	prefix := strconv.Itoa(i) + "."
	layerSD := make(StateDict[T])
	for key, t := range sd {
		if name, found := strings.CutPrefix(key, prefix); found {
			layerSD[name] = t
		}
	}
	return layerSD
}

// Snapshot captures the network parameters as a serialization snapshot.
func (n *Network[T]) Snapshot() *serialization.Snapshot {
	sd := n.StateDict()

	names := make([]string, 0, len(sd))
	for name := range sd {
		names = append(names, name)
	}
	sort.Strings(names)

	dtype := tensor.DTypeOf[T]().String()
	records := make([]serialization.TensorRecord, 0, len(names))
	for _, name := range names {
		t := sd[name]
		records = append(records, serialization.TensorRecord{
			Name:  name,
			DType: dtype,
			Shape: t.Shape(),
			Data:  toFloat64(t.Raw()),
		})
	}

	snap := serialization.NewSnapshot("Network", records)
	snap.Metadata["layers"] = strconv.Itoa(n.Len())
	return snap
}

// Restore loads the parameters stored in s.
func (n *Network[T]) Restore(s *serialization.Snapshot) error {
	if err := serialization.ValidateSnapshot(s); err != nil {
		return err
	}

	sd := make(StateDict[T], len(s.Tensors))
	for _, rec := range s.Tensors {
		t, err := tensor.FromSlice(fromFloat64[T](rec.Data), rec.Shape...)
		if err != nil {
			return fmt.Errorf("tensor %q: %w", rec.Name, err)
		}
		sd[rec.Name] = t
	}
	return n.LoadStateDict(sd)
}

// SaveSnapshot writes the network parameters to a snapshot file.
func (n *Network[T]) SaveSnapshot(path string) error {
	return serialization.WriteSnapshotFile(path, n.Snapshot())
}

// LoadSnapshot restores the network parameters from a snapshot file.
func (n *Network[T]) LoadSnapshot(path string) error {
	s, err := serialization.ReadSnapshotFile(path)
	if err != nil {
		return err
	}
	return n.Restore(s)
}

func toFloat64[T tensor.Float](src []T) []float64 {
	if d, ok := any(src).([]float64); ok {
		return append([]float64(nil), d...)
	}
	out := make([]float64, len(src))
	for i, v := range src {
		out[i] = float64(v)
	}
	return out
}

func fromFloat64[T tensor.Float](src []float64) []T {
	out := make([]T, len(src))
	for i, v := range src {
		out[i] = T(v)
	}
	return out
}
