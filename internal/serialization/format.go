package serialization

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Format constants.
const (
	MagicBytes    = "TNNS"
	FormatVersion = 1
)

// Data type string constants for serialization.
const (
	DTypeFloat32 = "float32"
	DTypeFloat64 = "float64"
)

// Snapshot is the decoded content of a snapshot file.
type Snapshot struct {
	ID        uuid.UUID         // Unique id assigned when the snapshot is taken
	Version   int               // Format version that wrote the file
	CreatedAt time.Time         // When the snapshot was taken
	ModelType string            // Type of model (e.g., "Network")
	Metadata  map[string]string // Custom metadata
	Tensors   []TensorRecord    // Named parameter tensors
}

// TensorRecord is one named tensor inside a snapshot.
//
// Data is always stored as float64; DType records the precision of the
// tensor it was taken from.
type TensorRecord struct {
	Name  string    // Tensor name (e.g., "0.weight")
	DType string    // Data type of the source tensor
	Shape []int     // Tensor shape
	Data  []float64 // Row-major values
}

// NewSnapshot creates a snapshot with a fresh id and timestamp.
func NewSnapshot(modelType string, tensors []TensorRecord) *Snapshot {
	return &Snapshot{
		ID:        uuid.New(),
		Version:   FormatVersion,
		CreatedAt: time.Now().UTC(),
		ModelType: modelType,
		Metadata:  make(map[string]string),
		Tensors:   tensors,
	}
}

// Tensor returns the record stored under name.
func (s *Snapshot) Tensor(name string) (TensorRecord, bool) {
	for _, rec := range s.Tensors {
		if rec.Name == name {
			return rec, true
		}
	}
	return TensorRecord{}, false
}

// TensorNames returns the stored tensor names in sorted order.
func (s *Snapshot) TensorNames() []string {
	names := make([]string, 0, len(s.Tensors))
	for _, rec := range s.Tensors {
		names = append(names, rec.Name)
	}
	sort.Strings(names)
	return names
}
