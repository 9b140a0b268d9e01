package serialization

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protowire"
)

// Snapshot message field numbers.
const (
	fieldID        protowire.Number = 1
	fieldCreatedAt protowire.Number = 2
	fieldModelType protowire.Number = 3
	fieldMetadata  protowire.Number = 4
	fieldTensor    protowire.Number = 5
	fieldVersion   protowire.Number = 6
)

// Metadata entry field numbers.
const (
	fieldKey   protowire.Number = 1
	fieldValue protowire.Number = 2
)

// TensorRecord field numbers.
const (
	fieldName  protowire.Number = 1
	fieldShape protowire.Number = 2
	fieldData  protowire.Number = 3
	fieldDType protowire.Number = 4
)

// MarshalSnapshot encodes s into the complete file layout:
// magic, wire message, checksum.
func MarshalSnapshot(s *Snapshot) ([]byte, error) {
	if err := ValidateSnapshot(s); err != nil {
		return nil, err
	}

	msg := encodeSnapshot(s)
	sum := ComputeChecksum(msg)

	out := make([]byte, 0, len(MagicBytes)+len(msg)+ChecksumSize)
	out = append(out, MagicBytes...)
	out = append(out, msg...)
	out = append(out, sum[:]...)
	return out, nil
}

// UnmarshalSnapshot decodes a complete snapshot file.
func UnmarshalSnapshot(b []byte) (*Snapshot, error) {
	if len(b) < len(MagicBytes)+ChecksumSize {
		return nil, fmt.Errorf("%w: file too short (%d bytes)", ErrMalformed, len(b))
	}
	if !bytes.Equal(b[:len(MagicBytes)], []byte(MagicBytes)) {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrInvalidMagic, b[:len(MagicBytes)], MagicBytes)
	}

	msg := b[len(MagicBytes) : len(b)-ChecksumSize]
	var stored [ChecksumSize]byte
	copy(stored[:], b[len(b)-ChecksumSize:])
	if err := ValidateChecksum(ComputeChecksum(msg), stored); err != nil {
		return nil, err
	}

	s, err := decodeSnapshot(msg)
	if err != nil {
		return nil, err
	}
	if s.Version > FormatVersion {
		return nil, fmt.Errorf("%w: unsupported format version %d", ErrMalformed, s.Version)
	}
	if err := ValidateSnapshot(s); err != nil {
		return nil, err
	}
	return s, nil
}

// WriteSnapshot writes s to w.
func WriteSnapshot(w io.Writer, s *Snapshot) error {
	b, err := MarshalSnapshot(s)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// ReadSnapshot reads a snapshot from r until EOF.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return UnmarshalSnapshot(b)
}

// WriteSnapshotFile writes s to path, replacing any existing file.
func WriteSnapshotFile(path string, s *Snapshot) error {
	b, err := MarshalSnapshot(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// ReadSnapshotFile reads the snapshot stored at path.
func ReadSnapshotFile(path string) (*Snapshot, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	s, err := UnmarshalSnapshot(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func encodeSnapshot(s *Snapshot) []byte {
	var b []byte

	b = protowire.AppendTag(b, fieldVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(FormatVersion))

	b = protowire.AppendTag(b, fieldID, protowire.BytesType)
	b = protowire.AppendBytes(b, s.ID[:])

	b = protowire.AppendTag(b, fieldCreatedAt, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(s.CreatedAt.UnixNano()))

	if s.ModelType != "" {
		b = protowire.AppendTag(b, fieldModelType, protowire.BytesType)
		b = protowire.AppendString(b, s.ModelType)
	}

	// Map order is random; sorted keys keep the output stable.
	keys := make([]string, 0, len(s.Metadata))
	for k := range s.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		var entry []byte
		entry = protowire.AppendTag(entry, fieldKey, protowire.BytesType)
		entry = protowire.AppendString(entry, k)
		entry = protowire.AppendTag(entry, fieldValue, protowire.BytesType)
		entry = protowire.AppendString(entry, s.Metadata[k])

		b = protowire.AppendTag(b, fieldMetadata, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}

	for _, rec := range s.Tensors {
		b = protowire.AppendTag(b, fieldTensor, protowire.BytesType)
		b = protowire.AppendBytes(b, encodeRecord(rec))
	}

	return b
}

func encodeRecord(rec TensorRecord) []byte {
	var b []byte

	b = protowire.AppendTag(b, fieldName, protowire.BytesType)
	b = protowire.AppendString(b, rec.Name)

	if rec.DType != "" {
		b = protowire.AppendTag(b, fieldDType, protowire.BytesType)
		b = protowire.AppendString(b, rec.DType)
	}

	var shape []byte
	for _, d := range rec.Shape {
		shape = protowire.AppendVarint(shape, uint64(d))
	}
	b = protowire.AppendTag(b, fieldShape, protowire.BytesType)
	b = protowire.AppendBytes(b, shape)

	data := make([]byte, 0, 8*len(rec.Data))
	for _, v := range rec.Data {
		data = protowire.AppendFixed64(data, math.Float64bits(v))
	}
	b = protowire.AppendTag(b, fieldData, protowire.BytesType)
	b = protowire.AppendBytes(b, data)

	return b
}

// wireError converts a negative protowire length into an error.
func wireError(n int) error {
	return fmt.Errorf("%w: %w", ErrMalformed, protowire.ParseError(n))
}

// consumeFields walks every field of a message, calling fn for each one.
// fn returns the number of bytes it consumed, a negative protowire code,
// or skipField for fields it does not recognize.
func consumeFields(b []byte, fn func(num protowire.Number, typ protowire.Type, b []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return wireError(n)
		}
		b = b[n:]

		m, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		if m == skipField {
			m = protowire.ConsumeFieldValue(num, typ, b)
		}
		if m < 0 {
			return wireError(m)
		}
		b = b[m:]
	}
	return nil
}

// skipField tells consumeFields to skip an unrecognized field.
const skipField = -1 << 30

func decodeSnapshot(b []byte) (*Snapshot, error) {
	s := &Snapshot{Metadata: make(map[string]string)}

	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == fieldVersion && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			s.Version = int(v)
			return n, nil

		case num == fieldID && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			id, err := uuid.FromBytes(v)
			if err != nil {
				return 0, fmt.Errorf("%w: snapshot id: %w", ErrMalformed, err)
			}
			s.ID = id
			return n, nil

		case num == fieldCreatedAt && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			s.CreatedAt = time.Unix(0, protowire.DecodeZigZag(v)).UTC()
			return n, nil

		case num == fieldModelType && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			s.ModelType = v
			return n, nil

		case num == fieldMetadata && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			k, val, err := decodeMetadataEntry(v)
			if err != nil {
				return 0, err
			}
			s.Metadata[k] = val
			return n, nil

		case num == fieldTensor && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			if len(s.Tensors) >= MaxTensorCount {
				return 0, &ValidationError{
					Type:    "too_many_tensors",
					Details: fmt.Sprintf("more than %d", MaxTensorCount),
				}
			}
			rec, err := decodeRecord(v)
			if err != nil {
				return 0, err
			}
			s.Tensors = append(s.Tensors, rec)
			return n, nil
		}
		return skipField, nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func decodeMetadataEntry(b []byte) (string, string, error) {
	var key, value string
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if typ != protowire.BytesType {
			return skipField, nil
		}
		switch num {
		case fieldKey:
			v, n := protowire.ConsumeString(b)
			key = v
			return n, nil
		case fieldValue:
			v, n := protowire.ConsumeString(b)
			value = v
			return n, nil
		}
		return skipField, nil
	})
	return key, value, err
}

func decodeRecord(b []byte) (TensorRecord, error) {
	var rec TensorRecord
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if typ != protowire.BytesType {
			return skipField, nil
		}
		switch num {
		case fieldName:
			v, n := protowire.ConsumeString(b)
			rec.Name = v
			return n, nil

		case fieldDType:
			v, n := protowire.ConsumeString(b)
			rec.DType = v
			return n, nil

		case fieldShape:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			for len(v) > 0 {
				d, m := protowire.ConsumeVarint(v)
				if m < 0 {
					return m, nil
				}
				if d > math.MaxInt32 {
					return 0, fmt.Errorf("%w: extent %d too large", ErrMalformed, d)
				}
				rec.Shape = append(rec.Shape, int(d))
				v = v[m:]
			}
			return n, nil

		case fieldData:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			if len(v)%8 != 0 {
				return 0, fmt.Errorf("%w: tensor data is %d bytes, not a multiple of 8", ErrMalformed, len(v))
			}
			rec.Data = make([]float64, 0, len(v)/8)
			for len(v) > 0 {
				bits, m := protowire.ConsumeFixed64(v)
				if m < 0 {
					return m, nil
				}
				rec.Data = append(rec.Data, math.Float64frombits(bits))
				v = v[m:]
			}
			return n, nil
		}
		return skipField, nil
	})
	return rec, err
}
