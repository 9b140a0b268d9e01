package serialization

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDense_Layout(t *testing.T) {
	d := DenseWeights{
		Rows:    2,
		Cols:    3,
		Weights: []float64{1, 2, 3, 4, 5, 6},
		Bias:    []float64{0.5, -0.25, 1e-7},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteDense(&buf, d, 64))
	assert.Equal(t, "2 3\n1 2 3 4 5 6 \n0.5 -0.25 1e-07 \n", buf.String())
}

func TestWriteDense_Float32Precision(t *testing.T) {
	d := DenseWeights{Rows: 1, Cols: 1, Weights: []float64{float64(float32(0.1))}, Bias: []float64{0}}

	var buf bytes.Buffer
	require.NoError(t, WriteDense(&buf, d, 32))
	assert.Equal(t, "1 1\n0.1 \n0 \n", buf.String())
}

func TestDense_RoundTrip(t *testing.T) {
	d := DenseWeights{
		Rows:    3,
		Cols:    2,
		Weights: []float64{0.1, -0.2, 0.30000000000000004, 1e10, -1e-10, 7},
		Bias:    []float64{3.141592653589793, -2.718281828459045},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteDense(&buf, d, 64))

	got, err := ReadDense(&buf, 64)
	require.NoError(t, err)
	assert.Equal(t, d, got)
}

func TestReadDense_WhitespaceAgnostic(t *testing.T) {
	got, err := ReadDense(strings.NewReader("2 1\n0.5   -1\n\n0.25"), 64)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, -1}, got.Weights)
	assert.Equal(t, []float64{0.25}, got.Bias)
}

func TestReadDense_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing cols", "2\n"},
		{"bad dimension", "two 2\n"},
		{"negative dimension", "-1 2\n"},
		{"missing weight", "2 2\n1 2 3\n"},
		{"missing bias", "1 2\n1 2\n3\n"},
		{"unparsable weight", "1 1\nabc\n0\n"},
		{"unparsable bias", "1 1\n1\nx\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadDense(strings.NewReader(tt.input), 64)
			require.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestWriteDense_RejectsInconsistentCounts(t *testing.T) {
	d := DenseWeights{Rows: 2, Cols: 2, Weights: []float64{1, 2, 3}, Bias: []float64{0, 0}}
	require.ErrorIs(t, WriteDense(&bytes.Buffer{}, d, 64), ErrMalformed)

	d = DenseWeights{Rows: 1, Cols: 2, Weights: []float64{1, 2}, Bias: []float64{0}}
	require.ErrorIs(t, WriteDense(&bytes.Buffer{}, d, 64), ErrMalformed)
}

func TestDenseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dense1.weights")
	d := DenseWeights{Rows: 1, Cols: 2, Weights: []float64{1, 2}, Bias: []float64{3, 4}}

	require.NoError(t, WriteDenseFile(path, d, 64))
	got, err := ReadDenseFile(path, 64)
	require.NoError(t, err)
	assert.Equal(t, d, got)

	_, err = ReadDenseFile(filepath.Join(t.TempDir(), "missing.weights"), 64)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
