package serialization

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
)

// DenseWeights holds the parameters of one Dense layer as stored on disk.
type DenseWeights struct {
	Rows    int       // Input features
	Cols    int       // Output features
	Weights []float64 // Row-major, Rows*Cols values
	Bias    []float64 // Cols values
}

// Validate checks that the value counts agree with the declared dims.
func (d DenseWeights) Validate() error {
	if d.Rows < 0 || d.Cols < 0 {
		return fmt.Errorf("%w: negative dims %dx%d", ErrMalformed, d.Rows, d.Cols)
	}
	if len(d.Weights) != d.Rows*d.Cols {
		return fmt.Errorf("%w: %dx%d weights need %d values, got %d",
			ErrMalformed, d.Rows, d.Cols, d.Rows*d.Cols, len(d.Weights))
	}
	if len(d.Bias) != d.Cols {
		return fmt.Errorf("%w: bias needs %d values, got %d", ErrMalformed, d.Cols, len(d.Bias))
	}
	return nil
}

// WriteDense writes d in the dense weight text format.
//
// bitSize is 32 or 64 and selects the shortest representation that
// round-trips at that precision.
func WriteDense(w io.Writer, d DenseWeights, bitSize int) error {
	if err := d.Validate(); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d %d\n", d.Rows, d.Cols)
	writeValues(bw, d.Weights, bitSize)
	writeValues(bw, d.Bias, bitSize)
	return bw.Flush()
}

func writeValues(bw *bufio.Writer, values []float64, bitSize int) {
	buf := make([]byte, 0, 32)
	for _, v := range values {
		buf = strconv.AppendFloat(buf[:0], v, 'g', -1, bitSize)
		bw.Write(buf)
		bw.WriteByte(' ')
	}
	bw.WriteByte('\n')
}

// ReadDense reads one layer in the dense weight text format.
//
// Reading stops at the first missing or unparsable value.
func ReadDense(r io.Reader, bitSize int) (DenseWeights, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)

	next := func(what string, i int) (string, error) {
		if sc.Scan() {
			return sc.Text(), nil
		}
		if err := sc.Err(); err != nil {
			return "", fmt.Errorf("read %s %d: %w", what, i, err)
		}
		return "", fmt.Errorf("%w: missing %s %d", ErrMalformed, what, i)
	}

	var dims [2]int
	for i := range dims {
		tok, err := next("dimension", i)
		if err != nil {
			return DenseWeights{}, err
		}
		n, err := strconv.Atoi(tok)
		if err != nil || n < 0 {
			return DenseWeights{}, fmt.Errorf("%w: bad dimension %q", ErrMalformed, tok)
		}
		dims[i] = n
	}

	d := DenseWeights{Rows: dims[0], Cols: dims[1]}

	readN := func(what string, n int) ([]float64, error) {
		values := make([]float64, 0, min(n, 1<<16))
		for i := 0; i < n; i++ {
			tok, err := next(what, i)
			if err != nil {
				return nil, err
			}
			v, err := strconv.ParseFloat(tok, bitSize)
			if err != nil {
				return nil, fmt.Errorf("%w: %s %d: %w", ErrMalformed, what, i, err)
			}
			values = append(values, v)
		}
		return values, nil
	}

	var err error
	if d.Weights, err = readN("weight", d.Rows*d.Cols); err != nil {
		return DenseWeights{}, err
	}
	if d.Bias, err = readN("bias", d.Cols); err != nil {
		return DenseWeights{}, err
	}
	return d, nil
}

// WriteDenseFile writes d to path, replacing any existing file.
func WriteDenseFile(path string, d DenseWeights, bitSize int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create weight file: %w", err)
	}

	if err := WriteDense(f, d, bitSize); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write weight file %s: %w", path, err)
	}
	return f.Close()
}

// ReadDenseFile reads one layer from path.
func ReadDenseFile(path string, bitSize int) (DenseWeights, error) {
	f, err := os.Open(path)
	if err != nil {
		return DenseWeights{}, fmt.Errorf("failed to open weight file: %w", err)
	}
	defer f.Close()

	d, err := ReadDense(f, bitSize)
	if err != nil {
		return DenseWeights{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}
