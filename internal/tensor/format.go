package tensor

import (
	"fmt"
	"strconv"
	"strings"
)

// String renders rank-1 tensors as "{a b c}" and rank-2 tensors as one row
// per line between braces. Higher ranks render as "Tensor<Rank=N>".
func (t *Tensor[T]) String() string {
	var sb strings.Builder

	switch len(t.shape) {
	case 1:
		sb.WriteString("{")
		writeRow(&sb, t.data)
		sb.WriteString("}")
	case 2:
		rows, cols := t.shape[0], t.shape[1]
		sb.WriteString("{\n")
		for i := 0; i < rows; i++ {
			writeRow(&sb, t.data[i*cols:(i+1)*cols])
			if i < rows-1 {
				sb.WriteString("\n")
			}
		}
		sb.WriteString("\n}")
	default:
		fmt.Fprintf(&sb, "Tensor<Rank=%d>", len(t.shape))
	}

	return sb.String()
}

func writeRow[T Float](sb *strings.Builder, row []T) {
	bits := DTypeOf[T]().Size() * 8
	for j, v := range row {
		if j > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.FormatFloat(float64(v), 'g', -1, bits))
	}
}
