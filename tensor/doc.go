// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides dense, row-major tensors of float32 or float64.
//
// # Overview
//
// A Tensor has a rank fixed at construction and one flat buffer whose
// length always equals the product of its extents. Element access is
// bounds-checked and returns ErrOutOfRange on violation; shape-changing
// operations return ErrInvalidArgument when they would break that
// invariant. Tensors never share memory: Clone, Slice and every arithmetic
// method allocate.
//
// # Basic Usage
//
//	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, 2, 3)
//	if err != nil {
//	    return err
//	}
//	v, _ := x.At(1, 2)          // 6
//	half := x.DivScalar(2)      // {0.5 1 1.5 ...}
//	rows, _ := x.Slice(0, 1)    // first row, shape [1 3]
//	fmt.Println(rows)           // {
//	                            // 1 2 3
//	                            // }
package tensor
