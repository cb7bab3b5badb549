// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the host tensors and gradient types the optimizers
// consume.
//
// # Overview
//
// This package contains:
//   - Tensor: a dense, row-major float64 tensor
//   - IndexedSlices: a sparse gradient touching a subset of rows
//   - Gradient: the interface both gradient forms implement
//
// # Basic Usage
//
//	import "github.com/born-ml/adamacc/tensor"
//
//	func main() {
//	    w, err := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    // Sparse gradient for row 1 only.
//	    rows, _ := tensor.FromSlice([]float64{0.5, 0.5}, tensor.Shape{1, 2})
//	    g, _ := tensor.NewIndexedSlices([]int{1}, rows, w.Shape())
//	    dense, _ := g.Dense()
//	}
//
// # Sparse Gradients
//
// IndexedSlices keep the row indices alongside the values. Duplicate indices
// are allowed and are summed when the gradient is densified or scattered
// into a tensor.
package tensor
