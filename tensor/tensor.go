// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/adamacc/internal/tensor"
)

// Shape represents tensor dimensions.
//
// Example:
//
//	shape := tensor.Shape{2, 3}
//	shape.NumElements() // 6
type Shape = tensor.Shape

// Tensor is a dense, row-major float64 tensor.
type Tensor = tensor.Tensor

// IndexedSlices is a sparse gradient made of whole rows of a dense tensor.
type IndexedSlices = tensor.IndexedSlices

// Gradient is implemented by both Tensor and IndexedSlices.
type Gradient = tensor.Gradient

// Errors returned by tensor constructors.
var (
	ErrInvalidShape    = tensor.ErrInvalidShape
	ErrSizeMismatch    = tensor.ErrSizeMismatch
	ErrIndexOutOfRange = tensor.ErrIndexOutOfRange
)

// Zeros creates a zero-filled tensor. It panics on an invalid shape.
func Zeros(shape Shape) *Tensor {
	return tensor.Zeros(shape)
}

// FromSlice creates a tensor holding a copy of data.
//
// Example:
//
//	x, err := tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
func FromSlice(data []float64, shape Shape) (*Tensor, error) {
	return tensor.FromSlice(data, shape)
}

// NewIndexedSlices creates a sparse gradient for the given rows of a tensor
// with denseShape.
func NewIndexedSlices(indices []int, values *Tensor, denseShape Shape) (*IndexedSlices, error) {
	return tensor.NewIndexedSlices(indices, values, denseShape)
}

// IsNil reports whether g is nil or a typed nil pointer.
func IsNil(g Gradient) bool {
	return tensor.IsNil(g)
}
