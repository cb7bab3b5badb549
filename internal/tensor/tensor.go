// Package tensor implements the host-memory containers the optimizers work on:
// dense tensors, sparse row slices and the Gradient interface both satisfy.
package tensor

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Common errors.
var (
	ErrInvalidShape    = errors.New("invalid shape")
	ErrSizeMismatch    = errors.New("data size does not match shape")
	ErrIndexOutOfRange = errors.New("slice index out of range")
)

// Tensor is a dense, row-major float64 tensor.
//
// Example:
//
//	w, _ := tensor.FromSlice([]float64{0.1, 0.2, 0.3, 0.4}, tensor.Shape{2, 2})
//	w.Data()[0] = 1.0
type Tensor struct {
	shape Shape
	data  []float64
}

// Zeros creates a tensor filled with zeros.
//
// Panics if the shape is invalid; use FromSlice when the shape comes from
// untrusted input.
func Zeros(shape Shape) *Tensor {
	if err := shape.Validate(); err != nil {
		panic(err)
	}
	return &Tensor{
		shape: shape.Clone(),
		data:  make([]float64, shape.NumElements()),
	}
}

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice(data []float64, shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.NumElements() != len(data) {
		return nil, errors.Wrapf(ErrSizeMismatch, "shape %v requires %d elements, got %d",
			shape, shape.NumElements(), len(data))
	}
	t := &Tensor{shape: shape.Clone(), data: make([]float64, len(data))}
	copy(t.data, data)
	return t, nil
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// Data returns the underlying storage. Writes through it mutate the tensor.
func (t *Tensor) Data() []float64 {
	return t.data
}

// Len returns the number of elements.
func (t *Tensor) Len() int {
	return len(t.data)
}

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	out := &Tensor{shape: t.shape.Clone(), data: make([]float64, len(t.data))}
	copy(out.data, t.data)
	return out
}

// Values implements Gradient.
func (t *Tensor) Values() []float64 {
	return t.data
}

// Dense implements Gradient. The receiver itself is returned, not a copy.
func (t *Tensor) Dense() (*Tensor, error) {
	return t, nil
}

// Map implements Gradient.
func (t *Tensor) Map(f func(float64) float64) Gradient {
	out := t.Clone()
	for i, x := range out.data {
		out.data[i] = f(x)
	}
	return out
}

// Scale implements Gradient.
func (t *Tensor) Scale(a float64) Gradient {
	out := t.Clone()
	floats.Scale(a, out.data)
	return out
}
