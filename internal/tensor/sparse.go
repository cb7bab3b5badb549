package tensor

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// IndexedSlices is a sparse gradient holding only some rows (slices along
// the first dimension) of a dense tensor. It is what an embedding lookup
// produces: Values[i] is the gradient for row Indices[i]. Indices may repeat,
// in which case the rows add up.
type IndexedSlices struct {
	indices    []int
	values     *Tensor
	denseShape Shape
}

// NewIndexedSlices validates and builds a sparse gradient. values must have
// shape [len(indices), denseShape[1:]...].
func NewIndexedSlices(indices []int, values *Tensor, denseShape Shape) (*IndexedSlices, error) {
	if err := denseShape.Validate(); err != nil {
		return nil, err
	}
	if len(denseShape) == 0 {
		return nil, errors.Wrap(ErrInvalidShape, "indexed slices need at least one dimension")
	}
	want := append(Shape{len(indices)}, denseShape[1:]...)
	if !values.Shape().Equal(want) {
		return nil, errors.Wrapf(ErrSizeMismatch, "values shape %v, want %v", values.Shape(), want)
	}
	for _, idx := range indices {
		if idx < 0 || idx >= denseShape[0] {
			return nil, errors.Wrapf(ErrIndexOutOfRange, "index %d for dense shape %v", idx, denseShape)
		}
	}
	idx := make([]int, len(indices))
	copy(idx, indices)
	return &IndexedSlices{indices: idx, values: values.Clone(), denseShape: denseShape.Clone()}, nil
}

// Indices returns the row indices.
func (s *IndexedSlices) Indices() []int {
	return s.indices
}

// Rows returns the values tensor.
func (s *IndexedSlices) Rows() *Tensor {
	return s.values
}

// Shape implements Gradient and returns the dense shape.
func (s *IndexedSlices) Shape() Shape {
	return s.denseShape
}

// Values implements Gradient.
func (s *IndexedSlices) Values() []float64 {
	return s.values.data
}

// Dense implements Gradient. Duplicate indices are summed.
func (s *IndexedSlices) Dense() (*Tensor, error) {
	out := Zeros(s.denseShape)
	if err := s.ScatterAdd(out, 1); err != nil {
		return nil, err
	}
	return out, nil
}

// ScatterAdd adds alpha times every present row into dst.
func (s *IndexedSlices) ScatterAdd(dst *Tensor, alpha float64) error {
	if !dst.shape.Equal(s.denseShape) {
		return errors.Wrapf(ErrSizeMismatch, "scatter into %v from dense shape %v", dst.shape, s.denseShape)
	}
	row := s.denseShape.RowSize()
	for i, idx := range s.indices {
		if idx < 0 || idx >= s.denseShape[0] {
			return errors.Wrapf(ErrIndexOutOfRange, "index %d for dense shape %v", idx, s.denseShape)
		}
		floats.AddScaled(dst.data[idx*row:(idx+1)*row], alpha, s.values.data[i*row:(i+1)*row])
	}
	return nil
}

// Map implements Gradient. Indices are preserved.
func (s *IndexedSlices) Map(f func(float64) float64) Gradient {
	return &IndexedSlices{
		indices:    s.indices,
		values:     s.values.Map(f).(*Tensor),
		denseShape: s.denseShape,
	}
}

// Scale implements Gradient. Indices are preserved.
func (s *IndexedSlices) Scale(a float64) Gradient {
	return &IndexedSlices{
		indices:    s.indices,
		values:     s.values.Scale(a).(*Tensor),
		denseShape: s.denseShape,
	}
}
