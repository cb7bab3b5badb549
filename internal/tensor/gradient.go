package tensor

// Gradient is a gradient with respect to one parameter, either dense
// (*Tensor) or sparse (*IndexedSlices).
type Gradient interface {
	// Shape returns the dense shape, i.e. the shape of the parameter.
	Shape() Shape

	// Values returns the stored values. For sparse gradients this is only
	// the rows that are present.
	Values() []float64

	// Dense returns the gradient as a dense tensor.
	Dense() (*Tensor, error)

	// Map returns a new gradient of the same kind with f applied to every
	// stored value.
	Map(f func(float64) float64) Gradient

	// Scale returns a new gradient of the same kind multiplied by a.
	Scale(a float64) Gradient
}

// IsNil reports whether g is nil, including a typed nil pointer stored in
// the interface.
func IsNil(g Gradient) bool {
	switch v := g.(type) {
	case nil:
		return true
	case *Tensor:
		return v == nil
	case *IndexedSlices:
		return v == nil
	default:
		return false
	}
}
