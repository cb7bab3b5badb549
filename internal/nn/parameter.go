// Package nn holds the model-side view the optimizers operate on: named
// parameters.
package nn

import (
	"github.com/born-ml/adamacc/internal/tensor"
)

// Parameter represents a named variable owned by a model or an optimizer.
//
// Model weights are trainable; optimizer slot variables (moments,
// accumulators) are created non-trainable so they are never handed back to
// the optimizer as something to train.
//
// The name is the variable's identity string and may carry a trailing
// device/slot suffix such as ":0".
//
// Example:
//
//	w, _ := tensor.FromSlice([]float64{0.5, -0.5}, tensor.Shape{2})
//	kernel := nn.NewParameter("dense/kernel:0", w)
type Parameter struct {
	name      string         // Parameter name (e.g., "encoder/dense/kernel:0")
	tensor    *tensor.Tensor // The parameter value, mutated in place by committed plans
	trainable bool
}

// NewParameter creates a new trainable parameter.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return &Parameter{
		name:      name,
		tensor:    t,
		trainable: true,
	}
}

// NewSlot creates a zero-initialized, non-trainable parameter.
func NewSlot(name string, shape tensor.Shape) *Parameter {
	return &Parameter{
		name:      name,
		tensor:    tensor.Zeros(shape),
		trainable: false,
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *tensor.Tensor {
	return p.tensor
}

// Shape returns the shape of the parameter tensor.
func (p *Parameter) Shape() tensor.Shape {
	return p.tensor.Shape()
}

// Trainable reports whether the parameter should receive gradient updates.
func (p *Parameter) Trainable() bool {
	return p.trainable
}

// SetTrainable marks the parameter as trainable or frozen.
func (p *Parameter) SetTrainable(trainable bool) {
	p.trainable = trainable
}

// Trainable filters params down to the trainable ones, preserving order.
func Trainable(params []*Parameter) []*Parameter {
	out := make([]*Parameter, 0, len(params))
	for _, p := range params {
		if p != nil && p.trainable {
			out = append(out, p)
		}
	}
	return out
}
