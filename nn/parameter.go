// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/adamacc/internal/nn"
	"github.com/born-ml/adamacc/tensor"
)

// Parameter represents a named variable updated by an optimizer.
//
// Example:
//
//	weight := nn.NewParameter("weight", weightTensor)
//	w := weight.Tensor()
//
// Methods:
//
//	Name() string
//	    Returns the parameter name (e.g., "encoder/dense/kernel:0").
//
//	Tensor() *tensor.Tensor
//	    Returns the parameter tensor. Committed plans write into it.
//
//	Trainable() bool
//	    Reports whether the parameter receives updates.
//
//	SetTrainable(trainable bool)
//	    Freezes or unfreezes the parameter.
type Parameter = nn.Parameter

// NewParameter creates a new trainable parameter.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return nn.NewParameter(name, t)
}

// Trainable filters params down to the trainable ones, preserving order.
func Trainable(params []*Parameter) []*Parameter {
	return nn.Trainable(params)
}
