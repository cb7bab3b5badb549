// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/born-ml/adamacc/nn"
	"github.com/born-ml/adamacc/tensor"
)

func TestTrainable(t *testing.T) {
	w := nn.NewParameter("w:0", tensor.Zeros(tensor.Shape{2}))
	b := nn.NewParameter("b:0", tensor.Zeros(tensor.Shape{1}))
	b.SetTrainable(false)

	assert.True(t, w.Trainable())
	assert.Equal(t, tensor.Shape{2}, w.Shape())
	assert.Equal(t, []*nn.Parameter{w}, nn.Trainable([]*nn.Parameter{w, nil, b}))
}
