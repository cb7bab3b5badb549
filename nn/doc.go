// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the named parameters models expose to optimizers.
//
// # Overview
//
// A Parameter couples a name with a tensor. Model weights are trainable.
// Optimizer slot variables are created frozen and never receive updates of
// their own.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/adamacc/nn"
//	    "github.com/born-ml/adamacc/tensor"
//	)
//
//	func main() {
//	    w, _ := tensor.FromSlice([]float64{0.1, -0.2}, tensor.Shape{2})
//	    kernel := nn.NewParameter("dense/kernel:0", w)
//
//	    embeddings := nn.NewParameter("embeddings:0", tensor.Zeros(tensor.Shape{100, 16}))
//	    embeddings.SetTrainable(false)
//
//	    params := nn.Trainable([]*nn.Parameter{kernel, embeddings}) // kernel only
//	}
//
// # Naming
//
// Names may carry an output suffix such as ":0". Optimizers strip it when
// deriving slot names, so "dense/kernel:0" owns "dense/kernel/adam_m".
package nn
