// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the AdamW optimizer and the training-step machinery
// around it.
//
// # Overview
//
// This package contains:
//   - AdamW: Adam with decoupled weight decay and no bias correction
//   - Accumulation: averages gradients over several calls
//   - CrossReplica: averages gradients across data-parallel replicas
//   - Schedules: linear warmup over polynomial decay
//   - Trainer: wires schedule, clipping and optimizers into one step
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/adamacc/nn"
//	    "github.com/born-ml/adamacc/optim"
//	)
//
//	func main() {
//	    cfg := optim.DefaultTrainConfig()
//	    cfg.InitLR = 1e-4
//	    cfg.NumTrainSteps = 100000
//	    cfg.NumWarmupSteps = 10000
//	    cfg.GradientAccumulationSteps = 4
//
//	    trainer, err := optim.NewTrainer(cfg)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    for _, batch := range batches {
//	        err := trainer.Step(ctx, model.Parameters(), optim.BackwardFunc(
//	            func(ctx context.Context, params []*nn.Parameter) ([]tensor.Gradient, error) {
//	                return model.Gradients(ctx, batch, params)
//	            }))
//	        if err != nil {
//	            log.Fatal(err)
//	        }
//	    }
//	}
//
// # Plans
//
// Optimizers never write state directly. Apply returns a Plan holding every
// write in order, and Commit applies it all or nothing. A plan must be
// committed before the next Apply on the same optimizer.
//
//	p, err := opt.Apply(ctx, optim.Zip(grads, params), step)
//	if err != nil {
//	    return err
//	}
//	if err := p.Commit(); err != nil {
//	    return err
//	}
//
// # Slot Variables
//
// Per-variable state is created lazily on first use and named after the
// variable with any ":N" suffix stripped:
//
//	dense/kernel:0  ->  dense/kernel/adam_m, dense/kernel/adam_v
//	dense/kernel:0  ->  dense/kernel/accum   (with accumulation)
//
// # Checkpoints
//
// Trainer.State returns every piece of optimizer state by name and
// Trainer.Restore loads it back, so a run resumed from a checkpoint
// continues exactly where it stopped:
//
//	state := trainer.State()
//	// ... save, restart, load ...
//	err := trainer.Restore(model.Parameters(), state)
//
// # Weight Decay
//
// Decay is added to the update as rate*param, not to the gradient, so it
// never enters the moment estimates. Variables whose name matches any
// pattern in ExcludeFromWeightDecay are not decayed.
package optim
