// Package optim implements the weight-update side of training: a
// decoupled-weight-decay Adam optimizer, wrappers that accumulate or
// all-reduce gradients before handing them on, gradient clipping and the
// factory that wires them into one train step.
//
// Every optimizer implements the same one-method contract, so wrappers
// compose by delegation:
//
//	var opt optim.Optimizer = adamw
//	opt, _ = optim.NewAccumulation(opt, optim.AccumulationConfig{Steps: 4})
//	opt, _ = optim.NewCrossReplica(opt, replica)
//
// Apply never writes state. It returns a plan.Plan with every write staged
// in order; committing the plan performs the update.
//
// Example usage:
//
//	trainer, err := optim.NewTrainer(optim.TrainConfig{
//	    Optimizer:     "adamw",
//	    InitLR:        1e-4,
//	    NumTrainSteps: 100000,
//	    PolyPower:     1.0,
//	})
//	if err != nil {
//	    return err
//	}
//
//	for batch := range batches {
//	    if err := trainer.Step(ctx, model.Parameters(), backward(batch)); err != nil {
//	        return err
//	    }
//	}
package optim

import (
	"context"

	"github.com/born-ml/adamacc/internal/nn"
	"github.com/born-ml/adamacc/internal/plan"
	"github.com/born-ml/adamacc/internal/tensor"
)

// Optimizer is the contract shared by the base optimizer and every wrapper.
type Optimizer interface {
	// Apply stages the update for the given gradient/variable pairs.
	//
	// Pairs where either side is nil are skipped. When step is non-nil it is
	// incremented by exactly one per applied update (wrappers that defer an
	// update leave it untouched).
	//
	// The returned plan is staged against committed state: commit it before
	// calling Apply again on the same optimizer.
	Apply(ctx context.Context, pairs []GradVar, step *plan.Counter) (*plan.Plan, error)
}

// GradVar pairs a gradient with the variable it belongs to.
type GradVar struct {
	Grad tensor.Gradient
	Var  *nn.Parameter
}

// Zip pairs grads[i] with vars[i]. The result is as long as the shorter
// input.
func Zip(grads []tensor.Gradient, vars []*nn.Parameter) []GradVar {
	n := min(len(grads), len(vars))
	out := make([]GradVar, n)
	for i := range n {
		out[i] = GradVar{Grad: grads[i], Var: vars[i]}
	}
	return out
}

// skip reports whether a pair carries nothing to apply.
func (gv GradVar) skip() bool {
	return gv.Var == nil || tensor.IsNil(gv.Grad)
}
