package optim

import (
	"context"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/adamacc/internal/plan"
	"github.com/born-ml/adamacc/internal/tensor"
)

// Reducer sums values across every replica taking part in training.
//
// All replicas call AllReduce for the same names in the same order; each
// call blocks until every replica contributed and returns the element-wise
// sum.
type Reducer interface {
	AllReduce(ctx context.Context, name string, values []float64) ([]float64, error)
	NumReplicas() int
}

// CrossReplica averages every gradient across replicas before handing the
// pairs to the wrapped optimizer. Each replica runs its own CrossReplica
// over its own copy of the parameters; identical averaged gradients keep the
// copies in sync.
type CrossReplica struct {
	opt     Optimizer
	reducer Reducer
}

// NewCrossReplica wraps opt.
func NewCrossReplica(opt Optimizer, reducer Reducer) (*CrossReplica, error) {
	if opt == nil {
		return nil, configError("optimizer", nil, "cross-replica aggregation needs an optimizer to wrap")
	}
	if reducer == nil || reducer.NumReplicas() <= 0 {
		return nil, configError("reducer", reducer, "cross-replica aggregation needs a reducer with at least one replica")
	}
	return &CrossReplica{opt: opt, reducer: reducer}, nil
}

// Apply implements Optimizer.
func (c *CrossReplica) Apply(ctx context.Context, pairs []GradVar, step *plan.Counter) (*plan.Plan, error) {
	inv := 1.0 / float64(c.reducer.NumReplicas())
	reduced := make([]GradVar, 0, len(pairs))

	for _, gv := range pairs {
		if gv.skip() {
			continue
		}
		dense, err := gv.Grad.Dense()
		if err != nil {
			return nil, errors.Wrapf(err, "gradient for %s", gv.Var.Name())
		}

		name := VariableName(gv.Var.Name())
		sum, err := c.reducer.AllReduce(ctx, name, dense.Data())
		if err != nil {
			return nil, errors.Wrapf(err, "all-reduce %s", name)
		}
		floats.Scale(inv, sum)

		mean, err := tensor.FromSlice(sum, dense.Shape())
		if err != nil {
			return nil, errors.Wrapf(err, "all-reduce %s", name)
		}
		reduced = append(reduced, GradVar{Grad: mean, Var: gv.Var})
	}

	return c.opt.Apply(ctx, reduced, step)
}
