package optim

import (
	"context"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/blas/blas64"

	"github.com/born-ml/adamacc/internal/nn"
	"github.com/born-ml/adamacc/internal/plan"
	"github.com/born-ml/adamacc/internal/tensor"
)

// Names of the accumulation state. The accumulator of parameter "p" is
// persisted as "p/accum"; the call counter as "counter".
const (
	SlotAccum   = "accum"
	CounterName = "counter"
)

// Accumulation averages gradients over Steps consecutive Apply calls and
// applies the wrapped optimizer once per Steps calls, which trains with an
// effective batch Steps times larger than the one that fits in memory.
//
// Every call adds grad/Steps into a per-variable accumulator and increments
// a call counter. Several pairs for the same variable in one call all add
// into its accumulator. When the counter reaches a multiple of Steps the wrapped
// optimizer is applied to the accumulators and, after it, accumulators and
// counter are reset to zero. Other calls leave parameters and the global
// step alone.
//
// Example:
//
//	opt, err := optim.NewAccumulation(adamw, optim.AccumulationConfig{Steps: 8})
type Accumulation struct {
	opt     Optimizer
	steps   int
	clip    float64
	counter *plan.Counter
	slots   *slots
}

// AccumulationConfig holds configuration for gradient accumulation.
type AccumulationConfig struct {
	Steps        int     // Number of calls per applied update (must be > 0)
	GradClipping float64 // Per-element clip of the wrapped optimizer; <= 0 disables
}

// NewAccumulation wraps opt. Steps must be positive; nothing is allocated
// when it is not.
func NewAccumulation(opt Optimizer, config AccumulationConfig) (*Accumulation, error) {
	if config.Steps <= 0 {
		return nil, configError("steps", config.Steps, "gradient accumulation expects steps to be positive")
	}
	if opt == nil {
		return nil, configError("optimizer", nil, "gradient accumulation needs an optimizer to wrap")
	}
	return &Accumulation{
		opt:     opt,
		steps:   config.Steps,
		clip:    config.GradClipping,
		counter: plan.NewCounter(CounterName),
		slots:   newSlots(),
	}, nil
}

// Apply implements Optimizer.
//
// The staged plan increments the counter first, then writes the
// accumulators. On a commit call it continues with the wrapped optimizer's
// plan and finally zeroes the accumulators and the counter.
func (a *Accumulation) Apply(ctx context.Context, pairs []GradVar, step *plan.Counter) (*plan.Plan, error) {
	count := a.counter.Value() + 1

	p := plan.New("accumulate")
	p.Increment(a.counter, 1)

	inv := 1.0 / float64(a.steps)
	accums := make([]*nn.Parameter, 0, len(pairs))
	staged := make([]GradVar, 0, len(pairs))
	// Pairs sharing an accumulator add into the same staged value.
	pending := make(map[*nn.Parameter]*tensor.Tensor, len(pairs))

	for _, gv := range pairs {
		if gv.skip() {
			continue
		}

		grad := gv.Grad
		if a.clip > 0 {
			// The accumulated value is divided by steps later, so the raw
			// gradient may be steps times larger.
			grad = ClipByValue(grad, float64(a.steps)*a.clip)
		}
		shape := gv.Var.Shape()
		if !grad.Shape().Equal(shape) {
			return nil, errors.Wrapf(ErrShapeMismatch, "%s: gradient %v, variable %v", gv.Var.Name(), grad.Shape(), shape)
		}

		name := VariableName(gv.Var.Name())
		accum := a.slots.get(name, SlotAccum, shape)

		next, seen := pending[accum]
		if !seen {
			next = accum.Tensor().Clone()
		}
		switch g := grad.Scale(inv).(type) {
		case *tensor.IndexedSlices:
			if err := g.ScatterAdd(next, 1); err != nil {
				return nil, errors.Wrapf(err, "accumulate %s", gv.Var.Name())
			}
		default:
			dense, err := g.Dense()
			if err != nil {
				return nil, errors.Wrapf(err, "accumulate %s", gv.Var.Name())
			}
			blas64.Axpy(1, vector(dense), vector(next))
		}
		if seen {
			continue
		}

		pending[accum] = next
		p.Assign(accum.Name(), accum.Tensor(), next.Data())
		accums = append(accums, accum)
		staged = append(staged, GradVar{Grad: next, Var: gv.Var})
	}

	if count%int64(a.steps) != 0 {
		return p, nil
	}

	inner, err := a.opt.Apply(ctx, staged, step)
	if err != nil {
		return nil, err
	}
	p.Append(inner)
	for _, accum := range accums {
		p.Assign(accum.Name(), accum.Tensor(), make([]float64, accum.Tensor().Len()))
	}
	p.Reset(a.counter)
	return p, nil
}

// Steps returns the number of calls per applied update.
func (a *Accumulation) Steps() int {
	return a.steps
}

// Counter returns the call counter.
func (a *Accumulation) Counter() *plan.Counter {
	return a.counter
}

// Slots returns the accumulators created so far, sorted by name.
func (a *Accumulation) Slots() []*nn.Parameter {
	return a.slots.list()
}

func vector(t *tensor.Tensor) blas64.Vector {
	return blas64.Vector{N: t.Len(), Inc: 1, Data: t.Data()}
}
