package optim

import (
	"context"
	"fmt"
	"regexp"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/adamacc/internal/nn"
	"github.com/born-ml/adamacc/internal/parallel"
	"github.com/born-ml/adamacc/internal/plan"
	"github.com/born-ml/adamacc/internal/schedule"
	"github.com/born-ml/adamacc/internal/tensor"
)

// Slot names of the AdamW moments. The persisted variable for parameter
// "p" is "p/adam_m" and "p/adam_v".
const (
	SlotAdamM = "adam_m"
	SlotAdamV = "adam_v"
)

// AdamW implements Adam with decoupled weight decay.
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient       // First moment
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²      // Second moment
//	update = m_t / (sqrt(v_t) + eps) + wd * param       // wd = 0 for excluded params
//	param = param - lr * update
//
// There is no bias correction. The weight-decay term is added to the
// update, never to the gradient, so it does not pass through m and v.
//
// Parameters whose name matches one of the exclusion patterns (normally
// LayerNorm weights and biases) are not decayed.
//
// Example:
//
//	opt, err := optim.NewAdamW(optim.AdamWConfig{
//	    LR:                     schedule.Constant(1e-4),
//	    WeightDecay:            0.01,
//	    ExcludeFromWeightDecay: []string{"LayerNorm", "bias"},
//	})
//
//	p, err := opt.Apply(ctx, optim.Zip(grads, params), globalStep)
//	err = p.Commit()
type AdamW struct {
	lr          schedule.Schedule
	beta1       float64
	beta2       float64
	eps         float64
	weightDecay float64
	exclude     []*regexp.Regexp
	clip        float64
	parallel    parallel.Config
	slots       *slots
}

// AdamWConfig holds configuration for the AdamW optimizer.
type AdamWConfig struct {
	LR                     schedule.Schedule // Learning rate, evaluated at the current global step (required)
	Betas                  [2]float64        // Moment decay rates (default: [0.9, 0.999])
	Eps                    float64           // Term for numerical stability (default: 1e-6)
	WeightDecay            float64           // Decoupled weight-decay rate; 0 disables decay
	ExcludeFromWeightDecay []string          // Regexps searched in the variable name
	GradClipping           float64           // Per-element gradient clip; <= 0 disables
	Parallel               *parallel.Config  // Kernel parallelism (default: parallel.DefaultConfig())
}

// DefaultAdamWConfig returns the pre-training defaults for the given
// learning rate: betas 0.9/0.999, eps 1e-6, weight decay 0.01 and no
// exclusions.
func DefaultAdamWConfig(lr schedule.Schedule) AdamWConfig {
	return AdamWConfig{
		LR:          lr,
		Betas:       [2]float64{0.9, 0.999},
		Eps:         1e-6,
		WeightDecay: DefaultWeightDecay,
	}
}

// NewAdamW creates a new AdamW optimizer.
//
// Zero Betas and Eps take their defaults. A missing learning rate or an
// exclusion pattern that does not compile is a configuration error.
func NewAdamW(config AdamWConfig) (*AdamW, error) {
	if config.LR == nil {
		return nil, configError("learning_rate", nil, "a schedule is required")
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-6
	}
	for i, b := range config.Betas {
		if b < 0 || b >= 1 {
			return nil, configError(fmt.Sprintf("beta%d", i+1), b, "must be in [0, 1)")
		}
	}

	exclude := make([]*regexp.Regexp, 0, len(config.ExcludeFromWeightDecay))
	for _, pattern := range config.ExcludeFromWeightDecay {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, configError("exclude_from_weight_decay", pattern, err.Error())
		}
		exclude = append(exclude, re)
	}

	par := parallel.DefaultConfig()
	if config.Parallel != nil {
		par = *config.Parallel
	}

	return &AdamW{
		lr:          config.LR,
		beta1:       config.Betas[0],
		beta2:       config.Betas[1],
		eps:         config.Eps,
		weightDecay: config.WeightDecay,
		exclude:     exclude,
		clip:        config.GradClipping,
		parallel:    par,
		slots:       newSlots(),
	}, nil
}

// Apply implements Optimizer.
//
// For every variable it stages new values for the parameter and both
// moments, then one increment of step. Several pairs for the same variable
// are summed into one gradient first. The learning rate is read at the
// committed value of step.
func (a *AdamW) Apply(ctx context.Context, pairs []GradVar, step *plan.Counter) (*plan.Plan, error) {
	lr := a.lr.Rate(step.Value())
	p := plan.New("adamw")

	merged, err := a.mergeGradients(pairs)
	if err != nil {
		return nil, err
	}

	for _, gv := range merged {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		shape := gv.param.Shape()
		name := VariableName(gv.param.Name())
		m := a.slots.get(name, SlotAdamM, shape)
		v := a.slots.get(name, SlotAdamV, shape)

		k := adamStep{lr: lr, beta1: a.beta1, beta2: a.beta2, eps: a.eps}
		if a.useWeightDecay(name) {
			k.decay = a.weightDecay
		}

		n := shape.NumElements()
		nextParam := make([]float64, n)
		nextM := make([]float64, n)
		nextV := make([]float64, n)
		adamUpdate(a.parallel, k,
			gv.param.Tensor().Data(), gv.grad.Data(), m.Tensor().Data(), v.Tensor().Data(),
			nextParam, nextM, nextV)

		p.Assign(gv.param.Name(), gv.param.Tensor(), nextParam)
		p.Assign(m.Name(), m.Tensor(), nextM)
		p.Assign(v.Name(), v.Tensor(), nextV)
	}

	if step != nil {
		p.Increment(step, 1)
	}
	return p, nil
}

// denseGrad is a clipped, densified gradient ready for the update kernel.
type denseGrad struct {
	param *nn.Parameter
	grad  *tensor.Tensor
}

// mergeGradients clips and densifies every pair and sums pairs that share a
// variable, keeping first-seen order.
func (a *AdamW) mergeGradients(pairs []GradVar) ([]denseGrad, error) {
	out := make([]denseGrad, 0, len(pairs))
	index := make(map[*nn.Parameter]int, len(pairs))

	for _, gv := range pairs {
		if gv.skip() {
			continue
		}

		grad := gv.Grad
		if a.clip > 0 {
			grad = ClipByValue(grad, a.clip)
		}
		dense, err := grad.Dense()
		if err != nil {
			return nil, errors.Wrapf(err, "gradient for %s", gv.Var.Name())
		}
		shape := gv.Var.Shape()
		if !dense.Shape().Equal(shape) {
			return nil, errors.Wrapf(ErrShapeMismatch, "%s: gradient %v, variable %v", gv.Var.Name(), dense.Shape(), shape)
		}

		i, seen := index[gv.Var]
		if !seen {
			index[gv.Var] = len(out)
			out = append(out, denseGrad{param: gv.Var, grad: dense})
			continue
		}
		// Dense may return the caller's tensor, so sum into a copy.
		sum := out[i].grad.Clone()
		floats.Add(sum.Data(), dense.Data())
		out[i].grad = sum
	}
	return out, nil
}

// useWeightDecay reports whether the variable gets the decay term.
func (a *AdamW) useWeightDecay(name string) bool {
	if a.weightDecay == 0 {
		return false
	}
	for _, re := range a.exclude {
		if re.MatchString(name) {
			return false
		}
	}
	return true
}

// LearningRate returns the rate the next Apply would use at step.
func (a *AdamW) LearningRate(step int64) float64 {
	return a.lr.Rate(step)
}

// Slots returns the moment variables created so far, sorted by name.
func (a *AdamW) Slots() []*nn.Parameter {
	return a.slots.list()
}
