package optim_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/born-ml/adamacc/internal/nn"
	"github.com/born-ml/adamacc/internal/optim"
	"github.com/born-ml/adamacc/internal/plan"
	"github.com/born-ml/adamacc/internal/schedule"
	"github.com/born-ml/adamacc/internal/tensor"
)

const tol = 1e-12

func newParam(t *testing.T, name string, data []float64, shape ...int) *nn.Parameter {
	t.Helper()
	if len(shape) == 0 {
		shape = []int{len(data)}
	}
	w, err := tensor.FromSlice(data, tensor.Shape(shape))
	require.NoError(t, err)
	return nn.NewParameter(name, w)
}

func dense(t *testing.T, data []float64, shape ...int) *tensor.Tensor {
	t.Helper()
	if len(shape) == 0 {
		shape = []int{len(data)}
	}
	g, err := tensor.FromSlice(data, tensor.Shape(shape))
	require.NoError(t, err)
	return g
}

func clone(x []float64) []float64 {
	y := make([]float64, len(x))
	copy(y, x)
	return y
}

// manualAdamW is one AdamW step written out element by element.
func manualAdamW(param, grad, m, v []float64, lr, beta1, beta2, eps, decay float64) (nextParam, nextM, nextV []float64) {
	nextParam = make([]float64, len(param))
	nextM = make([]float64, len(param))
	nextV = make([]float64, len(param))
	for i := range param {
		nextM[i] = beta1*m[i] + (1-beta1)*grad[i]
		nextV[i] = beta2*v[i] + (1-beta2)*grad[i]*grad[i]
		update := nextM[i]/(math.Sqrt(nextV[i])+eps) + decay*param[i]
		nextParam[i] = param[i] - lr*update
	}
	return nextParam, nextM, nextV
}

func newAdamW(t *testing.T, lr float64, decay float64, exclude ...string) *optim.AdamW {
	t.Helper()
	cfg := optim.DefaultAdamWConfig(schedule.Constant(lr))
	cfg.WeightDecay = decay
	cfg.ExcludeFromWeightDecay = exclude
	opt, err := optim.NewAdamW(cfg)
	require.NoError(t, err)
	return opt
}

func applyAndCommit(t *testing.T, opt optim.Optimizer, pairs []optim.GradVar, step *plan.Counter) *plan.Plan {
	t.Helper()
	p, err := opt.Apply(context.Background(), pairs, step)
	require.NoError(t, err)
	require.NoError(t, p.Commit())
	return p
}

func slotByName(t *testing.T, slots []*nn.Parameter, name string) *nn.Parameter {
	t.Helper()
	for _, s := range slots {
		if s.Name() == name {
			return s
		}
	}
	require.Failf(t, "slot not found", "no slot named %q", name)
	return nil
}

// recordingOptimizer counts Apply calls and keeps the gradients it saw.
type recordingOptimizer struct {
	calls int
	grads [][]float64
}

func (r *recordingOptimizer) Apply(_ context.Context, pairs []optim.GradVar, step *plan.Counter) (*plan.Plan, error) {
	r.calls++
	p := plan.New("recording")
	for _, gv := range pairs {
		d, err := gv.Grad.Dense()
		if err != nil {
			return nil, err
		}
		r.grads = append(r.grads, clone(d.Data()))
	}
	if step != nil {
		p.Increment(step, 1)
	}
	return p, nil
}
