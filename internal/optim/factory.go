package optim

import (
	"context"
	"log/slog"
	"math"

	"github.com/pkg/errors"

	"github.com/born-ml/adamacc/internal/nn"
	"github.com/born-ml/adamacc/internal/plan"
	"github.com/born-ml/adamacc/internal/schedule"
	"github.com/born-ml/adamacc/internal/tensor"
)

// Factory defaults.
const (
	// GlobalStepName is the persisted name of the global step.
	GlobalStepName = "global_step"

	// GlobalClipNorm bounds the global norm of the gradients of every step.
	GlobalClipNorm = 1.0

	// DefaultWeightDecay is the decoupled weight-decay rate of the factory.
	DefaultWeightDecay = 0.01
)

// DefaultExcludeFromWeightDecay lists the variable-name patterns the factory
// never decays: normalization weights and biases.
var DefaultExcludeFromWeightDecay = []string{"LayerNorm", "layer_norm", "bias"}

// Backward computes the gradients of the loss with respect to params.
//
// The result is aligned with params; an entry may be nil for a parameter the
// loss does not depend on.
type Backward interface {
	Gradients(ctx context.Context, params []*nn.Parameter) ([]tensor.Gradient, error)
}

// BackwardFunc adapts a function to Backward.
type BackwardFunc func(ctx context.Context, params []*nn.Parameter) ([]tensor.Gradient, error)

// Gradients implements Backward.
func (f BackwardFunc) Gradients(ctx context.Context, params []*nn.Parameter) ([]tensor.Gradient, error) {
	return f(ctx, params)
}

// Trainer is the single per-step entry point: learning-rate schedule,
// AdamW, optional accumulation and cross-replica averaging, and global-norm
// clipping, wired around a global step it owns.
type Trainer struct {
	logger *slog.Logger

	step     *plan.Counter
	schedule schedule.LinearWarmup
	adamw    *AdamW
	accum    *Accumulation // nil without accumulation
	opt      Optimizer     // outermost layer of the chain
}

// NewTrainer validates config and builds the optimizer chain.
//
// The chain is, from the outside in: CrossReplica (when Distributed),
// Accumulation (when GradientAccumulationSteps > 1), AdamW.
func NewTrainer(config TrainConfig) (*Trainer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	step := config.GlobalStep
	if step == nil {
		step = plan.NewCounter(GlobalStepName)
	}

	lr := schedule.WarmupPolynomialDecay(config.InitLR, config.NumTrainSteps,
		config.NumWarmupSteps, config.PolyPower, config.StartWarmupStep)
	if config.NumWarmupSteps > 0 {
		logger.Info("learning rate warmup",
			"start_step", config.StartWarmupStep,
			"warmup_steps", config.NumWarmupSteps)
	}

	logger.Info("using optimizer", "name", config.Optimizer)
	adamCfg := DefaultAdamWConfig(lr)
	adamCfg.ExcludeFromWeightDecay = DefaultExcludeFromWeightDecay
	adamCfg.GradClipping = config.GradClipping
	adamCfg.Parallel = config.Parallel
	adamw, err := NewAdamW(adamCfg)
	if err != nil {
		return nil, err
	}

	t := &Trainer{
		logger:   logger,
		step:     step,
		schedule: lr,
		adamw:    adamw,
		opt:      adamw,
	}

	if config.GradientAccumulationSteps > 1 {
		accum, err := NewAccumulation(t.opt, AccumulationConfig{
			Steps:        config.GradientAccumulationSteps,
			GradClipping: config.GradClipping,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("gradient accumulation", "steps", config.GradientAccumulationSteps)
		t.accum = accum
		t.opt = accum
	}

	if config.Distributed {
		cr, err := NewCrossReplica(t.opt, config.Reducer)
		if err != nil {
			return nil, err
		}
		logger.Info("cross-replica gradient averaging", "replicas", config.Reducer.NumReplicas())
		t.opt = cr
	}

	return t, nil
}

// TrainOp stages one training step: gradients of the trainable params,
// clipped by global norm, applied through the optimizer chain. A step whose
// gradients overflow is rejected with ErrNonFiniteGradient and stages
// nothing.
func (t *Trainer) TrainOp(ctx context.Context, params []*nn.Parameter, backward Backward) (*plan.Plan, error) {
	vars := nn.Trainable(params)
	grads, err := backward.Gradients(ctx, vars)
	if err != nil {
		return nil, errors.Wrap(err, "compute gradients")
	}
	if len(grads) != len(vars) {
		return nil, errors.Errorf("backward returned %d gradients for %d trainable parameters", len(grads), len(vars))
	}

	clipped, norm := ClipByGlobalNorm(grads, GlobalClipNorm)
	t.logger.Debug("gradients",
		"global_step", t.step.Value(),
		"global_norm", norm,
		"learning_rate", t.LearningRate())
	if math.IsInf(norm, 0) || math.IsNaN(norm) {
		return nil, errors.Wrapf(ErrNonFiniteGradient, "global norm %v at step %d", norm, t.step.Value())
	}

	return t.opt.Apply(ctx, Zip(clipped, vars), t.step)
}

// Step stages and commits one training step.
func (t *Trainer) Step(ctx context.Context, params []*nn.Parameter, backward Backward) error {
	p, err := t.TrainOp(ctx, params, backward)
	if err != nil {
		return err
	}
	if err := p.Commit(); err != nil {
		return err
	}
	t.logger.Debug("committed train step", "ops", p.Len(), "global_step", t.step.Value())
	return nil
}

// Optimizer returns the outermost layer of the optimizer chain.
func (t *Trainer) Optimizer() Optimizer {
	return t.opt
}

// GlobalStep returns the global step counter.
func (t *Trainer) GlobalStep() *plan.Counter {
	return t.step
}

// LearningRate returns the rate at the current global step.
func (t *Trainer) LearningRate() float64 {
	return t.schedule.Rate(t.step.Value())
}

// State returns every piece of optimizer state by its persisted name:
// "<param>/adam_m", "<param>/adam_v", "<param>/accum", "counter" and
// "global_step". The tensors are copies.
func (t *Trainer) State() map[string]*tensor.Tensor {
	state := map[string]*tensor.Tensor{
		GlobalStepName: t.step.Tensor(),
	}
	for _, s := range t.adamw.Slots() {
		state[s.Name()] = s.Tensor().Clone()
	}
	if t.accum != nil {
		state[CounterName] = t.accum.Counter().Tensor()
		for _, s := range t.accum.Slots() {
			state[s.Name()] = s.Tensor().Clone()
		}
	}
	return state
}

// Restore loads state in the layout State produces back into the trainer,
// so training continues exactly where the saved run stopped.
//
// Slot tensors are matched to params by name and must have the shape of
// their variable. Scalars "global_step" and "counter" must hold
// non-negative whole numbers. Names the trainer does not own are rejected
// with ErrInvalidState. Entries missing from state are left as they are.
// Everything is checked before the first write; on error nothing changes.
func (t *Trainer) Restore(params []*nn.Parameter, state map[string]*tensor.Tensor) error {
	type restoredSlot struct {
		store    *slots
		variable string
		slot     string
		shape    tensor.Shape
		value    *tensor.Tensor
	}

	type slotStore struct {
		store *slots
		names []string
	}
	stores := []slotStore{{t.adamw.slots, []string{SlotAdamM, SlotAdamV}}}
	if t.accum != nil {
		stores = append(stores, slotStore{t.accum.slots, []string{SlotAccum}})
	}

	known := make(map[string]bool, len(state))
	var restored []restoredSlot
	for _, param := range nn.Trainable(params) {
		variable := VariableName(param.Name())
		shape := param.Shape()
		for _, s := range stores {
			for _, slot := range s.names {
				key := variable + "/" + slot
				value := state[key]
				if value == nil || known[key] {
					continue
				}
				if !value.Shape().Equal(shape) {
					return errors.Wrapf(ErrShapeMismatch, "%s: saved %v, variable %v", key, value.Shape(), shape)
				}
				known[key] = true
				restored = append(restored, restoredSlot{store: s.store, variable: variable, slot: slot, shape: shape, value: value})
			}
		}
	}

	step, hasStep, err := savedCount(state, GlobalStepName)
	if err != nil {
		return err
	}
	known[GlobalStepName] = true

	var count int64
	var hasCount bool
	if t.accum != nil {
		if count, hasCount, err = savedCount(state, CounterName); err != nil {
			return err
		}
		known[CounterName] = true
	}

	for key, value := range state {
		if value != nil && !known[key] {
			return errors.Wrapf(ErrInvalidState, "unknown state %q", key)
		}
	}

	p := plan.New("restore")
	for _, r := range restored {
		slot := r.store.get(r.variable, r.slot, r.shape)
		p.Assign(slot.Name(), slot.Tensor(), r.value.Clone().Data())
	}
	if hasStep {
		p.Set(t.step, step)
	}
	if hasCount {
		p.Set(t.accum.Counter(), count)
	}
	if err := p.Commit(); err != nil {
		return err
	}
	t.logger.Info("restored optimizer state", "variables", len(restored), "global_step", t.step.Value())
	return nil
}

// savedCount reads a scalar counter from state.
func savedCount(state map[string]*tensor.Tensor, name string) (int64, bool, error) {
	value := state[name]
	if value == nil {
		return 0, false, nil
	}
	if value.Len() != 1 {
		return 0, false, errors.Wrapf(ErrShapeMismatch, "%s: saved %v, want a scalar", name, value.Shape())
	}
	v := value.Data()[0]
	if v < 0 || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, false, errors.Wrapf(ErrInvalidState, "%s: %v is not a step count", name, v)
	}
	return int64(v), true, nil
}
