// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/born-ml/adamacc/internal/collective"
	"github.com/born-ml/adamacc/internal/optim"
	"github.com/born-ml/adamacc/internal/parallel"
	"github.com/born-ml/adamacc/internal/plan"
	"github.com/born-ml/adamacc/nn"
	"github.com/born-ml/adamacc/tensor"
)

// Optimizer interface defines the common interface for all optimizers and
// optimizer wrappers.
type Optimizer = optim.Optimizer

// GradVar pairs a gradient with the variable it updates.
type GradVar = optim.GradVar

// Zip pairs gradients with variables by position.
func Zip(grads []tensor.Gradient, vars []*nn.Parameter) []GradVar {
	return optim.Zip(grads, vars)
}

// Plan is the ordered set of writes an optimizer stages for one step.
type Plan = plan.Plan

// Counter is a scalar integer variable such as the global step.
type Counter = plan.Counter

// NewCounter creates a counter starting at zero.
func NewCounter(name string) *Counter {
	return plan.NewCounter(name)
}

// ParallelConfig controls how element-wise kernels are split across
// goroutines.
type ParallelConfig = parallel.Config

// DefaultParallelConfig returns a configuration using all available CPUs.
func DefaultParallelConfig() ParallelConfig {
	return parallel.DefaultConfig()
}

// AdamW (Adam with decoupled weight decay)

// AdamW represents the AdamW optimizer.
type AdamW = optim.AdamW

// AdamWConfig contains configuration for the AdamW optimizer.
type AdamWConfig = optim.AdamWConfig

// DefaultAdamWConfig returns the pre-training defaults for lr.
func DefaultAdamWConfig(lr Schedule) AdamWConfig {
	return optim.DefaultAdamWConfig(lr)
}

// NewAdamW creates a new AdamW optimizer.
//
// Example:
//
//	opt, err := optim.NewAdamW(optim.AdamWConfig{
//	    LR:                     optim.ConstantRate(1e-4),
//	    WeightDecay:            0.01,
//	    ExcludeFromWeightDecay: []string{"LayerNorm", "bias"},
//	})
func NewAdamW(config AdamWConfig) (*AdamW, error) {
	return optim.NewAdamW(config)
}

// Gradient accumulation

// Accumulation averages gradients over several calls before applying them.
type Accumulation = optim.Accumulation

// AccumulationConfig contains configuration for gradient accumulation.
type AccumulationConfig = optim.AccumulationConfig

// NewAccumulation wraps opt so it is applied once every config.Steps calls.
//
// Example:
//
//	acc, err := optim.NewAccumulation(adamw, optim.AccumulationConfig{Steps: 4})
func NewAccumulation(opt Optimizer, config AccumulationConfig) (*Accumulation, error) {
	return optim.NewAccumulation(opt, config)
}

// Cross-replica aggregation

// Reducer sums values across replicas.
type Reducer = optim.Reducer

// CrossReplica averages gradients across replicas before applying them.
type CrossReplica = optim.CrossReplica

// NewCrossReplica wraps opt so gradients are averaged across the replicas of
// reducer first.
func NewCrossReplica(opt Optimizer, reducer Reducer) (*CrossReplica, error) {
	return optim.NewCrossReplica(opt, reducer)
}

// Group is an in-process set of replicas that all-reduce together.
type Group = collective.Group

// Replica is one member of a Group. It implements Reducer.
type Replica = collective.Replica

// NewGroup creates a group of size replicas.
//
// Example:
//
//	group, _ := optim.NewGroup(4)
//	for rank := range 4 {
//	    replica, _ := group.Replica(rank)
//	    go train(replica)
//	}
func NewGroup(size int) (*Group, error) {
	return collective.NewGroup(size)
}

// Clipping

// ClipByValue clamps every gradient element to [-limit, limit].
func ClipByValue(g tensor.Gradient, limit float64) tensor.Gradient {
	return optim.ClipByValue(g, limit)
}

// GlobalNorm returns the L2 norm over all gradients.
func GlobalNorm(grads []tensor.Gradient) float64 {
	return optim.GlobalNorm(grads)
}

// ClipByGlobalNorm rescales grads so their global norm is at most clipNorm.
// It returns the rescaled gradients and the norm before clipping.
func ClipByGlobalNorm(grads []tensor.Gradient, clipNorm float64) ([]tensor.Gradient, float64) {
	return optim.ClipByGlobalNorm(grads, clipNorm)
}

// VariableName strips a trailing ":<digits>" output suffix from name.
func VariableName(name string) string {
	return optim.VariableName(name)
}

// Training

// Trainer builds and runs the full train step: schedule, clipping and the
// optimizer chain.
type Trainer = optim.Trainer

// TrainConfig contains configuration for a Trainer.
type TrainConfig = optim.TrainConfig

// DefaultTrainConfig returns a TrainConfig with the standard defaults.
func DefaultTrainConfig() TrainConfig {
	return optim.DefaultTrainConfig()
}

// NewTrainer validates config and builds a Trainer.
//
// Example:
//
//	cfg := optim.DefaultTrainConfig()
//	cfg.InitLR = 1e-4
//	cfg.NumTrainSteps = 100000
//	cfg.NumWarmupSteps = 10000
//	trainer, err := optim.NewTrainer(cfg)
func NewTrainer(config TrainConfig) (*Trainer, error) {
	return optim.NewTrainer(config)
}

// Backward computes gradients for parameters.
type Backward = optim.Backward

// BackwardFunc adapts a function to Backward.
type BackwardFunc = optim.BackwardFunc

// Names and defaults.
const (
	OptimizerAdamW     = optim.OptimizerAdamW
	GlobalStepName     = optim.GlobalStepName
	CounterName        = optim.CounterName
	SlotAdamM          = optim.SlotAdamM
	SlotAdamV          = optim.SlotAdamV
	SlotAccum          = optim.SlotAccum
	GlobalClipNorm     = optim.GlobalClipNorm
	DefaultWeightDecay = optim.DefaultWeightDecay
)

// Errors

// ConfigError describes a rejected configuration field.
type ConfigError = optim.ConfigError

// Sentinel errors.
var (
	ErrInvalidConfig        = optim.ErrInvalidConfig
	ErrUnsupportedOptimizer = optim.ErrUnsupportedOptimizer
	ErrShapeMismatch        = optim.ErrShapeMismatch
	ErrNonFiniteGradient    = optim.ErrNonFiniteGradient
	ErrInvalidState         = optim.ErrInvalidState
)
