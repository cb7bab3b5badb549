package optim

import (
	"log/slog"

	"github.com/born-ml/adamacc/internal/parallel"
	"github.com/born-ml/adamacc/internal/plan"
)

// OptimizerAdamW is the only optimizer name NewTrainer accepts.
const OptimizerAdamW = "adamw"

// TrainConfig holds configuration for NewTrainer.
type TrainConfig struct {
	InitLR                    float64 // Peak learning rate
	NumTrainSteps             int64   // Steps over which the rate decays to 0 (must be > 0)
	NumWarmupSteps            int64   // Linear warmup length; 0 disables warmup
	Optimizer                 string  // Must be "adamw"
	PolyPower                 float64 // Exponent of the polynomial decay (1.0 is linear)
	StartWarmupStep           int64   // Global step at which warmup starts
	GradientAccumulationSteps int     // Calls per applied update; <= 1 disables accumulation
	GradClipping              float64 // Per-element gradient clip; <= 0 disables

	Distributed bool    // Average gradients across replicas before applying
	Reducer     Reducer // Required when Distributed

	GlobalStep *plan.Counter    // Existing global step to continue from (default: a new counter)
	Parallel   *parallel.Config // Kernel parallelism (default: parallel.DefaultConfig())
	Logger     *slog.Logger     // Default: slog.Default()
}

// DefaultTrainConfig returns a config with the AdamW optimizer, linear
// decay, no warmup and no accumulation. InitLR and NumTrainSteps still need
// to be set.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		Optimizer:                 OptimizerAdamW,
		PolyPower:                 1.0,
		GradientAccumulationSteps: 1,
	}
}

// Validate checks the config. Errors are *ConfigError and match
// ErrInvalidConfig.
func (c TrainConfig) Validate() error {
	if c.Optimizer != OptimizerAdamW {
		return configErrorWithCause("optimizer", c.Optimizer, "not supported", ErrUnsupportedOptimizer)
	}
	if c.InitLR < 0 {
		return configError("init_lr", c.InitLR, "must be >= 0")
	}
	if c.NumTrainSteps <= 0 {
		return configError("num_train_steps", c.NumTrainSteps, "must be > 0")
	}
	if c.NumWarmupSteps < 0 {
		return configError("num_warmup_steps", c.NumWarmupSteps, "must be >= 0")
	}
	if c.Distributed && c.Reducer == nil {
		return configError("reducer", nil, "distributed training needs a reducer")
	}
	return nil
}
