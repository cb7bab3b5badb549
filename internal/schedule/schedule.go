// Package schedule implements learning-rate schedules as pure functions of
// the global step.
//
// The schedule used for pre-training combines polynomial decay to zero over
// the training run with a linear warmup that overrides it for the first
// steps:
//
//	lr := schedule.WarmupPolynomialDecay(1e-4, 100000, 10000, 1.0, 0)
//	rate := lr.Rate(globalStep)
package schedule

import (
	"math"
)

// Schedule maps a global step to a learning rate.
type Schedule interface {
	Rate(step int64) float64
}

// Constant is a fixed learning rate.
type Constant float64

// Rate implements Schedule.
func (c Constant) Rate(int64) float64 {
	return float64(c)
}

// PolynomialDecay decays InitialRate to EndRate over DecaySteps:
//
//	rate = (InitialRate - EndRate) * (1 - step/DecaySteps)^Power + EndRate
//
// Without Cycle the step is clamped to DecaySteps, so the rate stays at
// EndRate afterwards. With Cycle the horizon grows to the first multiple of
// DecaySteps at or above step.
//
// A DecaySteps of zero or less means the decay is already over: Rate
// returns EndRate.
type PolynomialDecay struct {
	InitialRate float64
	EndRate     float64
	DecaySteps  int64
	Power       float64
	Cycle       bool
}

// Rate implements Schedule.
func (p PolynomialDecay) Rate(step int64) float64 {
	if p.DecaySteps <= 0 {
		return p.EndRate
	}
	s := float64(step)
	horizon := float64(p.DecaySteps)
	if p.Cycle {
		mult := 1.0
		if step != 0 {
			mult = math.Ceil(s / horizon)
		}
		horizon *= mult
	} else {
		s = math.Min(s, horizon)
	}
	return (p.InitialRate-p.EndRate)*math.Pow(1-s/horizon, p.Power) + p.EndRate
}

// LinearWarmup ramps the rate linearly from zero to InitialRate over
// WarmupSteps steps starting at StartStep, then hands over to Base.
//
// Before StartStep the elapsed step count is negative and so is the rate.
// That is what the pre-training recipes were run with and it is kept as is.
//
// A nil Base holds InitialRate after warmup.
type LinearWarmup struct {
	Base        Schedule
	InitialRate float64
	WarmupSteps int64
	StartStep   int64
}

// Rate implements Schedule.
func (w LinearWarmup) Rate(step int64) float64 {
	if w.WarmupSteps > 0 {
		if elapsed := step - w.StartStep; elapsed < w.WarmupSteps {
			return w.InitialRate * float64(elapsed) / float64(w.WarmupSteps)
		}
	}
	if w.Base == nil {
		return w.InitialRate
	}
	return w.Base.Rate(step)
}

// InWarmup reports whether step falls in the warmup window (or before it).
func (w LinearWarmup) InWarmup(step int64) bool {
	return w.WarmupSteps > 0 && step-w.StartStep < w.WarmupSteps
}

// WarmupPolynomialDecay is polynomial decay from initRate to 0 over
// numTrainSteps with no cycling, overridden by a linear warmup of
// numWarmupSteps starting at startWarmupStep. numWarmupSteps == 0 disables
// warmup.
func WarmupPolynomialDecay(initRate float64, numTrainSteps, numWarmupSteps int64, power float64, startWarmupStep int64) LinearWarmup {
	return LinearWarmup{
		Base: PolynomialDecay{
			InitialRate: initRate,
			EndRate:     0,
			DecaySteps:  numTrainSteps,
			Power:       power,
		},
		InitialRate: initRate,
		WarmupSteps: numWarmupSteps,
		StartStep:   startWarmupStep,
	}
}
