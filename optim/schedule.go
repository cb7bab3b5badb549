// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/born-ml/adamacc/internal/schedule"
)

// Schedule maps a global step to a learning rate.
type Schedule = schedule.Schedule

// ConstantRate is a fixed learning rate.
type ConstantRate = schedule.Constant

// PolynomialDecay decays a rate to an end rate over a number of steps.
type PolynomialDecay = schedule.PolynomialDecay

// LinearWarmup ramps the rate up linearly before handing over to a base
// schedule.
type LinearWarmup = schedule.LinearWarmup

// WarmupPolynomialDecay returns the pre-training schedule: linear decay to
// zero over numTrainSteps with a linear warmup over the first numWarmupSteps
// steps after startWarmupStep.
//
// Example:
//
//	lr := optim.WarmupPolynomialDecay(1e-4, 100000, 10000, 1.0, 0)
//	lr.Rate(5000) // 5e-5
func WarmupPolynomialDecay(initRate float64, numTrainSteps, numWarmupSteps int64, power float64, startWarmupStep int64) LinearWarmup {
	return schedule.WarmupPolynomialDecay(initRate, numTrainSteps, numWarmupSteps, power, startWarmupStep)
}
