package schedule_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/born-ml/adamacc/internal/schedule"
)

const tol = 1e-12

func TestConstant(t *testing.T) {
	c := schedule.Constant(0.5)
	assert.Equal(t, 0.5, c.Rate(0))
	assert.Equal(t, 0.5, c.Rate(1_000_000))
}

func TestPolynomialDecay_Linear(t *testing.T) {
	p := schedule.PolynomialDecay{InitialRate: 1.0, DecaySteps: 100, Power: 1.0}

	assert.InDelta(t, 1.0, p.Rate(0), tol)
	assert.InDelta(t, 0.75, p.Rate(25), tol)
	assert.InDelta(t, 0.5, p.Rate(50), tol)
	assert.InDelta(t, 0.0, p.Rate(100), tol)
	// No cycling: the rate stays at the end rate.
	assert.InDelta(t, 0.0, p.Rate(250), tol)
}

func TestPolynomialDecay_Power(t *testing.T) {
	p := schedule.PolynomialDecay{InitialRate: 2.0, EndRate: 0.5, DecaySteps: 10, Power: 2.0}

	// (2.0 - 0.5) * (1 - 0.5)^2 + 0.5
	assert.InDelta(t, 1.5*0.25+0.5, p.Rate(5), tol)
	assert.InDelta(t, 0.5, p.Rate(10), tol)
	assert.InDelta(t, 0.5, p.Rate(11), tol)
}

func TestPolynomialDecay_Cycle(t *testing.T) {
	p := schedule.PolynomialDecay{InitialRate: 1.0, DecaySteps: 10, Power: 1.0, Cycle: true}

	assert.InDelta(t, 1.0, p.Rate(0), tol)
	assert.InDelta(t, 0.0, p.Rate(10), tol)
	// Step 15 decays over a horizon of 20.
	assert.InDelta(t, 0.25, p.Rate(15), tol)
}

func TestWarmupPolynomialDecay_NoWarmupIsPureDecay(t *testing.T) {
	const (
		initLR     = 1e-3
		trainSteps = 1000
	)
	lr := schedule.WarmupPolynomialDecay(initLR, trainSteps, 0, 1.0, 0)
	decay := schedule.PolynomialDecay{InitialRate: initLR, DecaySteps: trainSteps, Power: 1.0}

	prev := math.Inf(1)
	for s := int64(0); s <= trainSteps; s++ {
		got := lr.Rate(s)
		assert.InDelta(t, decay.Rate(s), got, tol, "step %d", s)
		assert.LessOrEqual(t, got, prev, "rate increased at step %d", s)
		prev = got
	}
	assert.Equal(t, 0.0, lr.Rate(trainSteps))
	assert.False(t, lr.InWarmup(0))
}

func TestWarmupPolynomialDecay_Warmup(t *testing.T) {
	const (
		initLR      = 1e-4
		trainSteps  = 10000
		warmupSteps = 100
		start       = 50
	)
	lr := schedule.WarmupPolynomialDecay(initLR, trainSteps, warmupSteps, 1.0, start)
	decay := schedule.PolynomialDecay{InitialRate: initLR, DecaySteps: trainSteps, Power: 1.0}

	for s := int64(start); s < start+warmupSteps; s++ {
		want := initLR * float64(s-start) / warmupSteps
		assert.InDelta(t, want, lr.Rate(s), tol, "step %d", s)
		assert.True(t, lr.InWarmup(s))
	}

	// The first step after warmup is the decay value at that global step.
	end := int64(start + warmupSteps)
	assert.InDelta(t, decay.Rate(end), lr.Rate(end), tol)
	assert.False(t, lr.InWarmup(end))
}

func TestWarmupPolynomialDecay_BeforeWarmupStartIsNegative(t *testing.T) {
	lr := schedule.WarmupPolynomialDecay(1.0, 1000, 10, 1.0, 20)

	assert.InDelta(t, -0.5, lr.Rate(15), tol)
	assert.InDelta(t, 0.0, lr.Rate(20), tol)
	assert.True(t, lr.InWarmup(0))
}

func TestPolynomialDecay_NoDecaySteps(t *testing.T) {
	for _, steps := range []int64{0, -5} {
		p := schedule.PolynomialDecay{InitialRate: 1, EndRate: 0.1, DecaySteps: steps, Power: 1, Cycle: true}
		for _, step := range []int64{0, 1, 100} {
			rate := p.Rate(step)
			assert.False(t, math.IsNaN(rate))
			assert.Equal(t, 0.1, rate)
		}
	}
}

func TestLinearWarmup_NilBase(t *testing.T) {
	w := schedule.LinearWarmup{InitialRate: 0.2, WarmupSteps: 10}
	assert.InDelta(t, 0.1, w.Rate(5), tol)
	assert.Equal(t, 0.2, w.Rate(10))
	assert.Equal(t, 0.2, w.Rate(1000))

	noWarmup := schedule.LinearWarmup{InitialRate: 0.3}
	assert.NotPanics(t, func() { noWarmup.Rate(7) })
	assert.Equal(t, 0.3, noWarmup.Rate(7))
}
