package plan_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/adamacc/internal/plan"
	"github.com/born-ml/adamacc/internal/tensor"
)

func TestPlan_CommitAppliesInOrder(t *testing.T) {
	w := tensor.Zeros(tensor.Shape{2})
	step := plan.NewCounter("global_step")

	p := plan.New("update")
	p.Assign("w", w, []float64{1, 2})
	p.Increment(step, 1)
	p.Assign("w", w, []float64{3, 4})

	// Nothing is visible before commit.
	assert.Equal(t, []float64{0, 0}, w.Data())
	assert.Equal(t, int64(0), step.Value())

	require.NoError(t, p.Commit())
	assert.Equal(t, []float64{3, 4}, w.Data())
	assert.Equal(t, int64(1), step.Value())
	assert.True(t, p.Committed())
}

func TestPlan_CommitIsAllOrNothing(t *testing.T) {
	a := tensor.Zeros(tensor.Shape{2})
	b := tensor.Zeros(tensor.Shape{3})
	step := plan.NewCounter("global_step")

	p := plan.New("broken")
	p.Assign("a", a, []float64{1, 1})
	p.Increment(step, 1)
	p.Assign("b", b, []float64{1})

	err := p.Commit()
	require.Error(t, err)
	assert.True(t, errors.Is(err, plan.ErrSizeMismatch))
	assert.Equal(t, []float64{0, 0}, a.Data())
	assert.Equal(t, int64(0), step.Value())
	assert.False(t, p.Committed())
}

func TestPlan_CommitOnce(t *testing.T) {
	step := plan.NewCounter("global_step")
	p := plan.New("step")
	p.Increment(step, 1)

	require.NoError(t, p.Commit())
	err := p.Commit()
	assert.True(t, errors.Is(err, plan.ErrAlreadyCommitted))
	assert.Equal(t, int64(1), step.Value())
}

func TestPlan_AppendSequencesAfter(t *testing.T) {
	counter := plan.NewCounter("counter")

	outer := plan.New("outer")
	outer.Increment(counter, 1)

	inner := plan.New("inner")
	inner.Increment(counter, 5)

	outer.Append(inner)
	outer.Reset(counter)

	assert.Equal(t, []string{"counter", "counter", "counter"}, outer.Targets())
	assert.True(t, inner.Empty())

	require.NoError(t, outer.Commit())
	assert.Equal(t, int64(0), counter.Value())
}

func TestPlan_Set(t *testing.T) {
	c := plan.NewCounter("global_step")
	w := tensor.Zeros(tensor.Shape{2})

	p := plan.New("restore")
	p.Increment(c, 2)
	p.Set(c, 41)
	p.Increment(c, 1)
	assert.Equal(t, plan.KindSet, p.Ops()[1].Kind)
	assert.Equal(t, int64(41), p.Ops()[1].Delta())
	assert.Equal(t, int64(0), c.Value())

	require.NoError(t, p.Commit())
	assert.Equal(t, int64(42), c.Value())

	// A failing plan leaves the counter alone.
	broken := plan.New("restore")
	broken.Set(c, 7)
	broken.Assign("w", w, []float64{1})
	assert.Error(t, broken.Commit())
	assert.Equal(t, int64(42), c.Value())
}

func TestPlan_String(t *testing.T) {
	w := tensor.Zeros(tensor.Shape{1})
	c := plan.NewCounter("global_step")

	p := plan.New("adamw")
	p.Assign("w", w, []float64{1})
	p.Increment(c, 1)
	p.Reset(c)
	p.Set(c, 9)

	assert.Equal(t, "plan adamw:\n  assign w (1)\n  increment global_step by 1\n  reset global_step\n  set global_step to 9", p.String())
}

func TestCounter_Tensor(t *testing.T) {
	c := plan.NewCounter("counter")
	p := plan.New("inc")
	p.Increment(c, 3)
	require.NoError(t, p.Commit())

	ct := c.Tensor()
	assert.Equal(t, 0, len(ct.Shape()))
	assert.Equal(t, []float64{3}, ct.Data())
}
