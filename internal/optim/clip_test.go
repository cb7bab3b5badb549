package optim_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/adamacc/internal/optim"
	"github.com/born-ml/adamacc/internal/tensor"
)

func TestClipByValue(t *testing.T) {
	g := dense(t, []float64{-3, -0.5, 0, 0.5, 3})
	clipped := optim.ClipByValue(g, 1)

	assert.Equal(t, []float64{-1, -0.5, 0, 0.5, 1}, clipped.Values())
	assert.Equal(t, []float64{-3, -0.5, 0, 0.5, 3}, g.Data(), "input is not modified")
}

func TestClipByValue_KeepsSparsity(t *testing.T) {
	rows := dense(t, []float64{5, -5}, 1, 2)
	g, err := tensor.NewIndexedSlices([]int{0}, rows, tensor.Shape{4, 2})
	require.NoError(t, err)

	clipped, ok := optim.ClipByValue(g, 2).(*tensor.IndexedSlices)
	require.True(t, ok)
	assert.Equal(t, []int{0}, clipped.Indices())
	assert.Equal(t, []float64{2, -2}, clipped.Values())
}

func TestGlobalNorm(t *testing.T) {
	grads := []tensor.Gradient{
		dense(t, []float64{3}),
		nil,
		dense(t, []float64{0, 4}),
	}
	assert.InDelta(t, 5.0, optim.GlobalNorm(grads), tol)
	assert.Equal(t, 0.0, optim.GlobalNorm(nil))
}

func TestClipByGlobalNorm_Rescales(t *testing.T) {
	grads := []tensor.Gradient{
		dense(t, []float64{3, 0}),
		nil,
		dense(t, []float64{0, 4}),
	}

	clipped, norm := optim.ClipByGlobalNorm(grads, 1.0)
	assert.InDelta(t, 5.0, norm, tol)
	assert.Nil(t, clipped[1])
	assert.InDeltaSlice(t, []float64{0.6, 0}, clipped[0].Values(), tol)
	assert.InDeltaSlice(t, []float64{0, 0.8}, clipped[2].Values(), tol)
	assert.InDelta(t, 1.0, optim.GlobalNorm(clipped), tol)
}

func TestClipByGlobalNorm_BelowThresholdUnchanged(t *testing.T) {
	grads := []tensor.Gradient{dense(t, []float64{0.3, 0.4})}

	clipped, norm := optim.ClipByGlobalNorm(grads, 1.0)
	assert.InDelta(t, 0.5, norm, tol)
	assert.Equal(t, []float64{0.3, 0.4}, clipped[0].Values())
}

func TestClipByGlobalNorm_Sparse(t *testing.T) {
	rows := dense(t, []float64{6, 8}, 1, 2)
	sparse, err := tensor.NewIndexedSlices([]int{2}, rows, tensor.Shape{3, 2})
	require.NoError(t, err)

	clipped, norm := optim.ClipByGlobalNorm([]tensor.Gradient{sparse}, 1.0)
	assert.InDelta(t, 10.0, norm, tol)

	out, ok := clipped[0].(*tensor.IndexedSlices)
	require.True(t, ok)
	assert.Equal(t, []int{2}, out.Indices())
	assert.InDelta(t, 1.0, math.Hypot(out.Values()[0], out.Values()[1]), tol)
}

func TestClipByGlobalNorm_NonFinite(t *testing.T) {
	for _, bad := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		grads := []tensor.Gradient{
			dense(t, []float64{bad, 1}),
			nil,
			dense(t, []float64{2}),
		}

		clipped, norm := optim.ClipByGlobalNorm(grads, 1.0)
		assert.True(t, math.IsInf(norm, 1) || math.IsNaN(norm), "norm %v", norm)
		assert.Nil(t, clipped[1])
		for _, i := range []int{0, 2} {
			for _, v := range clipped[i].Values() {
				assert.True(t, math.IsNaN(v), "gradient %d for input %v: %v", i, bad, v)
			}
		}
	}
}

func TestVariableName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"bert/encoder/layer_0/kernel:0", "bert/encoder/layer_0/kernel"},
		{"w:12", "w"},
		{"w", "w"},
		{"w:x", "w:x"},
		{"a:1/b", "a:1/b"},
		{"w:", "w:"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, optim.VariableName(tt.in), tt.in)
	}
}
