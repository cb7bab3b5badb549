package optim

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/adamacc/internal/tensor"
)

// ClipByValue clamps every element of g to [-limit, limit]. Sparse
// gradients stay sparse.
func ClipByValue(g tensor.Gradient, limit float64) tensor.Gradient {
	return g.Map(func(x float64) float64 {
		return math.Max(-limit, math.Min(limit, x))
	})
}

// GlobalNorm returns the Euclidean norm of all gradients taken together.
// Nil entries are ignored.
func GlobalNorm(grads []tensor.Gradient) float64 {
	var sumSq float64
	for _, g := range grads {
		if tensor.IsNil(g) || len(g.Values()) == 0 {
			continue
		}
		n := floats.Norm(g.Values(), 2)
		sumSq += n * n
	}
	return math.Sqrt(sumSq)
}

// ClipByGlobalNorm rescales every gradient by the same factor
//
//	clipNorm / max(GlobalNorm(grads), clipNorm)
//
// so the combined norm is at most clipNorm. Nil entries stay nil. The norm
// before clipping is returned alongside.
//
// When the norm is infinite or NaN every value of every gradient becomes
// NaN, so the overflow cannot pass for a small update.
func ClipByGlobalNorm(grads []tensor.Gradient, clipNorm float64) ([]tensor.Gradient, float64) {
	norm := GlobalNorm(grads)
	scale := clipNorm / math.Max(norm, clipNorm)
	if math.IsInf(norm, 0) || math.IsNaN(norm) {
		scale = math.NaN()
	}

	out := make([]tensor.Gradient, len(grads))
	for i, g := range grads {
		if tensor.IsNil(g) {
			continue
		}
		if scale == 1 {
			out[i] = g
			continue
		}
		out[i] = g.Scale(scale)
	}
	return out, norm
}
