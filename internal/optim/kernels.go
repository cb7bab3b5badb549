package optim

import (
	"math"

	"github.com/born-ml/adamacc/internal/parallel"
)

// adamStep holds the scalars of one AdamW update for one variable.
type adamStep struct {
	lr    float64
	beta1 float64
	beta2 float64
	eps   float64
	decay float64 // 0 when the variable is excluded from weight decay
}

// adamUpdate computes the next moments and parameter values into the next*
// slices. The current values are only read.
//
//	m' = beta1*m + (1-beta1)*g
//	v' = beta2*v + (1-beta2)*g²
//	u  = m' / (sqrt(v') + eps) + decay*param
//	param' = param - lr*u
//
// The decay term is added to the update, not to the gradient, so it never
// enters the moments.
func adamUpdate(cfg parallel.Config, k adamStep, param, grad, m, v, nextParam, nextM, nextV []float64) {
	parallel.For(len(param), cfg, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			g := grad[i]
			nm := k.beta1*m[i] + (1.0-k.beta1)*g
			nv := k.beta2*v[i] + (1.0-k.beta2)*g*g

			update := nm / (math.Sqrt(nv) + k.eps)
			if k.decay != 0 {
				update += k.decay * param[i]
			}

			nextM[i] = nm
			nextV[i] = nv
			nextParam[i] = param[i] - k.lr*update
		}
	})
}
