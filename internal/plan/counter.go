package plan

import "github.com/born-ml/adamacc/internal/tensor"

// Counter is a named int64 scalar such as the global step.
//
// Counters change only through committed plans.
type Counter struct {
	name  string
	value int64
}

// NewCounter creates a zero counter.
func NewCounter(name string) *Counter {
	return &Counter{name: name}
}

// Name returns the counter name.
func (c *Counter) Name() string {
	return c.name
}

// Value returns the committed value.
func (c *Counter) Value() int64 {
	if c == nil {
		return 0
	}
	return c.value
}

// Tensor returns the value as a scalar tensor, the layout checkpoints use.
func (c *Counter) Tensor() *tensor.Tensor {
	t := tensor.Zeros(tensor.Shape{})
	t.Data()[0] = float64(c.value)
	return t
}
