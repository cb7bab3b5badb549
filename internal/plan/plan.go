// Package plan is the intermediate representation of one optimizer update.
//
// Optimizers never write state while they compute. They stage every write
// (new parameter values, new moments, counter changes) into a Plan, in the
// order the writes must become visible. Commit is the executor: it validates
// the whole plan and then performs all writes, so a caller observes either
// none of an update or all of it.
//
// Appending one plan to another expresses a control dependency: every op of
// the appended plan runs after every op already present.
package plan

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/born-ml/adamacc/internal/tensor"
)

// Common errors.
var (
	ErrAlreadyCommitted = errors.New("plan already committed")
	ErrSizeMismatch     = errors.New("assigned values do not match target size")
)

// Kind identifies an operation type.
type Kind int

// Operation kinds.
const (
	KindAssign Kind = iota
	KindIncrement
	KindReset
	KindSet
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindAssign:
		return "assign"
	case KindIncrement:
		return "increment"
	case KindReset:
		return "reset"
	case KindSet:
		return "set"
	default:
		return "unknown"
	}
}

// Op is a single staged write.
type Op struct {
	Kind   Kind
	Target string // Name of the written variable or counter.

	dst     *tensor.Tensor
	values  []float64
	counter *Counter
	delta   int64
}

// Values returns the staged values of an assign op (nil for counter ops).
func (o Op) Values() []float64 {
	return o.values
}

// Delta returns the increment of an increment op or the value of a set op.
func (o Op) Delta() int64 {
	return o.delta
}

func (o Op) validate() error {
	if o.Kind == KindAssign && len(o.values) != o.dst.Len() {
		return errors.Wrapf(ErrSizeMismatch, "%s: %d values for %d elements", o.Target, len(o.values), o.dst.Len())
	}
	return nil
}

func (o Op) apply() {
	switch o.Kind {
	case KindAssign:
		copy(o.dst.Data(), o.values)
	case KindIncrement:
		o.counter.value += o.delta
	case KindReset:
		o.counter.value = 0
	case KindSet:
		o.counter.value = o.delta
	}
}

func (o Op) String() string {
	switch o.Kind {
	case KindAssign:
		return fmt.Sprintf("assign %s (%d)", o.Target, len(o.values))
	case KindIncrement:
		return fmt.Sprintf("increment %s by %d", o.Target, o.delta)
	case KindSet:
		return fmt.Sprintf("set %s to %d", o.Target, o.delta)
	default:
		return fmt.Sprintf("%s %s", o.Kind, o.Target)
	}
}

// Plan is an ordered list of staged writes.
type Plan struct {
	name      string
	ops       []Op
	committed bool
}

// New creates an empty plan.
func New(name string) *Plan {
	return &Plan{name: name}
}

// Name returns the plan name.
func (p *Plan) Name() string {
	return p.name
}

// Assign stages dst = values. values is owned by the plan from now on.
func (p *Plan) Assign(name string, dst *tensor.Tensor, values []float64) {
	p.ops = append(p.ops, Op{Kind: KindAssign, Target: name, dst: dst, values: values})
}

// Increment stages c += delta.
func (p *Plan) Increment(c *Counter, delta int64) {
	p.ops = append(p.ops, Op{Kind: KindIncrement, Target: c.Name(), counter: c, delta: delta})
}

// Reset stages c = 0.
func (p *Plan) Reset(c *Counter) {
	p.ops = append(p.ops, Op{Kind: KindReset, Target: c.Name(), counter: c})
}

// Set stages c = value.
func (p *Plan) Set(c *Counter, value int64) {
	p.ops = append(p.ops, Op{Kind: KindSet, Target: c.Name(), counter: c, delta: value})
}

// Append moves every op of other to the end of p. other is left empty.
func (p *Plan) Append(other *Plan) {
	if other == nil {
		return
	}
	p.ops = append(p.ops, other.ops...)
	other.ops = nil
}

// Ops returns the staged ops in commit order.
func (p *Plan) Ops() []Op {
	return p.ops
}

// Len returns the number of staged ops.
func (p *Plan) Len() int {
	return len(p.ops)
}

// Empty reports whether the plan performs no writes.
func (p *Plan) Empty() bool {
	return len(p.ops) == 0
}

// Targets returns the written names in commit order, one entry per op.
func (p *Plan) Targets() []string {
	out := make([]string, len(p.ops))
	for i, op := range p.ops {
		out[i] = op.Target
	}
	return out
}

// Committed reports whether Commit succeeded.
func (p *Plan) Committed() bool {
	return p.committed
}

// Commit performs every staged write in order.
//
// All ops are validated before the first write; on error nothing is written.
func (p *Plan) Commit() error {
	if p.committed {
		return errors.Wrap(ErrAlreadyCommitted, p.name)
	}
	for _, op := range p.ops {
		if err := op.validate(); err != nil {
			return errors.Wrapf(err, "plan %s", p.name)
		}
	}
	for _, op := range p.ops {
		op.apply()
	}
	p.committed = true
	return nil
}

// String renders the plan one op per line.
func (p *Plan) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "plan %s:", p.name)
	for _, op := range p.ops {
		b.WriteString("\n  ")
		b.WriteString(op.String())
	}
	return b.String()
}
