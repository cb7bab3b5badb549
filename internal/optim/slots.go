package optim

import (
	"sort"

	"github.com/born-ml/adamacc/internal/nn"
	"github.com/born-ml/adamacc/internal/tensor"
)

type slotKey struct {
	variable string
	slot     string
	shape    string
}

// slots owns per-variable auxiliary state. A slot is created zero-filled the
// first time it is asked for and lives as long as the optimizer.
type slots struct {
	vars map[slotKey]*nn.Parameter
}

func newSlots() *slots {
	return &slots{vars: make(map[slotKey]*nn.Parameter)}
}

// get returns the slot named "<variable>/<slot>" for a variable of the given
// shape, creating it on first use.
func (s *slots) get(variable, slot string, shape tensor.Shape) *nn.Parameter {
	key := slotKey{variable: variable, slot: slot, shape: shape.String()}
	if p, ok := s.vars[key]; ok {
		return p
	}
	p := nn.NewSlot(variable+"/"+slot, shape)
	s.vars[key] = p
	return p
}

// list returns every slot sorted by name.
func (s *slots) list() []*nn.Parameter {
	out := make([]*nn.Parameter, 0, len(s.vars))
	for _, p := range s.vars {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
