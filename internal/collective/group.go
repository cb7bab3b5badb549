// Package collective provides an in-process all-reduce for replicas that
// train as goroutines of one program.
//
// Example:
//
//	group, _ := collective.NewGroup(4)
//	for rank := range 4 {
//	    go train(ctx, group.Replica(rank))
//	}
package collective

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Common errors.
var (
	ErrInvalidSize   = errors.New("group size must be positive")
	ErrInvalidRank   = errors.New("rank out of range")
	ErrRoundMismatch = errors.New("replicas disagree on all-reduce round")
)

// Group is a fixed set of replicas that reduce together.
type Group struct {
	size int

	mu     sync.Mutex
	rounds map[int64]*round
}

// round is one collective call: the n-th AllReduce of every replica.
type round struct {
	name     string
	sum      []float64
	arrived  int
	departed int
	done     chan struct{}
}

// NewGroup creates a group of size replicas.
func NewGroup(size int) (*Group, error) {
	if size <= 0 {
		return nil, errors.Wrapf(ErrInvalidSize, "size %d", size)
	}
	return &Group{size: size, rounds: make(map[int64]*round)}, nil
}

// Size returns the number of replicas.
func (g *Group) Size() int {
	return g.size
}

// Replica returns the member with the given rank. Each rank must be used by
// a single goroutine.
func (g *Group) Replica(rank int) (*Replica, error) {
	if rank < 0 || rank >= g.size {
		return nil, errors.Wrapf(ErrInvalidRank, "rank %d of %d", rank, g.size)
	}
	return &Replica{group: g, rank: rank}, nil
}

// Replica is one member of a Group.
type Replica struct {
	group *Group
	rank  int
	seq   int64
}

// Rank returns the replica's rank.
func (r *Replica) Rank() int {
	return r.rank
}

// NumReplicas returns the group size.
func (r *Replica) NumReplicas() int {
	return r.group.size
}

// AllReduce adds values into the current round and blocks until every
// replica contributed, then returns the element-wise sum.
//
// If ctx ends before the round completes, the replica withdraws its values
// and the call returns the context error. The replica stays on the same
// round, so a retry with the same name rejoins it. A round nobody is left
// in is dropped.
func (r *Replica) AllReduce(ctx context.Context, name string, values []float64) ([]float64, error) {
	seq := r.seq

	g := r.group
	g.mu.Lock()
	rd, ok := g.rounds[seq]
	if !ok {
		rd = &round{name: name, sum: make([]float64, len(values)), done: make(chan struct{})}
		g.rounds[seq] = rd
	}
	if rd.name != name || len(rd.sum) != len(values) {
		g.mu.Unlock()
		return nil, errors.Wrapf(ErrRoundMismatch, "round %d: rank %d sent %s (%d values), expected %s (%d values)",
			seq, r.rank, name, len(values), rd.name, len(rd.sum))
	}
	floats.Add(rd.sum, values)
	rd.arrived++
	r.seq++
	if rd.arrived == g.size {
		close(rd.done)
	}
	g.mu.Unlock()

	select {
	case <-rd.done:
	case <-ctx.Done():
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	select {
	case <-rd.done:
	default:
		// Cancelled before the last replica arrived.
		floats.Sub(rd.sum, values)
		rd.arrived--
		r.seq = seq
		if rd.arrived == 0 {
			delete(g.rounds, seq)
		}
		return nil, errors.Wrapf(ctx.Err(), "all-reduce %s", name)
	}

	out := make([]float64, len(rd.sum))
	copy(out, rd.sum)
	rd.departed++
	if rd.departed == g.size {
		delete(g.rounds, seq)
	}
	return out, nil
}
