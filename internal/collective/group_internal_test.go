package collective

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openRounds(g *Group) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rounds)
}

func TestGroup_DropsAbandonedRound(t *testing.T) {
	g, err := NewGroup(3)
	require.NoError(t, err)
	r, err := g.Replica(0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.AllReduce(ctx, "w", []float64{1})
	require.Error(t, err)

	assert.Equal(t, 0, openRounds(g))
	assert.Equal(t, int64(0), r.seq)
}

func TestGroup_DropsCompletedRounds(t *testing.T) {
	g, err := NewGroup(2)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for rank := range 2 {
		r, err := g.Replica(rank)
		require.NoError(t, err)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 3 {
				_, err := r.AllReduce(context.Background(), "w", []float64{1})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, openRounds(g))
}
