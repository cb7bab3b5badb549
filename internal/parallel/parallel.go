// Package parallel splits element-wise optimizer kernels across goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls how element ranges are split.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Upper bound on concurrently running chunks.
	MinChunkSize int  // Minimum elements per chunk; smaller inputs run inline.
}

// DefaultConfig returns defaults based on CPU count.
//
// Optimizer kernels touch a handful of floats per element, so chunks below a
// few thousand elements cost more to schedule than to compute.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 4096,
	}
}

// Sequential returns a Config that always runs inline.
func Sequential() Config {
	return Config{}
}

// For calls f(lo, hi) over disjoint half-open ranges covering [0, n).
// Chunks never overlap, so f may write its range of a shared slice without
// locking. For returns after every chunk finished.
func For(n int, cfg Config, f func(lo, hi int)) {
	if n <= 0 {
		return
	}
	if !cfg.Enabled || cfg.NumWorkers <= 1 || n < 2*cfg.MinChunkSize {
		f(0, n)
		return
	}

	chunk := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)

	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			f(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}
