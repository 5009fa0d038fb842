// Package parallel provides chunked parallel iteration for the CPU
// engine's elementwise kernels and batched matrix products.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls how an iteration space is split across goroutines.
type Config struct {
	Enabled      bool
	NumWorkers   int
	MinChunkSize int // below this many items the loop stays sequential
}

// DefaultConfig sizes the worker count to the CPU count. Small arrays run
// sequentially; goroutine startup costs more than the work they carry.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 4096,
	}
}

// For executes f(i) for i in [0, n). Each index must touch disjoint output
// elements; the split is by contiguous chunks so writers stay cache-local.
func For(n int, cfg Config, f func(i int)) {
	if !cfg.Enabled || n < cfg.MinChunkSize {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	chunk := (n + cfg.NumWorkers - 1) / cfg.NumWorkers
	if chunk < cfg.MinChunkSize {
		chunk = cfg.MinChunkSize
	}
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// ForBatches executes f(b) for b in [0, batches), one goroutine per index,
// for loops whose per-item work is already large (one matrix product per
// index).
func ForBatches(batches int, cfg Config, f func(b int)) {
	if !cfg.Enabled || batches < 2 {
		for b := 0; b < batches; b++ {
			f(b)
		}
		return
	}
	var wg sync.WaitGroup
	wg.Add(batches)
	for b := 0; b < batches; b++ {
		go func(b int) {
			defer wg.Done()
			f(b)
		}(b)
	}
	wg.Wait()
}
