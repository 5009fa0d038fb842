package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFor_VisitsEveryIndex(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 8}
	n := 10000

	var counter int64
	For(n, cfg, func(_ int) {
		atomic.AddInt64(&counter, 1)
	})
	assert.Equal(t, int64(n), counter)
}

func TestFor_DisjointWrites(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 8, MinChunkSize: 1}
	out := make([]int, 5000)

	For(len(out), cfg, func(i int) {
		out[i] = i * 2
	})
	for i, v := range out {
		if v != i*2 {
			t.Fatalf("index %d: got %d", i, v)
		}
	}
}

func TestFor_SequentialFallback(t *testing.T) {
	var counter int64
	For(100, Config{Enabled: false}, func(_ int) {
		atomic.AddInt64(&counter, 1)
	})
	assert.Equal(t, int64(100), counter)

	// Below the chunk threshold the loop also stays sequential.
	counter = 0
	For(10, Config{Enabled: true, NumWorkers: 4, MinChunkSize: 64}, func(_ int) {
		counter++ // safe: no goroutines spawned
	})
	assert.Equal(t, int64(10), counter)
}

func TestForBatches(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}
	done := make([]atomic.Bool, 16)

	ForBatches(len(done), cfg, func(b int) {
		done[b].Store(true)
	})
	for i := range done {
		assert.True(t, done[i].Load(), "batch %d not visited", i)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Positive(t, cfg.NumWorkers)
	assert.Positive(t, cfg.MinChunkSize)
}
