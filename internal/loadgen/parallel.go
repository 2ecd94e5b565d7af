package loadgen

import (
	"sync"

	"github.com/openalpha/artbook/internal/book"
)

// ParallelConfig shapes the worker pool that generates commands
// concurrently, modeled on the teacher's ParallelMatcher/
// MatchingScheduler sharding pattern (parallel.go): a fixed number of
// workers, each producing its own shard of the run, feeding one shared
// channel. Unlike the teacher's matcher, the workers here never touch
// the book itself — only command generation is parallel, since the book
// stays single-writer (spec.md §5).
type ParallelConfig struct {
	Workers   int // number of generator goroutines
	BatchSize int // per-worker channel buffer
}

// DefaultParallelConfig mirrors the teacher's DefaultParallelConfig
// defaults (4 workers, batches of 100).
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{Workers: 4, BatchSize: 100}
}

// generated is one command off the pipeline, paired with whether it
// represents a cancel rather than a resting/crossing order.
type generated struct {
	cmd      book.OrderCommand
	isCancel bool
}

// generate starts pcfg.Workers goroutines, each running its own
// Generator over a disjoint shard of n commands and an id range that
// cannot collide with any other worker's, and fans every command into a
// single channel sized to pcfg.BatchSize*Workers. The channel is closed
// once every worker has finished producing its shard, so the one
// draining goroutine (the book's single writer) can simply range over
// it. Each shard's own command sequence is reproducible; with more than
// one worker, the order in which shards interleave on the channel
// depends on goroutine scheduling and differs from run to run.
func generate(cfg Config, pcfg ParallelConfig, seed int64, n int) <-chan generated {
	workers := pcfg.Workers
	if workers < 1 {
		workers = 1
	}
	batch := pcfg.BatchSize
	if batch < 1 {
		batch = 1
	}

	out := make(chan generated, batch*workers)

	base := n / workers
	remainder := n % workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		count := base
		if w < remainder {
			count++
		}
		// Each worker's ids start at a disjoint offset (n+1 commands
		// apart) so two workers never emit the same OrderCommand.ID,
		// and each gets its own rng stream derived from seed so every
		// shard's commands are reproducible for a fixed (seed, workers, n).
		idOffset := uint64(w) * uint64(n+1)
		workerSeed := seed + int64(w)

		wg.Add(1)
		go func(count int, idOffset uint64, workerSeed int64) {
			defer wg.Done()
			gen := newShard(cfg, workerSeed, idOffset)
			for i := 0; i < count; i++ {
				cmd, isCancel := gen.Next()
				out <- generated{cmd: cmd, isCancel: isCancel}
			}
		}(count, idOffset, workerSeed)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}
