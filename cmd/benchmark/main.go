// Command benchmark runs a synthetic order stream generated from the
// same seed against LongART and the btree/skiplist baselines and prints
// timing and trade statistics for each. With more than one worker the
// interleaving of worker shards differs between runs, so the backends
// see the same commands in an order that can differ. It is deliberately independent of artbookd's
// cobra surface, in the spirit of the benchmark driver the engine's
// baselines exist to be measured against (spec.md §1): external,
// minimal, and talking to the engine only through OrderBook's exported
// operations.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/openalpha/artbook/internal/book"
	"github.com/openalpha/artbook/internal/loadgen"
)

func main() {
	n := flag.Int("n", 500000, "number of synthetic commands to feed each backend")
	seed := flag.Int64("seed", 1, "random seed for the synthetic order generator")
	workers := flag.Int("workers", 4, "number of concurrent command-generator goroutines")
	flag.Parse()

	cfg := loadgen.DefaultConfig()
	pcfg := loadgen.DefaultParallelConfig()
	pcfg.Workers = *workers

	results := []loadgen.Result{
		loadgen.RunART(cfg, pcfg, *seed, *n),
		loadgen.RunBaseline(book.BackendBTree, cfg, pcfg, *seed, *n),
		loadgen.RunBaseline(book.BackendSkiplist, cfg, pcfg, *seed, *n),
	}

	w := os.Stdout
	fmt.Fprintf(w, "%-10s %10s %14s %10s %10s %16s\n", "backend", "commands", "elapsed", "trades", "volume", "vwap")
	for _, r := range results {
		fmt.Fprintf(w, "%-10s %10d %14s %10d %10d %16s\n",
			r.Backend, r.Commands, r.Elapsed, r.Trades, r.VolumeFilled, r.VWAP().String())
	}
}
