package cmd

import (
	"fmt"

	"cosmossdk.io/log"
	"github.com/openalpha/artbook/internal/book"
	"github.com/openalpha/artbook/internal/loadgen"
	"github.com/spf13/cobra"
)

// NewBenchCmd runs a synthetic command stream generated from the same
// seed against LongART and each comparison backend (with more than one
// worker, the interleaving of worker shards differs between runs) and
// prints timing/trade statistics,
// mirroring the benchmark-comparison harness the engine's baselines are
// meant to be measured against (spec.md §1).
func NewBenchCmd(logger log.Logger) *cobra.Command {
	var (
		n       int
		workers int
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Compare LongART against the btree and skiplist baselines",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.With("command", "bench")
			cfg := loadgen.DefaultConfig()
			pcfg := loadgen.DefaultParallelConfig()
			pcfg.Workers = workers

			log.Info("starting benchmark run", "commands", n, "workers", workers)

			results := []loadgen.Result{
				loadgen.RunART(cfg, pcfg, 1, n),
				loadgen.RunBaseline(book.BackendBTree, cfg, pcfg, 1, n),
				loadgen.RunBaseline(book.BackendSkiplist, cfg, pcfg, 1, n),
			}

			log.Info("benchmark run complete")

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-10s %10s %12s %10s %14s\n", "backend", "commands", "elapsed", "trades", "vwap")
			for _, r := range results {
				fmt.Fprintf(out, "%-10s %10d %12s %10d %14s\n", r.Backend, r.Commands, r.Elapsed, r.Trades, r.VWAP().String())
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&n, "n", 200000, "number of synthetic commands to feed each backend")
	cmd.Flags().IntVar(&workers, "workers", 4, "number of concurrent command-generator goroutines")
	return cmd
}
