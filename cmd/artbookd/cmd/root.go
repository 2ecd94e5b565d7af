// Package cmd wires artbookd's cobra commands together.
package cmd

import (
	"os"

	"cosmossdk.io/log"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for artbookd: a single-instrument
// order book engine exposing a WebSocket trade/reject feed, a Prometheus
// metrics endpoint, and a synthetic load generator for comparing LongART
// against the btree/skiplist baselines.
func NewRootCmd() *cobra.Command {
	logger := log.NewLogger(os.Stdout)

	rootCmd := &cobra.Command{
		Use:   "artbookd",
		Short: "In-memory ART-backed limit order book matching engine",
		Long: `artbookd runs a single-instrument price/time-priority limit order
book matching engine backed by LongART, a 64-bit-keyed adaptive radix tree.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SetOut(cmd.OutOrStdout())
			cmd.SetErr(cmd.ErrOrStderr())
			return nil
		},
	}

	rootCmd.AddCommand(
		NewServeCmd(logger),
		NewBenchCmd(logger),
	)

	return rootCmd
}
