package loadgen

import (
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"github.com/openalpha/artbook/internal/book"
)

// Result summarizes one backend's run over a command stream generated
// from the same seed as the other backends' runs.
type Result struct {
	Backend       string
	Commands      int
	Elapsed       time.Duration
	Trades        int
	VolumeFilled  uint64
	NotionalTotal math.LegacyDec // sum of price*size across every trade, for a VWAP report
}

// VWAP returns the volume-weighted average price across every trade
// observed, or the zero value if no trade occurred.
func (r Result) VWAP() math.LegacyDec {
	if r.VolumeFilled == 0 {
		return math.LegacyZeroDec()
	}
	return r.NotionalTotal.QuoInt64(int64(r.VolumeFilled))
}

// countingSink tallies trades without holding onto them, so a long
// benchmark run doesn't balloon memory recording events nobody reads.
type countingSink struct {
	trades   int
	volume   uint64
	notional math.LegacyDec
}

func newCountingSink() *countingSink {
	return &countingSink{notional: math.LegacyZeroDec()}
}

func (c *countingSink) OnTrade(t book.Trade) {
	c.trades++
	c.volume += t.Size
	c.notional = c.notional.Add(math.LegacyNewDec(int64(t.Price)).MulInt64(int64(t.Size)))
}

func (c *countingSink) OnReject(book.Reject) {}

// RunART drives n commands, generated by a bounded worker pool per
// pcfg, through a fresh LongART-backed Book and reports timing and trade
// statistics. Command generation is concurrent; book mutation stays on
// this single goroutine, which is the one that drains the generator
// channel (spec.md §5 single-writer discipline; see parallel.go).
func RunART(cfg Config, pcfg ParallelConfig, seed int64, n int) Result {
	sink := newCountingSink()
	b, err := book.New(book.DefaultConfig(), sink, nil, log.NewNopLogger())
	if err != nil {
		panic(err)
	}

	start := time.Now()
	for g := range generate(cfg, pcfg, seed, n) {
		if g.isCancel {
			b.Cancel(g.cmd.ID)
			continue
		}
		b.NewOrder(g.cmd)
	}
	elapsed := time.Since(start)

	return Result{
		Backend: "longart", Commands: n, Elapsed: elapsed,
		Trades: sink.trades, VolumeFilled: sink.volume, NotionalTotal: sink.notional,
	}
}

// RunBaseline is RunART's twin over one of the comparison backends.
func RunBaseline(backend book.Backend, cfg Config, pcfg ParallelConfig, seed int64, n int) Result {
	sink := newCountingSink()
	b, err := book.NewBaseline(backend, book.DefaultConfig(), sink, log.NewNopLogger())
	if err != nil {
		panic(err)
	}

	name := "btree"
	if backend == book.BackendSkiplist {
		name = "skiplist"
	}

	start := time.Now()
	for g := range generate(cfg, pcfg, seed, n) {
		if g.isCancel {
			continue // BaselineBook does not implement cancel (spec.md §9: deferred for the baselines)
		}
		b.NewOrder(g.cmd)
	}
	elapsed := time.Since(start)

	return Result{
		Backend: name, Commands: n, Elapsed: elapsed,
		Trades: sink.trades, VolumeFilled: sink.volume, NotionalTotal: sink.notional,
	}
}
