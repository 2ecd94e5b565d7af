package book

import (
	"fmt"
	"time"

	"cosmossdk.io/log"
	"github.com/openalpha/artbook/internal/art"
)

// Book is a single-instrument, price/time-priority limit order book
// (spec.md §4.5). It is a single-writer state machine: every exported
// method must be called from one goroutine at a time (spec.md §5).
type Book struct {
	bids *SideBook
	asks *SideBook

	orders *orderPool
	index  *OrderIndex

	sink    EventSink
	metrics *Collector
	logger  log.Logger
}

// New constructs an empty book, rejecting cfg outright if it names a
// non-positive pool capacity rather than silently building a book that
// can never hold anything (spec.md §7). sink receives Trade/Reject
// events; pass a no-op sink (a MultiSink with no members) if events
// aren't needed. metrics may be nil to disable Prometheus
// instrumentation entirely. logger may be nil, in which case Book logs
// nothing (equivalent to cosmossdk.io/log.NewNopLogger()).
func New(cfg Config, sink EventSink, metrics *Collector, logger log.Logger) (*Book, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	logger = logger.With("module", "book")

	var obs art.PoolObserver
	if metrics != nil {
		obs = poolObserver{c: metrics}
	}
	nodePool, err := art.NewPool[*OrderBucket](cfg.ART, logger, obs)
	if err != nil {
		return nil, fmt.Errorf("book: %w", err)
	}
	bids, err := newSideBook(Bid, nodePool, cfg.Bucket, logger)
	if err != nil {
		return nil, fmt.Errorf("book: %w", err)
	}
	asks, err := newSideBook(Ask, nodePool, cfg.Bucket, logger)
	if err != nil {
		return nil, fmt.Errorf("book: %w", err)
	}

	return &Book{
		bids:    bids,
		asks:    asks,
		orders:  newOrderPool(cfg.Order),
		index:   newOrderIndex(),
		sink:    sink,
		metrics: metrics,
		logger:  logger,
	}, nil
}

func (b *Book) sideBook(s Side) *SideBook {
	if s == Bid {
		return b.bids
	}
	return b.asks
}

// NewOrder is the engine's hot path (spec.md §4.5): duplicate check,
// cross loop against the opposite side, then a residual insert on the
// same side for whatever remains. Rejections are reported only through
// the sink. It panics on a zero price and on an internal invariant
// violation such as a best-price cursor with no bucket behind it.
func (b *Book) NewOrder(cmd OrderCommand) {
	start := time.Now()
	defer func() {
		if b.metrics != nil {
			b.metrics.observeLatency(time.Since(start))
			b.metrics.OrdersTotal.WithLabelValues(cmd.Side.String()).Inc()
			b.updateBookMetrics()
		}
	}()

	if cmd.Size == 0 {
		b.reject(cmd.ID, InvalidSize)
		return
	}
	if cmd.Price == 0 {
		// Contract violation (spec.md §7): a zero price is not a
		// recoverable rejection, it indicates a malformed command.
		b.logger.Error("NewOrder called with price == 0", "order_id", cmd.ID)
		panic("book: NewOrder called with price == 0")
	}
	if b.index.contains(cmd.ID) {
		b.reject(cmd.ID, DuplicateId)
		return
	}

	remaining := cmd.Size
	opposite := b.sideBook(cmd.Side.Opposite())

	for remaining > 0 {
		if !opposite.crossable(cmd.Side, cmd.Price) {
			break
		}
		bucket, ok := opposite.bestBucket()
		if !ok {
			break
		}

		_, legs := bucket.consume(remaining)
		for _, leg := range legs {
			remaining -= leg.filled
			b.sink.OnTrade(Trade{
				TradeID:   newTradeID(),
				MakerID:   leg.order.ID,
				TakerID:   cmd.ID,
				Price:     bucket.Price,
				Size:      leg.filled,
				TakerSide: cmd.Side,
				Timestamp: cmd.Timestamp,
			})
			if leg.done {
				b.index.remove(leg.order.ID)
				b.orders.release(leg.order)
				opposite.orderCount--
			}
		}

		if bucket.isEmpty() {
			opposite.removeBucket(bucket.Price)
		}
	}

	if remaining > 0 {
		same := b.sideBook(cmd.Side)
		bucket := same.getOrCreateBucket(cmd.Price)

		o := b.orders.acquire()
		o.ID = cmd.ID
		o.Side = cmd.Side
		o.Price = cmd.Price
		o.RemainingSize = remaining
		o.UID = cmd.UID
		o.Timestamp = cmd.Timestamp

		bucket.append(o)
		b.index.insert(cmd.ID, o)
		same.orderCount++
	}
}

// reject reports a rejected command. RejectsTotal is incremented solely
// through the PrometheusSink that serve.go wires into the sink chain,
// not here too — b.metrics and that sink commonly point at the same
// Collector (see cmd/artbookd/cmd/serve.go), and double-wiring the
// increment would double-count every reject.
func (b *Book) reject(id OrderId, reason RejectReason) {
	b.logger.Info("order rejected", "order_id", id, "reason", reason.String())
	b.sink.OnReject(Reject{ID: id, Reason: reason})
}

// Cancel removes a resting order by id, returning true if it was found
// and removed (spec.md §6: cancel is part of the engine's optional-but-
// implemented surface, resolved in SPEC_FULL.md §9).
func (b *Book) Cancel(id OrderId) bool {
	o, ok := b.index.get(id)
	if !ok {
		return false
	}
	side := b.sideBook(o.Side)
	bucket, found := side.tree.Get(o.Price)
	if !found {
		b.logger.Error("order index points at a price with no bucket", "order_id", id, "price", o.Price)
		panic("book: order index points at a price with no bucket")
	}
	bucket.cancel(o)
	b.index.remove(id)
	b.orders.release(o)
	side.orderCount--
	if bucket.isEmpty() {
		side.removeBucket(bucket.Price)
	}
	if b.metrics != nil {
		b.updateBookMetrics()
	}
	return true
}

// updateBookMetrics mirrors the book's current shape into the gauges
// OrdersTotal/RejectsTotal don't already cover: resting order counts,
// distinct price-level depth, and the bid/ask spread, by side.
func (b *Book) updateBookMetrics() {
	b.metrics.OrdersActive.WithLabelValues(Bid.String()).Set(float64(b.bids.orderCount))
	b.metrics.OrdersActive.WithLabelValues(Ask.String()).Set(float64(b.asks.orderCount))
	b.metrics.BookDepth.WithLabelValues(Bid.String()).Set(float64(b.bids.tree.Len()))
	b.metrics.BookDepth.WithLabelValues(Ask.String()).Set(float64(b.asks.tree.Len()))

	bid, bidOK := b.BestBid()
	ask, askOK := b.BestAsk()
	if bidOK && askOK {
		b.metrics.SpreadTicks.Set(float64(ask.Price) - float64(bid.Price))
	} else {
		b.metrics.SpreadTicks.Set(0)
	}
}

// BestBid returns the best (highest) resting bid price and the volume
// resting there.
func (b *Book) BestBid() (PriceLevel, bool) {
	return bestOf(b.bids)
}

// BestAsk returns the best (lowest) resting ask price and the volume
// resting there.
func (b *Book) BestAsk() (PriceLevel, bool) {
	return bestOf(b.asks)
}

func bestOf(s *SideBook) (PriceLevel, bool) {
	bucket, ok := s.bestBucket()
	if !ok {
		return PriceLevel{}, false
	}
	return PriceLevel{Price: bucket.Price, Volume: bucket.TotalVolume}, true
}

// OrderCount returns the number of currently resting orders.
func (b *Book) OrderCount() int {
	return b.index.len()
}
