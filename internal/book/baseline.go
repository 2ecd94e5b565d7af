package book

import (
	"cosmossdk.io/log"
	"github.com/google/btree"
	"github.com/huandu/skiplist"
)

// priceMap is the ordered u64-keyed map a SideBook needs: exactly the
// surface internal/art.Tree provides. BaselineBook implements the same
// matching algorithm as Book but swaps LongART for one of two
// comparison backends, so cmd/benchmark can report ART's numbers against
// something a reader would recognize from other order book codebases.
type priceMap interface {
	get(price Price) (*OrderBucket, bool)
	put(price Price, b *OrderBucket)
	remove(price Price) (*OrderBucket, bool)
	min() (Price, *OrderBucket, bool)
	max() (Price, *OrderBucket, bool)
}

const btreeDegree = 32

// priceItem wraps a price/bucket pair for btree.Item ordering.
type priceItem struct {
	price  Price
	bucket *OrderBucket
}

func (a *priceItem) Less(other btree.Item) bool {
	return a.price < other.(*priceItem).price
}

// btreePriceMap is grounded on the B-tree order book backend: a single
// github.com/google/btree.BTree keyed by price, degree 32.
type btreePriceMap struct {
	tree *btree.BTree
}

func newBTreePriceMap() *btreePriceMap {
	return &btreePriceMap{tree: btree.New(btreeDegree)}
}

func (m *btreePriceMap) get(price Price) (*OrderBucket, bool) {
	item := m.tree.Get(&priceItem{price: price})
	if item == nil {
		return nil, false
	}
	return item.(*priceItem).bucket, true
}

func (m *btreePriceMap) put(price Price, b *OrderBucket) {
	m.tree.ReplaceOrInsert(&priceItem{price: price, bucket: b})
}

func (m *btreePriceMap) remove(price Price) (*OrderBucket, bool) {
	item := m.tree.Delete(&priceItem{price: price})
	if item == nil {
		return nil, false
	}
	return item.(*priceItem).bucket, true
}

func (m *btreePriceMap) min() (Price, *OrderBucket, bool) {
	item := m.tree.Min()
	if item == nil {
		return 0, nil, false
	}
	pi := item.(*priceItem)
	return pi.price, pi.bucket, true
}

func (m *btreePriceMap) max() (Price, *OrderBucket, bool) {
	item := m.tree.Max()
	if item == nil {
		return 0, nil, false
	}
	pi := item.(*priceItem)
	return pi.price, pi.bucket, true
}

// ascendingComparable orders skiplist keys by plain uint64 comparison,
// mirroring the ascending-price comparator the skiplist order book
// backend uses for asks.
type ascendingComparable struct{}

func (ascendingComparable) Compare(lhs, rhs interface{}) int {
	l, r := lhs.(Price), rhs.(Price)
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	default:
		return 0
	}
}

func (ascendingComparable) CalcScore(key interface{}) float64 {
	return float64(key.(Price))
}

// skiplistPriceMap is grounded on the skip-list order book backend: a
// github.com/huandu/skiplist.SkipList keyed by price, ascending.
type skiplistPriceMap struct {
	list *skiplist.SkipList
}

func newSkiplistPriceMap() *skiplistPriceMap {
	return &skiplistPriceMap{list: skiplist.New(ascendingComparable{})}
}

func (m *skiplistPriceMap) get(price Price) (*OrderBucket, bool) {
	el := m.list.Get(price)
	if el == nil {
		return nil, false
	}
	return el.Value.(*OrderBucket), true
}

func (m *skiplistPriceMap) put(price Price, b *OrderBucket) {
	m.list.Set(price, b)
}

func (m *skiplistPriceMap) remove(price Price) (*OrderBucket, bool) {
	el := m.list.Remove(price)
	if el == nil {
		return nil, false
	}
	return el.Value.(*OrderBucket), true
}

func (m *skiplistPriceMap) min() (Price, *OrderBucket, bool) {
	el := m.list.Front()
	if el == nil {
		return 0, nil, false
	}
	return el.Key().(Price), el.Value.(*OrderBucket), true
}

func (m *skiplistPriceMap) max() (Price, *OrderBucket, bool) {
	el := m.list.Back()
	if el == nil {
		return 0, nil, false
	}
	return el.Key().(Price), el.Value.(*OrderBucket), true
}

// Backend names a priceMap implementation to benchmark against LongART.
type Backend int

const (
	BackendBTree Backend = iota
	BackendSkiplist
)

// baselineSideBook is SideBook's twin, built over a priceMap instead of
// an art.Tree. Kept as a separate, smaller type rather than unifying
// with SideBook behind a generic interface: the matching core only ever
// needs one backend at a time per side, and duplicating the ~30 lines of
// cursor bookkeeping is cheaper to read than threading a type parameter
// through SideBook for a path only cmd/benchmark exercises.
type baselineSideBook struct {
	side   Side
	m      priceMap
	pool   *bucketPool
	logger log.Logger

	best    Price
	hasBest bool

	orderCount int
}

func newBaselineSideBook(side Side, backend Backend, bucketCap int, logger log.Logger) *baselineSideBook {
	var m priceMap
	if backend == BackendBTree {
		m = newBTreePriceMap()
	} else {
		m = newSkiplistPriceMap()
	}
	return &baselineSideBook{
		side:   side,
		m:      m,
		pool:   newBucketPool(bucketCap),
		logger: logger.With("component", "baseline_sidebook", "side", side.String()),
	}
}

func (s *baselineSideBook) bestBucket() (*OrderBucket, bool) {
	if !s.hasBest {
		return nil, false
	}
	b, ok := s.m.get(s.best)
	if !ok {
		s.logger.Error("baseline best-price cursor points at a missing bucket", "price", s.best)
		panic("book: baseline best-price cursor points at a missing bucket")
	}
	return b, true
}

func (s *baselineSideBook) getOrCreateBucket(price Price) *OrderBucket {
	if b, ok := s.m.get(price); ok {
		return b
	}
	b := s.pool.acquire(price)
	s.m.put(price, b)
	if !s.hasBest || s.isMoreExtreme(price, s.best) {
		s.best, s.hasBest = price, true
	}
	return b
}

func (s *baselineSideBook) removeBucket(price Price) {
	b, ok := s.m.remove(price)
	if !ok {
		s.logger.Error("baseline removeBucket called for a price with no bucket", "price", price)
		panic("book: baseline removeBucket called for a price with no bucket")
	}
	s.pool.release(b)
	if s.hasBest && s.best == price {
		s.repairBest()
	}
}

func (s *baselineSideBook) repairBest() {
	prev := s.best
	var (
		k  Price
		ok bool
	)
	if s.side == Ask {
		k, _, ok = s.m.min()
	} else {
		k, _, ok = s.m.max()
	}
	s.hasBest = ok
	if ok {
		s.best = k
	} else {
		s.best = 0
	}
	s.logger.Debug("best-price cursor repaired", "previous_best", prev, "new_best", s.best, "empty", !ok)
}

func (s *baselineSideBook) isMoreExtreme(candidate, current Price) bool {
	if s.side == Ask {
		return candidate < current
	}
	return candidate > current
}

func (s *baselineSideBook) crossable(incomingSide Side, incomingPrice Price) bool {
	if !s.hasBest {
		return false
	}
	if incomingSide == Bid {
		return s.best <= incomingPrice
	}
	return s.best >= incomingPrice
}

// BaselineBook is functionally identical to Book but keyed by a
// comparison backend instead of LongART, for cmd/benchmark to report
// against.
type BaselineBook struct {
	bids *baselineSideBook
	asks *baselineSideBook

	orders *orderPool
	index  *OrderIndex

	sink   EventSink
	logger log.Logger
}

// NewBaseline constructs an empty baseline book using backend for both
// sides' price maps, rejecting cfg for the same reasons New does
// (spec.md §7): a non-positive Order or Bucket capacity is a caller bug,
// not a book with one fewer feature.
func NewBaseline(backend Backend, cfg Config, sink EventSink, logger log.Logger) (*BaselineBook, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	logger = logger.With("module", "baseline_book")

	return &BaselineBook{
		bids:   newBaselineSideBook(Bid, backend, cfg.Bucket, logger),
		asks:   newBaselineSideBook(Ask, backend, cfg.Bucket, logger),
		orders: newOrderPool(cfg.Order),
		index:  newOrderIndex(),
		sink:   sink,
		logger: logger,
	}, nil
}

func (b *BaselineBook) sideBook(s Side) *baselineSideBook {
	if s == Bid {
		return b.bids
	}
	return b.asks
}

// NewOrder runs the same algorithm as Book.NewOrder (spec.md §4.5) over
// the baseline's priceMap.
func (b *BaselineBook) NewOrder(cmd OrderCommand) {
	if cmd.Size == 0 {
		b.sink.OnReject(Reject{ID: cmd.ID, Reason: InvalidSize})
		return
	}
	if cmd.Price == 0 {
		b.logger.Error("NewOrder called with price == 0", "order_id", cmd.ID)
		panic("book: NewOrder called with price == 0")
	}
	if b.index.contains(cmd.ID) {
		b.sink.OnReject(Reject{ID: cmd.ID, Reason: DuplicateId})
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
				TradeID: newTradeID(), MakerID: leg.order.ID, TakerID: cmd.ID, Price: bucket.Price,
				Size: leg.filled, TakerSide: cmd.Side, Timestamp: cmd.Timestamp,
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
		o.ID, o.Side, o.Price, o.RemainingSize = cmd.ID, cmd.Side, cmd.Price, remaining
		o.UID, o.Timestamp = cmd.UID, cmd.Timestamp
		bucket.append(o)
		b.index.insert(cmd.ID, o)
		same.orderCount++
	}
}

// BestBid returns the best resting bid.
func (b *BaselineBook) BestBid() (PriceLevel, bool) { return baselineBestOf(b.bids) }

// BestAsk returns the best resting ask.
func (b *BaselineBook) BestAsk() (PriceLevel, bool) { return baselineBestOf(b.asks) }

func baselineBestOf(s *baselineSideBook) (PriceLevel, bool) {
	bucket, ok := s.bestBucket()
	if !ok {
		return PriceLevel{}, false
	}
	return PriceLevel{Price: bucket.Price, Volume: bucket.TotalVolume}, true
}
