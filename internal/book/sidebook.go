package book

import (
	"cosmossdk.io/log"
	"github.com/openalpha/artbook/internal/art"
)

// SideBook is one side (bids or asks) of the book: a LongART keyed by
// price, a best-price cursor, and the bucket pool shared across prices
// on this side (spec.md §3). The cursor is a constant-time hint; it is
// only ever repaired by walking the ART's min or max when the bucket it
// points at is removed.
type SideBook struct {
	side   Side
	tree   *art.Tree[*OrderBucket]
	pool   *bucketPool
	logger log.Logger

	best    Price
	hasBest bool

	orderCount int
}

func newSideBook(side Side, pool *art.Pool[*OrderBucket], bucketCap int, logger log.Logger) (*SideBook, error) {
	tree, err := art.NewTree[*OrderBucket](pool)
	if err != nil {
		return nil, err
	}
	return &SideBook{
		side:   side,
		tree:   tree,
		pool:   newBucketPool(bucketCap),
		logger: logger.With("component", "sidebook", "side", side.String()),
	}, nil
}

func (s *SideBook) isEmpty() bool { return s.orderCount == 0 }

// bestBucket returns the bucket at the extreme resting price, or false if
// the side is empty.
func (s *SideBook) bestBucket() (*OrderBucket, bool) {
	if !s.hasBest {
		return nil, false
	}
	b, ok := s.tree.Get(s.best)
	if !ok {
		// The cursor and the tree have diverged; that is an internal
		// invariant violation (spec.md §7), not a recoverable condition.
		s.logger.Error("best-price cursor points at a missing bucket", "price", s.best)
		panic("book: best-price cursor points at a missing bucket")
	}
	return b, true
}

// getOrCreateBucket returns the bucket at price, creating and inserting
// an empty one (and updating the cursor if this price is now the
// extreme) if none exists yet.
func (s *SideBook) getOrCreateBucket(price Price) *OrderBucket {
	if b, ok := s.tree.Get(price); ok {
		return b
	}
	b := s.pool.acquire(price)
	s.tree.Put(price, b)
	if !s.hasBest || s.isMoreExtreme(price, s.best) {
		s.best = price
		s.hasBest = true
	}
	return b
}

// removeBucket drops the bucket at price from the tree, releases it to
// the pool, and repairs the cursor if it pointed here.
func (s *SideBook) removeBucket(price Price) {
	b, ok := s.tree.Remove(price)
	if !ok {
		s.logger.Error("removeBucket called for a price with no bucket", "price", price)
		panic("book: removeBucket called for a price with no bucket")
	}
	s.pool.release(b)
	if s.hasBest && s.best == price {
		s.repairBest()
	}
}

// repairBest recomputes the cursor from the tree: min for ASK (lowest
// price is best), max for BID (highest price is best).
func (s *SideBook) repairBest() {
	prev := s.best
	var (
		k  Price
		ok bool
	)
	if s.side == Ask {
		k, _, ok = s.tree.Min()
	} else {
		k, _, ok = s.tree.Max()
	}
	s.hasBest = ok
	if ok {
		s.best = k
	} else {
		s.best = 0
	}
	s.logger.Debug("best-price cursor repaired", "previous_best", prev, "new_best", s.best, "empty", !ok)
}

// isMoreExtreme reports whether candidate is a better resting price than
// current for this side: lower for ASK, higher for BID.
func (s *SideBook) isMoreExtreme(candidate, current Price) bool {
	if s.side == Ask {
		return candidate < current
	}
	return candidate > current
}

// crossable reports whether an incoming order at price on the opposite
// side of s would cross against s's current best (spec.md §4.5 step 2).
func (s *SideBook) crossable(incomingSide Side, incomingPrice Price) bool {
	if !s.hasBest {
		return false
	}
	if incomingSide == Bid {
		return s.best <= incomingPrice // incoming BID crosses resting ASK
	}
	return s.best >= incomingPrice // incoming ASK crosses resting BID
}
