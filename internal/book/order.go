package book

// Order is a resting order, owned by exactly one OrderBucket's FIFO list
// while it rests (spec.md §3). prev/next are the bucket's intrusive
// doubly-linked list pointers; they are meaningless once the order is
// removed from its bucket.
type Order struct {
	ID            OrderId
	Side          Side
	Price         Price
	RemainingSize uint64
	UID           uint64
	Timestamp     uint64

	prev, next *Order
	bucket     *OrderBucket
}

// orderPool is a bounded, single-threaded LIFO free list for *Order,
// mirroring internal/art.Pool's node free lists (spec.md §4.1: pooled
// types are N4/N16/N48/N256/Order/Bucket).
type orderPool struct {
	cap  int
	free []*Order
}

func newOrderPool(capacity int) *orderPool {
	return &orderPool{cap: capacity}
}

func (p *orderPool) acquire() *Order {
	if n := len(p.free); n > 0 {
		o := p.free[n-1]
		p.free = p.free[:n-1]
		return o
	}
	return &Order{}
}

func (p *orderPool) release(o *Order) {
	*o = Order{}
	if len(p.free) >= p.cap {
		return
	}
	p.free = append(p.free, o)
}
