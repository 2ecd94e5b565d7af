package book

// OrderBucket is the FIFO of resting orders at one price (spec.md §4.3):
// doubly-linked for O(1) append, O(1) head access, and O(1) removal by
// handle, with a running total so consume() never needs to rescan.
type OrderBucket struct {
	Price       Price
	TotalVolume uint64

	head, tail *Order
	count      int
}

// bucketPool mirrors orderPool; see spec.md §4.1.
type bucketPool struct {
	cap  int
	free []*OrderBucket
}

func newBucketPool(capacity int) *bucketPool {
	return &bucketPool{cap: capacity}
}

func (p *bucketPool) acquire(price Price) *OrderBucket {
	if n := len(p.free); n > 0 {
		b := p.free[n-1]
		p.free = p.free[:n-1]
		b.Price = price
		return b
	}
	return &OrderBucket{Price: price}
}

func (p *bucketPool) release(b *OrderBucket) {
	*b = OrderBucket{}
	if len(p.free) >= p.cap {
		return
	}
	p.free = append(p.free, b)
}

// append links order at the tail and folds its size into TotalVolume.
func (b *OrderBucket) append(o *Order) {
	o.bucket = b
	o.prev = b.tail
	o.next = nil
	if b.tail != nil {
		b.tail.next = o
	} else {
		b.head = o
	}
	b.tail = o
	b.count++
	b.TotalVolume += o.RemainingSize
}

// headOrder returns the oldest resting order, or nil if the bucket is empty.
func (b *OrderBucket) headOrder() *Order {
	return b.head
}

func (b *OrderBucket) isEmpty() bool { return b.count == 0 }

// unlink removes o from the list in O(1); it does not touch TotalVolume,
// since callers unlink either after already decrementing the order's
// remaining size to zero (consume) or as part of a cancel that must
// account for the order's full remaining size itself.
func (b *OrderBucket) unlink(o *Order) {
	if o.prev != nil {
		o.prev.next = o.next
	} else {
		b.head = o.next
	}
	if o.next != nil {
		o.next.prev = o.prev
	} else {
		b.tail = o.prev
	}
	o.prev, o.next, o.bucket = nil, nil, nil
	b.count--
}

// cancel removes order from the bucket and deducts its remaining size
// from TotalVolume.
func (b *OrderBucket) cancel(o *Order) {
	b.TotalVolume -= o.RemainingSize
	b.unlink(o)
}

// fillLeg records one maker touched by consume and how much of it was
// filled this call; consume returns its legs oldest first (so the caller
// can emit Trade events and release fully-filled orders back to their
// pools).
type fillLeg struct {
	order  *Order
	filled uint64
	done   bool // true if the maker's RemainingSize reached zero
}

// consume walks the bucket from the head, filling against incoming until
// either incoming is exhausted or the bucket empties (spec.md §4.3). It
// unlinks fully-filled orders from the bucket's list but does not release
// them to any pool — the matching core does that once it has read off
// the maker id for the Trade event.
func (b *OrderBucket) consume(incoming uint64) (filled uint64, legs []fillLeg) {
	for incoming > 0 {
		head := b.head
		if head == nil {
			break
		}
		take := head.RemainingSize
		if take > incoming {
			take = incoming
		}
		head.RemainingSize -= take
		b.TotalVolume -= take
		incoming -= take
		filled += take

		done := head.RemainingSize == 0
		legs = append(legs, fillLeg{order: head, filled: take, done: done})
		if done {
			b.unlink(head)
		} else {
			break
		}
	}
	return filled, legs
}
