package book

// OrderIndex maps OrderId to a non-owning Order handle, used to reject
// duplicate submissions and to support cancel (spec.md §4.4). It never
// owns the Order; ownership stays with the OrderBucket the order rests
// in, and the index entry's validity is tied to that bucket membership.
type OrderIndex struct {
	m map[OrderId]*Order
}

func newOrderIndex() *OrderIndex {
	return &OrderIndex{m: make(map[OrderId]*Order)}
}

func (idx *OrderIndex) contains(id OrderId) bool {
	_, ok := idx.m[id]
	return ok
}

// insert requires !contains(id); the matching core must always check via
// contains before calling insert (spec.md §4.4 — a duplicate insert here
// is a bug in the core, not a recoverable condition).
func (idx *OrderIndex) insert(id OrderId, o *Order) {
	if _, exists := idx.m[id]; exists {
		panic("book: OrderIndex.insert called with an id already present")
	}
	idx.m[id] = o
}

func (idx *OrderIndex) get(id OrderId) (*Order, bool) {
	o, ok := idx.m[id]
	return o, ok
}

func (idx *OrderIndex) remove(id OrderId) {
	delete(idx.m, id)
}

func (idx *OrderIndex) len() int { return len(idx.m) }
