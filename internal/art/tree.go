package art

import "fmt"

// Tree is an ordered map from uint64 to V, implemented as LongART. It is
// not safe for concurrent use: per spec.md §5, a tree (and the Pool it
// draws nodes from) is owned by a single writer goroutine.
type Tree[V any] struct {
	root nodeRef[V]
	pool *Pool[V]
	n    int
}

// NewTree creates an empty tree drawing nodes from pool. Multiple trees
// may share a pool only if they are never written from different
// goroutines concurrently. pool must not be nil.
func NewTree[V any](pool *Pool[V]) (*Tree[V], error) {
	if pool == nil {
		return nil, fmt.Errorf("art: NewTree requires a non-nil pool")
	}
	return &Tree[V]{pool: pool}, nil
}

// Len returns the number of keys currently stored.
func (t *Tree[V]) Len() int { return t.n }

// Put stores value under key, returning the previous value and true if
// key was already present.
func (t *Tree[V]) Put(key uint64, value V) (V, bool) {
	old, replaced := put(&t.root, key, value, t.pool)
	if !replaced {
		t.n++
	}
	return old, replaced
}

// Get looks up key.
func (t *Tree[V]) Get(key uint64) (V, bool) {
	return get[V](t.root, key)
}

// Remove deletes key, returning its value and true if it was present.
func (t *Tree[V]) Remove(key uint64) (V, bool) {
	val, ok := remove(&t.root, key, t.pool)
	if ok {
		t.n--
	}
	return val, ok
}

// Min returns the smallest key in the tree.
func (t *Tree[V]) Min() (uint64, V, bool) {
	if t.root == nil {
		var zero V
		return 0, zero, false
	}
	return minOf[V](t.root)
}

// Max returns the largest key in the tree.
func (t *Tree[V]) Max() (uint64, V, bool) {
	if t.root == nil {
		var zero V
		return 0, zero, false
	}
	return maxOf[V](t.root)
}

// put walks the tree starting at slot, creating or rewiring nodes as
// needed, and reports the value previously stored at key (if any).
func put[V any](slot *nodeRef[V], key uint64, value V, pool *Pool[V]) (V, bool) {
	var zero V

	cur := *slot
	if cur == nil {
		*slot = &leafNode[V]{key: key, value: value}
		return zero, false
	}

	if cur.isLeaf() {
		leaf := cur.(*leafNode[V])
		if leaf.key == key {
			old := leaf.value
			leaf.value = value
			return old, true
		}
		// Two keys now occupy this slot: create the smallest node that
		// can tell them apart, branching at the highest byte where they
		// differ, and reattach both as its children.
		level := divergeLevel(leaf.key, key)
		branch := pool.get4()
		branch.lvl = level
		branch.nkey = key
		branch.addChild(byteAt(leaf.key, level), leaf)
		branch.addChild(byteAt(key, level), &leafNode[V]{key: key, value: value})
		*slot = branch
		return zero, false
	}

	inner := cur.(innerNode[V])

	// Prefix divergence: does key still share everything this node's
	// subtree requires above its own dispatch byte? If not, key diverges
	// above inner and a new branch node must be inserted above it.
	mask := ^uint64(0) << (inner.level() + 8)
	if (key^inner.key())&mask != 0 {
		level := divergeLevel(key, inner.key())
		branch := pool.get4()
		branch.lvl = level
		branch.nkey = key
		branch.addChild(byteAt(inner.key(), level), inner)
		branch.addChild(byteAt(key, level), &leafNode[V]{key: key, value: value})
		*slot = branch
		return zero, false
	}

	b := byteAt(key, inner.level())
	if childSlot := inner.childSlot(b); childSlot != nil {
		return put(childSlot, key, value, pool)
	}

	// No child for this byte yet: grow first if this node is full, then
	// attach a fresh leaf directly (path compression defers creating any
	// further intermediate nodes until an actual sibling shows up).
	if inner.full() {
		grown := inner.grow(pool)
		*slot = grown
		inner = grown
	}
	inner.addChild(b, &leafNode[V]{key: key, value: value})
	return zero, false
}

// get looks up key under ref without mutating the tree.
func get[V any](ref nodeRef[V], key uint64) (V, bool) {
	var zero V
	if ref == nil {
		return zero, false
	}
	if ref.isLeaf() {
		leaf := ref.(*leafNode[V])
		if leaf.key == key {
			return leaf.value, true
		}
		return zero, false
	}
	inner := ref.(innerNode[V])

	// Early-exit prefix check, applied at every level, the root included:
	// for a node at level 56 this degenerates to a no-op since level+8 ==
	// 64 and the mask is zero, so no special-casing of the first call is
	// needed.
	mask := ^uint64(0) << (inner.level() + 8)
	if (key^inner.key())&mask != 0 {
		return zero, false
	}
	return get[V](inner.findChild(byteAt(key, inner.level())), key)
}

// remove deletes key from the subtree at slot, rewiring or releasing
// nodes that become empty or underflow along the way.
func remove[V any](slot *nodeRef[V], key uint64, pool *Pool[V]) (V, bool) {
	var zero V

	cur := *slot
	if cur == nil {
		return zero, false
	}

	if cur.isLeaf() {
		leaf := cur.(*leafNode[V])
		if leaf.key != key {
			return zero, false
		}
		*slot = nil
		return leaf.value, true
	}

	inner := cur.(innerNode[V])
	mask := ^uint64(0) << (inner.level() + 8)
	if (key^inner.key())&mask != 0 {
		return zero, false
	}

	b := byteAt(key, inner.level())
	childSlot := inner.childSlot(b)
	if childSlot == nil {
		return zero, false
	}
	val, ok := remove(childSlot, key, pool)
	if !ok {
		return zero, false
	}

	if *childSlot == nil {
		inner.removeChild(b)
		switch {
		case inner.size() == 0:
			*slot = nil
			pool.releaseSubtree(inner)
		case inner.underflow():
			*slot = inner.shrink(pool)
		}
	}
	return val, true
}

func minOf[V any](ref nodeRef[V]) (uint64, V, bool) {
	if ref.isLeaf() {
		leaf := ref.(*leafNode[V])
		return leaf.key, leaf.value, true
	}
	return minOf[V](ref.(innerNode[V]).minimum())
}

func maxOf[V any](ref nodeRef[V]) (uint64, V, bool) {
	if ref.isLeaf() {
		leaf := ref.(*leafNode[V])
		return leaf.key, leaf.value, true
	}
	return maxOf[V](ref.(innerNode[V]).maximum())
}
