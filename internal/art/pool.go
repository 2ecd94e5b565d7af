package art

import (
	"fmt"

	"cosmossdk.io/log"
)

// PoolConfig sets the initial bounded capacity of each node variant's
// free list. These are soft ceilings: acquisition always falls back to a
// fresh allocation when a list is empty, and release past capacity
// silently drops the node rather than growing the list (spec.md §4.1).
type PoolConfig struct {
	N4   int
	N16  int
	N48  int
	N256 int
}

// DefaultPoolConfig matches spec.md §6's suggested defaults for the node
// variants.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{N4: 256, N16: 128, N48: 64, N256: 32}
}

// PoolObserver receives a hit/miss event each time a node variant is
// acquired, letting a caller (book.Collector, in this module) mirror
// pool pressure into its own metrics without art depending on a metrics
// library itself.
type PoolObserver interface {
	ObserveHit(variant string)
	ObserveMiss(variant string)
}

type noopObserver struct{}

func (noopObserver) ObserveHit(string)  {}
func (noopObserver) ObserveMiss(string) {}

// Pool is a set of typed, bounded, single-threaded LIFO free lists, one
// per ART node variant. It must not be shared across trees written from
// different goroutines (spec.md §5).
type Pool[V any] struct {
	cfg    PoolConfig
	logger log.Logger
	obs    PoolObserver

	free4   []*node4[V]
	free16  []*node16[V]
	free48  []*node48[V]
	free256 []*node256[V]
}

// NewPool creates a pool with the given capacities. Free lists start
// empty; they fill up as nodes are released rather than being
// pre-warmed, since a freshly allocated node and a pooled one are
// indistinguishable to callers. logger and obs may both be nil, in which
// case fallback events are discarded and hit/miss events go nowhere;
// every capacity in cfg must be positive, matching the teacher's
// constructor-validates-config idiom.
func NewPool[V any](cfg PoolConfig, logger log.Logger, obs PoolObserver) (*Pool[V], error) {
	if cfg.N4 <= 0 || cfg.N16 <= 0 || cfg.N48 <= 0 || cfg.N256 <= 0 {
		return nil, fmt.Errorf("art: pool capacities must be positive, got %+v", cfg)
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if obs == nil {
		obs = noopObserver{}
	}
	return &Pool[V]{cfg: cfg, logger: logger.With("component", "art.pool"), obs: obs}, nil
}

func (p *Pool[V]) get4() *node4[V] {
	if n := len(p.free4); n > 0 {
		node := p.free4[n-1]
		p.free4 = p.free4[:n-1]
		p.obs.ObserveHit("node4")
		return node
	}
	p.logger.Debug("pool exhausted, allocating fresh node", "variant", "node4")
	p.obs.ObserveMiss("node4")
	return &node4[V]{nodeBase: nodeBase{}}
}

func (p *Pool[V]) put4(n *node4[V]) {
	*n = node4[V]{}
	if len(p.free4) >= p.cfg.N4 {
		return
	}
	p.free4 = append(p.free4, n)
}

func (p *Pool[V]) get16() *node16[V] {
	if n := len(p.free16); n > 0 {
		node := p.free16[n-1]
		p.free16 = p.free16[:n-1]
		p.obs.ObserveHit("node16")
		return node
	}
	p.logger.Debug("pool exhausted, allocating fresh node", "variant", "node16")
	p.obs.ObserveMiss("node16")
	return &node16[V]{}
}

func (p *Pool[V]) put16(n *node16[V]) {
	*n = node16[V]{}
	if len(p.free16) >= p.cfg.N16 {
		return
	}
	p.free16 = append(p.free16, n)
}

func (p *Pool[V]) get48() *node48[V] {
	if n := len(p.free48); n > 0 {
		node := p.free48[n-1]
		p.free48 = p.free48[:n-1]
		p.obs.ObserveHit("node48")
		return node
	}
	p.logger.Debug("pool exhausted, allocating fresh node", "variant", "node48")
	p.obs.ObserveMiss("node48")
	return &node48[V]{}
}

func (p *Pool[V]) put48(n *node48[V]) {
	freeSlots := n.freeSlots[:0]
	*n = node48[V]{}
	n.freeSlots = freeSlots
	if len(p.free48) >= p.cfg.N48 {
		return
	}
	p.free48 = append(p.free48, n)
}

func (p *Pool[V]) get256() *node256[V] {
	if n := len(p.free256); n > 0 {
		node := p.free256[n-1]
		p.free256 = p.free256[:n-1]
		p.obs.ObserveHit("node256")
		return node
	}
	p.logger.Debug("pool exhausted, allocating fresh node", "variant", "node256")
	p.obs.ObserveMiss("node256")
	return &node256[V]{}
}

func (p *Pool[V]) put256(n *node256[V]) {
	*n = node256[V]{}
	if len(p.free256) >= p.cfg.N256 {
		return
	}
	p.free256 = append(p.free256, n)
}

// releaseSubtree returns every inner node reachable from ref to the pool,
// used when a whole branch collapses (e.g. bucket-driven removal that
// empties an entire node4). Leaves are not pooled (see node.go) so they
// are simply dropped for GC.
func (p *Pool[V]) releaseSubtree(ref nodeRef[V]) {
	if ref == nil || ref.isLeaf() {
		return
	}
	switch n := ref.(type) {
	case *node4[V]:
		for i := uint8(0); i < n.numChildren; i++ {
			p.releaseSubtree(n.children[i])
		}
		p.put4(n)
	case *node16[V]:
		for i := uint8(0); i < n.numChildren; i++ {
			p.releaseSubtree(n.children[i])
		}
		p.put16(n)
	case *node48[V]:
		for i := 0; i < 256; i++ {
			if slot := n.index[i]; slot != 0 {
				p.releaseSubtree(n.children[slot-1])
			}
		}
		p.put48(n)
	case *node256[V]:
		for i := 0; i < 256; i++ {
			p.releaseSubtree(n.children[i])
		}
		p.put256(n)
	}
}
