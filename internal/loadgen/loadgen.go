// Package loadgen generates synthetic OrderCommand streams for
// exercising and benchmarking a book.Book, in the spirit of
// quantcup's GenerateRandomOrder: randomized side, price around a base,
// and size, with a tunable cancel fraction.
package loadgen

import (
	"math/rand"

	"github.com/openalpha/artbook/internal/book"
)

// Config controls the shape of a generated command stream.
type Config struct {
	BasePrice  book.Price // center of the generated price distribution
	PriceBand  uint64     // commands land within [BasePrice-PriceBand, BasePrice+PriceBand]
	MaxSize    uint64     // generated sizes are in [1, MaxSize]
	CancelFrac float64    // fraction of commands that cancel a previously-seen id instead of resting
}

// DefaultConfig mirrors quantcup's demo scale: a base price around
// 50,000 ticks, a band wide enough to produce real crossing and resting
// activity, and a light cancel rate.
func DefaultConfig() Config {
	return Config{
		BasePrice:  50000,
		PriceBand:  250,
		MaxSize:    1000,
		CancelFrac: 0.05,
	}
}

// Generator produces a deterministic (given its seed) stream of
// OrderCommands, tracking ids it has already emitted and not yet
// cancelled so CancelFrac references one of those instead of a random,
// likely-absent id. The generator does not see fills, so such an id may
// belong to an order that has since been fully filled.
type Generator struct {
	cfg    Config
	rng    *rand.Rand
	nextID uint64
	live   []book.OrderId
}

// New creates a generator seeded deterministically for reproducible
// benchmark runs.
func New(cfg Config, seed int64) *Generator {
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(seed))}
}

// newShard is New plus a starting id offset, used by generate (see
// parallel.go) to hand each worker goroutine a disjoint id range so
// concurrent generators never emit colliding OrderCommand.IDs.
func newShard(cfg Config, seed int64, idOffset uint64) *Generator {
	g := New(cfg, seed)
	g.nextID = idOffset
	return g
}

// Next returns the next command and whether it represents a cancel of a
// previously generated id (cmd.Size == 0 in that case; callers driving a
// book directly should route cancels to Book.Cancel, not NewOrder).
func (g *Generator) Next() (cmd book.OrderCommand, isCancel bool) {
	if len(g.live) > 0 && g.rng.Float64() < g.cfg.CancelFrac {
		i := g.rng.Intn(len(g.live))
		id := g.live[i]
		g.live[i] = g.live[len(g.live)-1]
		g.live = g.live[:len(g.live)-1]
		return book.OrderCommand{ID: id}, true
	}

	g.nextID++
	id := g.nextID

	side := book.Ask
	if g.rng.Intn(2) == 0 {
		side = book.Bid
	}

	offset := int64(g.rng.Intn(int(2*g.cfg.PriceBand+1))) - int64(g.cfg.PriceBand)
	price := int64(g.cfg.BasePrice) + offset
	if price < 1 {
		price = 1
	}

	cmd = book.OrderCommand{
		ID:        id,
		Side:      side,
		Price:     uint64(price),
		Size:      uint64(g.rng.Int63n(int64(g.cfg.MaxSize))) + 1,
		UID:       uint64(g.rng.Intn(64)),
		Timestamp: id,
	}
	g.live = append(g.live, id)
	return cmd, false
}
