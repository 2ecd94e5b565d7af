package book

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// recordingSink captures every event emitted during a test instead of
// discarding or forwarding it.
type recordingSink struct {
	trades  []Trade
	rejects []Reject
}

func (r *recordingSink) OnTrade(t Trade)   { r.trades = append(r.trades, t) }
func (r *recordingSink) OnReject(x Reject) { r.rejects = append(r.rejects, x) }

func newTestBook() (*Book, *recordingSink) {
	sink := &recordingSink{}
	b, err := New(DefaultConfig(), sink, nil, nil)
	if err != nil {
		panic(err)
	}
	return b, sink
}

// withoutTradeIDs returns a copy of trades with TradeID cleared, so
// tests can assert on the fields that matter without hardcoding a UUID,
// after separately checking every trade actually got a non-empty one.
func withoutTradeIDs(t *testing.T, trades []Trade) []Trade {
	t.Helper()
	out := make([]Trade, len(trades))
	for i, tr := range trades {
		require.NotEmpty(t, tr.TradeID)
		tr.TradeID = ""
		out[i] = tr
	}
	return out
}

func TestNew_RejectsNonPositivePoolCapacity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Order = 0
	_, err := New(cfg, &recordingSink{}, nil, nil)
	require.Error(t, err)

	cfg = DefaultConfig()
	cfg.ART.N4 = 0
	_, err = New(cfg, &recordingSink{}, nil, nil)
	require.Error(t, err)
}

// S1 — Simple match.
func TestBook_SimpleMatch(t *testing.T) {
	b, sink := newTestBook()

	b.NewOrder(OrderCommand{ID: 1, Side: Ask, Price: 100, Size: 10, UID: 1001})
	require.Empty(t, sink.trades)

	b.NewOrder(OrderCommand{ID: 2, Side: Bid, Price: 100, Size: 5, UID: 1002})
	require.Len(t, sink.trades, 1)
	require.Equal(t, Trade{MakerID: 1, TakerID: 2, Price: 100, Size: 5, TakerSide: Bid}, withoutTradeIDs(t, sink.trades)[0])

	ask, ok := b.BestAsk()
	require.True(t, ok)
	require.Equal(t, PriceLevel{Price: 100, Volume: 5}, ask)

	_, ok = b.BestBid()
	require.False(t, ok)
}

// S2 — Cross two levels.
func TestBook_CrossTwoLevels(t *testing.T) {
	b, sink := newTestBook()

	b.NewOrder(OrderCommand{ID: 1, Side: Ask, Price: 100, Size: 5})
	b.NewOrder(OrderCommand{ID: 2, Side: Ask, Price: 101, Size: 5})
	b.NewOrder(OrderCommand{ID: 3, Side: Ask, Price: 102, Size: 5})

	b.NewOrder(OrderCommand{ID: 4, Side: Bid, Price: 102, Size: 12})

	require.Equal(t, []Trade{
		{MakerID: 1, TakerID: 4, Price: 100, Size: 5, TakerSide: Bid},
		{MakerID: 2, TakerID: 4, Price: 101, Size: 5, TakerSide: Bid},
		{MakerID: 3, TakerID: 4, Price: 102, Size: 2, TakerSide: Bid},
	}, withoutTradeIDs(t, sink.trades))

	ask, ok := b.BestAsk()
	require.True(t, ok)
	require.Equal(t, PriceLevel{Price: 102, Volume: 3}, ask)

	_, ok = b.BestBid()
	require.False(t, ok, "the aggressive bid fully filled and should not rest")
}

// S3 — No cross.
func TestBook_NoCross(t *testing.T) {
	b, sink := newTestBook()

	b.NewOrder(OrderCommand{ID: 1, Side: Ask, Price: 110, Size: 10})
	b.NewOrder(OrderCommand{ID: 2, Side: Bid, Price: 90, Size: 5})

	require.Empty(t, sink.trades)

	bid, ok := b.BestBid()
	require.True(t, ok)
	require.Equal(t, Price(90), bid.Price)

	ask, ok := b.BestAsk()
	require.True(t, ok)
	require.Equal(t, Price(110), ask.Price)
}

// S4 — Duplicate id.
func TestBook_DuplicateId(t *testing.T) {
	b, sink := newTestBook()

	b.NewOrder(OrderCommand{ID: 1, Side: Ask, Price: 100, Size: 10})
	b.NewOrder(OrderCommand{ID: 1, Side: Bid, Price: 100, Size: 5})

	require.Empty(t, sink.trades)
	require.Equal(t, []Reject{{ID: 1, Reason: DuplicateId}}, sink.rejects)

	ask, ok := b.BestAsk()
	require.True(t, ok)
	require.Equal(t, PriceLevel{Price: 100, Volume: 10}, ask)
}

func TestBook_InvalidSizeRejected(t *testing.T) {
	b, sink := newTestBook()
	b.NewOrder(OrderCommand{ID: 1, Side: Ask, Price: 100, Size: 0})
	require.Equal(t, []Reject{{ID: 1, Reason: InvalidSize}}, sink.rejects)
	_, ok := b.BestAsk()
	require.False(t, ok)
}

// Equal-price FIFO: three makers at price P, a taker consuming exactly
// the first two.
func TestBook_EqualPriceFIFO(t *testing.T) {
	b, sink := newTestBook()
	b.NewOrder(OrderCommand{ID: 1, Side: Ask, Price: 100, Size: 5})
	b.NewOrder(OrderCommand{ID: 2, Side: Ask, Price: 100, Size: 5})
	b.NewOrder(OrderCommand{ID: 3, Side: Ask, Price: 100, Size: 5})

	b.NewOrder(OrderCommand{ID: 4, Side: Bid, Price: 100, Size: 10})

	require.Equal(t, []Trade{
		{MakerID: 1, TakerID: 4, Price: 100, Size: 5, TakerSide: Bid},
		{MakerID: 2, TakerID: 4, Price: 100, Size: 5, TakerSide: Bid},
	}, withoutTradeIDs(t, sink.trades))

	require.False(t, b.index.contains(1))
	require.False(t, b.index.contains(2))
	require.True(t, b.index.contains(3))
}

func TestBook_CancelRestingOrder(t *testing.T) {
	b, _ := newTestBook()
	b.NewOrder(OrderCommand{ID: 1, Side: Ask, Price: 100, Size: 10})

	require.True(t, b.Cancel(1))
	require.False(t, b.Cancel(1), "cancel of an already-removed order must fail")

	_, ok := b.BestAsk()
	require.False(t, ok)
	require.Equal(t, 0, b.OrderCount())
}

func TestBook_FullBucketDrainNoResidual(t *testing.T) {
	b, sink := newTestBook()
	b.NewOrder(OrderCommand{ID: 1, Side: Ask, Price: 100, Size: 10})
	b.NewOrder(OrderCommand{ID: 2, Side: Bid, Price: 100, Size: 10})

	require.Len(t, sink.trades, 1)
	_, ok := b.BestAsk()
	require.False(t, ok)
	_, ok = b.BestBid()
	require.False(t, ok, "an exact-fill taker must not rest a zero-size residual")
}

// invariantCheck asserts the no-crossed-book invariant from spec.md §8
// (best bid below best ask whenever both sides rest) for the book's
// current state.
func invariantCheck(t *testing.T, b *Book) {
	t.Helper()
	bid, bidOK := b.BestBid()
	ask, askOK := b.BestAsk()
	if bidOK && askOK {
		require.Less(t, bid.Price, ask.Price, "no crossed book")
	}
}

func TestBook_NoCrossedBookAcrossMixedSequence(t *testing.T) {
	b, _ := newTestBook()
	prices := []Price{95, 98, 100, 102, 105}
	id := OrderId(1)
	for _, side := range []Side{Ask, Ask, Bid, Ask, Bid, Bid, Ask, Bid} {
		for _, p := range prices {
			b.NewOrder(OrderCommand{ID: id, Side: side, Price: p, Size: 3})
			id++
			invariantCheck(t, b)
		}
	}
}
