package book

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBaselineBook_MatchesCoreOnSameCommands(t *testing.T) {
	for _, backend := range []Backend{BackendBTree, BackendSkiplist} {
		sink := &recordingSink{}
		b, err := NewBaseline(backend, DefaultConfig(), sink, nil)
		require.NoError(t, err)

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
	}
}

func TestNewBaseline_RejectsNonPositiveConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bucket = 0
	_, err := NewBaseline(BackendBTree, cfg, &recordingSink{}, nil)
	require.Error(t, err)
}

func TestBaselineBook_DuplicateIdRejected(t *testing.T) {
	sink := &recordingSink{}
	b, err := NewBaseline(BackendBTree, DefaultConfig(), sink, nil)
	require.NoError(t, err)
	b.NewOrder(OrderCommand{ID: 1, Side: Ask, Price: 100, Size: 10})
	b.NewOrder(OrderCommand{ID: 1, Side: Bid, Price: 100, Size: 5})
	require.Equal(t, []Reject{{ID: 1, Reason: DuplicateId}}, sink.rejects)
}
