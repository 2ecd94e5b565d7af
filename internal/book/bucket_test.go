package book

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOrderBucket_AppendAndConsumeFIFO(t *testing.T) {
	b := &OrderBucket{Price: 100}
	o1 := &Order{ID: 1, RemainingSize: 5}
	o2 := &Order{ID: 2, RemainingSize: 5}
	o3 := &Order{ID: 3, RemainingSize: 5}
	b.append(o1)
	b.append(o2)
	b.append(o3)
	require.Equal(t, uint64(15), b.TotalVolume)
	require.Equal(t, o1, b.headOrder())

	filled, legs := b.consume(12)
	require.Equal(t, uint64(12), filled)
	require.Len(t, legs, 3)
	require.True(t, legs[0].done)
	require.True(t, legs[1].done)
	require.False(t, legs[2].done)
	require.Equal(t, uint64(2), legs[2].filled)

	require.Equal(t, uint64(3), b.TotalVolume)
	require.Equal(t, o3, b.headOrder())
	require.Equal(t, uint64(3), o3.RemainingSize)
}

func TestOrderBucket_ConsumeStopsWhenBucketEmpties(t *testing.T) {
	b := &OrderBucket{Price: 100}
	b.append(&Order{ID: 1, RemainingSize: 5})

	filled, legs := b.consume(100)
	require.Equal(t, uint64(5), filled)
	require.Len(t, legs, 1)
	require.True(t, b.isEmpty())
}

func TestOrderBucket_CancelMidList(t *testing.T) {
	b := &OrderBucket{Price: 100}
	o1 := &Order{ID: 1, RemainingSize: 5}
	o2 := &Order{ID: 2, RemainingSize: 5}
	o3 := &Order{ID: 3, RemainingSize: 5}
	b.append(o1)
	b.append(o2)
	b.append(o3)

	b.cancel(o2)
	require.Equal(t, uint64(10), b.TotalVolume)
	require.Equal(t, o1, b.head)
	require.Equal(t, o3, b.tail)
	require.Equal(t, o3, o1.next)
	require.Equal(t, o1, o3.prev)
}

func TestOrderPool_ReleaseResetsFields(t *testing.T) {
	p := newOrderPool(4)
	o := p.acquire()
	o.ID, o.RemainingSize = 99, 42
	p.release(o)

	reused := p.acquire()
	require.Same(t, o, reused)
	require.Equal(t, OrderId(0), reused.ID)
	require.Equal(t, uint64(0), reused.RemainingSize)
}
