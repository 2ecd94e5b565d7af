package art

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestTree() *Tree[string] {
	pool, err := NewPool[string](DefaultPoolConfig(), nil, nil)
	if err != nil {
		panic(err)
	}
	tree, err := NewTree[string](pool)
	if err != nil {
		panic(err)
	}
	return tree
}

func TestNewTree_RejectsNilPool(t *testing.T) {
	_, err := NewTree[string](nil)
	require.Error(t, err)
}

func TestTree_PutGetRoundTrip(t *testing.T) {
	tree := newTestTree()

	keys := []uint64{1, 2, 42, 0xFFFFFFFFFFFFFFFF, 0, 0x8000000000000000, 12345678901234}
	for i, k := range keys {
		old, replaced := tree.Put(k, keysToVal(k, i))
		require.False(t, replaced)
		require.Equal(t, "", old)
	}
	require.Equal(t, len(keys), tree.Len())

	for i, k := range keys {
		v, ok := tree.Get(k)
		require.True(t, ok, "key %x should be present", k)
		require.Equal(t, keysToVal(k, i), v)
	}

	_, ok := tree.Get(0xDEADBEEF)
	require.False(t, ok)
}

func TestTree_PutOverwriteReturnsPriorValue(t *testing.T) {
	tree := newTestTree()

	_, replaced := tree.Put(7, "first")
	require.False(t, replaced)

	old, replaced := tree.Put(7, "second")
	require.True(t, replaced)
	require.Equal(t, "first", old)

	v, ok := tree.Get(7)
	require.True(t, ok)
	require.Equal(t, "second", v)
	require.Equal(t, 1, tree.Len())
}

func TestTree_RemoveThenAbsent(t *testing.T) {
	tree := newTestTree()
	tree.Put(1, "a")
	tree.Put(2, "b")
	tree.Put(3, "c")

	val, ok := tree.Remove(2)
	require.True(t, ok)
	require.Equal(t, "b", val)
	require.Equal(t, 2, tree.Len())

	_, ok = tree.Get(2)
	require.False(t, ok)

	_, ok = tree.Remove(2)
	require.False(t, ok)

	v, ok := tree.Get(1)
	require.True(t, ok)
	require.Equal(t, "a", v)
	v, ok = tree.Get(3)
	require.True(t, ok)
	require.Equal(t, "c", v)
}

func TestTree_RemoveEmptiesTreeCompletely(t *testing.T) {
	tree := newTestTree()
	n := 200
	for i := 0; i < n; i++ {
		tree.Put(uint64(i*97), "v")
	}
	require.Equal(t, n, tree.Len())

	for i := 0; i < n; i++ {
		_, ok := tree.Remove(uint64(i * 97))
		require.True(t, ok)
	}
	require.Equal(t, 0, tree.Len())
	require.Nil(t, tree.root)

	_, _, ok := tree.Min()
	require.False(t, ok)
}

func TestTree_MinMaxOrdering(t *testing.T) {
	tree := newTestTree()
	values := []uint64{500, 1, 999999, 42, 7, 1 << 40, 3}
	for _, v := range values {
		tree.Put(v, "x")
	}

	minKey, _, ok := tree.Min()
	require.True(t, ok)
	require.Equal(t, uint64(1), minKey)

	maxKey, _, ok := tree.Max()
	require.True(t, ok)
	require.Equal(t, uint64(1<<40), maxKey)

	// Repeatedly extracting the minimum must yield a strictly increasing
	// sequence covering every inserted key exactly once.
	extracted := make([]uint64, 0, len(values))
	for tree.Len() > 0 {
		k, _, _ := tree.Min()
		extracted = append(extracted, k)
		tree.Remove(k)
	}
	for i := 1; i < len(extracted); i++ {
		require.Less(t, extracted[i-1], extracted[i])
	}
	require.Len(t, extracted, len(values))
}

// TestTree_PrefixDivergence is scenario S5: four keys sharing varying
// amounts of prefix, inserted in an order that forces branch nodes to
// form above existing leaves and above an existing inner node.
func TestTree_PrefixDivergence(t *testing.T) {
	tree := newTestTree()

	keys := map[uint64]string{
		0x123456789ABCDEF0: "a",
		0x123456789ABCDE01: "b",
		0x123456789ABC1234: "c",
		0x12345678FEDCBA98: "d",
	}
	for k, v := range keys {
		_, replaced := tree.Put(k, v)
		require.False(t, replaced)
	}

	for k, v := range keys {
		got, ok := tree.Get(k)
		require.True(t, ok, "key %x must be present", k)
		require.Equal(t, v, got)
	}

	_, ok := tree.Get(0x123456789ABCDEF1)
	require.False(t, ok, "key differing only in the low byte from an inserted key must be absent")

	minKey, _, ok := tree.Min()
	require.True(t, ok)
	require.Equal(t, uint64(0x123456789ABC1234), minKey)

	maxKey, _, ok := tree.Max()
	require.True(t, ok)
	require.Equal(t, uint64(0x12345678FEDCBA98), maxKey)
}

// TestTree_NodeGrowthAlongLowByte is scenario S6: 17 keys sharing their
// top 7 bytes and differing only in the low byte, which forces the node
// dispatching on that byte through node4 -> node16 -> node48.
func TestTree_NodeGrowthAlongLowByte(t *testing.T) {
	tree := newTestTree()
	const base uint64 = 0x0102030405060700

	for i := 0; i < 17; i++ {
		key := base | uint64(i)
		tree.Put(key, keysToVal(key, i))

		for j := 0; j <= i; j++ {
			v, ok := tree.Get(base | uint64(j))
			require.True(t, ok, "key %d should still be retrievable after inserting key %d", j, i)
			require.Equal(t, keysToVal(base|uint64(j), j), v)
		}
	}
	require.Equal(t, 17, tree.Len())

	// All 17 keys diverge only in their low byte, so the single node
	// formed to tell them apart sits at the root (node_level 0) and must
	// itself be the one that grew through node4 -> node16 -> node48.
	root, ok := tree.root.(innerNode[string])
	require.True(t, ok, "root must have become an inner node")
	require.Equal(t, uint8(0), root.level())
	require.Equal(t, uint8(17), root.size())
	_, isNode48 := root.(*node48[string])
	require.True(t, isNode48, "after 17 children the node should have grown to node48")
}

func TestTree_RandomizedAgainstReferenceMap(t *testing.T) {
	tree := newTestTree()
	reference := make(map[uint64]string)
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 20000; i++ {
		key := rng.Uint64()
		switch rng.Intn(3) {
		case 0, 1:
			val := keysToVal(key, i)
			tree.Put(key, val)
			reference[key] = val
		case 2:
			tree.Remove(key)
			delete(reference, key)
		}
	}

	require.Equal(t, len(reference), tree.Len())
	for k, v := range reference {
		got, ok := tree.Get(k)
		require.True(t, ok)
		require.Equal(t, v, got)
	}
}

func keysToVal(k uint64, i int) string {
	return string(rune('a'+(i%26))) + "-" + string(rune('0'+(int(k)%10)))
}
