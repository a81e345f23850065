package kv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benz9527/xstl/lib/alloc"
	"github.com/benz9527/xstl/lib/infra"
)

func TestHashMapInsertPolicy(t *testing.T) {
	m := NewHashMap[string, int]()
	for _, p := range []infra.Pair[string, int]{{"a", 1}, {"b", 2}, {"a", 3}} {
		_, _, err := m.Insert(p.Key, p.Val)
		require.NoError(t, err)
	}
	require.Equal(t, int64(2), m.Len())
	v, ok := m.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)
	v, ok = m.Get("b")
	require.True(t, ok)
	require.Equal(t, 2, v)

	// insert or assign
	require.NoError(t, m.Put("a", 3))
	v, _ = m.Get("a")
	require.Equal(t, 3, v)

	ref, err := m.At("c")
	require.NoError(t, err)
	require.Zero(t, *ref)
	*ref = 5
	v, _ = m.Get("c")
	require.Equal(t, 5, v)
	require.Equal(t, int64(3), m.Len())

	require.ElementsMatch(t, []string{"a", "b", "c"}, m.Keys())
	require.ElementsMatch(t, []int{3, 2, 5}, m.Values())
	require.Len(t, m.Pairs(), 3)

	removed, err := m.Remove("b")
	require.NoError(t, err)
	require.Equal(t, 2, removed)
	_, err = m.Remove("b")
	require.ErrorIs(t, err, ErrKeyNotFound)

	it := m.Find("a")
	it.SetVal(10)
	require.Equal(t, infra.MakePair("a", 10), m.Find("a").Pair())
	next, err := m.Erase(it)
	require.NoError(t, err)
	require.True(t, next.IsEnd() || next.Key() == "c")
	require.False(t, m.Contains("a"))
}

func TestHashMapCloneSwap(t *testing.T) {
	m := NewHashMap[int, string](WithHashTableNodeLimit(8))
	for i := 0; i < 8; i++ {
		require.NoError(t, m.Put(i, "v"))
	}
	require.ErrorIs(t, m.Put(8, "v"), alloc.ErrAllocFailed)
	_, err := m.At(9)
	require.ErrorIs(t, err, alloc.ErrAllocFailed)

	cp, err := m.Clone()
	require.NoError(t, err)
	require.ElementsMatch(t, m.Keys(), cp.Keys())
	require.Equal(t, 1, cp.EraseKey(0))
	require.Equal(t, int64(7), cp.Len())
	require.Equal(t, int64(8), m.Len())

	other := NewHashMap[int, string]()
	m.Swap(other)
	require.True(t, m.Empty())
	require.Equal(t, int64(8), other.Len())

	visited := 0
	other.Foreach(func(int, string) bool {
		visited++
		return visited < 3
	})
	assert.Equal(t, 3, visited)

	n, err := other.EraseRange(other.Begin(), other.End())
	require.NoError(t, err)
	require.Equal(t, 8, n)
}

func TestHashMultiMap(t *testing.T) {
	m := NewHashMultiMap[int, string]()
	for _, p := range []infra.Pair[int, string]{{1, "x"}, {1, "y"}, {2, "z"}} {
		_, err := m.Insert(p.Key, p.Val)
		require.NoError(t, err)
	}
	require.Equal(t, 2, m.Count(1))
	require.Equal(t, 1, m.Count(2))

	first, last := m.EqualRange(1)
	vals := make([]string, 0, 2)
	for it := first; !it.Equal(last); it = it.Next() {
		require.Equal(t, 1, it.Key())
		vals = append(vals, it.Val())
	}
	require.Equal(t, []string{"x", "y"}, vals)

	cp, err := m.Clone()
	require.NoError(t, err)
	require.Equal(t, 2, cp.EraseKey(1))
	m.Swap(cp)
	require.Equal(t, int64(1), m.Len())
	require.Equal(t, int64(3), cp.Len())
	require.Equal(t, uint64(53), m.BucketCount())
	require.NoError(t, m.Reserve(100))
	require.Equal(t, uint64(193), m.BucketCount())
	require.InDelta(t, 1.0/193.0, m.LoadFactor(), 1e-9)
	m.Clear()
	require.True(t, m.Empty())
}

func TestHashMultiMapInsertionOrder(t *testing.T) {
	m := NewHashMultiMap[int, string]()
	for _, p := range []infra.Pair[int, string]{{1, "x"}, {1, "y"}, {2, "z"}, {1, "w"}, {1, "v"}} {
		_, err := m.Insert(p.Key, p.Val)
		require.NoError(t, err)
	}
	collect := func() []string {
		vals := make([]string, 0, 4)
		for it, end := m.EqualRange(1); !it.Equal(end); it = it.Next() {
			vals = append(vals, it.Val())
		}
		return vals
	}
	require.Equal(t, []string{"x", "y", "w", "v"}, collect())

	require.NoError(t, m.Reserve(1000))
	require.Equal(t, uint64(1543), m.BucketCount())
	require.Equal(t, []string{"x", "y", "w", "v"}, collect())

	_, err := m.Insert(1, "u")
	require.NoError(t, err)
	require.Equal(t, []string{"x", "y", "w", "v", "u"}, collect())
}

func TestHashSetReserve(t *testing.T) {
	s := NewHashSet[int](WithHashTableBuckets(53))
	for i := 0; i < 1000; i++ {
		_, ok, err := s.Insert(i)
		require.NoError(t, err)
		require.True(t, ok)
	}
	_, ok, err := s.Insert(10)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Reserve(2000))
	require.Equal(t, uint64(3079), s.BucketCount())
	for i := 0; i < 1000; i++ {
		it := s.Find(i)
		require.True(t, it.Valid())
		require.Equal(t, i, it.Value())
	}
	total := 0
	for n := uint64(0); n < s.BucketCount(); n++ {
		total += s.ElemsInBucket(n)
	}
	require.Equal(t, 1000, total)
	require.Len(t, s.Keys(), 1000)

	cp, err := s.Clone()
	require.NoError(t, err)
	cp.Swap(NewHashSet[int]())
	require.True(t, cp.Empty())
}

func TestHashMultiSetFunc(t *testing.T) {
	hasher := NewHasher[string]()
	s := NewHashMultiSetFunc[string](
		func(k string) uint64 { return hasher.Hash(strings.ToLower(k)) },
		strings.EqualFold,
	)
	for _, k := range []string{"Go", "go", "GO", "rust"} {
		_, err := s.Insert(k)
		require.NoError(t, err)
	}
	require.Equal(t, 3, s.Count("gO"))
	first, last := s.EqualRange("go")
	n := 0
	for it := first; !it.Equal(last); it = it.Next() {
		n++
	}
	require.Equal(t, 3, n)

	sum := 0
	s.Foreach(func(k string) bool {
		sum += len(k)
		return true
	})
	require.Equal(t, 10, sum)

	cp, err := s.Clone()
	require.NoError(t, err)
	erased, err := cp.EraseRange(cp.EqualRange("GO"))
	require.NoError(t, err)
	require.Equal(t, 3, erased)
	_, err = cp.Erase(cp.Find("rust"))
	require.NoError(t, err)
	require.True(t, cp.Empty())

	other := NewHashMultiSet[string]()
	s.Swap(other)
	require.Equal(t, int64(4), other.Len())
	require.True(t, s.Begin().IsEnd())
	require.True(t, s.End().IsEnd())

	hs := NewHashSetFunc[string](
		func(k string) uint64 { return hasher.Hash(strings.ToLower(k)) },
		strings.EqualFold,
	)
	_, ok, err := hs.Insert("Go")
	require.NoError(t, err)
	require.True(t, ok)
	_, ok, err = hs.Insert("GO")
	require.NoError(t, err)
	require.False(t, ok)
}
