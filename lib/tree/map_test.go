package tree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benz9527/xstl/lib/alloc"
	"github.com/benz9527/xstl/lib/infra"
)

func TestMapInsertPutAt(t *testing.T) {
	m := NewMap[string, int]()
	_, ok, err := m.Insert("a", 1)
	require.NoError(t, err)
	require.True(t, ok)
	_, ok, err = m.Insert("b", 2)
	require.NoError(t, err)
	require.True(t, ok)
	it, ok, err := m.Insert("a", 3)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 1, it.Val())

	require.Equal(t, int64(2), m.Len())
	v, ok := m.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)

	require.NoError(t, m.Put("a", 3))
	v, _ = m.Get("a")
	require.Equal(t, 3, v)

	ref, err := m.At("c")
	require.NoError(t, err)
	require.Equal(t, 0, *ref)
	*ref = 42
	v, ok = m.Get("c")
	require.True(t, ok)
	require.Equal(t, 42, v)

	ref, err = m.At("b")
	require.NoError(t, err)
	require.Equal(t, 2, *ref)

	require.Equal(t, []string{"a", "b", "c"}, m.Keys())
	require.Equal(t, []int{3, 2, 42}, m.Values())
	require.Equal(t, []infra.Pair[string, int]{{"a", 3}, {"b", 2}, {"c", 42}}, m.Pairs())

	_, ok = m.Get("z")
	require.False(t, ok)
	rbtreeValidate[string, infra.Pair[string, int]](t, m.tree)
}

func TestMapIterator(t *testing.T) {
	m := NewMapFunc[string, int](func(i, j string) bool {
		return strings.ToLower(i) < strings.ToLower(j)
	})
	for i, k := range []string{"b", "A", "c", "B"} {
		_, _, err := m.Insert(k, i)
		require.NoError(t, err)
	}
	require.Equal(t, int64(3), m.Len())
	require.True(t, m.Contains("a"))

	it := m.Begin()
	require.Equal(t, "A", it.Key())
	it.SetVal(100)
	require.Equal(t, infra.MakePair("A", 100), m.Find("a").Pair())

	it = it.Next()
	require.Equal(t, "b", it.Key())
	require.True(t, it.Next().Next().IsEnd())
	require.True(t, m.End().Prev().Equal(m.Find("C")))
	require.True(t, m.LowerBound("bb").Equal(m.UpperBound("b")))

	next, err := m.Erase(it)
	require.NoError(t, err)
	require.Equal(t, "c", next.Key())
	require.False(t, m.Contains("b"))

	visited := 0
	m.Foreach(func(k string, v int) bool {
		visited++
		return false
	})
	assert.Equal(t, 1, visited)

	m.Clear()
	require.True(t, m.Empty())
}

func TestMapCloneSwap(t *testing.T) {
	m := NewMap[int, string](WithRBTreeNodeLimit(4))
	for i := 0; i < 4; i++ {
		require.NoError(t, m.Put(i, "v"))
	}
	require.ErrorIs(t, m.Put(5, "v"), alloc.ErrAllocFailed)
	_, err := m.At(6)
	require.ErrorIs(t, err, alloc.ErrAllocFailed)
	require.Equal(t, int64(4), m.Len())

	cp, err := m.Clone()
	require.NoError(t, err)
	require.Equal(t, m.Keys(), cp.Keys())

	other := NewMap[int, string]()
	m.Swap(other)
	require.True(t, m.Empty())
	require.Equal(t, int64(4), other.Len())
}

func TestMultiMap(t *testing.T) {
	m := NewMultiMap[int, string]()
	for _, p := range []infra.Pair[int, string]{{1, "x"}, {2, "z"}, {1, "y"}} {
		_, err := m.Insert(p.Key, p.Val)
		require.NoError(t, err)
	}
	require.Equal(t, 2, m.Count(1))
	require.Equal(t, 1, m.Count(2))

	vals := make([]string, 0, 2)
	first, last := m.EqualRange(1)
	for it := first; !it.Equal(last); it = it.Next() {
		vals = append(vals, it.Val())
	}
	require.Equal(t, []string{"x", "y"}, vals)

	_, err := m.InsertHint(m.End(), 3, "w")
	require.NoError(t, err)
	_, err = m.InsertHint(m.Begin(), 0, "v")
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 1, 2, 3}, m.Keys())

	cp, err := m.Clone()
	require.NoError(t, err)
	require.Equal(t, 2, cp.EraseKey(1))
	require.Equal(t, int64(5), m.Len())

	n, err := m.EraseRange(m.LowerBound(1), m.UpperBound(2))
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, []string{"v", "w"}, m.Values())

	m.Swap(cp)
	require.Equal(t, []int{0, 2, 3}, m.Keys())
}

func TestSetAndMultiSet(t *testing.T) {
	s := NewSet[int]()
	for _, k := range []int{5, 3, 8, 3, 1} {
		_, _, err := s.Insert(k)
		require.NoError(t, err)
	}
	require.Equal(t, []int{1, 3, 5, 8}, s.Keys())
	_, ok, err := s.InsertHint(s.Find(5), 5)
	require.NoError(t, err)
	require.False(t, ok)
	_, ok, err = s.InsertHint(s.Find(5), 4)
	require.NoError(t, err)
	require.True(t, ok)
	min, err := s.Min()
	require.NoError(t, err)
	require.Equal(t, 1, min)
	max, err := s.Max()
	require.NoError(t, err)
	require.Equal(t, 8, max)

	ms := NewMultiSetFunc[int](infra.OrderedGreater[int])
	for _, k := range []int{5, 3, 8, 3, 1} {
		_, err := ms.Insert(k)
		require.NoError(t, err)
	}
	_, err = ms.InsertHint(ms.End(), 0)
	require.NoError(t, err)
	require.Equal(t, []int{8, 5, 3, 3, 1, 0}, ms.Keys())
	require.Equal(t, 2, ms.Count(3))
	first, last := ms.EqualRange(3)
	n, err := ms.EraseRange(first, last)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	sum := 0
	ms.Foreach(func(k int) bool {
		sum += k
		return true
	})
	require.Equal(t, 14, sum)

	cp, err := ms.Clone()
	require.NoError(t, err)
	other := NewMultiSet[int]()
	cp.Swap(other)
	require.True(t, cp.Empty())
	require.Equal(t, int64(4), other.Len())

	scp, err := s.Clone()
	require.NoError(t, err)
	scp.Swap(NewSet[int]())
	require.True(t, scp.Empty())

	_, err = s.Erase(s.End())
	require.ErrorIs(t, err, ErrEraseEnd)
	_, err = s.Erase(s.Begin())
	require.NoError(t, err)
	require.True(t, s.LowerBound(2).Equal(s.UpperBound(1)))
}

func TestMultiSetRoundTrip(t *testing.T) {
	ms := NewMultiSet[uint64]()
	for i := uint64(0); i < 300; i++ {
		_, err := ms.Insert(i % 50)
		require.NoError(t, err)
	}
	for i := uint64(0); i < 50; i++ {
		require.Equal(t, 6, ms.Count(i))
	}
	for i := uint64(0); i < 300; i++ {
		it := ms.Find(i % 50)
		require.True(t, it.Valid())
		_, err := ms.Erase(it)
		require.NoError(t, err)
	}
	require.True(t, ms.Empty())
	rbtreeValidate[uint64, uint64](t, ms.tree)
}
