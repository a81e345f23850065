package kv

import (
	"math/rand"
	randv2 "math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benz9527/xstl/lib/alloc"
	"github.com/benz9527/xstl/lib/infra"
)

func genStrKeys(strLen, count int) (keys []string) {
	src := rand.New(rand.NewSource(int64(strLen * count)))
	letters := []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
	l := len(letters)
	seen := make(map[string]struct{}, count)
	keys = make([]string, 0, count)
	r := make([]rune, strLen)
	for len(keys) < count {
		for i := range r {
			r[i] = letters[src.Intn(l)]
		}
		key := string(r)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}

func newIntTable(opts ...HashTableOption) *HashTable[int, int] {
	return NewHashTable[int, int](infra.Identity[int], NewHasher[int]().Hash, comparableEqual[int], opts...)
}

func TestNextPrime(t *testing.T) {
	testcases := []struct {
		n        uint64
		expected uint64
	}{
		{0, 53},
		{53, 53},
		{54, 97},
		{100, 193},
		{1543, 1543},
		{2000, 3079},
		{4294967291, 4294967291},
		{1 << 40, 4294967291},
	}
	for _, tc := range testcases {
		require.Equal(t, tc.expected, nextPrime(tc.n), "n %d", tc.n)
	}
	for i := 1; i < len(primes); i++ {
		require.Less(t, primes[i-1], primes[i])
	}
	require.Equal(t, uint64(4294967291), newIntTable().MaxBucketCount())
}

func TestHashTableLazyBuckets(t *testing.T) {
	tb := newIntTable(WithHashTableBuckets(100))
	require.Equal(t, uint64(193), tb.BucketCount())
	require.False(t, tb.allocated())
	require.True(t, tb.Begin().Equal(tb.End()))
	require.True(t, tb.Find(1).IsEnd())
	require.Equal(t, 0, tb.Count(1))
	require.Equal(t, 0, tb.EraseKey(1))
	first, last := tb.EqualRange(1)
	require.True(t, first.Equal(last))
	require.Equal(t, 0, tb.ElemsInBucket(0))
	require.Zero(t, tb.LoadFactor())

	require.NoError(t, tb.Reserve(1000))
	require.Equal(t, uint64(1543), tb.BucketCount())
	require.False(t, tb.allocated())

	_, ok, err := tb.InsertUnique(1)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, tb.allocated())
	require.Equal(t, uint64(1543), tb.BucketCount())
	require.NoError(t, BucketViolationValidate[int, int](tb))
}

func TestHashTableGrowthAndReserve(t *testing.T) {
	tb := newIntTable(WithHashTableBuckets(53))
	for i := 0; i < 1000; i++ {
		_, ok, err := tb.InsertUnique(i)
		require.NoError(t, err)
		require.True(t, ok)
		require.LessOrEqual(t, tb.Len(), int64(tb.BucketCount()))
	}
	require.Equal(t, uint64(1543), tb.BucketCount())
	require.Equal(t, uint64(5), tb.bkts.epoch)

	require.NoError(t, tb.Reserve(2000))
	require.Equal(t, uint64(3079), tb.BucketCount())
	for i := 0; i < 1000; i++ {
		it := tb.Find(i)
		require.True(t, it.Valid())
		require.Equal(t, i, it.Value())
	}
	require.NoError(t, BucketViolationValidate[int, int](tb))

	// no shrink
	require.NoError(t, tb.Reserve(10))
	require.Equal(t, uint64(3079), tb.BucketCount())

	total := 0
	for n := uint64(0); n < tb.BucketCount(); n++ {
		total += tb.ElemsInBucket(n)
	}
	require.Equal(t, 1000, total)
	require.InDelta(t, 1000.0/3079.0, tb.LoadFactor(), 1e-9)
}

func TestHashTableIteratorAcrossRehash(t *testing.T) {
	tb := newIntTable()
	for i := 0; i < 50; i++ {
		_, _, err := tb.InsertUnique(i)
		require.NoError(t, err)
	}
	its := make(map[int]Iterator[int], 50)
	for i := 0; i < 50; i++ {
		its[i] = tb.Find(i)
	}

	for i := 50; i < 5000; i++ {
		_, _, err := tb.InsertUnique(i)
		require.NoError(t, err)
	}
	require.Greater(t, tb.BucketCount(), uint64(53))

	for i := 0; i < 50; i += 2 {
		it := its[i]
		require.Equal(t, i, it.Value())
		_, err := tb.Erase(it)
		require.NoError(t, err)
		require.False(t, tb.Contains(i))
	}
	require.Equal(t, int64(5000-25), tb.Len())
	require.NoError(t, BucketViolationValidate[int, int](tb))

	// The old iterator walks the rest of the live vector.
	visited := 0
	for it := its[1]; !it.IsEnd(); it = it.Next() {
		visited++
	}
	require.Greater(t, visited, 0)
	require.LessOrEqual(t, visited, int(tb.Len()))

	visited = 0
	for it := tb.Begin(); !it.IsEnd(); it = it.Next() {
		visited++
	}
	require.Equal(t, int(tb.Len()), visited)
}

func TestHashTableEqualChains(t *testing.T) {
	// All keys collide into the same bucket.
	tb := NewHashTable[int, infra.Pair[int, string]](
		infra.PairKey[int, string],
		func(int) uint64 { return 7 },
		comparableEqual[int],
	)
	for _, p := range []infra.Pair[int, string]{
		{1, "a"}, {2, "b"}, {1, "c"}, {3, "d"}, {2, "e"}, {1, "f"},
	} {
		_, err := tb.InsertEqual(p)
		require.NoError(t, err)
	}
	require.NoError(t, BucketViolationValidate[int, infra.Pair[int, string]](tb))
	require.Equal(t, 6, tb.ElemsInBucket(7))
	require.Equal(t, 3, tb.Count(1))
	require.Equal(t, 2, tb.Count(2))
	require.Equal(t, 1, tb.Count(3))

	vals := make([]string, 0, 3)
	first, last := tb.EqualRange(1)
	for it := first; !it.Equal(last); it = it.Next() {
		require.Equal(t, 1, it.Value().Key)
		vals = append(vals, it.Value().Val)
	}
	require.Equal(t, []string{"a", "c", "f"}, vals)

	// the run at the chain tail
	require.True(t, last.IsEnd())
	first, last = tb.EqualRange(3)
	require.Equal(t, "d", first.Value().Val)
	require.Equal(t, "b", last.Value().Val)

	// rehash keeps the order inside the equal runs
	require.NoError(t, tb.Reserve(500))
	require.NoError(t, BucketViolationValidate[int, infra.Pair[int, string]](tb))
	vals = vals[:0]
	for it, end := tb.EqualRange(1); !it.Equal(end); it = it.Next() {
		vals = append(vals, it.Value().Val)
	}
	require.Equal(t, []string{"a", "c", "f"}, vals)
	vals = vals[:0]
	for it, end := tb.EqualRange(2); !it.Equal(end); it = it.Next() {
		vals = append(vals, it.Value().Val)
	}
	require.Equal(t, []string{"b", "e"}, vals)

	n, err := tb.EraseRange(tb.EqualRange(2))
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, 3, tb.EraseKey(1))
	require.Equal(t, int64(1), tb.Len())
	require.NoError(t, BucketViolationValidate[int, infra.Pair[int, string]](tb))
}

func TestHashTableNoResize(t *testing.T) {
	tb := newIntTable()
	for i := 0; i < 200; i++ {
		_, err := tb.InsertEqualNoResize(i % 100)
		require.NoError(t, err)
	}
	require.Equal(t, uint64(53), tb.BucketCount())
	require.Equal(t, int64(200), tb.Len())
	it, ok, err := tb.InsertUniqueNoResize(5)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 5, it.Value())
	require.Equal(t, 2, tb.Count(5))
	require.NoError(t, BucketViolationValidate[int, int](tb))
}

func TestHashTableAllocFailure(t *testing.T) {
	tb := newIntTable(WithHashTableBucketLimit(100))
	for i := 0; i < 97; i++ {
		_, _, err := tb.InsertUnique(i)
		require.NoError(t, err)
	}
	require.Equal(t, uint64(97), tb.BucketCount())
	_, ok, err := tb.InsertUnique(97)
	require.ErrorIs(t, err, alloc.ErrAllocFailed)
	require.False(t, ok)
	require.ErrorIs(t, tb.Reserve(1000), alloc.ErrAllocFailed)
	require.Equal(t, uint64(97), tb.BucketCount())
	require.Equal(t, int64(97), tb.Len())
	for i := 0; i < 97; i++ {
		require.True(t, tb.Contains(i))
	}
	require.NoError(t, BucketViolationValidate[int, int](tb))

	tb = newIntTable(WithHashTableNodeLimit(5), WithHashTableHeapAllocator())
	for i := 0; i < 5; i++ {
		_, err := tb.InsertEqual(i)
		require.NoError(t, err)
	}
	_, err = tb.InsertEqual(1)
	require.ErrorIs(t, err, alloc.ErrAllocFailed)
	_, err = tb.FindOrInsert(6)
	require.ErrorIs(t, err, alloc.ErrAllocFailed)
	ref, err := tb.FindOrInsert(4)
	require.NoError(t, err)
	require.Equal(t, 4, *ref)
	require.Equal(t, int64(5), tb.Len())
	require.NoError(t, BucketViolationValidate[int, int](tb))

	tb = newIntTable(WithHashTableBuckets(1000), WithHashTableBucketLimit(100))
	_, _, err = tb.InsertUnique(1)
	require.ErrorIs(t, err, alloc.ErrAllocFailed)
	require.True(t, tb.Empty())
}

func TestHashTableCloneAndSwap(t *testing.T) {
	tb := newIntTable(WithHashTableArena(16))
	for i := 0; i < 300; i++ {
		_, err := tb.InsertEqual(randv2.IntN(100))
		require.NoError(t, err)
	}
	cp, err := tb.Clone()
	require.NoError(t, err)
	require.Equal(t, tb.BucketCount(), cp.BucketCount())
	src, dst := make([]int, 0, 300), make([]int, 0, 300)
	tb.Foreach(func(_ int64, v int) bool {
		src = append(src, v)
		return true
	})
	cp.Foreach(func(_ int64, v int) bool {
		dst = append(dst, v)
		return true
	})
	require.Equal(t, src, dst)
	require.NoError(t, BucketViolationValidate[int, int](cp))

	cp.Clear()
	require.True(t, cp.Empty())
	require.Equal(t, int64(300), tb.Len())

	// Clone failure releases the partial copy.
	tb.opts.nodeLimit = 10
	_, err = tb.Clone()
	require.ErrorIs(t, err, alloc.ErrAllocFailed)
	require.Equal(t, int64(300), tb.Len())
	tb.opts.nodeLimit = 0

	other := newIntTable()
	_, _, err = other.InsertUnique(-1)
	require.NoError(t, err)
	it := tb.Begin()
	v := it.Value()
	tb.Swap(other)
	require.Equal(t, int64(1), tb.Len())
	require.Equal(t, int64(300), other.Len())
	require.Equal(t, v, it.Value())
	_, err = tb.Erase(it)
	require.ErrorIs(t, err, ErrForeignIterator)
	var es infra.ErrorStack
	require.ErrorAs(t, err, &es)
	_, err = tb.EraseRange(it, other.End())
	require.ErrorIs(t, err, ErrForeignIterator)
	require.ErrorAs(t, err, &es)
	_, err = other.Erase(it)
	require.NoError(t, err)
	require.Equal(t, int64(299), other.Len())

	lazy := newIntTable(WithHashTableBuckets(500))
	lcp, err := lazy.Clone()
	require.NoError(t, err)
	require.Equal(t, uint64(769), lcp.BucketCount())
}

func TestHashTableEraseAll(t *testing.T) {
	tb := newIntTable()
	keys := randv2.Perm(1000)
	for _, k := range keys {
		_, err := tb.InsertEqual(k)
		require.NoError(t, err)
	}
	_, err := tb.Erase(tb.End())
	require.ErrorIs(t, err, ErrEraseEnd)
	var es infra.ErrorStack
	require.ErrorAs(t, err, &es)
	require.Panics(t, func() { tb.End().Next() })
	require.Panics(t, func() { tb.End().Value() })

	erased := 0
	for it := tb.Begin(); !it.IsEnd(); {
		it, err = tb.Erase(it)
		require.NoError(t, err)
		erased++
	}
	require.Equal(t, 1000, erased)
	require.True(t, tb.Empty())
	require.Equal(t, int64(0), tb.nodes.InUse())
	require.NoError(t, BucketViolationValidate[int, int](tb))

	n, err := tb.EraseRange(tb.Begin(), tb.End())
	require.NoError(t, err)
	require.Zero(t, n)
}
