package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type testObj struct {
	next *testObj
	id   int
}

func TestHeapAllocator(t *testing.T) {
	h := NewHeapAllocator[testObj](2)
	o1, err := h.Allocate()
	require.NoError(t, err)
	o1.id = 1
	o2, err := h.Allocate()
	require.NoError(t, err)
	require.NotSame(t, o1, o2)
	require.Equal(t, int64(2), h.InUse())

	_, err = h.Allocate()
	require.ErrorIs(t, err, ErrAllocFailed)

	h.Deallocate(o1)
	require.Equal(t, 0, o1.id)
	require.Equal(t, int64(1), h.InUse())
	_, err = h.Allocate()
	require.NoError(t, err)

	h.Deallocate(nil)
	require.Equal(t, int64(2), h.InUse())
}

func TestHeapSliceAllocator(t *testing.T) {
	h := NewHeapSliceAllocator[*testObj](100)
	s, err := h.MakeSlice(53)
	require.NoError(t, err)
	require.Len(t, s, 53)
	require.Equal(t, int64(53), h.InUse())

	_, err = h.MakeSlice(101)
	require.ErrorIs(t, err, ErrAllocFailed)
	require.Equal(t, int64(53), h.InUse())

	_, err = h.MakeSlice(-1)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrAllocFailed)

	s[0] = &testObj{id: 1}
	h.FreeSlice(s)
	require.Nil(t, s[0])
	require.Equal(t, int64(0), h.InUse())

	unlimited := NewHeapSliceAllocator[int](0)
	s2, err := unlimited.MakeSlice(1 << 16)
	require.NoError(t, err)
	require.Len(t, s2, 1<<16)
}

func TestArenaAllocateAndRecycle(t *testing.T) {
	arena := NewArena[testObj](4, 0)
	objs := make([]*testObj, 0, 10)
	for i := 0; i < 10; i++ {
		o, err := arena.Allocate()
		require.NoError(t, err)
		o.id = i + 1
		objs = append(objs, o)
	}
	require.Equal(t, 3, arena.Chunks())
	require.Equal(t, int64(10), arena.InUse())

	// Objects never move while the arena grows.
	for i, o := range objs {
		require.Equal(t, i+1, o.id)
	}

	arena.Deallocate(objs[3])
	arena.Deallocate(objs[7])
	require.Equal(t, 2, arena.Recycled())
	require.Equal(t, 0, objs[3].id)
	require.Equal(t, int64(8), arena.InUse())

	o, err := arena.Allocate()
	require.NoError(t, err)
	require.Same(t, objs[7], o)
	o, err = arena.Allocate()
	require.NoError(t, err)
	require.Same(t, objs[3], o)
	require.Equal(t, 0, arena.Recycled())
	require.Equal(t, 3, arena.Chunks())

	arena.Release()
	require.Equal(t, 0, arena.Chunks())
	require.Equal(t, int64(0), arena.InUse())
}

func TestArenaLimit(t *testing.T) {
	arena := NewArena[testObj](0, 3)
	for i := 0; i < 3; i++ {
		_, err := arena.Allocate()
		require.NoError(t, err)
	}
	o, err := arena.Allocate()
	require.Nil(t, o)
	require.ErrorIs(t, err, ErrAllocFailed)
	require.Equal(t, int64(3), arena.InUse())
	require.Equal(t, 1, arena.Chunks())
}
