package alloc

import (
	"strconv"

	"github.com/benz9527/xstl/lib/infra"
)

var _ Allocator[int] = (*Arena[int])(nil)

const defaultArenaChunkSize = 64

// Arena is a slab allocator. Objects are carved from fixed size chunks
// and never move, so the pointers handed out stay stable until they are
// deallocated. Deallocated objects are pushed into the recycled list and
// served first by the next allocations.
//
//	chunks:   [ o o o o ] [ o o o o ] [ o o _ _ ]
//	                                        ^ offset
//	recycled: [ *o, *o ]
type Arena[T any] struct {
	chunks    [][]T
	recycled  []*T
	chunkSize int
	offset    int   // next free object index in the last chunk
	inUse     int64 // live objects
	limit     int64 // max live objects, <= 0 unlimited
}

func (arena *Arena[T]) Allocate() (*T, error) {
	if arena.limit > 0 && arena.inUse >= arena.limit {
		return nil, infra.WrapErrorStackWithMessage(ErrAllocFailed,
			"[arena] live objects limit "+strconv.FormatInt(arena.limit, 10)+" reached")
	}

	if rl := len(arena.recycled); rl > 0 {
		obj := arena.recycled[rl-1]
		arena.recycled[rl-1] = nil
		arena.recycled = arena.recycled[:rl-1]
		arena.inUse++
		return obj, nil
	}

	if l := len(arena.chunks); l <= 0 || arena.offset >= len(arena.chunks[l-1]) {
		arena.chunks = append(arena.chunks, make([]T, arena.chunkSize))
		arena.offset = 0
	}
	obj := &arena.chunks[len(arena.chunks)-1][arena.offset]
	arena.offset++
	arena.inUse++
	return obj, nil
}

func (arena *Arena[T]) Deallocate(obj *T) {
	if obj == nil {
		return
	}
	*obj = *new(T)
	arena.recycled = append(arena.recycled, obj)
	arena.inUse--
}

func (arena *Arena[T]) InUse() int64 {
	return arena.inUse
}

// Chunks returns the number of the allocated chunks.
func (arena *Arena[T]) Chunks() int {
	return len(arena.chunks)
}

// Recycled returns the number of the objects waiting for reuse.
func (arena *Arena[T]) Recycled() int {
	return len(arena.recycled)
}

// Release drops every chunk. All the objects allocated from the arena
// become invalid, the owner must not touch them anymore.
func (arena *Arena[T]) Release() {
	clear(arena.chunks)
	arena.chunks = arena.chunks[:0]
	clear(arena.recycled)
	arena.recycled = arena.recycled[:0]
	arena.offset = 0
	arena.inUse = 0
}

// NewArena creates an arena whose chunks hold chunkSize objects.
// limit <= 0 means unlimited live objects.
func NewArena[T any](chunkSize int, limit int64) *Arena[T] {
	if chunkSize <= 0 {
		chunkSize = defaultArenaChunkSize
	}
	return &Arena[T]{
		chunks:    make([][]T, 0, 8),
		recycled:  make([]*T, 0, chunkSize),
		chunkSize: chunkSize,
		limit:     limit,
	}
}
