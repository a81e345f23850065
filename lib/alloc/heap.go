package alloc

import (
	"strconv"

	"github.com/benz9527/xstl/lib/infra"
)

var (
	_ Allocator[int]      = (*heapAllocator[int])(nil)
	_ SliceAllocator[int] = (*heapSliceAllocator[int])(nil)
)

// heapAllocator delegates to the Go runtime heap. A positive limit
// bounds the number of live objects.
type heapAllocator[T any] struct {
	inUse int64
	limit int64
}

func (h *heapAllocator[T]) Allocate() (*T, error) {
	if h.limit > 0 && h.inUse >= h.limit {
		return nil, infra.WrapErrorStackWithMessage(ErrAllocFailed,
			"[alloc] heap objects limit "+strconv.FormatInt(h.limit, 10)+" reached")
	}
	h.inUse++
	return new(T), nil
}

func (h *heapAllocator[T]) Deallocate(obj *T) {
	if obj == nil {
		return
	}
	*obj = *new(T)
	h.inUse--
}

func (h *heapAllocator[T]) InUse() int64 {
	return h.inUse
}

// NewHeapAllocator returns an allocator backed by new(T).
// limit <= 0 means unlimited.
func NewHeapAllocator[T any](limit int64) Allocator[T] {
	return &heapAllocator[T]{limit: limit}
}

type heapSliceAllocator[T any] struct {
	inUse  int64
	maxLen int
}

func (h *heapSliceAllocator[T]) MakeSlice(n int) ([]T, error) {
	if n < 0 {
		return nil, infra.NewErrorStack("[alloc] negative slice length " + strconv.Itoa(n))
	}
	if h.maxLen > 0 && n > h.maxLen {
		return nil, infra.WrapErrorStackWithMessage(ErrAllocFailed,
			"[alloc] slice length "+strconv.Itoa(n)+" exceeds "+strconv.Itoa(h.maxLen))
	}
	h.inUse += int64(n)
	return make([]T, n), nil
}

func (h *heapSliceAllocator[T]) FreeSlice(s []T) {
	if s == nil {
		return
	}
	clear(s)
	h.inUse -= int64(len(s))
}

func (h *heapSliceAllocator[T]) InUse() int64 {
	return h.inUse
}

// NewHeapSliceAllocator returns a slice allocator backed by make.
// maxLen <= 0 means unlimited.
func NewHeapSliceAllocator[T any](maxLen int) SliceAllocator[T] {
	return &heapSliceAllocator[T]{maxLen: maxLen}
}
