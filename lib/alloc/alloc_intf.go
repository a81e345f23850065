package alloc

import "errors"

// ErrAllocFailed is reported whenever an allocator is unable to
// serve a request. Containers wrap it and keep their pre-call state.
var ErrAllocFailed = errors.New("[alloc] allocation failed")

// Allocator hands out zeroed objects of T and takes them back.
// It is owned by exactly one container, so it is not thread safe.
type Allocator[T any] interface {
	Allocate() (*T, error)
	// Deallocate zeroes the object before recycling it. The object
	// must not be referenced by the caller anymore.
	Deallocate(obj *T)
	// InUse returns the number of objects allocated but not
	// deallocated yet.
	InUse() int64
}

// SliceAllocator serves the contiguous vectors, i.e. the hash
// table bucket vectors.
type SliceAllocator[T any] interface {
	MakeSlice(n int) ([]T, error)
	FreeSlice(s []T)
	// InUse returns the number of cells held by the live slices.
	InUse() int64
}
