package kv

import (
	"errors"
	"io"
)

var (
	ErrEraseEnd        = errors.New("[hashtable] erase the end iterator")
	ErrForeignIterator = errors.New("[hashtable] iterator belongs to another table")
	ErrKeyNotFound     = errors.New("[kv] key not found")
	errBucketViolation = errors.New("[hashtable] bucket violation")
	errCountViolation  = errors.New("[hashtable] count violation")
)

type SafeStoreKeyFilterFunc[K comparable] func(key K) bool

func defaultAllKeysFilter[K comparable](key K) bool {
	return true
}

type Closable interface {
	io.Closer
}

// ThreadSafeStorer is the RWMutex protected key-value store.
type ThreadSafeStorer[K comparable, V any] interface {
	Purge() error
	AddOrUpdate(key K, obj V) error
	Replace(items map[K]V) error
	Delete(key K) (V, error)
	Get(key K) (item V, exists bool)
	Len() int64
	ListKeys(filters ...SafeStoreKeyFilterFunc[K]) []K
	ListValues(keys ...K) (items []V)
}
