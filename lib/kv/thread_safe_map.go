package kv

import (
	"io"
	"reflect"
	"sync"

	"go.uber.org/multierr"

	"github.com/benz9527/xstl/lib/infra"
)

type threadSafeMapOptions struct {
	initCap                uint64
	isCloseableItemChecked bool
	tableOpts              []HashTableOption
}

type ThreadSafeMapOption[K comparable, V any] func(opts *threadSafeMapOptions)

func WithThreadSafeMapInitCap[K comparable, V any](capacity uint64) ThreadSafeMapOption[K, V] {
	return func(opts *threadSafeMapOptions) {
		opts.initCap = capacity
	}
}

// WithThreadSafeMapCloseableItemCheck closes the io.Closer items by Purge.
func WithThreadSafeMapCloseableItemCheck[K comparable, V any]() ThreadSafeMapOption[K, V] {
	return func(opts *threadSafeMapOptions) {
		opts.isCloseableItemChecked = true
	}
}

func WithThreadSafeMapTableOptions[K comparable, V any](tableOpts ...HashTableOption) ThreadSafeMapOption[K, V] {
	return func(opts *threadSafeMapOptions) {
		opts.tableOpts = append(opts.tableOpts, tableOpts...)
	}
}

type threadSafeMap[K comparable, V any] struct {
	lock           sync.RWMutex
	items          *HashMap[K, V]
	isClosableItem bool
}

func (t *threadSafeMap[K, V]) AddOrUpdate(key K, obj V) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.items.Put(key, obj)
}

func (t *threadSafeMap[K, V]) Replace(items map[K]V) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.items.Clear()
	if err := t.items.Reserve(uint64(len(items))); err != nil {
		return err
	}
	var merr error
	for key, item := range items {
		merr = multierr.Append(merr, t.items.Put(key, item))
	}
	return merr
}

func (t *threadSafeMap[K, V]) Delete(key K) (V, error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.items.Remove(key)
}

func (t *threadSafeMap[K, V]) Get(key K) (item V, exists bool) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.items.Get(key)
}

func (t *threadSafeMap[K, V]) Len() int64 {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.items.Len()
}

func (t *threadSafeMap[K, V]) ListKeys(filters ...SafeStoreKeyFilterFunc[K]) []K {
	realFilters := make([]SafeStoreKeyFilterFunc[K], 0, len(filters))
	for _, filter := range filters {
		if filter != nil {
			realFilters = append(realFilters, filter)
		}
	}
	if len(realFilters) == 0 {
		realFilters = append(realFilters, defaultAllKeysFilter[K])
	}

	t.lock.RLock()
	defer t.lock.RUnlock()

	keys := make([]K, 0, t.items.Len())
	t.items.Foreach(func(key K, _ V) bool {
		for _, filter := range realFilters {
			if filter(key) {
				keys = append(keys, key)
				break
			}
		}
		return true
	})
	return keys
}

// ListValues returns the values of the keys, all values if no keys.
func (t *threadSafeMap[K, V]) ListValues(keys ...K) (items []V) {
	t.lock.RLock()
	defer t.lock.RUnlock()

	if len(keys) <= 0 {
		return t.items.Values()
	}
	values := make([]V, 0, len(keys))
	for _, key := range keys {
		if item, exists := t.items.Get(key); exists {
			values = append(values, item)
		}
	}
	return values
}

func isNilItem(item any) bool {
	if item == nil {
		return true
	}
	switch v := reflect.ValueOf(item); v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}

// Purge removes all items, the closeable items are closed.
func (t *threadSafeMap[K, V]) Purge() error {
	t.lock.Lock()
	defer t.lock.Unlock()

	var merr error
	if t.isClosableItem {
		t.items.Foreach(func(_ K, item V) bool {
			if closer, ok := any(item).(io.Closer); ok && !isNilItem(closer) {
				merr = multierr.Append(merr, closer.Close())
			}
			return true
		})
	}
	t.items.Clear()
	if merr != nil {
		return infra.WrapErrorStackWithMessage(merr, "[kv] purge")
	}
	return nil
}

func NewThreadSafeMap[K comparable, V any](opts ...ThreadSafeMapOption[K, V]) ThreadSafeStorer[K, V] {
	o := &threadSafeMapOptions{initCap: 32}
	for _, opt := range opts {
		opt(o)
	}
	tableOpts := append([]HashTableOption{WithHashTableBuckets(o.initCap)}, o.tableOpts...)
	return &threadSafeMap[K, V]{
		items:          NewHashMap[K, V](tableOpts...),
		isClosableItem: o.isCloseableItemChecked,
	}
}
