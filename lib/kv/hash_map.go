package kv

import (
	"github.com/samber/lo"

	"github.com/benz9527/xstl/lib/infra"
)

// MapIterator walks the key-value pairs in the bucket order.
type MapIterator[K any, V any] struct {
	it Iterator[infra.Pair[K, V]]
}

func (mit MapIterator[K, V]) Key() K {
	return mit.it.Value().Key
}

func (mit MapIterator[K, V]) Val() V {
	return mit.it.Value().Val
}

func (mit MapIterator[K, V]) Pair() infra.Pair[K, V] {
	return mit.it.Value()
}

func (mit MapIterator[K, V]) SetVal(val V) {
	mit.it.Ref().Val = val
}

func (mit MapIterator[K, V]) Next() MapIterator[K, V] {
	return MapIterator[K, V]{it: mit.it.Next()}
}

func (mit MapIterator[K, V]) IsEnd() bool {
	return mit.it.IsEnd()
}

func (mit MapIterator[K, V]) Valid() bool {
	return mit.it.Valid()
}

func (mit MapIterator[K, V]) Equal(that MapIterator[K, V]) bool {
	return mit.it.Equal(that.it)
}

type hashMapBase[K any, V any] struct {
	hashedBase[K, infra.Pair[K, V]]
}

func (m *hashMapBase[K, V]) wrap(it Iterator[infra.Pair[K, V]]) MapIterator[K, V] {
	return MapIterator[K, V]{it: it}
}

func (m *hashMapBase[K, V]) Begin() MapIterator[K, V] {
	return m.wrap(m.table.Begin())
}

func (m *hashMapBase[K, V]) End() MapIterator[K, V] {
	return m.wrap(m.table.End())
}

func (m *hashMapBase[K, V]) Find(k K) MapIterator[K, V] {
	return m.wrap(m.table.Find(k))
}

func (m *hashMapBase[K, V]) EqualRange(k K) (MapIterator[K, V], MapIterator[K, V]) {
	first, last := m.table.EqualRange(k)
	return m.wrap(first), m.wrap(last)
}

func (m *hashMapBase[K, V]) Erase(pos MapIterator[K, V]) (MapIterator[K, V], error) {
	next, err := m.table.Erase(pos.it)
	return m.wrap(next), err
}

func (m *hashMapBase[K, V]) EraseRange(first, last MapIterator[K, V]) (int, error) {
	return m.table.EraseRange(first.it, last.it)
}

func (m *hashMapBase[K, V]) Pairs() []infra.Pair[K, V] {
	return m.values()
}

func (m *hashMapBase[K, V]) Keys() []K {
	return lo.Map(m.values(), func(p infra.Pair[K, V], _ int) K {
		return p.Key
	})
}

func (m *hashMapBase[K, V]) Values() []V {
	return lo.Map(m.values(), func(p infra.Pair[K, V], _ int) V {
		return p.Val
	})
}

func (m *hashMapBase[K, V]) Foreach(action func(k K, v V) bool) {
	m.table.Foreach(func(_ int64, p infra.Pair[K, V]) bool {
		return action(p.Key, p.Val)
	})
}

// HashMap is the hashed map with unique keys.
type HashMap[K any, V any] struct {
	hashMapBase[K, V]
}

// Insert keeps the existing value if the key exists already.
func (m *HashMap[K, V]) Insert(k K, v V) (MapIterator[K, V], bool, error) {
	it, ok, err := m.table.InsertUnique(infra.MakePair(k, v))
	return m.wrap(it), ok, err
}

// Put inserts or assigns, the last value wins.
func (m *HashMap[K, V]) Put(k K, v V) error {
	it, ok, err := m.table.InsertUnique(infra.MakePair(k, v))
	if err != nil {
		return err
	}
	if !ok {
		it.Ref().Val = v
	}
	return nil
}

func (m *HashMap[K, V]) Get(k K) (V, bool) {
	it := m.table.Find(k)
	if it.IsEnd() {
		return *new(V), false
	}
	return it.Value().Val, true
}

// At returns the reference of the mapped value. The zero value is
// inserted if the key is absent.
func (m *HashMap[K, V]) At(k K) (*V, error) {
	p, err := m.table.FindOrInsert(infra.MakePair(k, *new(V)))
	if err != nil {
		return nil, err
	}
	return &p.Val, nil
}

// Remove erases the key and returns its value.
func (m *HashMap[K, V]) Remove(k K) (V, error) {
	it := m.table.Find(k)
	if it.IsEnd() {
		return *new(V), ErrKeyNotFound
	}
	val := it.Value().Val
	if _, err := m.table.Erase(it); err != nil {
		return *new(V), err
	}
	return val, nil
}

func (m *HashMap[K, V]) Swap(that *HashMap[K, V]) {
	m.table.Swap(that.table)
}

func (m *HashMap[K, V]) Clone() (*HashMap[K, V], error) {
	table, err := m.table.Clone()
	if err != nil {
		return nil, err
	}
	return &HashMap[K, V]{hashMapBase[K, V]{hashedBase[K, infra.Pair[K, V]]{table: table}}}, nil
}

// HashMultiMap is the hashed map with duplicate keys.
type HashMultiMap[K any, V any] struct {
	hashMapBase[K, V]
}

func (m *HashMultiMap[K, V]) Insert(k K, v V) (MapIterator[K, V], error) {
	it, err := m.table.InsertEqual(infra.MakePair(k, v))
	return m.wrap(it), err
}

func (m *HashMultiMap[K, V]) Swap(that *HashMultiMap[K, V]) {
	m.table.Swap(that.table)
}

func (m *HashMultiMap[K, V]) Clone() (*HashMultiMap[K, V], error) {
	table, err := m.table.Clone()
	if err != nil {
		return nil, err
	}
	return &HashMultiMap[K, V]{hashMapBase[K, V]{hashedBase[K, infra.Pair[K, V]]{table: table}}}, nil
}

func newPairTable[K any, V any](hash func(K) uint64, equal func(i, j K) bool, opts ...HashTableOption) *HashTable[K, infra.Pair[K, V]] {
	return NewHashTable[K, infra.Pair[K, V]](infra.PairKey[K, V], hash, equal, opts...)
}

func comparableEqual[K comparable](i, j K) bool {
	return i == j
}

func NewHashMap[K comparable, V any](opts ...HashTableOption) *HashMap[K, V] {
	return NewHashMapFunc[K, V](NewHasher[K]().Hash, comparableEqual[K], opts...)
}

func NewHashMapFunc[K any, V any](hash func(K) uint64, equal func(i, j K) bool, opts ...HashTableOption) *HashMap[K, V] {
	return &HashMap[K, V]{hashMapBase[K, V]{hashedBase[K, infra.Pair[K, V]]{
		table: newPairTable[K, V](hash, equal, opts...),
	}}}
}

func NewHashMultiMap[K comparable, V any](opts ...HashTableOption) *HashMultiMap[K, V] {
	return NewHashMultiMapFunc[K, V](NewHasher[K]().Hash, comparableEqual[K], opts...)
}

func NewHashMultiMapFunc[K any, V any](hash func(K) uint64, equal func(i, j K) bool, opts ...HashTableOption) *HashMultiMap[K, V] {
	return &HashMultiMap[K, V]{hashMapBase[K, V]{hashedBase[K, infra.Pair[K, V]]{
		table: newPairTable[K, V](hash, equal, opts...),
	}}}
}
