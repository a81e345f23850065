package tree

import (
	"github.com/samber/lo"

	"github.com/benz9527/xstl/lib/infra"
)

// MapIterator walks the key-value pairs in the ascending key order.
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

// SetVal replaces the mapped value in place.
func (mit MapIterator[K, V]) SetVal(val V) {
	mit.it.Ref().Val = val
}

func (mit MapIterator[K, V]) Next() MapIterator[K, V] {
	return MapIterator[K, V]{it: mit.it.Next()}
}

func (mit MapIterator[K, V]) Prev() MapIterator[K, V] {
	return MapIterator[K, V]{it: mit.it.Prev()}
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

type mapBase[K any, V any] struct {
	orderedBase[K, infra.Pair[K, V]]
}

func (m *mapBase[K, V]) wrap(it Iterator[infra.Pair[K, V]]) MapIterator[K, V] {
	return MapIterator[K, V]{it: it}
}

func (m *mapBase[K, V]) Begin() MapIterator[K, V] {
	return m.wrap(m.tree.Begin())
}

func (m *mapBase[K, V]) End() MapIterator[K, V] {
	return m.wrap(m.tree.End())
}

func (m *mapBase[K, V]) Find(k K) MapIterator[K, V] {
	return m.wrap(m.tree.Find(k))
}

func (m *mapBase[K, V]) LowerBound(k K) MapIterator[K, V] {
	return m.wrap(m.tree.LowerBound(k))
}

func (m *mapBase[K, V]) UpperBound(k K) MapIterator[K, V] {
	return m.wrap(m.tree.UpperBound(k))
}

func (m *mapBase[K, V]) EqualRange(k K) (MapIterator[K, V], MapIterator[K, V]) {
	first, last := m.tree.EqualRange(k)
	return m.wrap(first), m.wrap(last)
}

func (m *mapBase[K, V]) Erase(pos MapIterator[K, V]) (MapIterator[K, V], error) {
	next, err := m.tree.Erase(pos.it)
	return m.wrap(next), err
}

func (m *mapBase[K, V]) EraseRange(first, last MapIterator[K, V]) (int, error) {
	return m.tree.EraseRange(first.it, last.it)
}

func (m *mapBase[K, V]) Pairs() []infra.Pair[K, V] {
	return m.values()
}

func (m *mapBase[K, V]) Keys() []K {
	return lo.Map(m.values(), func(p infra.Pair[K, V], _ int) K {
		return p.Key
	})
}

func (m *mapBase[K, V]) Values() []V {
	return lo.Map(m.values(), func(p infra.Pair[K, V], _ int) V {
		return p.Val
	})
}

// Foreach stops if action returns false.
func (m *mapBase[K, V]) Foreach(action func(k K, v V) bool) {
	m.tree.Foreach(func(_ int64, _ RBColor, p infra.Pair[K, V]) bool {
		return action(p.Key, p.Val)
	})
}

// Map is the ordered map with unique keys.
type Map[K any, V any] struct {
	mapBase[K, V]
}

// Insert keeps the existing value if the key exists already.
func (m *Map[K, V]) Insert(k K, v V) (MapIterator[K, V], bool, error) {
	it, ok, err := m.tree.InsertUnique(infra.MakePair(k, v))
	return m.wrap(it), ok, err
}

func (m *Map[K, V]) InsertHint(pos MapIterator[K, V], k K, v V) (MapIterator[K, V], bool, error) {
	it, ok, err := m.tree.InsertUniqueHint(pos.it, infra.MakePair(k, v))
	return m.wrap(it), ok, err
}

// Put inserts or assigns, the last value wins.
func (m *Map[K, V]) Put(k K, v V) error {
	it, ok, err := m.tree.InsertUnique(infra.MakePair(k, v))
	if err != nil {
		return err
	}
	if !ok {
		it.Ref().Val = v
	}
	return nil
}

func (m *Map[K, V]) Get(k K) (V, bool) {
	it := m.tree.Find(k)
	if it.IsEnd() {
		return *new(V), false
	}
	return it.Value().Val, true
}

// At returns the reference of the mapped value. The zero value is
// inserted if the key is absent.
func (m *Map[K, V]) At(k K) (*V, error) {
	it := m.tree.LowerBound(k)
	if it.IsEnd() || m.tree.less(k, it.Value().Key) {
		var err error
		if it, _, err = m.tree.InsertUniqueHint(it, infra.MakePair(k, *new(V))); err != nil {
			return nil, err
		}
	}
	return &it.Ref().Val, nil
}

func (m *Map[K, V]) Swap(that *Map[K, V]) {
	m.tree.Swap(that.tree)
}

func (m *Map[K, V]) Clone() (*Map[K, V], error) {
	tree, err := m.tree.Clone()
	if err != nil {
		return nil, err
	}
	return &Map[K, V]{mapBase: mapBase[K, V]{orderedBase[K, infra.Pair[K, V]]{tree: tree}}}, nil
}

// MultiMap is the ordered map with duplicate keys. The pairs with
// equal keys keep the insertion order.
type MultiMap[K any, V any] struct {
	mapBase[K, V]
}

func (m *MultiMap[K, V]) Insert(k K, v V) (MapIterator[K, V], error) {
	it, err := m.tree.InsertEqual(infra.MakePair(k, v))
	return m.wrap(it), err
}

func (m *MultiMap[K, V]) InsertHint(pos MapIterator[K, V], k K, v V) (MapIterator[K, V], error) {
	it, err := m.tree.InsertEqualHint(pos.it, infra.MakePair(k, v))
	return m.wrap(it), err
}

func (m *MultiMap[K, V]) Swap(that *MultiMap[K, V]) {
	m.tree.Swap(that.tree)
}

func (m *MultiMap[K, V]) Clone() (*MultiMap[K, V], error) {
	tree, err := m.tree.Clone()
	if err != nil {
		return nil, err
	}
	return &MultiMap[K, V]{mapBase: mapBase[K, V]{orderedBase[K, infra.Pair[K, V]]{tree: tree}}}, nil
}

func newPairTree[K any, V any](less func(i, j K) bool, opts ...RBTreeOption) *RBTree[K, infra.Pair[K, V]] {
	return NewRBTree[K, infra.Pair[K, V]](infra.PairKey[K, V], less, opts...)
}

func NewMap[K infra.OrderedKey, V any](opts ...RBTreeOption) *Map[K, V] {
	return NewMapFunc[K, V](infra.OrderedLess[K], opts...)
}

func NewMapFunc[K any, V any](less func(i, j K) bool, opts ...RBTreeOption) *Map[K, V] {
	return &Map[K, V]{mapBase: mapBase[K, V]{orderedBase[K, infra.Pair[K, V]]{
		tree: newPairTree[K, V](less, opts...),
	}}}
}

func NewMultiMap[K infra.OrderedKey, V any](opts ...RBTreeOption) *MultiMap[K, V] {
	return NewMultiMapFunc[K, V](infra.OrderedLess[K], opts...)
}

func NewMultiMapFunc[K any, V any](less func(i, j K) bool, opts ...RBTreeOption) *MultiMap[K, V] {
	return &MultiMap[K, V]{mapBase: mapBase[K, V]{orderedBase[K, infra.Pair[K, V]]{
		tree: newPairTree[K, V](less, opts...),
	}}}
}
