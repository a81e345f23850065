package kv

import (
	"github.com/benz9527/xstl/lib/infra"
)

type hashSetBase[K any] struct {
	hashedBase[K, K]
}

func (s *hashSetBase[K]) Begin() Iterator[K] {
	return s.table.Begin()
}

func (s *hashSetBase[K]) End() Iterator[K] {
	return s.table.End()
}

func (s *hashSetBase[K]) Find(k K) Iterator[K] {
	return s.table.Find(k)
}

func (s *hashSetBase[K]) EqualRange(k K) (Iterator[K], Iterator[K]) {
	return s.table.EqualRange(k)
}

func (s *hashSetBase[K]) Erase(pos Iterator[K]) (Iterator[K], error) {
	return s.table.Erase(pos)
}

func (s *hashSetBase[K]) EraseRange(first, last Iterator[K]) (int, error) {
	return s.table.EraseRange(first, last)
}

// Keys returns the elements in the bucket order.
func (s *hashSetBase[K]) Keys() []K {
	return s.values()
}

func (s *hashSetBase[K]) Foreach(action func(k K) bool) {
	s.table.Foreach(func(_ int64, k K) bool {
		return action(k)
	})
}

// HashSet is the hashed set with unique elements.
type HashSet[K any] struct {
	hashSetBase[K]
}

func (s *HashSet[K]) Insert(k K) (Iterator[K], bool, error) {
	return s.table.InsertUnique(k)
}

func (s *HashSet[K]) Swap(that *HashSet[K]) {
	s.table.Swap(that.table)
}

func (s *HashSet[K]) Clone() (*HashSet[K], error) {
	table, err := s.table.Clone()
	if err != nil {
		return nil, err
	}
	return &HashSet[K]{hashSetBase[K]{hashedBase[K, K]{table: table}}}, nil
}

// HashMultiSet is the hashed set with duplicate elements.
type HashMultiSet[K any] struct {
	hashSetBase[K]
}

func (s *HashMultiSet[K]) Insert(k K) (Iterator[K], error) {
	return s.table.InsertEqual(k)
}

func (s *HashMultiSet[K]) Swap(that *HashMultiSet[K]) {
	s.table.Swap(that.table)
}

func (s *HashMultiSet[K]) Clone() (*HashMultiSet[K], error) {
	table, err := s.table.Clone()
	if err != nil {
		return nil, err
	}
	return &HashMultiSet[K]{hashSetBase[K]{hashedBase[K, K]{table: table}}}, nil
}

func NewHashSet[K comparable](opts ...HashTableOption) *HashSet[K] {
	return NewHashSetFunc[K](NewHasher[K]().Hash, comparableEqual[K], opts...)
}

func NewHashSetFunc[K any](hash func(K) uint64, equal func(i, j K) bool, opts ...HashTableOption) *HashSet[K] {
	return &HashSet[K]{hashSetBase[K]{hashedBase[K, K]{
		table: NewHashTable[K, K](infra.Identity[K], hash, equal, opts...),
	}}}
}

func NewHashMultiSet[K comparable](opts ...HashTableOption) *HashMultiSet[K] {
	return NewHashMultiSetFunc[K](NewHasher[K]().Hash, comparableEqual[K], opts...)
}

func NewHashMultiSetFunc[K any](hash func(K) uint64, equal func(i, j K) bool, opts ...HashTableOption) *HashMultiSet[K] {
	return &HashMultiSet[K]{hashSetBase[K]{hashedBase[K, K]{
		table: NewHashTable[K, K](infra.Identity[K], hash, equal, opts...),
	}}}
}
