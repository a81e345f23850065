package tree

import (
	"github.com/benz9527/xstl/lib/infra"
)

type setBase[K any] struct {
	orderedBase[K, K]
}

func (s *setBase[K]) Begin() Iterator[K] {
	return s.tree.Begin()
}

func (s *setBase[K]) End() Iterator[K] {
	return s.tree.End()
}

func (s *setBase[K]) Find(k K) Iterator[K] {
	return s.tree.Find(k)
}

func (s *setBase[K]) LowerBound(k K) Iterator[K] {
	return s.tree.LowerBound(k)
}

func (s *setBase[K]) UpperBound(k K) Iterator[K] {
	return s.tree.UpperBound(k)
}

func (s *setBase[K]) EqualRange(k K) (Iterator[K], Iterator[K]) {
	return s.tree.EqualRange(k)
}

func (s *setBase[K]) Erase(pos Iterator[K]) (Iterator[K], error) {
	return s.tree.Erase(pos)
}

func (s *setBase[K]) EraseRange(first, last Iterator[K]) (int, error) {
	return s.tree.EraseRange(first, last)
}

func (s *setBase[K]) Min() (K, error) {
	return s.tree.Min()
}

func (s *setBase[K]) Max() (K, error) {
	return s.tree.Max()
}

// Keys returns the elements in the ascending order.
func (s *setBase[K]) Keys() []K {
	return s.values()
}

func (s *setBase[K]) Foreach(action func(k K) bool) {
	s.tree.Foreach(func(_ int64, _ RBColor, k K) bool {
		return action(k)
	})
}

// Set is the ordered set with unique elements.
type Set[K any] struct {
	setBase[K]
}

func (s *Set[K]) Insert(k K) (Iterator[K], bool, error) {
	return s.tree.InsertUnique(k)
}

func (s *Set[K]) InsertHint(pos Iterator[K], k K) (Iterator[K], bool, error) {
	return s.tree.InsertUniqueHint(pos, k)
}

func (s *Set[K]) Swap(that *Set[K]) {
	s.tree.Swap(that.tree)
}

func (s *Set[K]) Clone() (*Set[K], error) {
	tree, err := s.tree.Clone()
	if err != nil {
		return nil, err
	}
	return &Set[K]{setBase: setBase[K]{orderedBase[K, K]{tree: tree}}}, nil
}

// MultiSet is the ordered set with duplicate elements.
type MultiSet[K any] struct {
	setBase[K]
}

func (s *MultiSet[K]) Insert(k K) (Iterator[K], error) {
	return s.tree.InsertEqual(k)
}

func (s *MultiSet[K]) InsertHint(pos Iterator[K], k K) (Iterator[K], error) {
	return s.tree.InsertEqualHint(pos, k)
}

func (s *MultiSet[K]) Swap(that *MultiSet[K]) {
	s.tree.Swap(that.tree)
}

func (s *MultiSet[K]) Clone() (*MultiSet[K], error) {
	tree, err := s.tree.Clone()
	if err != nil {
		return nil, err
	}
	return &MultiSet[K]{setBase: setBase[K]{orderedBase[K, K]{tree: tree}}}, nil
}

func NewSet[K infra.OrderedKey](opts ...RBTreeOption) *Set[K] {
	return NewSetFunc[K](infra.OrderedLess[K], opts...)
}

func NewSetFunc[K any](less func(i, j K) bool, opts ...RBTreeOption) *Set[K] {
	return &Set[K]{setBase: setBase[K]{orderedBase[K, K]{
		tree: NewRBTree[K, K](infra.Identity[K], less, opts...),
	}}}
}

func NewMultiSet[K infra.OrderedKey](opts ...RBTreeOption) *MultiSet[K] {
	return NewMultiSetFunc[K](infra.OrderedLess[K], opts...)
}

func NewMultiSetFunc[K any](less func(i, j K) bool, opts ...RBTreeOption) *MultiSet[K] {
	return &MultiSet[K]{setBase: setBase[K]{orderedBase[K, K]{
		tree: NewRBTree[K, K](infra.Identity[K], less, opts...),
	}}}
}
