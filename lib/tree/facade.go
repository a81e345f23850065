package tree

// orderedBase holds the pass-through operations shared by the
// ordered façades.
type orderedBase[K any, V any] struct {
	tree *RBTree[K, V]
}

func (base *orderedBase[K, V]) Len() int64 {
	return base.tree.Len()
}

func (base *orderedBase[K, V]) Empty() bool {
	return base.tree.Empty()
}

func (base *orderedBase[K, V]) Count(k K) int {
	return base.tree.Count(k)
}

func (base *orderedBase[K, V]) Contains(k K) bool {
	return base.tree.Contains(k)
}

// EraseKey removes all values with key k.
func (base *orderedBase[K, V]) EraseKey(k K) int {
	return base.tree.EraseKey(k)
}

func (base *orderedBase[K, V]) Clear() {
	base.tree.Clear()
}

func (base *orderedBase[K, V]) values() []V {
	vals := make([]V, 0, base.tree.Len())
	base.tree.Foreach(func(_ int64, _ RBColor, val V) bool {
		vals = append(vals, val)
		return true
	})
	return vals
}
