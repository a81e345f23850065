package tree

// Iterator is a bidirectional cursor over the inorder sequence.
// It stays valid until its own node is erased. The End() iterator is
// the header position, one past the rightmost node.
type Iterator[V any] struct {
	node   *rbNode[V]
	header *rbNode[V]
}

func (it Iterator[V]) IsEnd() bool {
	return it.node == it.header
}

// Valid reports whether the iterator points to a value.
func (it Iterator[V]) Valid() bool {
	return it.node != nil && it.node != it.header
}

func (it Iterator[V]) Value() V {
	if !it.Valid() {
		panic( /* debug assertion */ "[rbtree] dereference the end iterator")
	}
	return it.node.val
}

// Ref exposes the stored value. Modifying the key part through it
// breaks the ordering.
func (it Iterator[V]) Ref() *V {
	if !it.Valid() {
		panic( /* debug assertion */ "[rbtree] dereference the end iterator")
	}
	return &it.node.val
}

func (it Iterator[V]) Color() RBColor {
	if !it.Valid() {
		panic( /* debug assertion */ "[rbtree] color of the end iterator")
	}
	return it.node.color
}

func (it Iterator[V]) Next() Iterator[V] {
	if !it.Valid() {
		panic( /* debug assertion */ "[rbtree] increment the end iterator")
	}
	return Iterator[V]{node: it.node.succ(), header: it.header}
}

func (it Iterator[V]) Prev() Iterator[V] {
	if it.node == nil {
		panic( /* debug assertion */ "[rbtree] decrement the zero iterator")
	}
	if it.node == it.header {
		if it.header.parent == nil {
			panic( /* debug assertion */ "[rbtree] decrement the end iterator of an empty tree")
		}
		return Iterator[V]{node: it.header.right, header: it.header}
	}
	if it.node == it.header.left {
		panic( /* debug assertion */ "[rbtree] decrement the begin iterator")
	}
	return Iterator[V]{node: it.node.pred(), header: it.header}
}

func (it Iterator[V]) Equal(that Iterator[V]) bool {
	return it.node == that.node && it.header == that.header
}
