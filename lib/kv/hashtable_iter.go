package kv

// htBuckets is the navigation context shared by the table and its
// iterators. The rehash replaces the slots and bumps the epoch in
// place, so the iterators see the live vector.
type htBuckets[V any] struct {
	slots  []*htNode[V]
	epoch  uint64
	hashOf func(V) uint64
}

func (b *htBuckets[V]) bucketOf(val V) int {
	return int(b.hashOf(val) % uint64(len(b.slots)))
}

// firstFrom returns the first node located in the bucket n or after.
func (b *htBuckets[V]) firstFrom(n int) (*htNode[V], int) {
	for ; n < len(b.slots); n++ {
		if b.slots[n] != nil {
			return b.slots[n], n
		}
	}
	return nil, len(b.slots)
}

// Iterator is a forward cursor over the buckets. The cached bucket index
// is recomputed from the node's key when the table has been rehashed
// since the iterator was made, so it stays valid until its own node is
// erased.
type Iterator[V any] struct {
	node   *htNode[V]
	ctx    *htBuckets[V]
	bucket int
	epoch  uint64
}

func (it Iterator[V]) IsEnd() bool {
	return it.node == nil
}

func (it Iterator[V]) Valid() bool {
	return it.node != nil
}

func (it Iterator[V]) Value() V {
	if it.node == nil {
		panic( /* debug assertion */ "[hashtable] dereference the end iterator")
	}
	return it.node.val
}

// Ref exposes the stored value. Modifying the key part through it
// breaks the bucket placement.
func (it Iterator[V]) Ref() *V {
	if it.node == nil {
		panic( /* debug assertion */ "[hashtable] dereference the end iterator")
	}
	return &it.node.val
}

func (it Iterator[V]) currentBucket() int {
	if it.epoch != it.ctx.epoch {
		return it.ctx.bucketOf(it.node.val)
	}
	return it.bucket
}

func (it Iterator[V]) Next() Iterator[V] {
	if it.node == nil {
		panic( /* debug assertion */ "[hashtable] increment the end iterator")
	}
	n := it.currentBucket()
	if it.node.next != nil {
		return Iterator[V]{node: it.node.next, ctx: it.ctx, bucket: n, epoch: it.ctx.epoch}
	}
	node, n := it.ctx.firstFrom(n + 1)
	return Iterator[V]{node: node, ctx: it.ctx, bucket: n, epoch: it.ctx.epoch}
}

func (it Iterator[V]) Equal(that Iterator[V]) bool {
	return it.node == that.node && it.ctx == that.ctx
}
