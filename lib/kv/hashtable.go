package kv

import (
	"go.uber.org/zap"

	"github.com/benz9527/xstl/lib/alloc"
	"github.com/benz9527/xstl/lib/infra"
)

type htNode[V any] struct {
	next *htNode[V]
	val  V
}

/*
HashTable is the open chaining hash table engine of the hashed containers.

	 bucket |  0  |  1  |  2  | ... | 52  |
	--------|-----|-----|-----|     |-----|
	 slots  |  *  | nil |  *  | ... | nil |
	           |           |
	         (k1)        (k3)
	           |           |
	         (k1)        (k9)
	           |
	         (k7)

Each value is chained in the bucket hash(key) mod bucket count. The
unique insertion prepends to the chain head. The equal insertion links
the value right after the first node with the equal key, so the equal
keys are adjacent in their chain.

The bucket count is always a prime from the fixed table. The table
grows before an insertion makes the element count exceed the bucket
count, the max load factor is 1.

The bucket vector is allocated by the first mutation.
The table is not thread safe.
*/
type HashTable[K any, V any] struct {
	bkts   *htBuckets[V]
	keyOf  func(V) K
	hash   func(K) uint64
	equal  func(i, j K) bool
	nodes  alloc.Allocator[htNode[V]]
	slices alloc.SliceAllocator[*htNode[V]]
	logger *zap.Logger
	stats  *hashTableStats
	opts   *hashTableOptions
	count  int64
	hint   uint64 // bucket count before the bucket vector allocated
}

func (tb *HashTable[K, V]) keyEqual(node *htNode[V], k K) bool {
	return tb.equal(tb.keyOf(node.val), k)
}

func (tb *HashTable[K, V]) bucketOfKey(k K) int {
	return int(tb.hash(k) % uint64(len(tb.bkts.slots)))
}

func (tb *HashTable[K, V]) iterator(node *htNode[V], n int) Iterator[V] {
	return Iterator[V]{node: node, ctx: tb.bkts, bucket: n, epoch: tb.bkts.epoch}
}

func (tb *HashTable[K, V]) allocated() bool {
	return tb.bkts.slots != nil
}

func (tb *HashTable[K, V]) ensureBuckets() error {
	if tb.allocated() {
		return nil
	}
	slots, err := tb.slices.MakeSlice(int(tb.hint))
	if err != nil {
		tb.stats.IncreaseAllocFailures()
		tb.logger.Warn("[hashtable] bucket vector allocation failed",
			zap.Uint64("buckets", tb.hint),
			zap.Error(err),
		)
		return infra.WrapErrorStackWithMessage(err, "[hashtable] unable to allocate buckets")
	}
	tb.bkts.slots = slots
	return nil
}

func (tb *HashTable[K, V]) newNode(val V) (*htNode[V], error) {
	node, err := tb.nodes.Allocate()
	if err != nil {
		tb.stats.IncreaseAllocFailures()
		tb.logger.Warn("[hashtable] node allocation failed",
			zap.Int64("len", tb.count),
			zap.Error(err),
		)
		return nil, infra.WrapErrorStackWithMessage(err, "[hashtable] unable to insert")
	}
	node.val = val
	node.next = nil
	return node, nil
}

func (tb *HashTable[K, V]) Len() int64 {
	return tb.count
}

func (tb *HashTable[K, V]) Empty() bool {
	return tb.count == 0
}

func (tb *HashTable[K, V]) BucketCount() uint64 {
	if !tb.allocated() {
		return tb.hint
	}
	return uint64(len(tb.bkts.slots))
}

func (tb *HashTable[K, V]) MaxBucketCount() uint64 {
	return maxBucketCount()
}

// ElemsInBucket returns the chain length of the bucket n.
func (tb *HashTable[K, V]) ElemsInBucket(n uint64) int {
	if !tb.allocated() || n >= uint64(len(tb.bkts.slots)) {
		return 0
	}
	cnt := 0
	for cur := tb.bkts.slots[n]; cur != nil; cur = cur.next {
		cnt++
	}
	return cnt
}

func (tb *HashTable[K, V]) LoadFactor() float64 {
	return float64(tb.count) / float64(tb.BucketCount())
}

func (tb *HashTable[K, V]) Begin() Iterator[V] {
	if !tb.allocated() {
		return tb.End()
	}
	node, n := tb.bkts.firstFrom(0)
	return tb.iterator(node, n)
}

func (tb *HashTable[K, V]) End() Iterator[V] {
	return tb.iterator(nil, len(tb.bkts.slots))
}

// Reserve rebuilds the bucket vector if the hint exceeds the bucket count.
// The new vector is built first and the nodes are relinked into it, so an
// allocation failure leaves the table as it was.
func (tb *HashTable[K, V]) Reserve(hint uint64) error {
	if !tb.allocated() {
		if hint > tb.hint {
			tb.hint = nextPrime(hint)
		}
		return nil
	}

	oldN := uint64(len(tb.bkts.slots))
	if hint <= oldN {
		return nil
	}
	n := nextPrime(hint)
	if n <= oldN {
		return nil
	}

	slots, err := tb.slices.MakeSlice(int(n))
	if err != nil {
		tb.stats.IncreaseAllocFailures()
		tb.logger.Warn("[hashtable] rehash allocation failed",
			zap.Uint64("from", oldN),
			zap.Uint64("to", n),
			zap.Error(err),
		)
		return infra.WrapErrorStackWithMessage(err, "[hashtable] unable to reserve")
	}

	old := tb.bkts.slots
	for i := range old {
		for first := old[i]; first != nil; first = old[i] {
			// Equal runs move as a whole, the order inside a run is kept.
			k, last := tb.keyOf(first.val), first
			for last.next != nil && tb.keyEqual(last.next, k) {
				last = last.next
			}
			m := int(tb.hash(k) % n)
			old[i] = last.next
			last.next = slots[m]
			slots[m] = first
		}
	}
	tb.bkts.slots = slots
	tb.bkts.epoch++
	tb.slices.FreeSlice(old)
	tb.stats.RecordRehash(tb.count)
	tb.logger.Debug("[hashtable] rehashed",
		zap.Uint64("from", oldN),
		zap.Uint64("to", n),
		zap.Int64("len", tb.count),
	)
	return nil
}

// InsertUniqueNoResize returns the iterator of the existing value and
// false if the key exists already.
func (tb *HashTable[K, V]) InsertUniqueNoResize(val V) (Iterator[V], bool, error) {
	if err := tb.ensureBuckets(); err != nil {
		return tb.End(), false, err
	}

	k := tb.keyOf(val)
	n := tb.bucketOfKey(k)
	first := tb.bkts.slots[n]
	for cur := first; cur != nil; cur = cur.next {
		if tb.keyEqual(cur, k) {
			return tb.iterator(cur, n), false, nil
		}
	}

	tmp, err := tb.newNode(val)
	if err != nil {
		return tb.End(), false, err
	}
	tmp.next = first
	tb.bkts.slots[n] = tmp
	tb.count++
	tb.stats.RecordElements(1)
	return tb.iterator(tmp, n), true, nil
}

func (tb *HashTable[K, V]) InsertEqualNoResize(val V) (Iterator[V], error) {
	if err := tb.ensureBuckets(); err != nil {
		return tb.End(), err
	}

	k := tb.keyOf(val)
	n := tb.bucketOfKey(k)
	first := tb.bkts.slots[n]
	var pos *htNode[V]
	for cur := first; cur != nil; cur = cur.next {
		if tb.keyEqual(cur, k) {
			pos = cur
			break
		}
	}
	// Append after the equal run to keep the insertion order.
	for pos != nil && pos.next != nil && tb.keyEqual(pos.next, k) {
		pos = pos.next
	}

	tmp, err := tb.newNode(val)
	if err != nil {
		return tb.End(), err
	}
	if pos != nil {
		tmp.next = pos.next
		pos.next = tmp
	} else {
		tmp.next = first
		tb.bkts.slots[n] = tmp
	}
	tb.count++
	tb.stats.RecordElements(1)
	return tb.iterator(tmp, n), nil
}

func (tb *HashTable[K, V]) InsertUnique(val V) (Iterator[V], bool, error) {
	if err := tb.Reserve(uint64(tb.count + 1)); err != nil {
		return tb.End(), false, err
	}
	return tb.InsertUniqueNoResize(val)
}

func (tb *HashTable[K, V]) InsertEqual(val V) (Iterator[V], error) {
	if err := tb.Reserve(uint64(tb.count + 1)); err != nil {
		return tb.End(), err
	}
	return tb.InsertEqualNoResize(val)
}

// FindOrInsert returns the reference of the value with the equal key,
// inserts the val if the key is absent.
func (tb *HashTable[K, V]) FindOrInsert(val V) (*V, error) {
	k := tb.keyOf(val)
	if it := tb.Find(k); it.Valid() {
		return &it.node.val, nil
	}

	if err := tb.Reserve(uint64(tb.count + 1)); err != nil {
		return nil, err
	}
	if err := tb.ensureBuckets(); err != nil {
		return nil, err
	}
	tmp, err := tb.newNode(val)
	if err != nil {
		return nil, err
	}
	n := tb.bucketOfKey(k)
	tmp.next = tb.bkts.slots[n]
	tb.bkts.slots[n] = tmp
	tb.count++
	tb.stats.RecordElements(1)
	return &tmp.val, nil
}

// Find returns End() if the key is absent.
func (tb *HashTable[K, V]) Find(k K) Iterator[V] {
	if !tb.allocated() {
		return tb.End()
	}
	n := tb.bucketOfKey(k)
	for cur := tb.bkts.slots[n]; cur != nil; cur = cur.next {
		if tb.keyEqual(cur, k) {
			return tb.iterator(cur, n)
		}
	}
	return tb.End()
}

func (tb *HashTable[K, V]) Contains(k K) bool {
	return tb.Find(k).Valid()
}

func (tb *HashTable[K, V]) Count(k K) int {
	if !tb.allocated() {
		return 0
	}
	cnt := 0
	for cur := tb.bkts.slots[tb.bucketOfKey(k)]; cur != nil; cur = cur.next {
		if tb.keyEqual(cur, k) {
			cnt++
		}
	}
	return cnt
}

// EqualRange returns the adjacent values with the equal key as [first, last).
func (tb *HashTable[K, V]) EqualRange(k K) (first, last Iterator[V]) {
	if !tb.allocated() {
		return tb.End(), tb.End()
	}
	n := tb.bucketOfKey(k)
	for cur := tb.bkts.slots[n]; cur != nil; cur = cur.next {
		if !tb.keyEqual(cur, k) {
			continue
		}
		m := cur.next
		for ; m != nil; m = m.next {
			if !tb.keyEqual(m, k) {
				return tb.iterator(cur, n), tb.iterator(m, n)
			}
		}
		node, next := tb.bkts.firstFrom(n + 1)
		return tb.iterator(cur, n), tb.iterator(node, next)
	}
	return tb.End(), tb.End()
}

// EraseKey removes all values with the key k.
func (tb *HashTable[K, V]) EraseKey(k K) int {
	if !tb.allocated() {
		return 0
	}
	n := tb.bucketOfKey(k)
	erased := 0
	var prev *htNode[V]
	for cur := tb.bkts.slots[n]; cur != nil; {
		next := cur.next
		if tb.keyEqual(cur, k) {
			if prev == nil {
				tb.bkts.slots[n] = next
			} else {
				prev.next = next
			}
			tb.nodes.Deallocate(cur)
			erased++
		} else {
			prev = cur
		}
		cur = next
	}
	tb.count -= int64(erased)
	tb.stats.RecordElements(-int64(erased))
	return erased
}

// Erase removes the node of pos and returns its next position.
func (tb *HashTable[K, V]) Erase(pos Iterator[V]) (Iterator[V], error) {
	if pos.ctx != tb.bkts {
		return tb.End(), infra.WrapErrorStack(ErrForeignIterator)
	}
	if pos.node == nil {
		return tb.End(), infra.WrapErrorStack(ErrEraseEnd)
	}

	next := pos.Next()
	n := pos.currentBucket()
	if cur := tb.bkts.slots[n]; cur == pos.node {
		tb.bkts.slots[n] = cur.next
	} else {
		for ; cur != nil && cur.next != pos.node; cur = cur.next {
		}
		if cur == nil {
			// impossible run to here
			panic( /* debug assertion */ "[hashtable] erase node absent from its bucket")
		}
		cur.next = pos.node.next
	}
	tb.nodes.Deallocate(pos.node)
	tb.count--
	tb.stats.RecordElements(-1)
	return next, nil
}

// EraseRange removes [first, last) and returns the number of removed values.
func (tb *HashTable[K, V]) EraseRange(first, last Iterator[V]) (int, error) {
	if first.ctx != tb.bkts || last.ctx != tb.bkts {
		return 0, infra.WrapErrorStack(ErrForeignIterator)
	}
	erased := 0
	for first.node != last.node {
		var err error
		if first, err = tb.Erase(first); err != nil {
			return erased, err
		}
		erased++
	}
	return erased, nil
}

// Clear frees all nodes and keeps the bucket count.
func (tb *HashTable[K, V]) Clear() {
	if !tb.allocated() {
		return
	}
	slots := tb.bkts.slots
	for i := range slots {
		for cur := slots[i]; cur != nil; {
			next := cur.next
			tb.nodes.Deallocate(cur)
			cur = next
		}
		slots[i] = nil
	}
	tb.stats.RecordElements(-tb.count)
	tb.count = 0
	tb.bkts.epoch++
}

// Swap exchanges the contents. The iterators follow their nodes into
// the other table.
func (tb *HashTable[K, V]) Swap(that *HashTable[K, V]) {
	if tb == that {
		return
	}
	*tb, *that = *that, *tb
}

func (tb *HashTable[K, V]) freeSlots(slots []*htNode[V]) {
	for i := range slots {
		for cur := slots[i]; cur != nil; {
			next := cur.next
			tb.nodes.Deallocate(cur)
			cur = next
		}
	}
	tb.slices.FreeSlice(slots)
}

// Clone copies the chains bucket by bucket in the same order into a new
// table with its own allocators. The source table is never modified.
func (tb *HashTable[K, V]) Clone() (*HashTable[K, V], error) {
	cp := newHashTable[K, V](tb.keyOf, tb.hash, tb.equal, tb.opts)
	cp.hint = tb.BucketCount()
	if !tb.allocated() {
		return cp, nil
	}

	slots, err := cp.slices.MakeSlice(len(tb.bkts.slots))
	if err != nil {
		cp.stats.IncreaseAllocFailures()
		return nil, infra.WrapErrorStackWithMessage(err, "[hashtable] unable to clone")
	}
	for i, cur := range tb.bkts.slots {
		var tail *htNode[V]
		for ; cur != nil; cur = cur.next {
			node, err := cp.nodes.Allocate()
			if err != nil {
				cp.freeSlots(slots)
				cp.stats.IncreaseAllocFailures()
				return nil, infra.WrapErrorStackWithMessage(err, "[hashtable] unable to clone")
			}
			node.val = cur.val
			if tail == nil {
				slots[i] = node
			} else {
				tail.next = node
			}
			tail = node
		}
	}
	cp.bkts.slots = slots
	cp.count = tb.count
	cp.stats.RecordElements(cp.count)
	return cp, nil
}

// Foreach traverses in the bucket order. Stop if action returns false.
func (tb *HashTable[K, V]) Foreach(action func(idx int64, val V) bool) {
	idx := int64(0)
	for _, cur := range tb.bkts.slots {
		for ; cur != nil; cur = cur.next {
			if !action(idx, cur.val) {
				return
			}
			idx++
		}
	}
}

func newHashTable[K any, V any](
	keyOf func(V) K,
	hash func(K) uint64,
	equal func(i, j K) bool,
	opts *hashTableOptions,
) *HashTable[K, V] {
	tb := &HashTable[K, V]{
		keyOf:  keyOf,
		hash:   hash,
		equal:  equal,
		opts:   opts,
		logger: opts.logger,
		hint:   nextPrime(opts.buckets),
		slices: alloc.NewHeapSliceAllocator[*htNode[V]](opts.bucketLimit),
	}
	tb.bkts = &htBuckets[V]{
		hashOf: func(val V) uint64 {
			return hash(keyOf(val))
		},
	}
	if opts.useHeap {
		tb.nodes = alloc.NewHeapAllocator[htNode[V]](opts.nodeLimit)
	} else {
		tb.nodes = alloc.NewArena[htNode[V]](opts.arenaChunkSize, opts.nodeLimit)
	}
	if tb.logger == nil {
		tb.logger = zap.NewNop()
	}
	if opts.statsName != "" {
		tb.stats = newHashTableStats(opts.statsName)
	}
	return tb
}

// NewHashTable creates the engine. The keyOf projects the key from the
// value. The equal keys must have the same hash, otherwise the lookups
// are undefined.
func NewHashTable[K any, V any](
	keyOf func(V) K,
	hash func(K) uint64,
	equal func(i, j K) bool,
	opts ...HashTableOption,
) *HashTable[K, V] {
	o := &hashTableOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return newHashTable[K, V](keyOf, hash, equal, o)
}
