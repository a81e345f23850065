package kv

// hashedBase holds the pass-through operations shared by the
// hashed façades.
type hashedBase[K any, V any] struct {
	table *HashTable[K, V]
}

func (base *hashedBase[K, V]) Len() int64 {
	return base.table.Len()
}

func (base *hashedBase[K, V]) Empty() bool {
	return base.table.Empty()
}

func (base *hashedBase[K, V]) Count(k K) int {
	return base.table.Count(k)
}

func (base *hashedBase[K, V]) Contains(k K) bool {
	return base.table.Contains(k)
}

func (base *hashedBase[K, V]) EraseKey(k K) int {
	return base.table.EraseKey(k)
}

func (base *hashedBase[K, V]) Clear() {
	base.table.Clear()
}

func (base *hashedBase[K, V]) Reserve(hint uint64) error {
	return base.table.Reserve(hint)
}

func (base *hashedBase[K, V]) BucketCount() uint64 {
	return base.table.BucketCount()
}

func (base *hashedBase[K, V]) ElemsInBucket(n uint64) int {
	return base.table.ElemsInBucket(n)
}

func (base *hashedBase[K, V]) LoadFactor() float64 {
	return base.table.LoadFactor()
}

func (base *hashedBase[K, V]) values() []V {
	vals := make([]V, 0, base.table.Len())
	base.table.Foreach(func(_ int64, val V) bool {
		vals = append(vals, val)
		return true
	})
	return vals
}
