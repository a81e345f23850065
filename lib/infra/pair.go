package infra

import "fmt"

// Pair is the key-value product stored by the map-shaped containers.
type Pair[K any, V any] struct {
	Key K
	Val V
}

func MakePair[K any, V any](key K, val V) Pair[K, V] {
	return Pair[K, V]{Key: key, Val: val}
}

func (p Pair[K, V]) Unpack() (K, V) {
	return p.Key, p.Val
}

func (p Pair[K, V]) String() string {
	return fmt.Sprintf("(%v, %v)", p.Key, p.Val)
}

// PairKey projects the key of pair, it is the key extractor of maps.
func PairKey[K any, V any](p Pair[K, V]) K {
	return p.Key
}

// Identity is the key extractor of sets.
func Identity[K any](k K) K {
	return k
}
