package kv

import (
	"fmt"
	"math"
	randv2 "math/rand/v2"

	"github.com/cespare/xxhash/v2"
)

// Hasher hashes the comparable keys. Strings go through xxhash, the
// numeric keys through a 64-bit finalizer mix. Other comparable types
// are hashed by their Go-syntax representation, so the keys containing
// pointers hash their addresses.
type Hasher[K comparable] struct {
	seed uint64
}

// References:
// https://xorshift.di.unimi.it/splitmix64.c
func mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

func (h Hasher[K]) Hash(key K) uint64 {
	var x uint64
	switch k := any(key).(type) {
	case string:
		return mix64(xxhash.Sum64String(k) ^ h.seed)
	case int:
		x = uint64(k)
	case int8:
		x = uint64(k)
	case int16:
		x = uint64(k)
	case int32:
		x = uint64(k)
	case int64:
		x = uint64(k)
	case uint:
		x = uint64(k)
	case uint8:
		x = uint64(k)
	case uint16:
		x = uint64(k)
	case uint32:
		x = uint64(k)
	case uint64:
		x = k
	case uintptr:
		x = uint64(k)
	case bool:
		if k {
			x = 1
		}
	case float32:
		if k == 0 {
			k = 0 // -0 == +0
		}
		x = uint64(math.Float32bits(k))
	case float64:
		if k == 0 {
			k = 0
		}
		x = math.Float64bits(k)
	default:
		return mix64(xxhash.Sum64String(fmt.Sprintf("%#v", key)) ^ h.seed)
	}
	return mix64(x ^ h.seed)
}

func newHashSeed() uint64 {
	return randv2.Uint64()
}

// NewHasher creates a randomly seeded hasher.
func NewHasher[K comparable]() Hasher[K] {
	return Hasher[K]{seed: newHashSeed()}
}

func newSeedHasher[K comparable](seed uint64) Hasher[K] {
	return Hasher[K]{seed: seed}
}
