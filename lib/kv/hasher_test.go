package kv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHasher(t *testing.T) {
	intKey := 100
	intHasher := NewHasher[int]()
	require.Equal(t, intHasher.Hash(intKey), intHasher.Hash(intKey))
	require.NotEqual(t, intHasher.Hash(intKey), intHasher.Hash(intKey+1))

	strKey := "abc"
	strHasher := NewHasher[string]()
	require.Equal(t, strHasher.Hash(strKey), strHasher.Hash(strKey))
	require.NotEqual(t, strHasher.Hash(strKey), strHasher.Hash("abd"))

	floatKey := 100.0
	floatHasher := NewHasher[float64]()
	require.Equal(t, floatHasher.Hash(floatKey), floatHasher.Hash(floatKey))
	require.Equal(t, floatHasher.Hash(0), floatHasher.Hash(math.Copysign(0, -1)))

	type point struct {
		x, y int
	}
	pointHasher := NewHasher[point]()
	require.Equal(t, pointHasher.Hash(point{1, 2}), pointHasher.Hash(point{1, 2}))
	require.NotEqual(t, pointHasher.Hash(point{1, 2}), pointHasher.Hash(point{2, 1}))
}

func TestSeedHasher(t *testing.T) {
	h1, h2 := newSeedHasher[string](1), newSeedHasher[string](1)
	require.Equal(t, h1.Hash("xstl"), h2.Hash("xstl"))
	h3 := newSeedHasher[string](2)
	require.NotEqual(t, h1.Hash("xstl"), h3.Hash("xstl"))
}
