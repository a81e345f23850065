package infra

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderedLess(t *testing.T) {
	assert.True(t, OrderedLess(1, 2))
	assert.False(t, OrderedLess(2, 2))
	assert.True(t, OrderedGreater("b", "a"))
	assert.True(t, OrderedEqual(1.5, 1.5))

	keys := []string{"d", "a", "c", "b"}
	sort.Slice(keys, func(i, j int) bool { return OrderedGreater(keys[i], keys[j]) })
	assert.Equal(t, []string{"d", "c", "b", "a"}, keys)
}

func TestLessToComparator(t *testing.T) {
	cmp := LessToComparator[int64](OrderedLess[int64])
	assert.Equal(t, int64(-1), cmp(1, 2))
	assert.Equal(t, int64(0), cmp(2, 2))
	assert.Equal(t, int64(1), cmp(3, 2))

	desc := LessToComparator[int64](OrderedGreater[int64])
	assert.Equal(t, int64(1), desc(1, 2))
}

func TestPair(t *testing.T) {
	p := MakePair("a", 1)
	assert.Equal(t, "a", p.Key)
	assert.Equal(t, 1, p.Val)
	assert.Equal(t, "(a, 1)", p.String())
	k, v := p.Unpack()
	assert.Equal(t, "a", k)
	assert.Equal(t, 1, v)
}
