package voxel

import (
	"errors"
	"testing"

	"github.com/annel0/voxel-core/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexBijection(t *testing.T) {
	seen := make(map[int]vec.Vec3, BlockVolume)
	for rel := range vec.Box(vec.Splat(0), vec.Splat(BlockSize-1)) {
		i, err := Index(rel)
		require.NoError(t, err)
		require.GreaterOrEqual(t, i, 0)
		require.Less(t, i, BlockVolume)
		prev, dup := seen[i]
		require.False(t, dup, "индекс %d уже занят позицией %v", i, prev)
		seen[i] = rel
	}
	assert.Len(t, seen, BlockVolume)
}

func TestIndexOutOfRange(t *testing.T) {
	for _, rel := range []vec.Vec3{
		{X: -1}, {Y: -1}, {Z: -1},
		{X: BlockSize}, {Y: BlockSize}, {Z: BlockSize},
	} {
		_, err := Index(rel)
		assert.ErrorIs(t, err, ErrOutOfRange, "позиция %v", rel)
	}
}

func TestNewBlockIsUnset(t *testing.T) {
	b := NewBlock(vec.Vec3{X: 1, Y: 2, Z: 3})
	assert.Equal(t, vec.Vec3{X: 1, Y: 2, Z: 3}, b.Pos)
	for _, q := range b.Qubes {
		if q.Content != ContentIgnore {
			t.Fatalf("ожидалась незаданная ячейка, получено %d", q.Content)
		}
	}
}

func TestBlockGetRW(t *testing.T) {
	b := NewBlock(vec.Vec3{})
	q, err := b.GetRW(vec.Vec3{X: 3, Y: 4, Z: 5})
	require.NoError(t, err)
	q.Content = 7

	got, err := b.GetR(vec.Vec3{X: 3, Y: 4, Z: 5})
	require.NoError(t, err)
	assert.Equal(t, Content(7), got.Content)
	assert.Equal(t, Content(7), b.At(vec.Vec3{X: 3, Y: 4, Z: 5}).Content)

	_, err = b.GetR(vec.Vec3{X: 16})
	assert.True(t, errors.Is(err, ErrOutOfRange))
}

func TestSplit(t *testing.T) {
	blk, rel := Split(vec.Vec3{X: -1, Y: 16, Z: 17})
	assert.Equal(t, vec.Vec3{X: -1, Y: 1, Z: 1}, blk)
	assert.Equal(t, vec.Vec3{X: 15, Y: 0, Z: 1}, rel)
}
