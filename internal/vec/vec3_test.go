package vec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDivRem(t *testing.T) {
	for _, d := range []int{1, 2, 3, 5, 16, 17} {
		for n := -100; n <= 100; n++ {
			q, r := DivRem(n, d)
			require.Equal(t, n, d*q+r, "n=%d d=%d", n, d)
			require.GreaterOrEqual(t, r, 0, "n=%d d=%d", n, d)
			require.Less(t, r, d, "n=%d d=%d", n, d)
		}
	}
}

func TestDivRemNegative(t *testing.T) {
	q, r := DivRem(-1, 16)
	assert.Equal(t, -1, q)
	assert.Equal(t, 15, r)

	q, r = DivRem(-16, 16)
	assert.Equal(t, -1, q)
	assert.Equal(t, 0, r)

	q, r = DivRem(-17, 16)
	assert.Equal(t, -2, q)
	assert.Equal(t, 15, r)
}

func TestDivRemPanicsOnZero(t *testing.T) {
	assert.Panics(t, func() { DivRem(1, 0) })
}

func TestBox(t *testing.T) {
	var got []Vec3
	for p := range Box(Vec3{0, 0, 0}, Vec3{1, 1, 1}) {
		got = append(got, p)
	}
	require.Len(t, got, 8)
	assert.Equal(t, Vec3{0, 0, 0}, got[0])
	assert.Equal(t, Vec3{1, 0, 0}, got[1], "X должен меняться быстрее всего")
	assert.Equal(t, Vec3{1, 1, 1}, got[7])

	count := 0
	for range Box(Vec3{2, 0, 0}, Vec3{1, 0, 0}) {
		count++
	}
	assert.Zero(t, count, "пустой бокс")
}

func TestBoxBreak(t *testing.T) {
	count := 0
	for range Box(Splat(-2), Splat(2)) {
		count++
		if count == 3 {
			break
		}
	}
	assert.Equal(t, 3, count)
}
