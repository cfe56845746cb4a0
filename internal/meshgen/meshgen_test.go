package meshgen

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-core/internal/vec"
	"github.com/annel0/voxel-core/internal/voxel"
)

const stone voxel.Content = 1

// makeWorld заполняет блоки 3×3×3 вокруг начала координат функцией fill
func makeWorld(fill func(pos vec.Vec3) voxel.Content) map[vec.Vec3]*voxel.Block {
	blocks := make(map[vec.Vec3]*voxel.Block)
	for bpos := range vec.Box(vec.Splat(-1), vec.Splat(1)) {
		blk := voxel.NewBlock(bpos)
		base := bpos.Mul(voxel.BlockSize)
		for rel := range vec.Box(vec.Vec3{}, vec.Splat(voxel.BlockSize-1)) {
			blk.Qubes[voxel.IndexUnsafe(rel)] = voxel.Qube{Content: fill(base.Add(rel))}
		}
		blocks[bpos] = blk
	}
	return blocks
}

func manip(blocks map[vec.Vec3]*voxel.Block) *voxel.VManip {
	return voxel.NewVManip(vec.Splat(-1), vec.Splat(1), func(pos vec.Vec3) (*voxel.Block, bool) {
		b, ok := blocks[pos]
		return b, ok
	})
}

func flatWorld(level int) map[vec.Vec3]*voxel.Block {
	return makeWorld(func(pos vec.Vec3) voxel.Content {
		if pos.Z <= level {
			return stone
		}
		return voxel.ContentAir
	})
}

func TestOrientationPackUnpack(t *testing.T) {
	rel := vec.Vec3{X: 3, Y: 7, Z: 11}
	for o := XN; o < OrientationCount; o++ {
		back := o.Unpack(o.Pack(rel))
		dir := o.Dir()
		want := vec.Vec3{
			X: rel.X * (1 - dir.X*dir.X),
			Y: rel.Y * (1 - dir.Y*dir.Y),
			Z: rel.Z * (1 - dir.Z*dir.Z),
		}
		assert.Equal(t, want, back, "направление %v", o)
	}
	assert.Equal(t, 12, XN.layer(rel))
	assert.Equal(t, 3, XP.layer(rel))
	assert.Equal(t, 4, ZN.layer(rel))
	assert.Equal(t, 11, ZP.layer(rel))
}

func TestSliceIndex(t *testing.T) {
	s := NewSlice(2)
	assert.Equal(t, 4, s.Size())
	require.NoError(t, s.Set(vec.Vec2{X: 1, Y: 2}, stone))
	c, err := s.Get(vec.Vec2{X: 1, Y: 2})
	require.NoError(t, err)
	assert.Equal(t, stone, c)
	assert.Equal(t, 2+4*1, mustIndex(t, s, vec.Vec2{X: 1, Y: 2}))

	_, err = s.Get(vec.Vec2{X: 4, Y: 0})
	assert.ErrorIs(t, err, voxel.ErrOutOfRange)
	assert.ErrorIs(t, s.Set(vec.Vec2{X: 0, Y: -1}, stone), voxel.ErrOutOfRange)
}

func mustIndex(t *testing.T, s Slice, pos vec.Vec2) int {
	t.Helper()
	i, err := s.Index(pos)
	require.NoError(t, err)
	return i
}

func TestMergeSlices(t *testing.T) {
	bottom, top := NewSlice(3), NewSlice(3)
	// клетка 0: только снизу, 1: только сверху, 2: обе, 3: ни одной
	bottom.Face[0], top.Face[1] = 2, 3
	bottom.Face[2], top.Face[2] = 4, 5

	res, err := MergeSlices(bottom, top)
	require.NoError(t, err)
	assert.Equal(t, []voxel.Content{2, 3, 5, voxel.ContentIgnore}, res.Face)

	_, err = MergeSlices(NewSlice(1), NewSlice(2))
	assert.ErrorIs(t, err, voxel.ErrOutOfRange)
}

func TestHMergeSlice(t *testing.T) {
	s := NewSlice(2)
	// квадрат (0,0): один кандидат; квадрат (1,0): три разных; квадраты с j=1 пустые
	require.NoError(t, s.Set(vec.Vec2{X: 1, Y: 1}, 7))
	require.NoError(t, s.Set(vec.Vec2{X: 2, Y: 0}, 2))
	require.NoError(t, s.Set(vec.Vec2{X: 3, Y: 0}, 3))
	require.NoError(t, s.Set(vec.Vec2{X: 3, Y: 1}, 4))

	a, err := HMergeSlice(s, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	b, err := HMergeSlice(s, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	assert.Equal(t, a.Face, b.Face, "одинаковый сид даёт одинаковый выбор")

	assert.Equal(t, 2, a.Size())
	assert.Equal(t, voxel.Content(7), a.at(0, 0))
	assert.Contains(t, []voxel.Content{2, 3, 4}, a.at(1, 0))
	assert.Equal(t, voxel.ContentIgnore, a.at(0, 1))
	assert.Equal(t, voxel.ContentIgnore, a.at(1, 1))

	_, err = HMergeSlice(NewSlice(4), rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, voxel.ErrOutOfRange)
}

func TestMakeSlicesSingleQube(t *testing.T) {
	cell := vec.Vec3{X: 3, Y: 4, Z: 5}
	vm := manip(makeWorld(func(pos vec.Vec3) voxel.Content {
		if pos == cell {
			return stone
		}
		return voxel.ContentAir
	}))

	set, err := MakeSlices(vm, vec.Vec3{})
	require.NoError(t, err)
	assert.Equal(t, 6, set.FaceCount())

	for o := XN; o < OrientationCount; o++ {
		uv := o.Pack(cell)
		c, err := set.Stack(o)[o.layer(cell)].Get(uv)
		require.NoError(t, err)
		assert.Equal(t, stone, c, "направление %v", o)
	}

	m := MakeMesh(set, vec.Vec3{}, DefaultColorTable())
	require.Equal(t, 6, m.QuadCount())
	lo, hi := m.Bounds()
	assert.Equal(t, mgl32.Vec3{3, 4, 5}, lo)
	assert.Equal(t, mgl32.Vec3{4, 5, 6}, hi)

	for i := 0; i < len(m.Vertices); i += 4 {
		v := m.Vertices[i]
		assert.Equal(t, uint32(stone), v.Type)
		assert.InDelta(t, 0.5*v.Brightness, v.Color[0], 1e-6)
	}
}

func TestMakeSlicesErrors(t *testing.T) {
	blocks := flatWorld(0)
	delete(blocks, vec.Vec3{X: 1})
	_, err := MakeSlices(manip(blocks), vec.Vec3{})
	assert.ErrorIs(t, err, voxel.ErrBlockMissing)

	blocks = flatWorld(0)
	blocks[vec.Vec3{}].Qubes[0] = voxel.IgnoreQube
	_, err = MakeSlices(manip(blocks), vec.Vec3{})
	assert.ErrorIs(t, err, ErrUnsetQube)
}

func TestFlatSurfaceSingleLayer(t *testing.T) {
	const level = 7
	vm := manip(flatWorld(level))

	levels, err := BuildLODs(vm, vec.Vec3{}, NewRand(42, vec.Vec3{}), DefaultColorTable())
	require.NoError(t, err)

	m0 := levels[0]
	require.Equal(t, voxel.BlockSize*voxel.BlockSize, m0.QuadCount())
	for _, v := range m0.Vertices {
		require.Equal(t, float32(level+1), v.Position[2], "все грани в одной горизонтальной плоскости")
		require.Equal(t, float32(1.0), v.Brightness, "только верхние грани")
	}

	for lv := 1; lv < LevelCount; lv++ {
		require.NotNil(t, levels[lv])
		assert.Equal(t, (voxel.BlockSize>>lv)*(voxel.BlockSize>>lv), levels[lv].QuadCount(), "уровень %d", lv)
	}
}

func TestLODMonotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	vm := manip(makeWorld(func(vec.Vec3) voxel.Content {
		if rng.Intn(3) == 0 {
			return voxel.Content(1 + rng.Intn(5))
		}
		return voxel.ContentAir
	}))

	a, err := BuildLODs(vm, vec.Vec3{}, NewRand(7, vec.Vec3{}), DefaultColorTable())
	require.NoError(t, err)
	b, err := BuildLODs(vm, vec.Vec3{}, NewRand(7, vec.Vec3{}), DefaultColorTable())
	require.NoError(t, err)

	for lv := 0; lv < LevelCount; lv++ {
		assert.Equal(t, a[lv].Vertices, b[lv].Vertices, "уровень %d недетерминирован", lv)
		if lv > 0 {
			assert.LessOrEqual(t, len(a[lv].Vertices), len(a[lv-1].Vertices), "уровень %d", lv)
		}
	}
}

func TestBuildLODsEmptyBlock(t *testing.T) {
	vm := manip(makeWorld(func(vec.Vec3) voxel.Content { return voxel.ContentAir }))
	levels, err := BuildLODs(vm, vec.Vec3{}, NewRand(1, vec.Vec3{}), nil)
	require.NoError(t, err)
	assert.True(t, levels[0].Empty())
	for lv := 1; lv < LevelCount; lv++ {
		assert.Nil(t, levels[lv])
	}
}

func TestSelectLevel(t *testing.T) {
	tests := []struct {
		distance, ref float64
		want          int
	}{
		{0, 10, 0},
		{5, 10, 0},
		{10, 10, 0},
		{19.9, 10, 0},
		{20, 10, 1},
		{39, 10, 1},
		{40, 10, 2},
		{80, 10, 3},
		{160, 10, 4},
		{1e9, 10, 4},
		{100, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SelectLevel(tt.distance, tt.ref), "distance=%v ref=%v", tt.distance, tt.ref)
	}
}

func TestColorTable(t *testing.T) {
	ct := DefaultColorTable()
	assert.Equal(t, mgl32.Vec3{0.5, 0.5, 0.5}, ct.Color(1))
	assert.Equal(t, white, ct.Color(500), "неизвестный материал белый")

	ct = NewColorTable(map[voxel.Content]mgl32.Vec3{20: {0.1, 0.2, 0.3}, 1: {1, 0, 0}})
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, ct.Color(1))
	assert.Equal(t, mgl32.Vec3{0.1, 0.2, 0.3}, ct.Color(20))
	assert.Equal(t, white, ct.Color(19))
	assert.Equal(t, 21, ct.Len())

	var nilTable *ColorTable
	assert.Equal(t, white, nilTable.Color(1))
}
