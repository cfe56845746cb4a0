package mapgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-core/internal/vec"
	"github.com/annel0/voxel-core/internal/voxel"
)

const testSeed = 1234

func generateWindow(t *testing.T, gen *Generator, bmin, bmax vec.Vec3) *voxel.MMVManip {
	t.Helper()
	vm := voxel.NewMMVManip(bmin, bmax)
	require.NoError(t, gen.Generate(vm, bmin, bmax, 666))
	return vm
}

func TestPaletteFallbacks(t *testing.T) {
	p := Palette{
		Stone:            1,
		Dirt:             2,
		DirtWithGrass:    3,
		Sand:             4,
		Water:            5,
		Lava:             6,
		Gravel:           voxel.ContentIgnore,
		DesertStone:      voxel.ContentIgnore,
		DesertSand:       voxel.ContentIgnore,
		DirtWithSnow:     voxel.ContentIgnore,
		Snow:             voxel.ContentIgnore,
		Snowblock:        voxel.ContentIgnore,
		Ice:              voxel.ContentIgnore,
		Cobble:           14,
		MossyCobble:      voxel.ContentIgnore,
		StairCobble:      voxel.ContentIgnore,
		StairDesertStone: voxel.ContentIgnore,
	}.WithFallbacks()

	assert.Equal(t, voxel.Content(1), p.Gravel, "гравий → камень")
	assert.Equal(t, voxel.Content(1), p.DesertStone, "пустынный камень → камень")
	assert.Equal(t, voxel.Content(4), p.DesertSand, "пустынный песок → песок")
	assert.Equal(t, voxel.Content(3), p.DirtWithSnow, "снежная земля → трава")
	assert.Equal(t, voxel.ContentAir, p.Snow, "снег → воздух")
	assert.Equal(t, voxel.Content(3), p.Snowblock, "снежный блок → трава")
	assert.Equal(t, voxel.Content(5), p.Ice, "лёд → вода")
	assert.Equal(t, voxel.Content(14), p.MossyCobble)
	assert.Equal(t, voxel.Content(14), p.StairCobble)
	assert.Equal(t, voxel.Content(1), p.StairDesertStone, "лестница идёт за пустынным камнем")

	assert.Equal(t, DefaultPalette(), DefaultPalette().WithFallbacks(), "заданные материалы не меняются")
}

func TestParseFlags(t *testing.T) {
	fl, err := ParseFlags([]string{"jungles", " Flat "})
	require.NoError(t, err)
	assert.True(t, fl.Has(FlagJungles))
	assert.True(t, fl.Has(FlagFlat))
	assert.False(t, fl.Has(FlagSnowBiomes))
	assert.Equal(t, "jungles,flat", fl.String())

	_, err = ParseFlags([]string{"volcanoes"})
	assert.Error(t, err)
}

func TestClassifyBiome(t *testing.T) {
	snow := FlagSnowBiomes
	tests := []struct {
		name  string
		flags Flags
		d, h  float64
		hash  float64
		want  Biome
	}{
		{"жарко и влажно", snow, 0.5, 0.6, 0, BiomeJungle},
		{"жарко и сухо", snow, 0.5, 0.4, 0, BiomeDesert},
		{"холодно и влажно", snow, -0.5, 0.6, 0, BiomeTaiga},
		{"холодно и сухо", snow, -0.5, 0.4, 0, BiomeTundra},
		{"умеренно", snow, 0.0, 0.9, 0, BiomeNormal},
		{"размытие сдвигает порог", snow | FlagBiomeBlend, 0.41, 0.0, 1.0, BiomeNormal},
		{"классика: пустыня", 0, 0.5, 0.0, 0, BiomeDesert},
		{"классика: размытая пустыня", FlagBiomeBlend, 0.40, 0.0, 0.5, BiomeDesert},
		{"классика: без размытия", 0, 0.40, 0.0, 0.5, BiomeNormal},
		{"классика: джунгли", FlagJungles, 0.0, 0.8, 0, BiomeJungle},
		{"классика: джунгли выключены", 0, 0.0, 0.8, 0, BiomeNormal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyBiome(tt.flags, 0.45, tt.d, tt.h, tt.hash))
		})
	}
}

func TestBaseTerrainLevel(t *testing.T) {
	// нулевая крутизна: b = 0.5, при heightSelect = 0.2 вес a = 0.5
	assert.InDelta(t, 9.0, baseTerrainLevel(-4, 20, 0, 0.2), 1e-9)

	// высокий рельеф не опускается ниже базового
	assert.InDelta(t, -3.0, baseTerrainLevel(-4, -10, 0, 1), 1e-9)

	// большая крутизна даёт обрыв: a насыщается до 0 или 1
	assert.InDelta(t, 21.0, baseTerrainLevel(-4, 20, 2, 0.3), 1e-9)
	assert.InDelta(t, -3.0, baseTerrainLevel(-4, 20, 2, 0.1), 1e-9)
}

func TestV6Determinism(t *testing.T) {
	bmin, bmax := vec.Vec3{X: -1, Y: 0, Z: -1}, vec.Vec3{X: 0, Y: 1, Z: 0}

	a := generateWindow(t, NewV6Generator(NewV6(DefaultV6Params(), DefaultPalette(), testSeed)), bmin, bmax)
	b := generateWindow(t, NewV6Generator(NewV6(DefaultV6Params(), DefaultPalette(), testSeed)), bmin, bmax)

	for pos := range vec.Box(bmin, bmax) {
		ba, err := a.Block(pos)
		require.NoError(t, err)
		bb, err := b.Block(pos)
		require.NoError(t, err)
		require.Equal(t, ba.Qubes, bb.Qubes, "блок %v различается", pos)

		for _, q := range ba.Qubes {
			require.NotEqual(t, voxel.ContentIgnore, q.Content, "в блоке %v остались незаданные ячейки", pos)
		}
	}
}

func TestSurfaceLevelMatchesBulk(t *testing.T) {
	g := NewV6(DefaultV6Params(), DefaultPalette(), testSeed)
	bmin, bmax := vec.Vec3{X: 3, Y: -2, Z: 0}, vec.Vec3{X: 4, Y: -1, Z: 0}

	c := &v6Chunk{
		g:       g,
		vm:      voxel.NewMMVManip(bmin, bmax),
		nodeMin: bmin.Mul(voxel.BlockSize),
		nodeMax: bmax.Add(vec.Splat(1)).Mul(voxel.BlockSize).Sub(vec.Splat(1)),
	}
	c.sx = c.nodeMax.X - c.nodeMin.X + 1
	c.sy = c.nodeMax.Y - c.nodeMin.Y + 1
	c.fullMin = vec.Vec2{X: c.nodeMin.X - voxel.BlockSize, Y: c.nodeMin.Y - voxel.BlockSize}
	c.fsx = c.sx + 2*voxel.BlockSize
	c.calculateNoise()

	index := 0
	for y := c.nodeMin.Y; y <= c.nodeMax.Y; y++ {
		for x := c.nodeMin.X; x <= c.nodeMax.X; x++ {
			require.Equal(t, g.SurfaceLevelAt(x, y), c.surfaceLevel(index), "колонка (%d,%d)", x, y)
			require.Equal(t, g.BiomeAt(x, y), c.biomeAt(x, y), "биом колонки (%d,%d)", x, y)
			index++
		}
	}
}

func TestStoneSurfaceInBlocks(t *testing.T) {
	g := NewV6(DefaultV6Params(), DefaultPalette(), testSeed)
	bmin, bmax := vec.Vec3{X: 0, Y: 0, Z: -1}, vec.Vec3{X: 1, Y: 1, Z: 1}
	vm := generateWindow(t, NewV6Generator(g), bmin, bmax)
	p := g.Palette()

	checked := 0
	for y := vm.MinEdge.Y; y <= vm.MaxEdge.Y; y++ {
		for x := vm.MinEdge.X; x <= vm.MaxEdge.X; x++ {
			surface := int(g.SurfaceLevelAt(x, y))
			if surface <= vm.MinEdge.Z || surface >= vm.MaxEdge.Z {
				continue
			}
			top := vm.GetIgn(vec.Vec3{X: x, Y: y, Z: surface}).Content
			above := vm.GetIgn(vec.Vec3{X: x, Y: y, Z: surface + 1}).Content
			assert.Contains(t, []voxel.Content{p.Stone, p.DesertStone, p.DirtWithSnow}, top,
				"колонка (%d,%d) на высоте %d", x, y, surface)
			assert.NotEqual(t, p.Stone, above)
			assert.NotEqual(t, p.DesertStone, above)
			checked++
		}
	}
	assert.Greater(t, checked, 0)
}

func TestV6FlatWorld(t *testing.T) {
	params := DefaultV6Params()
	params.Flags |= FlagFlat
	g := NewV6(params, DefaultPalette(), testSeed)
	bmin, bmax := vec.Vec3{X: 0, Y: 0, Z: -1}, vec.Vec3{X: 0, Y: 0, Z: 0}
	vm := generateWindow(t, NewV6Generator(g), bmin, bmax)

	// камень до уровня моря и два слоя грязи сверху
	top := WaterLevel + AverageMudAmount/2
	for pos := range vec.Box(vm.MinEdge, vm.MaxEdge) {
		q := vm.GetIgn(pos)
		if pos.Z <= top {
			require.True(t, voxel.IsWalkable(q.Content), "ячейка %v должна быть твёрдой", pos)
		} else {
			require.Equal(t, voxel.ContentAir, q.Content, "ячейка %v должна быть воздухом", pos)
		}
	}

	assert.Equal(t, WaterLevel, int(g.SurfaceLevelAt(100, -100)))
	assert.Equal(t, WaterLevel+AverageMudAmount, g.SpawnLevelAt(0, 0))
}

func TestSpawnLevelUnderwater(t *testing.T) {
	params := DefaultV6Params()
	params.TerrainBase.Offset = -40
	params.TerrainBase.Scale = 0
	params.TerrainHigher.Offset = -40
	params.TerrainHigher.Scale = 0
	g := NewV6(params, DefaultPalette(), testSeed)
	assert.Equal(t, MaxGenerationLimit, g.SpawnLevelAt(0, 0))
}

func TestHeightmapFlat(t *testing.T) {
	const level = 3
	gen := NewHeightmapGenerator(NewHeightmap(FlatHeight(level), 1))
	vm := generateWindow(t, gen, vec.Vec3{Z: -1}, vec.Vec3{Z: 0})

	for pos := range vec.Box(vm.MinEdge, vm.MaxEdge) {
		q := vm.GetIgn(pos)
		if pos.Z <= level {
			require.Equal(t, voxel.Content(1), q.Content, "ячейка %v", pos)
		} else {
			require.Equal(t, voxel.ContentAir, q.Content, "ячейка %v", pos)
		}
	}
	assert.Equal(t, level, gen.GroundLevelAt(5, 5))
	assert.Equal(t, KindHeightmap, gen.Kind())
}

func TestColumnAt(t *testing.T) {
	v6 := NewV6(DefaultV6Params(), DefaultPalette(), testSeed)
	gen := NewV6Generator(v6)
	for _, col := range []vec.Vec2{{X: 0, Y: 0}, {X: 300, Y: -120}, {X: -2000, Y: 750}} {
		c := gen.ColumnAt(col)
		assert.Equal(t, v6.GroundLevelAt(col.X, col.Y), c.Ground, "колонка %v", col)
		assert.Equal(t, v6.BiomeAt(col.X, col.Y).String(), c.Biome, "колонка %v", col)
		assert.GreaterOrEqual(t, c.Humidity, 0.0)
		assert.LessOrEqual(t, c.Humidity, 1.0)
		assert.Equal(t, v6.TreeAmountAt(col.X, col.Y), c.Trees, "колонка %v", col)
		assert.Equal(t, v6.HaveAppleTreeAt(col.X, col.Y), c.AppleTrees, "колонка %v", col)
	}

	params := DefaultV6Params()
	params.Trees.Offset, params.Trees.Scale = 1, 0
	params.AppleTrees.Offset, params.AppleTrees.Scale = 1, 0
	dense := NewV6Generator(NewV6(params, DefaultPalette(), testSeed)).ColumnAt(vec.Vec2{})
	assert.InDelta(t, 0.04, dense.Trees, 1e-12, "насыщенное поле деревьев")
	assert.True(t, dense.AppleTrees)

	params.Trees.Offset = -1
	params.AppleTrees.Offset = 0
	sparse := NewV6Generator(NewV6(params, DefaultPalette(), testSeed)).ColumnAt(vec.Vec2{})
	assert.Zero(t, sparse.Trees)
	assert.False(t, sparse.AppleTrees)

	flat := NewHeightmapGenerator(NewHeightmap(FlatHeight(3), 1))
	assert.Equal(t, Column{Ground: 3, Biome: "normal"}, flat.ColumnAt(vec.Vec2{X: 7, Y: 7}))
}

func TestGenerateErrors(t *testing.T) {
	vm := voxel.NewMMVManip(vec.Vec3{}, vec.Vec3{})

	gen := NewV6Generator(NewV6(DefaultV6Params(), DefaultPalette(), testSeed))
	err := gen.Generate(vm, vec.Vec3{}, vec.Vec3{X: 1}, 0)
	assert.ErrorIs(t, err, voxel.ErrOutOfRange)

	err = (&Generator{kind: Kind(42)}).Generate(vm, vec.Vec3{}, vec.Vec3{}, 0)
	assert.ErrorIs(t, err, ErrUnknownKind)

	k, err := ParseKind("HeightMap")
	require.NoError(t, err)
	assert.Equal(t, KindHeightmap, k)
	_, err = ParseKind("v7")
	assert.ErrorIs(t, err, ErrUnknownKind)
}
