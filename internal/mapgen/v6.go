package mapgen

import (
	"github.com/annel0/voxel-core/internal/noise"
)

// V6 - шумовой генератор рельефа с биомами.
// Поля шума создаются один раз и дальше только читаются, поэтому
// один V6 можно использовать из нескольких горутин; всё рабочее
// состояние генерации принадлежит вызову MakeChunk.
type V6 struct {
	params  V6Params
	palette Palette
	seed    int64

	terrainBase   *noise.Fractal2D
	terrainHigher *noise.Fractal2D
	steepness     *noise.Fractal2D
	heightSelect  *noise.Fractal2D
	mud           *noise.Fractal2D
	beach         *noise.Fractal2D
	biome         *noise.Fractal2D
	humidity      *noise.Fractal2D
	cave          *noise.Fractal2D
	trees         *noise.Fractal2D
	appleTrees    *noise.Fractal2D
}

// NewV6 создаёт генератор для мирового сида. Незаданные материалы
// палитры заменяются по правилам Palette.WithFallbacks.
func NewV6(params V6Params, palette Palette, seed int64) *V6 {
	return &V6{
		params:  params,
		palette: palette.WithFallbacks(),
		seed:    seed,

		terrainBase:   noise.NewFractal2D(params.TerrainBase, seed),
		terrainHigher: noise.NewFractal2D(params.TerrainHigher, seed),
		steepness:     noise.NewFractal2D(params.Steepness, seed),
		heightSelect:  noise.NewFractal2D(params.HeightSelect, seed),
		mud:           noise.NewFractal2D(params.Mud, seed),
		beach:         noise.NewFractal2D(params.Beach, seed),
		biome:         noise.NewFractal2D(params.Biome, seed),
		humidity:      noise.NewFractal2D(params.Humidity, seed),
		cave:          noise.NewFractal2D(params.Cave, seed),
		trees:         noise.NewFractal2D(params.Trees, seed),
		appleTrees:    noise.NewFractal2D(params.AppleTrees, seed),
	}
}

// Params возвращает параметры генератора
func (g *V6) Params() V6Params { return g.params }

// Palette возвращает палитру с применёнными заменами
func (g *V6) Palette() Palette { return g.palette }

// baseTerrainLevel смешивает низкий и высокий рельеф по крутизне склона
func baseTerrainLevel(terrainBase, terrainHigher, steepness, heightSelect float64) float64 {
	base := 1 + terrainBase
	higher := 1 + terrainHigher

	// высокий рельеф не ниже базового
	if higher < base {
		higher = base
	}

	b := clamp(steepness, 0, 1000)
	b = 5 * b * b * b * b * b * b * b
	b = clamp(b, 0.5, 1000)

	// склоны с 1.5 < b < 100 выглядят плохо
	if b > 1.5 && b < 100.0 {
		if b < 10.0 {
			b = 1.5
		} else {
			b = 100.0
		}
	}

	const aOff = -0.20
	a := clamp(0.5+b*(aOff+heightSelect), 0, 1)

	return base*(1.0-a) + higher*a
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SurfaceLevelAt - высота каменной поверхности в колонке (x, y).
// Совпадает со значением, которое MakeChunk получает из карт шума.
func (g *V6) SurfaceLevelAt(x, y int) float64 {
	if g.params.Flags.Has(FlagFlat) {
		return WaterLevel
	}
	fx, fy := float64(x), float64(y)
	return baseTerrainLevel(
		g.terrainBase.At(fx, 0.5, fy, 0.5),
		g.terrainHigher.At(fx, 0.5, fy, 0.5),
		g.steepness.At(fx, 0.5, fy, 0.5),
		g.heightSelect.At(fx, 0.5, fy, 0.5),
	)
}

// GroundLevelAt - примерная высота земли с учётом слоя грязи
func (g *V6) GroundLevelAt(x, y int) int {
	return int(g.SurfaceLevelAt(x, y) + AverageMudAmount)
}

// SpawnLevelAt возвращает высоту появления игрока или MaxGenerationLimit,
// если точка под водой или слишком высоко над ней
func (g *V6) SpawnLevelAt(x, y int) int {
	level := g.GroundLevelAt(x, y)
	if level <= WaterLevel || level > WaterLevel+16 {
		return MaxGenerationLimit
	}
	return level
}

// BiomeAt классифицирует колонку (x, y)
func (g *V6) BiomeAt(x, y int) Biome {
	fx, fy := float64(x), float64(y)
	d := g.biome.At(fx, 0.6, fy, 0.2)
	h := g.humidity.At(fx, 0.0, fy, 0.0)
	return classifyBiome(g.params.Flags, g.params.FreqDesert, d, h, noise.Hash2D(x, y, g.seed))
}

// HumidityAt - влажность колонки, ограниченная [0, 1]
func (g *V6) HumidityAt(x, y int) float64 {
	return clamp(g.humidity.At(float64(x), 0.0, float64(y), 0.0), 0, 1)
}

// TreeAmountAt - плотность деревьев в колонке
func (g *V6) TreeAmountAt(x, y int) float64 {
	const zeroval = -0.39
	n := g.trees.At(float64(x), 0.0, float64(y), 0.0)
	if n < zeroval {
		return 0
	}
	return 0.04 * (n - zeroval) / (1.0 - zeroval)
}

// HaveAppleTreeAt - растут ли в колонке яблони
func (g *V6) HaveAppleTreeAt(x, y int) bool {
	return g.appleTrees.At(float64(x), 0.0, float64(y), 0.0) > 0.2
}
