package mapgen

import (
	"fmt"

	"github.com/annel0/voxel-core/internal/noise"
	"github.com/annel0/voxel-core/internal/vec"
	"github.com/annel0/voxel-core/internal/voxel"
)

// ageLoops - сколько раз повторяется отложение грязи
const ageLoops = 2

// v6Chunk - рабочее состояние одного вызова MakeChunk
type v6Chunk struct {
	g  *V6
	vm *voxel.MMVManip

	nodeMin, nodeMax vec.Vec3
	sx, sy           int

	// начало и ширина карт с полем в один блок
	fullMin vec.Vec2
	fsx     int

	blockseed uint64

	terrainBase   *noise.Map2D
	terrainHigher *noise.Map2D
	steepness     *noise.Map2D
	heightSelect  *noise.Map2D
	mud           *noise.Map2D
	beach         *noise.Map2D
	biome         *noise.Map2D
	humidity      *noise.Map2D
}

// MakeChunk заполняет блоки окна vm в диапазоне [bmin, bmax].
// Уже заданные ячейки при заливке грунта не трогаются.
func (g *V6) MakeChunk(vm *voxel.MMVManip, bmin, bmax vec.Vec3, seed uint64) error {
	if !vm.InManip(bmin) || !vm.InManip(bmax) {
		return fmt.Errorf("chunk %v..%v outside manip %v..%v: %w",
			bmin, bmax, vm.Min(), vm.Max(), voxel.ErrOutOfRange)
	}

	c := &v6Chunk{
		g:       g,
		vm:      vm,
		nodeMin: bmin.Mul(voxel.BlockSize),
		nodeMax: bmax.Add(vec.Splat(1)).Mul(voxel.BlockSize).Sub(vec.Splat(1)),
	}
	c.sx = c.nodeMax.X - c.nodeMin.X + 1
	c.sy = c.nodeMax.Y - c.nodeMin.Y + 1
	c.fullMin = vec.Vec2{X: c.nodeMin.X - voxel.BlockSize, Y: c.nodeMin.Y - voxel.BlockSize}
	c.fsx = c.sx + 2*voxel.BlockSize
	c.blockseed = noise.BlockSeed(seed, c.nodeMin)

	c.calculateNoise()

	stoneSurfaceMax, err := c.generateGround()
	if err != nil {
		return err
	}

	for i := 0; i < ageLoops; i++ {
		c.generateCaves(stoneSurfaceMax)

		if err := c.addMud(); err != nil {
			return err
		}

		if g.params.Flags.Has(FlagMudflow) {
			c.flowMud()
		}
	}

	c.generateDungeons(stoneSurfaceMax)

	if err := c.growGrass(); err != nil {
		return err
	}

	if g.params.Flags.Has(FlagTrees) {
		c.placeTreesAndJungleGrass()
	}
	c.placeDecorations()
	c.placeOres()
	c.calcLighting()

	return nil
}

func (c *v6Chunk) calculateNoise() {
	g := c.g
	x, y := c.nodeMin.X, c.nodeMin.Y

	if !g.params.Flags.Has(FlagFlat) {
		c.terrainBase = noise.NewMap2D(g.terrainBase, c.sx, c.sy)
		c.terrainHigher = noise.NewMap2D(g.terrainHigher, c.sx, c.sy)
		c.steepness = noise.NewMap2D(g.steepness, c.sx, c.sy)
		c.heightSelect = noise.NewMap2D(g.heightSelect, c.sx, c.sy)
		c.mud = noise.NewMap2D(g.mud, c.sx, c.sy)

		c.terrainBase.Fill(x, 0.5, y, 0.5)
		c.terrainHigher.Fill(x, 0.5, y, 0.5)
		c.steepness.Fill(x, 0.5, y, 0.5)
		c.heightSelect.Fill(x, 0.5, y, 0.5)
		c.mud.Fill(x, 0.5, y, 0.5)
	}

	c.beach = noise.NewMap2D(g.beach, c.sx, c.sy)
	c.beach.Fill(x, 0.2, y, 0.7)

	fsy := c.sy + 2*voxel.BlockSize
	c.biome = noise.NewMap2D(g.biome, c.fsx, fsy)
	c.humidity = noise.NewMap2D(g.humidity, c.fsx, fsy)
	c.biome.Fill(c.fullMin.X, 0.6, c.fullMin.Y, 0.2)
	c.humidity.Fill(c.fullMin.X, 0.0, c.fullMin.Y, 0.0)
}

// surfaceLevel - высота поверхности по индексу колонки окна
func (c *v6Chunk) surfaceLevel(index int) float64 {
	if c.g.params.Flags.Has(FlagFlat) {
		return WaterLevel
	}
	return baseTerrainLevel(
		c.terrainBase.Result[index],
		c.terrainHigher.Result[index],
		c.steepness.Result[index],
		c.heightSelect.Result[index],
	)
}

func (c *v6Chunk) mudAmount(index int) float64 {
	if c.g.params.Flags.Has(FlagFlat) {
		return AverageMudAmount
	}
	return c.mud.Result[index]
}

func (c *v6Chunk) haveBeach(index int) bool {
	return c.beach.Result[index] > c.g.params.FreqBeach
}

func (c *v6Chunk) biomeAt(x, y int) Biome {
	i := (y-c.fullMin.Y)*c.fsx + (x - c.fullMin.X)
	return classifyBiome(c.g.params.Flags, c.g.params.FreqDesert,
		c.biome.Result[i], c.humidity.Result[i], noise.Hash2D(x, y, c.g.seed))
}

// findStoneLevel возвращает высоту камня, ограниченную окном;
// nodeMin.Z-1 означает, что камень ниже окна
func (c *v6Chunk) findStoneLevel(index int) int {
	level := int(c.surfaceLevel(index))
	if level < c.nodeMin.Z-1 {
		return c.nodeMin.Z - 1
	}
	if level > c.nodeMax.Z {
		return c.nodeMax.Z
	}
	return level
}

// generateGround заливает незаданные ячейки камнем, водой и воздухом
// и возвращает максимальную высоту камня
func (c *v6Chunk) generateGround() (int, error) {
	p := c.g.palette
	stone := voxel.Qube{Content: p.Stone}
	desertStone := voxel.Qube{Content: p.DesertStone}
	water := voxel.Qube{Content: p.Water}
	ice := voxel.Qube{Content: p.Ice}
	air := voxel.Qube{Content: voxel.ContentAir}

	stoneSurfaceMax := -MaxGenerationLimit

	index := 0
	for y := c.nodeMin.Y; y <= c.nodeMax.Y; y++ {
		for x := c.nodeMin.X; x <= c.nodeMax.X; x++ {
			surface := int(c.surfaceLevel(index))
			index++
			if surface > stoneSurfaceMax {
				stoneSurfaceMax = surface
			}

			bt := c.biomeAt(x, y)

			for z := c.nodeMin.Z; z <= c.nodeMax.Z; z++ {
				q, err := c.vm.GetRW(vec.Vec3{X: x, Y: y, Z: z})
				if err != nil {
					return 0, err
				}
				if q.Content != voxel.ContentIgnore {
					continue
				}
				switch {
				case z <= surface:
					if z >= DesertStoneBase && bt == BiomeDesert {
						*q = desertStone
					} else {
						*q = stone
					}
				case z <= WaterLevel:
					if z >= IceBase && bt == BiomeTundra {
						*q = ice
					} else {
						*q = water
					}
				default:
					*q = air
				}
			}
		}
	}
	return stoneSurfaceMax, nil
}

// addMud кладёт поверх камня слой грязи, песка или гравия
func (c *v6Chunk) addMud() error {
	p := c.g.palette

	index := 0
	for y := c.nodeMin.Y; y <= c.nodeMax.Y; y++ {
		for x := c.nodeMin.X; x <= c.nodeMax.X; x, index = x+1, index+1 {
			amount := int(c.mudAmount(index)/2.0 + 0.5)

			surface := c.findStoneLevel(index)
			if surface == c.nodeMin.Z-1 {
				continue
			}

			bt := c.biomeAt(x, y)
			add := p.Dirt
			if bt == BiomeDesert {
				add = p.DesertSand
			}

			switch {
			case bt == BiomeDesert && surface+amount <= WaterLevel+1:
				add = p.Sand
			case amount <= 0:
				amount = 1 - amount
				add = p.Gravel
			case bt != BiomeDesert && c.haveBeach(index) && surface+amount <= WaterLevel+2:
				add = p.Sand
			}

			if (bt == BiomeDesert || bt == BiomeTundra) && surface > 20 {
				amount = max(0, amount-(surface-20)/5)
			}

			count := 0
			for z := surface + 1; z <= c.nodeMax.Z && count < amount; z++ {
				if err := c.vm.Set(vec.Vec3{X: x, Y: y, Z: z}, voxel.Qube{Content: add}); err != nil {
					return err
				}
				count++
			}
		}
	}
	return nil
}

// growGrass одевает верхнюю ячейку каждой колонки травой или снегом
func (c *v6Chunk) growGrass() error {
	p := c.g.palette

	for y := c.nodeMin.Y; y <= c.nodeMax.Y; y++ {
		for x := c.nodeMin.X; x <= c.nodeMax.X; x++ {
			z := c.nodeMax.Z
			for ; z >= c.nodeMin.Z; z-- {
				if c.vm.GetIgn(vec.Vec3{X: x, Y: y, Z: z}).Content != voxel.ContentAir {
					break
				}
			}
			surface := max(z, c.nodeMin.Z)
			if surface < WaterLevel-20 {
				continue
			}

			pos := vec.Vec3{X: x, Y: y, Z: surface}
			n := c.vm.GetIgn(pos).Content
			bt := c.biomeAt(x, y)

			var err error
			switch {
			case bt == BiomeTaiga && n == p.Dirt:
				err = c.vm.Set(pos, voxel.Qube{Content: p.DirtWithSnow})
			case bt == BiomeTundra:
				if n == p.Dirt {
					err = c.vm.Set(pos, voxel.Qube{Content: p.Snowblock})
					if err == nil && surface > c.nodeMin.Z {
						err = c.vm.Set(pos.Add(vec.Vec3{Z: -1}), voxel.Qube{Content: p.DirtWithSnow})
					}
				} else if n == p.Stone && surface < c.nodeMax.Z {
					err = c.vm.Set(pos.Add(vec.Vec3{Z: 1}), voxel.Qube{Content: p.Snowblock})
				}
			case n == p.Dirt:
				err = c.vm.Set(pos, voxel.Qube{Content: p.DirtWithGrass})
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// Точки расширения. Сейчас ничего не делают.

func (c *v6Chunk) generateCaves(stoneSurfaceMax int) {}

// flowMud - сползание грязи с крутых склонов
func (c *v6Chunk) flowMud() {}

func (c *v6Chunk) generateDungeons(stoneSurfaceMax int) {}

func (c *v6Chunk) placeTreesAndJungleGrass() {}

func (c *v6Chunk) placeDecorations() {}

func (c *v6Chunk) placeOres() {}

func (c *v6Chunk) calcLighting() {}
