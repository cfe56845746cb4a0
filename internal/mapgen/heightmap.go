package mapgen

import (
	"github.com/annel0/voxel-core/internal/noise"
	"github.com/annel0/voxel-core/internal/vec"
	"github.com/annel0/voxel-core/internal/voxel"
)

// HeightFn возвращает высоту поверхности колонки в ячейках
type HeightFn func(x, y int) int

// FlatHeight - плоский мир на уровне level
func FlatHeight(level int) HeightFn {
	return func(x, y int) int { return level }
}

// NoiseHeight - рельеф из поля шума
func NoiseHeight(f *noise.Fractal2D) HeightFn {
	return func(x, y int) int {
		return int(f.At(float64(x), 0.5, float64(y), 0.5))
	}
}

// Heightmap превращает карту высот в твёрдое тело: Solid на высоте
// колонки и ниже, воздух выше. Состояния не имеет.
type Heightmap struct {
	Height HeightFn
	Solid  voxel.Content
}

// NewHeightmap создаёт генератор по карте высот
func NewHeightmap(height HeightFn, solid voxel.Content) *Heightmap {
	return &Heightmap{Height: height, Solid: solid}
}

// MakeChunk заполняет блоки окна в диапазоне [bmin, bmax]
func (h *Heightmap) MakeChunk(vm *voxel.MMVManip, bmin, bmax vec.Vec3) error {
	for bpos := range vec.Box(bmin, bmax) {
		blk, err := vm.Block(bpos)
		if err != nil {
			return err
		}
		h.fillBlock(blk)
	}
	return nil
}

func (h *Heightmap) fillBlock(blk *voxel.Block) {
	solid := voxel.Qube{Content: h.Solid}
	air := voxel.Qube{Content: voxel.ContentAir}
	origin := blk.Pos.Mul(voxel.BlockSize)

	for j := 0; j < voxel.BlockSize; j++ {
		for i := 0; i < voxel.BlockSize; i++ {
			top := h.Height(origin.X+i, origin.Y+j)
			for k := 0; k < voxel.BlockSize; k++ {
				q := air
				if origin.Z+k <= top {
					q = solid
				}
				blk.Qubes[voxel.IndexUnsafe(vec.Vec3{X: i, Y: j, Z: k})] = q
			}
		}
	}
}
