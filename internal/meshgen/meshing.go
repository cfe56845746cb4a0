package meshgen

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/annel0/voxel-core/internal/mesh"
	"github.com/annel0/voxel-core/internal/noise"
	"github.com/annel0/voxel-core/internal/vec"
	"github.com/annel0/voxel-core/internal/voxel"
)

// LevelCount - число уровней детализации, 0 - самый подробный
const LevelCount = 5

// Levels - меши всех уровней детализации одного блока
type Levels [LevelCount]*mesh.Mesh

// quadCorners - обход вершин грани
var quadCorners = [mesh.VerticesPerQuad]vec.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}

// MakeMesh превращает набор срезов в меш: по грани на каждую занятую клетку.
// offset - позиция начала блока в ячейках.
func MakeMesh(set *SliceSet, offset vec.Vec3, colors *ColorTable) *mesh.Mesh {
	m := mesh.New(set.FaceCount())
	for index := 0; index < voxel.BlockSize>>set.VLevel; index++ {
		op := (index + 1) << set.VLevel
		on := voxel.BlockSize - op
		for o := XN; o < OrientationCount; o++ {
			d := op
			if o.Negative() {
				d = on
			}
			dir := o.Dir()
			shift := vec.Vec3{X: dir.X * dir.X * d, Y: dir.Y * dir.Y * d, Z: dir.Z * dir.Z * d}
			sliceToMesh(m, set.Stacks[o][index], o, offset.Add(shift), colors)
		}
	}
	return m
}

func sliceToMesh(m *mesh.Mesh, s Slice, o Orientation, base vec.Vec3, colors *ColorTable) {
	scale := 1 << s.level
	invSize := 1.0 / float32(s.size)
	brightness := o.Brightness()

	for j := 0; j < s.size; j++ {
		for i := 0; i < s.size; i++ {
			self := s.at(i, j)
			if self == voxel.ContentIgnore {
				continue
			}
			color := colors.Color(self).Mul(brightness)

			var quad [mesh.VerticesPerQuad]mesh.Vertex
			for k, c := range quadCorners {
				ipos := vec.Vec2{X: i + c.X, Y: j + c.Y}
				p := base.Add(o.Unpack(ipos).Mul(scale))
				quad[k] = mesh.Vertex{
					Position:   mgl32.Vec3{float32(p.X), float32(p.Y), float32(p.Z)},
					Brightness: brightness,
					Color:      color,
					Type:       uint32(self),
					UV:         mgl32.Vec2{float32(ipos.X) * invSize, float32(ipos.Y) * invSize},
				}
			}
			m.AddQuad(quad)
		}
	}
}

// NewRand возвращает генератор случайных чисел для блока pos,
// детерминированный мировым сидом
func NewRand(seed uint64, pos vec.Vec3) *rand.Rand {
	return rand.New(rand.NewSource(int64(noise.BlockSeed(seed, pos))))
}

// BuildLODs строит все уровни детализации блока blockpos: уровень 0 из
// ячеек окна, каждый следующий из предыдущего через FlattenSlices и
// HMergeSlices. Если на уровне 0 нет граней, остальные уровни не строятся.
func BuildLODs(vm *voxel.VManip, blockpos vec.Vec3, rng *rand.Rand, colors *ColorTable) (Levels, error) {
	var levels Levels
	offset := blockpos.Mul(voxel.BlockSize)

	slices, err := MakeSlices(vm, blockpos)
	if err != nil {
		return levels, err
	}
	levels[0] = MakeMesh(slices, offset, colors)
	if levels[0].Empty() {
		return levels, nil
	}

	for lv := 1; lv < LevelCount; lv++ {
		flat, err := FlattenSlices(slices)
		if err != nil {
			return levels, err
		}
		slices, err = HMergeSlices(flat, rng)
		if err != nil {
			return levels, err
		}
		levels[lv] = MakeMesh(slices, offset, colors)
	}
	return levels, nil
}

// SelectLevel выбирает уровень детализации для блока на расстоянии
// distance: floor(log2(distance/ref)), ограниченный [0, LevelCount-1]
func SelectLevel(distance, ref float64) int {
	if ref <= 0 {
		return 0
	}
	lv := math.Floor(math.Log2(distance / ref))
	if !(lv > 0) {
		return 0
	}
	if lv >= LevelCount-1 {
		return LevelCount - 1
	}
	return int(lv)
}
