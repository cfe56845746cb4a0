package meshgen

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/annel0/voxel-core/internal/vec"
	"github.com/annel0/voxel-core/internal/voxel"
)

// ErrUnsetQube - в блоке осталась незаданная ячейка
var ErrUnsetQube = errors.New("unset qube in block")

// MakeSlices строит срезы граней блока blockpos на полном разрешении.
// Граничная ячейка - твёрдая ячейка, сосед которой по нормали грани - воздух.
// Окно vm должно содержать блок и всех шестерых соседей.
func MakeSlices(vm *voxel.VManip, blockpos vec.Vec3) (*SliceSet, error) {
	set := NewSliceSet(0, 0)
	base := blockpos.Mul(voxel.BlockSize)

	for rel := range vec.Box(vec.Vec3{}, vec.Splat(voxel.BlockSize-1)) {
		pos := base.Add(rel)
		q, err := vm.Get(pos)
		if err != nil {
			return nil, err
		}
		self := q.Content
		if self == voxel.ContentIgnore {
			return nil, fmt.Errorf("qube %v: %w", pos, ErrUnsetQube)
		}
		if self == voxel.ContentAir {
			continue
		}

		for o := XN; o < OrientationCount; o++ {
			n, err := vm.Get(pos.Add(o.Dir()))
			if err != nil {
				return nil, err
			}
			if n.Content != voxel.ContentAir {
				continue
			}
			uv := o.Pack(rel)
			slice := set.Stacks[o][o.layer(rel)]
			slice.Face[slice.indexUnsafe(uv.X, uv.Y)] = self
		}
	}
	return set, nil
}

// MergeSlices накладывает top на bottom: занятые клетки top побеждают
func MergeSlices(bottom, top Slice) (Slice, error) {
	if bottom.level != top.level {
		return Slice{}, fmt.Errorf("merge slices of levels %d and %d: %w", bottom.level, top.level, voxel.ErrOutOfRange)
	}
	res := Slice{level: top.level, size: top.size, Face: make([]voxel.Content, len(top.Face))}
	for k, t := range top.Face {
		if t == voxel.ContentIgnore {
			res.Face[k] = bottom.Face[k]
		} else {
			res.Face[k] = t
		}
	}
	return res, nil
}

// FlattenSlices сливает пары соседних срезов (2k, 2k+1) каждой стопки,
// внешний срез пары лежит сверху. Число срезов в стопке уменьшается вдвое.
func FlattenSlices(set *SliceSet) (*SliceSet, error) {
	if voxel.BlockSize>>(set.VLevel+1) < 1 {
		return nil, fmt.Errorf("flatten beyond vertical level %d: %w", set.VLevel, voxel.ErrOutOfRange)
	}
	res := &SliceSet{HLevel: set.HLevel, VLevel: set.VLevel + 1}
	for o, stack := range set.Stacks {
		out := make([]Slice, len(stack)/2)
		for k := range out {
			merged, err := MergeSlices(stack[2*k], stack[2*k+1])
			if err != nil {
				return nil, err
			}
			out[k] = merged
		}
		res.Stacks[o] = out
	}
	return res, nil
}

// HMergeSlice уменьшает срез вдвое по каждой оси. Из занятых клеток
// каждого квадрата 2×2 одна выбирается равновероятно через rng.
func HMergeSlice(s Slice, rng *rand.Rand) (Slice, error) {
	if s.size < 2 {
		return Slice{}, fmt.Errorf("hmerge slice of size %d: %w", s.size, voxel.ErrOutOfRange)
	}
	res := NewSlice(s.level + 1)
	candidates := make([]voxel.Content, 0, 4)

	for j := 0; j < res.size; j++ {
		for i := 0; i < res.size; i++ {
			candidates = candidates[:0]
			for _, c := range [4]voxel.Content{
				s.at(2*i, 2*j),
				s.at(2*i, 2*j+1),
				s.at(2*i+1, 2*j),
				s.at(2*i+1, 2*j+1),
			} {
				if c != voxel.ContentIgnore {
					candidates = append(candidates, c)
				}
			}
			if len(candidates) > 0 {
				res.Face[res.indexUnsafe(i, j)] = candidates[rng.Intn(len(candidates))]
			}
		}
	}
	return res, nil
}

// HMergeSlices применяет HMergeSlice ко всем срезам набора
func HMergeSlices(set *SliceSet, rng *rand.Rand) (*SliceSet, error) {
	res := &SliceSet{HLevel: set.HLevel + 1, VLevel: set.VLevel}
	for o, stack := range set.Stacks {
		out := make([]Slice, len(stack))
		for k, s := range stack {
			merged, err := HMergeSlice(s, rng)
			if err != nil {
				return nil, err
			}
			out[k] = merged
		}
		res.Stacks[o] = out
	}
	return res, nil
}
