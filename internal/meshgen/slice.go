package meshgen

import (
	"fmt"

	"github.com/annel0/voxel-core/internal/vec"
	"github.com/annel0/voxel-core/internal/voxel"
)

// Slice - срез граней: квадратная сетка материалов на уровне level.
// Сторона сетки BlockSize>>level, незанятые клетки - ContentIgnore.
type Slice struct {
	level int
	size  int
	Face  []voxel.Content
}

// NewSlice создаёт пустой срез
func NewSlice(level int) Slice {
	size := voxel.BlockSize >> level
	s := Slice{level: level, size: size, Face: make([]voxel.Content, size*size)}
	for i := range s.Face {
		s.Face[i] = voxel.ContentIgnore
	}
	return s
}

// Size - сторона сетки
func (s Slice) Size() int { return s.size }

// Level - уровень горизонтальной детализации
func (s Slice) Level() int { return s.level }

func (s Slice) indexUnsafe(i, j int) int {
	return j + s.size*i
}

// Index возвращает индекс клетки или ErrOutOfRange
func (s Slice) Index(pos vec.Vec2) (int, error) {
	if pos.X < 0 || pos.X >= s.size || pos.Y < 0 || pos.Y >= s.size {
		return 0, fmt.Errorf("face %v outside slice of size %d: %w", pos, s.size, voxel.ErrOutOfRange)
	}
	return s.indexUnsafe(pos.X, pos.Y), nil
}

// Get читает клетку
func (s Slice) Get(pos vec.Vec2) (voxel.Content, error) {
	i, err := s.Index(pos)
	if err != nil {
		return voxel.ContentIgnore, err
	}
	return s.Face[i], nil
}

// Set записывает клетку
func (s Slice) Set(pos vec.Vec2, c voxel.Content) error {
	i, err := s.Index(pos)
	if err != nil {
		return err
	}
	s.Face[i] = c
	return nil
}

// at - доступ без проверки для горячих циклов
func (s Slice) at(i, j int) voxel.Content {
	return s.Face[s.indexUnsafe(i, j)]
}

// Empty - ни одной занятой клетки
func (s Slice) Empty() bool {
	for _, c := range s.Face {
		if c != voxel.ContentIgnore {
			return false
		}
	}
	return true
}

// SliceSet - шесть стопок срезов, по одной на направление грани.
// В каждой стопке BlockSize>>VLevel срезов уровня HLevel.
type SliceSet struct {
	HLevel int
	VLevel int
	Stacks [OrientationCount][]Slice
}

// NewSliceSet создаёт набор пустых срезов
func NewSliceSet(hLevel, vLevel int) *SliceSet {
	set := &SliceSet{HLevel: hLevel, VLevel: vLevel}
	n := voxel.BlockSize >> vLevel
	for o := range set.Stacks {
		stack := make([]Slice, n)
		for k := range stack {
			stack[k] = NewSlice(hLevel)
		}
		set.Stacks[o] = stack
	}
	return set
}

// Stack возвращает стопку срезов для направления
func (set *SliceSet) Stack(o Orientation) []Slice {
	return set.Stacks[o]
}

// FaceCount - число занятых клеток во всех срезах
func (set *SliceSet) FaceCount() int {
	n := 0
	for _, stack := range set.Stacks {
		for _, s := range stack {
			for _, c := range s.Face {
				if c != voxel.ContentIgnore {
					n++
				}
			}
		}
	}
	return n
}
