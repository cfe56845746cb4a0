package meshgen

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/annel0/voxel-core/internal/voxel"
)

var white = mgl32.Vec3{1, 1, 1}

// defaultColors - цвета материалов палитры по умолчанию
var defaultColors = []mgl32.Vec3{
	{1.0, 1.0, 1.0}, // air
	{0.5, 0.5, 0.5}, // stone
	{0.5, 0.2, 0.1}, // dirt
	{0.2, 0.6, 0.0}, // dirt_with_grass
	{0.9, 0.8, 0.6}, // sand
	{0.3, 0.4, 0.9}, // water
	{0.9, 0.6, 0.0}, // lava
	{0.3, 0.3, 0.3}, // gravel
	{0.0, 0.0, 0.0}, // desert_stone
	{0.0, 0.0, 0.0}, // desert_sand
	{0.7, 0.8, 0.9}, // dirt_with_snow
	{0.0, 0.0, 0.0}, // snow
	{0.8, 0.9, 1.0}, // snowblock
	{0.6, 0.7, 1.0}, // ice
	{0.0, 0.0, 0.0}, // cobble
	{0.0, 0.0, 0.0}, // mossycobble
	{0.0, 0.0, 0.0}, // stair_cobble
	{0.0, 0.0, 0.0}, // stair_desert_stone
}

// ColorTable сопоставляет материалу цвет. Для неизвестных
// материалов возвращается белый.
type ColorTable struct {
	colors []mgl32.Vec3
}

// DefaultColorTable возвращает таблицу для палитры по умолчанию
func DefaultColorTable() *ColorTable {
	return NewColorTable(nil)
}

// NewColorTable строит таблицу по умолчанию и применяет переопределения
func NewColorTable(overrides map[voxel.Content]mgl32.Vec3) *ColorTable {
	t := &ColorTable{colors: append([]mgl32.Vec3(nil), defaultColors...)}
	for c, col := range overrides {
		if c == voxel.ContentIgnore {
			continue
		}
		for int(c) >= len(t.colors) {
			t.colors = append(t.colors, white)
		}
		t.colors[c] = col
	}
	return t
}

// Color возвращает цвет материала
func (t *ColorTable) Color(c voxel.Content) mgl32.Vec3 {
	if t == nil || int(c) >= len(t.colors) {
		return white
	}
	return t.colors[c]
}

// Len - число материалов с явно заданным цветом
func (t *ColorTable) Len() int {
	return len(t.colors)
}
