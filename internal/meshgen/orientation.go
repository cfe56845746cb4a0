package meshgen

import (
	"github.com/annel0/voxel-core/internal/vec"
	"github.com/annel0/voxel-core/internal/voxel"
)

// Orientation - направление внешней нормали грани
type Orientation int

const (
	XN Orientation = iota
	XP
	YN
	YP
	ZN
	ZP
	OrientationCount
)

func (o Orientation) String() string {
	switch o {
	case XN:
		return "xn"
	case XP:
		return "xp"
	case YN:
		return "yn"
	case YP:
		return "yp"
	case ZN:
		return "zn"
	case ZP:
		return "zp"
	default:
		return "unknown"
	}
}

// Negative - нормаль смотрит в отрицательную сторону оси
func (o Orientation) Negative() bool {
	return o%2 == 0
}

// Dir - единичный вектор нормали
func (o Orientation) Dir() vec.Vec3 {
	return vec.Neighbours6[o]
}

// Pack раскладывает относительную позицию ячейки на плоскость среза
func (o Orientation) Pack(rel vec.Vec3) vec.Vec2 {
	switch o {
	case XN:
		return vec.Vec2{X: rel.Z, Y: rel.Y}
	case XP:
		return vec.Vec2{X: rel.Y, Y: rel.Z}
	case YN:
		return vec.Vec2{X: rel.X, Y: rel.Z}
	case YP:
		return vec.Vec2{X: rel.Z, Y: rel.X}
	case ZN:
		return vec.Vec2{X: rel.Y, Y: rel.X}
	default:
		return vec.Vec2{X: rel.X, Y: rel.Y}
	}
}

// Unpack - обратное к Pack преобразование, координата вдоль нормали равна 0
func (o Orientation) Unpack(uv vec.Vec2) vec.Vec3 {
	switch o {
	case XN:
		return vec.Vec3{X: 0, Y: uv.Y, Z: uv.X}
	case XP:
		return vec.Vec3{X: 0, Y: uv.X, Z: uv.Y}
	case YN:
		return vec.Vec3{X: uv.X, Y: 0, Z: uv.Y}
	case YP:
		return vec.Vec3{X: uv.Y, Y: 0, Z: uv.X}
	case ZN:
		return vec.Vec3{X: uv.Y, Y: uv.X, Z: 0}
	default:
		return vec.Vec3{X: uv.X, Y: uv.Y, Z: 0}
	}
}

// layer - номер среза в стопке для относительной позиции ячейки
func (o Orientation) layer(rel vec.Vec3) int {
	var v int
	switch o {
	case XN, XP:
		v = rel.X
	case YN, YP:
		v = rel.Y
	default:
		v = rel.Z
	}
	if o.Negative() {
		return voxel.BlockSize - 1 - v
	}
	return v
}

// Brightness - постоянная яркость грани
func (o Orientation) Brightness() float32 {
	switch o {
	case XN, XP:
		return 0.8
	case YN:
		return 0.9
	case YP:
		return 0.7
	case ZN:
		return 0.5
	default:
		return 1.0
	}
}
