package vec

import (
	"fmt"
	"iter"
)

// Vec3 представляет трехмерный вектор с целочисленными координатами.
// Ось Z направлена вверх.
type Vec3 struct {
	X int
	Y int
	Z int
}

// Vec3Float представляет трехмерный вектор с плавающими координатами
type Vec3Float struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// Splat возвращает вектор с одинаковыми компонентами
func Splat(n int) Vec3 {
	return Vec3{X: n, Y: n, Z: n}
}

// ToVec2 преобразует Vec3 в Vec2, отбрасывая вертикальную координату Z
func (v Vec3) ToVec2() Vec2 {
	return Vec2{
		X: v.X,
		Y: v.Y,
	}
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// Sub вычитает вектор
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{
		X: v.X - other.X,
		Y: v.Y - other.Y,
		Z: v.Z - other.Z,
	}
}

// Mul умножает вектор на скаляр
func (v Vec3) Mul(n int) Vec3 {
	return Vec3{X: v.X * n, Y: v.Y * n, Z: v.Z * n}
}

// Volume возвращает произведение компонент (объём бокса размера v)
func (v Vec3) Volume() int {
	return v.X * v.Y * v.Z
}

// String для логов
func (v Vec3) String() string {
	return fmt.Sprintf("(%d,%d,%d)", v.X, v.Y, v.Z)
}

// DivRem делит с округлением вниз: n == d*q + r, 0 <= r < d.
// d должен быть положительным.
func DivRem(n, d int) (q, r int) {
	if d <= 0 {
		panic(fmt.Sprintf("vec: DivRem с неположительным делителем %d", d))
	}
	if n >= 0 {
		return n / d, n % d
	}
	return (n+1)/d - 1, (n+1)%d + d - 1
}

// DivRem покомпонентно
func (v Vec3) DivRem(d int) (q, r Vec3) {
	q.X, r.X = DivRem(v.X, d)
	q.Y, r.Y = DivRem(v.Y, d)
	q.Z, r.Z = DivRem(v.Z, d)
	return q, r
}

// Box перебирает все точки замкнутого бокса [min, max], X меняется быстрее всего.
func Box(min, max Vec3) iter.Seq[Vec3] {
	return func(yield func(Vec3) bool) {
		for z := min.Z; z <= max.Z; z++ {
			for y := min.Y; y <= max.Y; y++ {
				for x := min.X; x <= max.X; x++ {
					if !yield(Vec3{X: x, Y: y, Z: z}) {
						return
					}
				}
			}
		}
	}
}

// Neighbours6 - шесть осевых направлений
var Neighbours6 = [6]Vec3{
	{X: -1}, {X: 1},
	{Y: -1}, {Y: 1},
	{Z: -1}, {Z: 1},
}
