package noise

import (
	"github.com/aquilax/go-perlin"
)

// Fractal2D - сидированное фрактальное поле Перлина.
// После создания только читается, поэтому безопасно для параллельного использования.
type Fractal2D struct {
	np     Params
	perlin *perlin.Perlin
}

// NewFractal2D создаёт поле для мирового сида; итоговый сид = seed + np.Seed
func NewFractal2D(np Params, seed int64) *Fractal2D {
	// alpha - делитель амплитуды октавы, beta - множитель частоты
	alpha := 2.0
	if np.Persistence > 0 {
		alpha = 1.0 / np.Persistence
	}
	beta := np.Lacunarity
	if beta <= 0 {
		beta = 2.0
	}
	octaves := int32(np.Octaves)
	if octaves < 1 {
		octaves = 1
	}

	return &Fractal2D{
		np:     np,
		perlin: perlin.NewPerlin(alpha, beta, octaves, seed+int64(np.Seed)),
	}
}

// Params возвращает параметры поля
func (f *Fractal2D) Params() Params {
	return f.np
}

// At возвращает значение шума в точке (x, y) со сдвигом xoff, yoff,
// заданным в единицах разброса
func (f *Fractal2D) At(x, xoff, y, yoff float64) float64 {
	nx := xoff + x/f.np.Spread.X
	ny := yoff + y/f.np.Spread.Y
	return f.np.Offset + f.np.Scale*f.perlin.Noise2D(nx, ny)
}
