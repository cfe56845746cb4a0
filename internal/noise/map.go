package noise

// Map2D - результаты поля шума на прямоугольной области SX×SY.
// Индекс ячейки: (y-y0)*SX + (x-x0).
type Map2D struct {
	field  *Fractal2D
	SX, SY int
	Result []float64
}

// NewMap2D выделяет буфер под область
func NewMap2D(field *Fractal2D, sx, sy int) *Map2D {
	return &Map2D{
		field:  field,
		SX:     sx,
		SY:     sy,
		Result: make([]float64, sx*sy),
	}
}

// Fill заполняет буфер, начиная с точки (x0, y0).
// Каждая ячейка считается тем же At, что и точечный запрос.
func (m *Map2D) Fill(x0 int, xoff float64, y0 int, yoff float64) {
	i := 0
	for y := 0; y < m.SY; y++ {
		for x := 0; x < m.SX; x++ {
			m.Result[i] = m.field.At(float64(x0+x), xoff, float64(y0+y), yoff)
			i++
		}
	}
}
