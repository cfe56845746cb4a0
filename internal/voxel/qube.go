package voxel

// Content - идентификатор материала ячейки
type Content uint16

const (
	// ContentIgnore - «не задано / неизвестно»
	ContentIgnore Content = 0xFFFF
	// ContentAir - пустота
	ContentAir Content = 0
)

// Qube - одна воксельная ячейка. Light и Param ядром не используются,
// но входят в раскладку ячейки.
type Qube struct {
	Content Content
	Light   uint8
	Param   uint8
}

// IgnoreQube - ячейка-заглушка для областей вне окна
var IgnoreQube = Qube{Content: ContentIgnore}

// IsWalkable - твёрдая ли ячейка (всё, кроме воздуха и неизвестного)
func IsWalkable(c Content) bool {
	return c != ContentAir && c != ContentIgnore
}
