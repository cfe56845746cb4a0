package mapgen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/annel0/voxel-core/internal/vec"
	"github.com/annel0/voxel-core/internal/voxel"
)

// Kind - вариант генератора
type Kind int

const (
	KindV6 Kind = iota
	KindHeightmap
)

// ErrUnknownKind - неизвестный вариант генератора
var ErrUnknownKind = errors.New("unknown mapgen kind")

func (k Kind) String() string {
	switch k {
	case KindV6:
		return "v6"
	case KindHeightmap:
		return "heightmap"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind разбирает имя варианта из конфигурации
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "v6":
		return KindV6, nil
	case "heightmap":
		return KindHeightmap, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Generator - генератор мира, принадлежащий вызывающему.
// Вариант выбирается значением Kind.
type Generator struct {
	kind      Kind
	v6        *V6
	heightmap *Heightmap
}

// NewV6Generator оборачивает генератор v6
func NewV6Generator(g *V6) *Generator {
	return &Generator{kind: KindV6, v6: g}
}

// NewHeightmapGenerator оборачивает генератор по карте высот
func NewHeightmapGenerator(h *Heightmap) *Generator {
	return &Generator{kind: KindHeightmap, heightmap: h}
}

// Kind возвращает вариант генератора
func (g *Generator) Kind() Kind { return g.kind }

// Generate заполняет блоки [bmin, bmax] окна vm. seed - сид генерации,
// из него выводится сид блока для точек расширения.
func (g *Generator) Generate(vm *voxel.MMVManip, bmin, bmax vec.Vec3, seed uint64) error {
	switch g.kind {
	case KindV6:
		return g.v6.MakeChunk(vm, bmin, bmax, seed)
	case KindHeightmap:
		return g.heightmap.MakeChunk(vm, bmin, bmax)
	}
	return fmt.Errorf("%w: %v", ErrUnknownKind, g.kind)
}

// GroundLevelAt - высота земли в колонке (x, y)
func (g *Generator) GroundLevelAt(x, y int) int {
	switch g.kind {
	case KindV6:
		return g.v6.GroundLevelAt(x, y)
	case KindHeightmap:
		return g.heightmap.Height(x, y)
	}
	return 0
}

// SpawnLevelAt - высота появления или MaxGenerationLimit для непригодной точки
func (g *Generator) SpawnLevelAt(x, y int) int {
	switch g.kind {
	case KindV6:
		return g.v6.SpawnLevelAt(x, y)
	case KindHeightmap:
		return g.heightmap.Height(x, y) + 1
	}
	return MaxGenerationLimit
}

// Column - сведения о колонке рельефа. Деревья не сажаются,
// Trees и AppleTrees только показывают значения их полей шума.
type Column struct {
	Ground     int     `json:"ground"`
	Biome      string  `json:"biome"`
	Humidity   float64 `json:"humidity"`
	Trees      float64 `json:"trees"`
	AppleTrees bool    `json:"apple_trees"`
}

// ColumnAt описывает колонку col. У карты высот биом всегда normal,
// остальные поля нулевые.
func (g *Generator) ColumnAt(col vec.Vec2) Column {
	c := Column{Ground: g.GroundLevelAt(col.X, col.Y), Biome: BiomeNormal.String()}
	if g.kind == KindV6 {
		c.Biome = g.v6.BiomeAt(col.X, col.Y).String()
		c.Humidity = g.v6.HumidityAt(col.X, col.Y)
		c.Trees = g.v6.TreeAmountAt(col.X, col.Y)
		c.AppleTrees = g.v6.HaveAppleTreeAt(col.X, col.Y)
	}
	return c
}
