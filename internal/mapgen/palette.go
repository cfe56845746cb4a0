package mapgen

import "github.com/annel0/voxel-core/internal/voxel"

// Palette - идентификаторы материалов, которыми генератор заполняет мир.
// ContentIgnore означает «не задано» и заменяется по правилам WithFallbacks.
type Palette struct {
	Stone            voxel.Content `yaml:"stone"`
	Dirt             voxel.Content `yaml:"dirt"`
	DirtWithGrass    voxel.Content `yaml:"dirt_with_grass"`
	Sand             voxel.Content `yaml:"sand"`
	Water            voxel.Content `yaml:"water"`
	Lava             voxel.Content `yaml:"lava"`
	Gravel           voxel.Content `yaml:"gravel"`
	DesertStone      voxel.Content `yaml:"desert_stone"`
	DesertSand       voxel.Content `yaml:"desert_sand"`
	DirtWithSnow     voxel.Content `yaml:"dirt_with_snow"`
	Snow             voxel.Content `yaml:"snow"`
	Snowblock        voxel.Content `yaml:"snowblock"`
	Ice              voxel.Content `yaml:"ice"`
	Cobble           voxel.Content `yaml:"cobble"`
	MossyCobble      voxel.Content `yaml:"mossycobble"`
	StairCobble      voxel.Content `yaml:"stair_cobble"`
	StairDesertStone voxel.Content `yaml:"stair_desert_stone"`
}

// DefaultPalette нумерует материалы подряд с 1; 0 - воздух
func DefaultPalette() Palette {
	return Palette{
		Stone:            1,
		Dirt:             2,
		DirtWithGrass:    3,
		Sand:             4,
		Water:            5,
		Lava:             6,
		Gravel:           7,
		DesertStone:      8,
		DesertSand:       9,
		DirtWithSnow:     10,
		Snow:             11,
		Snowblock:        12,
		Ice:              13,
		Cobble:           14,
		MossyCobble:      15,
		StairCobble:      16,
		StairDesertStone: 17,
	}
}

// WithFallbacks подставляет замены для незаданных материалов.
// Порядок важен: лестница из пустынного камня берёт уже заменённый камень.
func (p Palette) WithFallbacks() Palette {
	fallback := func(c *voxel.Content, to voxel.Content) {
		if *c == voxel.ContentIgnore {
			*c = to
		}
	}
	fallback(&p.Gravel, p.Stone)
	fallback(&p.DesertStone, p.Stone)
	fallback(&p.DesertSand, p.Sand)
	fallback(&p.DirtWithSnow, p.DirtWithGrass)
	fallback(&p.Snow, voxel.ContentAir)
	fallback(&p.Snowblock, p.DirtWithGrass)
	fallback(&p.Ice, p.Water)
	fallback(&p.MossyCobble, p.Cobble)
	fallback(&p.StairCobble, p.Cobble)
	fallback(&p.StairDesertStone, p.DesertStone)
	return p
}
