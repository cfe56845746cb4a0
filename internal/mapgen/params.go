package mapgen

import "github.com/annel0/voxel-core/internal/noise"

const (
	// WaterLevel - уровень моря
	WaterLevel = 1
	// AverageMudAmount - средняя толщина грязи, она же толщина в плоском режиме
	AverageMudAmount = 4
	// DesertStoneBase - ниже этой высоты пустыня сложена обычным камнем
	DesertStoneBase = -32
	// IceBase - ниже этой высоты вода в тундре не замерзает
	IceBase = 0
	// MaxGenerationLimit - ответ точечных запросов для непригодной точки
	MaxGenerationLimit = 31000
)

// V6Params - параметры генератора v6
type V6Params struct {
	Flags      Flags   `yaml:"-"`
	FreqDesert float64 `yaml:"freq_desert"`
	FreqBeach  float64 `yaml:"freq_beach"`

	TerrainBase   noise.Params `yaml:"terrain_base"`
	TerrainHigher noise.Params `yaml:"terrain_higher"`
	Steepness     noise.Params `yaml:"steepness"`
	HeightSelect  noise.Params `yaml:"height_select"`
	Mud           noise.Params `yaml:"mud"`
	Beach         noise.Params `yaml:"beach"`
	Biome         noise.Params `yaml:"biome"`
	Cave          noise.Params `yaml:"cave"`
	Humidity      noise.Params `yaml:"humidity"`
	Trees         noise.Params `yaml:"trees"`
	AppleTrees    noise.Params `yaml:"apple_trees"`
}

// DefaultV6Params возвращает параметры по умолчанию
func DefaultV6Params() V6Params {
	return V6Params{
		Flags:      DefaultFlags,
		FreqDesert: 0.45,
		FreqBeach:  0.15,

		TerrainBase:   noise.NewParams(-4, 20.0, 250.0, 33, 5, 0.6, 2.0),
		TerrainHigher: noise.NewParams(20, 16.0, 500.0, 2, 5, 0.6, 2.0),
		Steepness:     noise.NewParams(0.85, 0.5, 125.0, 3, 5, 0.7, 2.0),
		HeightSelect:  noise.NewParams(0, 1.0, 250.0, 4, 5, 0.69, 2.0),
		Mud:           noise.NewParams(4, 2.0, 200.0, 5, 3, 0.55, 2.0),
		Beach:         noise.NewParams(0, 1.0, 250.0, 6, 3, 0.50, 2.0),
		Biome:         noise.NewParams(0, 1.0, 500.0, 7, 3, 0.50, 2.0),
		Cave:          noise.NewParams(6, 6.0, 250.0, 8, 3, 0.50, 2.0),
		Humidity:      noise.NewParams(0.5, 0.5, 500.0, 9, 3, 0.50, 2.0),
		Trees:         noise.NewParams(0, 1.0, 125.0, 10, 4, 0.66, 2.0),
		AppleTrees:    noise.NewParams(0, 1.0, 100.0, 11, 3, 0.45, 2.0),
	}
}
