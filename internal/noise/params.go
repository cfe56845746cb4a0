package noise

import "github.com/annel0/voxel-core/internal/vec"

// Params описывает фрактальное поле шума
type Params struct {
	Offset      float64       `yaml:"offset"`
	Scale       float64       `yaml:"scale"`
	Spread      vec.Vec3Float `yaml:"spread"`
	Seed        int32         `yaml:"seed"`
	Octaves     int           `yaml:"octaves"`
	Persistence float64       `yaml:"persistence"`
	Lacunarity  float64       `yaml:"lacunarity"`
}

// NewParams - короткий конструктор с одинаковым разбросом по всем осям
func NewParams(offset, scale, spread float64, seed int32, octaves int, persistence, lacunarity float64) Params {
	return Params{
		Offset:      offset,
		Scale:       scale,
		Spread:      vec.Vec3Float{X: spread, Y: spread, Z: spread},
		Seed:        seed,
		Octaves:     octaves,
		Persistence: persistence,
		Lacunarity:  lacunarity,
	}
}
