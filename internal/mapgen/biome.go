package mapgen

// Biome - тип колонки рельефа
type Biome int

const (
	BiomeNormal Biome = iota
	BiomeDesert
	BiomeJungle
	BiomeTundra
	BiomeTaiga
)

func (b Biome) String() string {
	switch b {
	case BiomeNormal:
		return "normal"
	case BiomeDesert:
		return "desert"
	case BiomeJungle:
		return "jungle"
	case BiomeTundra:
		return "tundra"
	case BiomeTaiga:
		return "taiga"
	default:
		return "unknown"
	}
}

// Пороги снежного набора правил
const (
	freqHot    = 0.4
	freqSnow   = -0.4
	freqTaiga  = 0.5
	freqJungle = 0.5
)

// classifyBiome выбирает биом по шуму биома d, влажности h и
// решёточному шуму hash в [-1, 1], который размывает границы
func classifyBiome(flags Flags, freqDesert, d, h, hash float64) Biome {
	if flags.Has(FlagSnowBiomes) {
		blend := 0.0
		if flags.Has(FlagBiomeBlend) {
			blend = hash / 40
		}

		if d > freqHot+blend {
			if h > freqJungle+blend {
				return BiomeJungle
			}
			return BiomeDesert
		}
		if d < freqSnow+blend {
			if h > freqTaiga+blend {
				return BiomeTaiga
			}
			return BiomeTundra
		}
		return BiomeNormal
	}

	if d > freqDesert {
		return BiomeDesert
	}
	if flags.Has(FlagBiomeBlend) && d > freqDesert-0.10 &&
		(hash+1.0) > (freqDesert-d)*20.0 {
		return BiomeDesert
	}
	if flags.Has(FlagJungles) && h > 0.75 {
		return BiomeJungle
	}
	return BiomeNormal
}
