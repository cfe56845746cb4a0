package mapgen

import (
	"fmt"
	"strings"
)

// Flags - набор флагов генератора v6
type Flags uint32

const (
	FlagJungles Flags = 1 << iota
	FlagBiomeBlend
	// FlagMudflow принимается, но сползание грязи не реализовано
	FlagMudflow
	FlagSnowBiomes
	FlagFlat
	// FlagTrees принимается, но деревья не ставятся
	FlagTrees
)

// DefaultFlags - флаги по умолчанию
const DefaultFlags = FlagJungles | FlagSnowBiomes | FlagTrees | FlagBiomeBlend | FlagMudflow

var flagNames = []struct {
	name string
	flag Flags
}{
	{"jungles", FlagJungles},
	{"biomeblend", FlagBiomeBlend},
	{"mudflow", FlagMudflow},
	{"snowbiomes", FlagSnowBiomes},
	{"flat", FlagFlat},
	{"trees", FlagTrees},
}

// Has проверяет, что все биты f установлены
func (fl Flags) Has(f Flags) bool {
	return fl&f == f
}

// ParseFlags собирает флаги из списка имён
func ParseFlags(names []string) (Flags, error) {
	var fl Flags
outer:
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		for _, fn := range flagNames {
			if fn.name == n {
				fl |= fn.flag
				continue outer
			}
		}
		return 0, fmt.Errorf("unknown mapgen flag %q", n)
	}
	return fl, nil
}

func (fl Flags) String() string {
	var names []string
	for _, fn := range flagNames {
		if fl.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}
	return strings.Join(names, ",")
}
