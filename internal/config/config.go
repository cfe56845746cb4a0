package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/annel0/voxel-core/internal/eventbus"
	"github.com/annel0/voxel-core/internal/logging"
	"github.com/annel0/voxel-core/internal/mapgen"
	"github.com/annel0/voxel-core/internal/meshgen"
	"github.com/annel0/voxel-core/internal/noise"
	"github.com/annel0/voxel-core/internal/storage"
	"github.com/annel0/voxel-core/internal/voxel"
	"github.com/annel0/voxel-core/internal/world"
)

const (
	defaultSeed        = 666
	defaultMetricsAddr = ":2112"
)

// ErrInvalidConfig - конфигурация не прошла проверку
var ErrInvalidConfig = errors.New("invalid config")

// Config корневая структура конфигурации
type Config struct {
	// Seed - сид мира; 0 означает «взять из VCORE_SEED или по умолчанию»
	Seed    uint64        `yaml:"seed"`
	Mapgen  MapgenConfig  `yaml:"mapgen"`
	Map     MapConfig     `yaml:"map"`
	Worker  WorkerConfig  `yaml:"worker"`
	Storage StorageConfig `yaml:"storage"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
	Tracing TracingConfig `yaml:"tracing"`
	Events  EventsConfig  `yaml:"events"`
}

type MapgenConfig struct {
	// Kind - "v6" или "heightmap"
	Kind string `yaml:"kind"`
	// Flags - флаги v6; если не заданы, используются флаги по умолчанию
	Flags     []string        `yaml:"flags"`
	V6        mapgen.V6Params `yaml:"v6"`
	Palette   mapgen.Palette  `yaml:"palette"`
	Heightmap HeightmapConfig `yaml:"heightmap"`
}

type HeightmapConfig struct {
	// Mode - "flat" или "noise"
	Mode  string        `yaml:"mode"`
	Level int           `yaml:"level"`
	Noise noise.Params  `yaml:"noise"`
	Solid voxel.Content `yaml:"solid"`
}

type MapConfig struct {
	SuperChunkSize int `yaml:"super_chunk_size"`
	SuperChunkBias int `yaml:"super_chunk_bias"`
	MeshWorkers    int `yaml:"mesh_workers"`
	// LODReference - расстояние, до которого рисуется уровень 0
	LODReference float64 `yaml:"lod_reference"`
	// Colors переопределяет цвета материалов (RGB 0..1)
	Colors map[voxel.Content][3]float32 `yaml:"colors"`
}

type WorkerConfig struct {
	MaxShell int `yaml:"max_shell"`
	// PollInterval - период опроса снимков мешей потребителем
	PollInterval time.Duration `yaml:"poll_interval"`
}

type StorageConfig struct {
	Enabled bool `yaml:"enabled"`
	// Path - каталог BadgerDB; пустой путь - БД в памяти
	Path string `yaml:"path"`
	// Redis - горячий кэш перед BadgerDB; пустой addr отключает его
	Redis storage.RedisConfig `yaml:"redis"`
}

type MetricsConfig struct {
	Addr          string        `yaml:"addr"`
	StatsInterval time.Duration `yaml:"stats_interval"`
}

type EventsConfig struct {
	// Backend - "none", "memory" или "jetstream"
	Backend   string        `yaml:"backend"`
	Buffer    int           `yaml:"buffer"`
	URL       string        `yaml:"url"`
	Stream    string        `yaml:"stream"`
	Retention time.Duration `yaml:"retention"`
}

type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
	// Endpoint - адрес OTLP/HTTP коллектора; пусто - localhost:4318
	Endpoint string `yaml:"endpoint"`
}

type LoggingConfig struct {
	Dir          string `yaml:"dir"`
	ConsoleLevel string `yaml:"console_level"`
	FileLevel    string `yaml:"file_level"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	opts := world.DefaultOptions()
	return &Config{
		Mapgen: MapgenConfig{
			Kind:    mapgen.KindV6.String(),
			V6:      mapgen.DefaultV6Params(),
			Palette: mapgen.DefaultPalette(),
			Heightmap: HeightmapConfig{
				Mode:  "flat",
				Level: mapgen.WaterLevel,
				Noise: noise.NewParams(0, 16, 128, 1, 4, 0.5, 2.0),
				Solid: mapgen.DefaultPalette().Stone,
			},
		},
		Map: MapConfig{
			SuperChunkSize: opts.SuperChunkSize,
			SuperChunkBias: opts.SuperChunkBias,
			MeshWorkers:    opts.MeshWorkers,
			LODReference:   64,
		},
		Worker: WorkerConfig{
			MaxShell:     100,
			PollInterval: 16 * time.Millisecond,
		},
		Metrics: MetricsConfig{
			StatsInterval: 10 * time.Second,
		},
		Logging: LoggingConfig{
			ConsoleLevel: "INFO",
			FileLevel:    "DEBUG",
		},
		Events: EventsConfig{
			Backend:   "memory",
			Buffer:    1024,
			URL:       "nats://127.0.0.1:4222",
			Retention: 24 * time.Hour,
		},
	}
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать из ENV VCORE_CONFIG, иначе
// возвращает конфигурацию по умолчанию.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("VCORE_CONFIG")
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetSeed возвращает сид с приоритетом: config -> env -> default
func (c *Config) GetSeed() uint64 {
	if c.Seed != 0 {
		return c.Seed
	}
	if envVal := os.Getenv("VCORE_SEED"); envVal != "" {
		if seed, err := strconv.ParseUint(envVal, 10, 64); err == nil && seed != 0 {
			return seed
		}
	}
	return defaultSeed
}

// GetMetricsAddr возвращает адрес метрик с приоритетом: config -> env -> default
func (c *Config) GetMetricsAddr() string {
	if c.Metrics.Addr != "" {
		return c.Metrics.Addr
	}
	if envVal := os.Getenv("VCORE_METRICS_ADDR"); envVal != "" {
		return envVal
	}
	return defaultMetricsAddr
}

// Validate проверяет согласованность значений
func (c *Config) Validate() error {
	var errs []error

	if _, err := mapgen.ParseKind(c.Mapgen.Kind); err != nil {
		errs = append(errs, err)
	}
	if _, err := mapgen.ParseFlags(c.Mapgen.Flags); err != nil {
		errs = append(errs, err)
	}
	switch c.Mapgen.Heightmap.Mode {
	case "flat", "noise":
	default:
		errs = append(errs, fmt.Errorf("heightmap mode %q", c.Mapgen.Heightmap.Mode))
	}

	for name, np := range c.noiseParams() {
		if np.Spread.X == 0 || np.Spread.Y == 0 || np.Spread.Z == 0 {
			errs = append(errs, fmt.Errorf("noise %s: zero spread", name))
		}
		if np.Octaves < 1 {
			errs = append(errs, fmt.Errorf("noise %s: %d octaves", name, np.Octaves))
		}
	}

	m := c.Map
	if m.SuperChunkSize <= 0 || m.SuperChunkBias < 0 || m.SuperChunkBias >= m.SuperChunkSize {
		errs = append(errs, fmt.Errorf("super-chunk size %d bias %d", m.SuperChunkSize, m.SuperChunkBias))
	}
	if m.MeshWorkers < 1 {
		errs = append(errs, fmt.Errorf("mesh workers %d", m.MeshWorkers))
	}
	if c.Worker.MaxShell < 0 {
		errs = append(errs, fmt.Errorf("max shell %d", c.Worker.MaxShell))
	}
	if c.Worker.PollInterval <= 0 || c.Metrics.StatsInterval <= 0 {
		errs = append(errs, fmt.Errorf("intervals poll %v stats %v", c.Worker.PollInterval, c.Metrics.StatsInterval))
	}

	switch c.Events.Backend {
	case "none", "jetstream":
	case "memory":
		if c.Events.Buffer < 1 {
			errs = append(errs, fmt.Errorf("events buffer %d", c.Events.Buffer))
		}
	default:
		errs = append(errs, fmt.Errorf("events backend %q", c.Events.Backend))
	}

	if _, err := logging.ParseLevel(c.Logging.ConsoleLevel); err != nil {
		errs = append(errs, err)
	}
	if _, err := logging.ParseLevel(c.Logging.FileLevel); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) noiseParams() map[string]noise.Params {
	v6 := c.Mapgen.V6
	return map[string]noise.Params{
		"terrain_base":   v6.TerrainBase,
		"terrain_higher": v6.TerrainHigher,
		"steepness":      v6.Steepness,
		"height_select":  v6.HeightSelect,
		"mud":            v6.Mud,
		"beach":          v6.Beach,
		"biome":          v6.Biome,
		"cave":           v6.Cave,
		"humidity":       v6.Humidity,
		"trees":          v6.Trees,
		"apple_trees":    v6.AppleTrees,
		"heightmap":      c.Mapgen.Heightmap.Noise,
	}
}

// Generator собирает генератор рельефа по секции mapgen
func (c *Config) Generator() (*mapgen.Generator, error) {
	kind, err := mapgen.ParseKind(c.Mapgen.Kind)
	if err != nil {
		return nil, err
	}
	seed := int64(c.GetSeed())

	switch kind {
	case mapgen.KindHeightmap:
		hm := c.Mapgen.Heightmap
		height := mapgen.FlatHeight(hm.Level)
		if hm.Mode == "noise" {
			height = mapgen.NoiseHeight(noise.NewFractal2D(hm.Noise, seed))
		}
		return mapgen.NewHeightmapGenerator(mapgen.NewHeightmap(height, hm.Solid)), nil
	default:
		params := c.Mapgen.V6
		params.Flags = mapgen.DefaultFlags
		if c.Mapgen.Flags != nil {
			if params.Flags, err = mapgen.ParseFlags(c.Mapgen.Flags); err != nil {
				return nil, err
			}
		}
		return mapgen.NewV6Generator(mapgen.NewV6(params, c.Mapgen.Palette, seed)), nil
	}
}

// MapOptions собирает настройки хранилища блоков. Кэш, метрики и
// логгер заполняет вызывающий.
func (c *Config) MapOptions() world.Options {
	opts := world.DefaultOptions()
	opts.Seed = c.GetSeed()
	opts.SuperChunkSize = c.Map.SuperChunkSize
	opts.SuperChunkBias = c.Map.SuperChunkBias
	opts.MeshWorkers = c.Map.MeshWorkers

	if len(c.Map.Colors) > 0 {
		overrides := make(map[voxel.Content]mgl32.Vec3, len(c.Map.Colors))
		for id, rgb := range c.Map.Colors {
			overrides[id] = mgl32.Vec3(rgb)
		}
		opts.Colors = meshgen.NewColorTable(overrides)
	}
	return opts
}

// EventBus создаёт шину событий по секции events; nil, если события отключены
func (c *Config) EventBus() (eventbus.EventBus, error) {
	switch c.Events.Backend {
	case "memory":
		return eventbus.NewMemoryBus(c.Events.Buffer), nil
	case "jetstream":
		bus, err := eventbus.NewJetStreamBus(c.Events.URL, c.Events.Stream, c.Events.Retention)
		if err != nil {
			return nil, err
		}
		return bus, nil
	}
	return nil, nil
}

// LoggingOptions переводит секцию logging в настройки логгера
func (c *Config) LoggingOptions() (logging.Options, error) {
	console, err := logging.ParseLevel(c.Logging.ConsoleLevel)
	if err != nil {
		return logging.Options{}, err
	}
	file, err := logging.ParseLevel(c.Logging.FileLevel)
	if err != nil {
		return logging.Options{}, err
	}
	return logging.Options{Dir: c.Logging.Dir, ConsoleLevel: console, FileLevel: file}, nil
}
