package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-core/internal/logging"
	"github.com/annel0/voxel-core/internal/mapgen"
	"github.com/annel0/voxel-core/internal/voxel"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vcore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	t.Setenv("VCORE_CONFIG", "")
	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	gen, err := cfg.Generator()
	require.NoError(t, err)
	assert.Equal(t, mapgen.KindV6, gen.Kind())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
seed: 42
mapgen:
  kind: heightmap
  heightmap:
    mode: flat
    level: 3
map:
  mesh_workers: 4
  colors:
    1: [1, 0, 0]
worker:
  max_shell: 7
  poll_interval: 50ms
logging:
  console_level: warn
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint64(42), cfg.GetSeed())
	assert.Equal(t, 5, cfg.Map.SuperChunkSize, "незаданные поля остаются по умолчанию")
	assert.Equal(t, 4, cfg.Map.MeshWorkers)
	assert.Equal(t, 7, cfg.Worker.MaxShell)
	assert.Equal(t, 50*time.Millisecond, cfg.Worker.PollInterval)

	gen, err := cfg.Generator()
	require.NoError(t, err)
	assert.Equal(t, mapgen.KindHeightmap, gen.Kind())
	assert.Equal(t, 3, gen.GroundLevelAt(100, -100))

	opts := cfg.MapOptions()
	assert.Equal(t, uint64(42), opts.Seed)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, opts.Colors.Color(voxel.Content(1)))

	lopts, err := cfg.LoggingOptions()
	require.NoError(t, err)
	assert.Equal(t, logging.WARN, lopts.ConsoleLevel)
}

func TestLoadFromEnv(t *testing.T) {
	path := writeConfig(t, "mapgen:\n  flags: [flat]\n")
	t.Setenv("VCORE_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"flat"}, cfg.Mapgen.Flags)
}

func TestEnvFallbacks(t *testing.T) {
	cfg := Default()

	t.Setenv("VCORE_SEED", "")
	t.Setenv("VCORE_METRICS_ADDR", "")
	assert.Equal(t, uint64(defaultSeed), cfg.GetSeed())
	assert.Equal(t, defaultMetricsAddr, cfg.GetMetricsAddr())

	t.Setenv("VCORE_SEED", "1234")
	t.Setenv("VCORE_METRICS_ADDR", "127.0.0.1:9000")
	assert.Equal(t, uint64(1234), cfg.GetSeed())
	assert.Equal(t, "127.0.0.1:9000", cfg.GetMetricsAddr())

	cfg.Seed = 5
	cfg.Metrics.Addr = ":1"
	assert.Equal(t, uint64(5), cfg.GetSeed(), "значение из конфига важнее окружения")
	assert.Equal(t, ":1", cfg.GetMetricsAddr())
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"нулевой разброс", func(c *Config) { c.Mapgen.V6.Mud.Spread.Y = 0 }},
		{"нет октав", func(c *Config) { c.Mapgen.V6.Trees.Octaves = 0 }},
		{"сдвиг не меньше размера", func(c *Config) { c.Map.SuperChunkBias = 5 }},
		{"неизвестный генератор", func(c *Config) { c.Mapgen.Kind = "v7" }},
		{"неизвестный флаг", func(c *Config) { c.Mapgen.Flags = []string{"caves"} }},
		{"неизвестный режим", func(c *Config) { c.Mapgen.Heightmap.Mode = "ridged" }},
		{"нет воркеров", func(c *Config) { c.Map.MeshWorkers = 0 }},
		{"неизвестная шина", func(c *Config) { c.Events.Backend = "kafka" }},
		{"нулевой период опроса", func(c *Config) { c.Worker.PollInterval = 0 }},
		{"неизвестный уровень логов", func(c *Config) { c.Logging.FileLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestLoadBrokenYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "seed: [1, 2"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "map:\n  super_chunk_size: 0\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestEventBus(t *testing.T) {
	cfg := Default()
	bus, err := cfg.EventBus()
	require.NoError(t, err)
	require.NotNil(t, bus, "по умолчанию шина в памяти")
	require.NoError(t, bus.Close())

	cfg.Events.Backend = "none"
	bus, err = cfg.EventBus()
	require.NoError(t, err)
	assert.Nil(t, bus)
}
