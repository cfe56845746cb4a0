package world

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/annel0/voxel-core/internal/logging"
)

// Metrics - метрики хранилища блоков.
//
// Метрики:
// * vcore_world_blocks_generated_total - counter
// * vcore_world_blocks_loaded_total - counter (из кэша)
// * vcore_world_meshes_published_total - counter
// * vcore_world_duplicate_publishes_total - counter
// * vcore_world_mapgen_duration_seconds - histogram
// * vcore_world_meshgen_duration_seconds - histogram
// * vcore_world_blocks - gauge
// * vcore_world_mesh_quads - gauge (граней на уровне 0)
type Metrics struct {
	BlocksGenerated    prometheus.Counter
	BlocksLoaded       prometheus.Counter
	MeshesPublished    prometheus.Counter
	DuplicatePublishes prometheus.Counter
	MapgenDuration     prometheus.Histogram
	MeshgenDuration    prometheus.Histogram
	StoreSize          prometheus.Gauge
	MeshQuads          prometheus.Gauge
}

// NewMetrics создаёт метрики без регистрации
func NewMetrics() *Metrics {
	const ns, sub = "vcore", "world"
	return &Metrics{
		BlocksGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub,
			Name: "blocks_generated_total",
			Help: "Число сгенерированных блоков.",
		}),
		BlocksLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub,
			Name: "blocks_loaded_total",
			Help: "Число блоков, прочитанных из кэша.",
		}),
		MeshesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub,
			Name: "meshes_published_total",
			Help: "Число блоков с опубликованными мешами.",
		}),
		DuplicatePublishes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub,
			Name: "duplicate_publishes_total",
			Help: "Число отброшенных повторных публикаций мешей.",
		}),
		MapgenDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns, Subsystem: sub,
			Name:    "mapgen_duration_seconds",
			Help:    "Длительность генерации одной области.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}),
		MeshgenDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns, Subsystem: sub,
			Name:    "meshgen_duration_seconds",
			Help:    "Длительность построения мешей одного блока.",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
		StoreSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: sub,
			Name: "blocks",
			Help: "Число блоков с содержимым.",
		}),
		MeshQuads: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: sub,
			Name: "mesh_quads",
			Help: "Суммарное число граней мешей уровня 0.",
		}),
	}
}

// Collectors возвращает все метрики
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.BlocksGenerated,
		m.BlocksLoaded,
		m.MeshesPublished,
		m.DuplicatePublishes,
		m.MapgenDuration,
		m.MeshgenDuration,
		m.StoreSize,
		m.MeshQuads,
	}
}

// Register регистрирует метрики в reg (nil - регистр по умолчанию)
func (m *Metrics) Register(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, collector := range m.Collectors() {
		if err := reg.Register(collector); err != nil {
			// Игнорируем ошибки дублирования метрик
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				logging.Warn("Не удалось зарегистрировать метрику: %v", err)
			}
		}
	}
}
