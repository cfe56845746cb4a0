package eventbus

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsExporter периодически переносит Stats шины в Prometheus.
// Экспортер опирается только на интерфейс EventBus.
type MetricsExporter struct {
	bus  EventBus
	prev Stats

	published prometheus.Counter
	consumed  prometheus.Counter
	dropped   prometheus.Counter
	inflight  prometheus.Gauge
}

// NewMetricsExporter создаёт экспортер и регистрирует метрики в reg
func NewMetricsExporter(bus EventBus, reg prometheus.Registerer) *MetricsExporter {
	me := &MetricsExporter{
		bus: bus,
		published: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vcore", Subsystem: "eventbus",
			Name: "messages_published_total",
			Help: "Общее число опубликованных сообщений.",
		}),
		consumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vcore", Subsystem: "eventbus",
			Name: "messages_consumed_total",
			Help: "Общее число доставленных сообщений подписчикам.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vcore", Subsystem: "eventbus",
			Name: "messages_dropped_total",
			Help: "Сообщений, отброшенных из-за ошибок или ограничения back-pressure.",
		}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vcore", Subsystem: "eventbus",
			Name: "messages_inflight",
			Help: "Количество сообщений в очереди.",
		}),
	}
	reg.MustRegister(me.published, me.consumed, me.dropped, me.inflight)
	return me
}

// Update переносит приращения счётчиков шины в метрики
func (me *MetricsExporter) Update() {
	stats := me.bus.Metrics()

	// Counter только растёт, поэтому прибавляем дельту
	if d := stats.Published - me.prev.Published; d > 0 {
		me.published.Add(float64(d))
	}
	if d := stats.Consumed - me.prev.Consumed; d > 0 {
		me.consumed.Add(float64(d))
	}
	if d := stats.Dropped - me.prev.Dropped; d > 0 {
		me.dropped.Add(float64(d))
	}
	me.inflight.Set(float64(stats.InFlight))
	me.prev = stats
}

// Run обновляет метрики раз в interval до отмены ctx
func (me *MetricsExporter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			me.Update()
		case <-ctx.Done():
			me.Update()
			return
		}
	}
}
