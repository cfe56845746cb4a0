package observability

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v3/process"
)

// ProcessStats - снимок потребления ресурсов процессом
type ProcessStats struct {
	Uptime     time.Duration `json:"uptime"`
	RSSMB      float64       `json:"rss_mb"`
	HeapMB     float64       `json:"heap_mb"`
	CPUPercent float64       `json:"cpu_percent"`
	Goroutines int           `json:"goroutines"`
	NumGC      uint32        `json:"num_gc"`
}

// ProcessMetrics собирает статистику процесса через gopsutil и
// отдаёт её в prometheus-гейджи
type ProcessMetrics struct {
	StartTime time.Time
	proc      *process.Process

	rss        prometheus.Gauge
	cpu        prometheus.Gauge
	goroutines prometheus.Gauge
}

// NewProcessMetrics создаёт метрики текущего процесса
func NewProcessMetrics(namespace string) (*ProcessMetrics, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("process handle: %w", err)
	}
	return &ProcessMetrics{
		StartTime: time.Now(),
		proc:      proc,
		rss: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "process",
			Name: "rss_megabytes",
			Help: "Резидентная память процесса.",
		}),
		cpu: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "process",
			Name: "cpu_percent",
			Help: "Загрузка CPU процессом.",
		}),
		goroutines: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "process",
			Name: "goroutines",
			Help: "Число горутин.",
		}),
	}, nil
}

// Collectors возвращает гейджи процесса
func (pm *ProcessMetrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{pm.rss, pm.cpu, pm.goroutines}
}

// Sample снимает статистику и обновляет гейджи
func (pm *ProcessMetrics) Sample() (ProcessStats, error) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	stats := ProcessStats{
		Uptime:     time.Since(pm.StartTime),
		HeapMB:     float64(m.HeapAlloc) / 1024 / 1024,
		Goroutines: runtime.NumGoroutine(),
		NumGC:      m.NumGC,
	}

	mem, err := pm.proc.MemoryInfo()
	if err != nil {
		return stats, fmt.Errorf("memory info: %w", err)
	}
	stats.RSSMB = float64(mem.RSS) / 1024 / 1024

	// Процент CPU за всё время жизни процесса
	stats.CPUPercent, err = pm.proc.CPUPercent()
	if err != nil {
		return stats, fmt.Errorf("cpu percent: %w", err)
	}

	pm.rss.Set(stats.RSSMB)
	pm.cpu.Set(stats.CPUPercent)
	pm.goroutines.Set(float64(stats.Goroutines))
	return stats, nil
}

// FormatUptime печатает длительность в виде «1д 2ч 3м 4с»
func FormatUptime(uptime time.Duration) string {
	days := int(uptime.Hours()) / 24
	hours := int(uptime.Hours()) % 24
	minutes := int(uptime.Minutes()) % 60
	seconds := int(uptime.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dд %dч %dм %dс", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dч %dм %dс", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dм %dс", minutes, seconds)
	default:
		return fmt.Sprintf("%dс", seconds)
	}
}
