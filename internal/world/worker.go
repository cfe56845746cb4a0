package world

import (
	"context"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/annel0/voxel-core/internal/logging"
	"github.com/annel0/voxel-core/internal/vec"
)

// ShellStats - итог обхода одной оболочки
type ShellStats struct {
	Shell    int
	Requests int
	Blocks   int
	Elapsed  time.Duration
}

// Worker обходит блоки оболочками i+j+k = s, s = 0..MaxShell, и
// запрашивает каждый. Остановка проверяется только между запросами:
// начатый запрос всегда доходит до конца.
type Worker struct {
	m        *Map
	maxShell int
	log      *logging.Logger
	stop     atomic.Bool
	shell    atomic.Int64

	// OnShell, если задан, вызывается после каждой оболочки
	OnShell func(ShellStats)
}

// NewWorker создаёт воркер генерации
func NewWorker(m *Map, maxShell int) *Worker {
	w := &Worker{
		m:        m,
		maxShell: maxShell,
		log:      logging.GetWorkerLogger(),
	}
	w.shell.Store(-1)
	return w
}

// Stop просит воркер остановиться после текущего запроса
func (w *Worker) Stop() {
	w.stop.Store(true)
}

// Stopped сообщает, запрошена ли остановка
func (w *Worker) Stopped() bool {
	return w.stop.Load()
}

// Shell возвращает номер последней полностью обойдённой оболочки или -1
func (w *Worker) Shell() int {
	return int(w.shell.Load())
}

// Run обходит оболочки до MaxShell, до Stop или до отмены ctx.
// Ошибка запроса прерывает обход.
func (w *Worker) Run(ctx context.Context) error {
	for s := 0; s <= w.maxShell; s++ {
		if err := w.runShell(ctx, s); err != nil || w.Stopped() {
			return err
		}
	}
	return nil
}

func (w *Worker) runShell(ctx context.Context, s int) error {
	ctx, span := tracer.Start(ctx, "world.Shell")
	span.SetAttributes(attribute.Int("shell", s))
	defer span.End()

	start := time.Now()
	requests := 0
	for i := 0; i <= s; i++ {
		for j := 0; j <= s-i; j++ {
			if ctx.Err() != nil {
				w.Stop()
			}
			if w.stop.Load() {
				w.log.Info("Воркер остановлен на оболочке %d", s)
				return nil
			}
			if err := w.m.RequestBlockContext(ctx, vec.Vec3{X: i, Y: j, Z: s - i - j}); err != nil {
				return err
			}
			requests++
		}
	}

	stats := ShellStats{Shell: s, Requests: requests, Blocks: w.m.Size(), Elapsed: time.Since(start)}
	w.shell.Store(int64(s))
	w.log.Info("Оболочка %d готова за %v: запросов %d, блоков %d",
		s, stats.Elapsed.Round(time.Millisecond), stats.Requests, stats.Blocks)
	if w.OnShell != nil {
		w.OnShell(stats)
	}
	return nil
}
