package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/annel0/voxel-core/internal/api"
	"github.com/annel0/voxel-core/internal/config"
	"github.com/annel0/voxel-core/internal/eventbus"
	"github.com/annel0/voxel-core/internal/logging"
	"github.com/annel0/voxel-core/internal/observability"
	"github.com/annel0/voxel-core/internal/storage"
	"github.com/annel0/voxel-core/internal/world"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации (по умолчанию VCORE_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	lopts, err := cfg.LoggingOptions()
	if err != nil {
		log.Fatalf("Ошибка настройки логирования: %v", err)
	}
	if err := logging.InitLogger(lopts); err != nil {
		log.Fatalf("Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseLogger()

	if err := run(cfg); err != nil {
		logging.Error("Завершение с ошибкой: %v", err)
		logging.CloseLogger()
		os.Exit(1)
	}
	logging.Info("Остановлено")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		shutdown, err := observability.InitTelemetry(ctx, "vcore", cfg.Tracing.Endpoint)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logging.Warn("Ошибка остановки трассировки: %v", err)
			}
		}()
	}

	gen, err := cfg.Generator()
	if err != nil {
		return err
	}

	opts := cfg.MapOptions()
	opts.Metrics = world.NewMetrics()
	opts.Metrics.Register(prometheus.DefaultRegisterer)

	var worldID string
	if cfg.Storage.Enabled {
		ws, err := storage.Open(cfg.Storage.Path)
		if err != nil {
			return err
		}
		defer ws.Close()
		if err := ws.CheckSeed(opts.Seed); err != nil {
			return err
		}
		opts.Cache = ws
		worldID = ws.WorldID().String()

		if cfg.Storage.Redis.Addr != "" {
			rcfg := cfg.Storage.Redis
			if rcfg.Prefix == "" {
				rcfg.Prefix = "vcore:" + worldID
			}
			rc, err := storage.NewRedisCache(rcfg, ws)
			if err != nil {
				return err
			}
			defer rc.Close()
			opts.Cache = rc
		}
	}

	bus, err := cfg.EventBus()
	if err != nil {
		return err
	}
	if bus != nil {
		defer bus.Close()
		if _, err := eventbus.StartLoggingListener(ctx, bus); err != nil {
			return err
		}
		opts.Events = bus
	}

	m, err := world.NewMap(gen, opts)
	if err != nil {
		return err
	}
	defer m.Close()

	spawn := gen.SpawnLevelAt(0, 0)
	logging.Info("Генератор %s, сид %d, высота появления в (0, 0): %d", gen.Kind(), opts.Seed, spawn)

	proc, err := observability.NewProcessMetrics("vcore")
	if err != nil {
		logging.Warn("Статистика процесса недоступна: %v", err)
		proc = nil
	} else {
		for _, c := range proc.Collectors() {
			prometheus.DefaultRegisterer.MustRegister(c)
		}
	}

	worker := world.NewWorker(m, cfg.Worker.MaxShell)
	server := api.NewRestServer(api.Config{
		Addr:    cfg.GetMetricsAddr(),
		Map:     m,
		Gen:     gen,
		Worker:  worker,
		Process: proc,
		WorldID: worldID,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(ctx)
	})
	g.Go(func() error {
		if err := worker.Run(ctx); err != nil {
			return err
		}
		logging.Info("Генерация завершена: оболочка %d, блоков %d", worker.Shell(), m.Size())
		return nil
	})
	g.Go(func() error {
		eye := mgl32.Vec3{0, 0, float32(spawn)}
		consume(ctx, m, eye, cfg.Map.LODReference, cfg.Worker.PollInterval)
		return nil
	})
	if bus != nil {
		exporter := eventbus.NewMetricsExporter(bus, prometheus.DefaultRegisterer)
		g.Go(func() error {
			exporter.Run(ctx, time.Second)
			return nil
		})
	}
	if proc != nil {
		g.Go(func() error {
			reportStats(ctx, proc, m, cfg.Metrics.StatsInterval)
			return nil
		})
	}
	return g.Wait()
}

// consume периодически забирает снимок мешей, не дожидаясь мьютекса
// хранилища, как это делал бы цикл отрисовки
func consume(ctx context.Context, m *world.Map, eye mgl32.Vec3, ref float64, interval time.Duration) {
	lg := logging.GetComponentLogger("consumer")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var (
		refs            []world.MeshRef
		frames, skipped int
		lastQuads       int
	)
	for {
		select {
		case <-ctx.Done():
			lg.Info("Кадров %d, пропущено %d", frames, skipped)
			return
		case <-ticker.C:
		}

		var ok bool
		refs, ok = m.TryGetMeshes(refs, eye, ref)
		if !ok {
			skipped++
			continue
		}
		frames++

		quads := 0
		for _, r := range refs {
			quads += r.Mesh.QuadCount()
		}
		if quads != lastQuads {
			lg.Debug("Кадр %d: мешей %d, граней %d", frames, len(refs), quads)
			lastQuads = quads
		}
	}
}

func reportStats(ctx context.Context, proc *observability.ProcessMetrics, m *world.Map, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		stats, err := proc.Sample()
		if err != nil {
			logging.Warn("Не удалось снять статистику процесса: %v", err)
			continue
		}
		logging.Info("Аптайм %s, RSS %.1f МБ, CPU %.1f%%, горутин %d, блоков %d",
			observability.FormatUptime(stats.Uptime), stats.RSSMB, stats.CPUPercent, stats.Goroutines, m.Size())
	}
}
