package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/annel0/voxel-core/internal/logging"
	"github.com/annel0/voxel-core/internal/mapgen"
	"github.com/annel0/voxel-core/internal/meshgen"
	"github.com/annel0/voxel-core/internal/middleware"
	"github.com/annel0/voxel-core/internal/observability"
	"github.com/annel0/voxel-core/internal/vec"
	"github.com/annel0/voxel-core/internal/voxel"
	"github.com/annel0/voxel-core/internal/world"
)

// RestServer - HTTP-сервер состояния: health, статистика хранилища,
// сведения о блоке и /metrics
type RestServer struct {
	router  *gin.Engine
	addr    string
	m       *world.Map
	gen     *mapgen.Generator
	worker  *world.Worker
	process *observability.ProcessMetrics
	worldID string
	log     *logging.Logger
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Addr     string                        // адрес для запуска сервера
	Map      *world.Map                    // хранилище блоков
	Gen      *mapgen.Generator             // генератор для сведений о колонке, может быть nil
	Worker   *world.Worker                 // воркер генерации, может быть nil
	Process  *observability.ProcessMetrics // статистика процесса, может быть nil
	WorldID  string                        // идентификатор мира из кэша
	Registry *prometheus.Registry          // регистр для /metrics; nil - дефолтный
}

// GenericResponse - общий формат ответа
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// StatusResponse - ответ /api/status
type StatusResponse struct {
	WorldID string                      `json:"world_id,omitempty"`
	Blocks  int                         `json:"blocks"`
	Shell   int                         `json:"shell"`
	Uptime  string                      `json:"uptime,omitempty"`
	Process *observability.ProcessStats `json:"process,omitempty"`
}

// BlockResponse - ответ /api/blocks/:x/:y/:z
type BlockResponse struct {
	Pos        vec.Vec3 `json:"pos"`
	Generated  bool     `json:"generated"`
	Neighbours int      `json:"neighbours"`
	Meshed     bool     `json:"meshed"`
	// Quads - число граней на каждом уровне детализации
	Quads []int `json:"quads,omitempty"`
	// Materials - грани уровня 0 по материалам
	Materials map[voxel.Content]int `json:"materials,omitempty"`
	// Bounds - углы ограничивающего параллелепипеда уровня 0
	Bounds []mgl32.Vec3   `json:"bounds,omitempty"`
	Column *mapgen.Column `json:"column,omitempty"`
}

// NewRestServer создает новый REST сервер
func NewRestServer(config Config) *RestServer {
	if config.Addr == "" {
		config.Addr = ":2112"
	}

	// Устанавливаем режим релиза для gin
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	log := logging.GetComponentLogger("http")
	router.Use(middleware.NewRequestLogger(log).Handler())
	router.Use(otelgin.Middleware("vcore"))

	promMw := middleware.NewPrometheusMiddleware("vcore", config.Registry)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router)

	rs := &RestServer{
		router:  router,
		addr:    config.Addr,
		m:       config.Map,
		gen:     config.Gen,
		worker:  config.Worker,
		process: config.Process,
		worldID: config.WorldID,
		log:     log,
	}
	rs.setupRoutes()
	return rs
}

func (rs *RestServer) setupRoutes() {
	rs.router.GET("/health", rs.handleHealth)

	api := rs.router.Group("/api")
	{
		api.GET("/status", rs.handleStatus)
		api.GET("/blocks/:x/:y/:z", rs.handleBlock)
	}
}

// Handler возвращает http.Handler сервера
func (rs *RestServer) Handler() http.Handler {
	return rs.router
}

func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

func (rs *RestServer) handleStatus(c *gin.Context) {
	resp := StatusResponse{
		WorldID: rs.worldID,
		Blocks:  rs.m.Size(),
		Shell:   -1,
	}
	if rs.worker != nil {
		resp.Shell = rs.worker.Shell()
	}
	if rs.process != nil {
		stats, err := rs.process.Sample()
		if err != nil {
			rs.log.Warn("Не удалось снять статистику процесса: %v", err)
		}
		resp.Process = &stats
		resp.Uptime = observability.FormatUptime(stats.Uptime)
	}

	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "ok", Data: resp})
}

func (rs *RestServer) handleBlock(c *gin.Context) {
	var pos vec.Vec3
	for _, p := range []struct {
		name string
		dst  *int
	}{{"x", &pos.X}, {"y", &pos.Y}, {"z", &pos.Z}} {
		v, err := strconv.Atoi(c.Param(p.name))
		if err != nil {
			c.JSON(http.StatusBadRequest, GenericResponse{
				Success: false,
				Message: "Неверная координата " + p.name + ": " + err.Error(),
			})
			return
		}
		*p.dst = v
	}

	_, generated := rs.m.Block(pos)
	resp := BlockResponse{
		Pos:        pos,
		Generated:  generated,
		Neighbours: rs.m.Neighbours(pos),
	}
	if levels, ok := rs.m.MeshLevels(pos); ok {
		resp.Meshed = true
		resp.Quads = make([]int, meshgen.LevelCount)
		for lv, msh := range levels {
			resp.Quads[lv] = msh.QuadCount()
		}
		resp.Materials = levels[0].Materials()
		lo, hi := levels[0].Bounds()
		resp.Bounds = []mgl32.Vec3{lo, hi}
	}
	if rs.gen != nil {
		col := rs.gen.ColumnAt(pos.Mul(voxel.BlockSize).ToVec2())
		resp.Column = &col
	}

	status := http.StatusOK
	if !generated {
		status = http.StatusNotFound
	}
	c.JSON(status, GenericResponse{Success: generated, Message: "ok", Data: resp})
}

// Start запускает сервер и блокируется до отмены ctx, после чего
// корректно его останавливает
func (rs *RestServer) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              rs.addr,
		Handler:           rs.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		rs.log.Info("HTTP сервер слушает %s", rs.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
