package world

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/annel0/voxel-core/internal/eventbus"
	"github.com/annel0/voxel-core/internal/logging"
	"github.com/annel0/voxel-core/internal/mapgen"
	"github.com/annel0/voxel-core/internal/meshgen"
	"github.com/annel0/voxel-core/internal/vec"
	"github.com/annel0/voxel-core/internal/voxel"
)

var (
	// ErrInvalidArgument - недопустимые параметры вызова
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrDuplicateBlock - блок с такой позицией уже есть в хранилище
	ErrDuplicateBlock = errors.New("duplicate block")
)

var tracer = otel.Tracer("github.com/annel0/voxel-core/internal/world")

// BlockCache - постоянный кэш сгенерированных блоков
type BlockCache interface {
	// LoadBlock возвращает блок или false, если его нет в кэше
	LoadBlock(pos vec.Vec3) (*voxel.Block, bool, error)
	SaveBlock(b *voxel.Block) error
}

// Options - настройки хранилища блоков
type Options struct {
	// Seed - сид генерации и выбора при прореживании срезов
	Seed uint64
	// SuperChunkSize - ребро области, генерируемой за один запрос, в блоках
	SuperChunkSize int
	// SuperChunkBias - сдвиг сетки областей
	SuperChunkBias int
	// MeshWorkers - сколько блоков мешируется параллельно; 1 - в вызывающей горутине
	MeshWorkers int

	Colors  *meshgen.ColorTable
	Cache   BlockCache
	Metrics *Metrics
	Logger  *logging.Logger
	// Events получает SuperChunkReady и BlockMeshed; nil - без событий
	Events eventbus.EventBus
}

// SuperChunkEvent - полезная нагрузка SuperChunkReady
type SuperChunkEvent struct {
	Base   vec.Vec3 `json:"base"`
	Blocks int      `json:"blocks"`
	Cached bool     `json:"cached"`
}

// BlockMeshedEvent - полезная нагрузка BlockMeshed
type BlockMeshedEvent struct {
	Pos   vec.Vec3                `json:"pos"`
	Quads [meshgen.LevelCount]int `json:"quads"`
}

// DefaultOptions возвращает настройки по умолчанию
func DefaultOptions() Options {
	return Options{
		Seed:           666,
		SuperChunkSize: 5,
		SuperChunkBias: 2,
		MeshWorkers:    1,
	}
}

// ClientBlockEntry - запись хранилища: содержимое блока, меши всех
// уровней и число соседей по осям, у которых уже есть содержимое
type ClientBlockEntry struct {
	Content    *voxel.Block
	Meshes     meshgen.Levels
	Neighbours int
}

// Map владеет всеми сгенерированными блоками и их мешами.
// Мьютекс держится только на время вставки, публикации и снимков;
// генерация и мешинг идут без него.
type Map struct {
	gen     *mapgen.Generator
	opts    Options
	log     *logging.Logger
	metrics *Metrics
	pool    pond.Pool

	mu   sync.Mutex
	data map[vec.Vec3]*ClientBlockEntry
	size int

	// beforePublish вызывается после построения мешей, до захвата мьютекса
	beforePublish func(pos vec.Vec3)
}

// NewMap создаёт хранилище. Генератор принадлежит вызывающему и
// должен быть безопасен для использования из нескольких горутин,
// если MeshWorkers > 1 или RequestBlock зовут параллельно.
func NewMap(gen *mapgen.Generator, opts Options) (*Map, error) {
	if gen == nil {
		return nil, fmt.Errorf("nil generator: %w", ErrInvalidArgument)
	}
	if opts.SuperChunkSize <= 0 || opts.SuperChunkBias < 0 || opts.SuperChunkBias >= opts.SuperChunkSize {
		return nil, fmt.Errorf("super-chunk size %d bias %d: %w",
			opts.SuperChunkSize, opts.SuperChunkBias, ErrInvalidArgument)
	}
	if opts.Colors == nil {
		opts.Colors = meshgen.DefaultColorTable()
	}
	if opts.Logger == nil {
		opts.Logger = logging.GetWorldLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}

	m := &Map{
		gen:     gen,
		opts:    opts,
		log:     opts.Logger,
		metrics: opts.Metrics,
		data:    make(map[vec.Vec3]*ClientBlockEntry),
	}
	if opts.MeshWorkers > 1 {
		m.pool = pond.NewPool(opts.MeshWorkers)
	}
	return m, nil
}

// Close останавливает пул мешинга
func (m *Map) Close() {
	if m.pool != nil {
		m.pool.StopAndWait()
	}
}

// RoundTo округляет value вниз до сетки с шагом step, сдвинутой на bias:
// step*floor((value+bias)/step) - bias
func RoundTo(value, step, bias int) (int, error) {
	if step <= 0 || bias < 0 || bias >= step {
		return 0, fmt.Errorf("round %d to step %d with bias %d: %w", value, step, bias, ErrInvalidArgument)
	}
	q, _ := vec.DivRem(value+bias, step)
	return step*q - bias, nil
}

// SuperChunkBase возвращает начало области генерации, содержащей блок pos
func (m *Map) SuperChunkBase(pos vec.Vec3) (vec.Vec3, error) {
	var base vec.Vec3
	var err error
	step, bias := m.opts.SuperChunkSize, m.opts.SuperChunkBias
	if base.X, err = RoundTo(pos.X, step, bias); err != nil {
		return base, err
	}
	if base.Y, err = RoundTo(pos.Y, step, bias); err != nil {
		return base, err
	}
	if base.Z, err = RoundTo(pos.Z, step, bias); err != nil {
		return base, err
	}
	return base, nil
}

// RequestBlock генерирует область, содержащую блок pos, если её ещё нет,
// и мешит её блоки вместе с соседями на один блок вокруг.
// Возвращает управление после завершения всего мешинга.
func (m *Map) RequestBlock(pos vec.Vec3) error {
	return m.RequestBlockContext(context.Background(), pos)
}

// RequestBlockContext - RequestBlock с контекстом трассировки
func (m *Map) RequestBlockContext(ctx context.Context, pos vec.Vec3) (err error) {
	base, err := m.SuperChunkBase(pos)
	if err != nil {
		return err
	}

	ctx, span := tracer.Start(ctx, "world.RequestBlock")
	span.SetAttributes(
		attribute.IntSlice("block.pos", []int{pos.X, pos.Y, pos.Z}),
		attribute.IntSlice("superchunk.base", []int{base.X, base.Y, base.Z}),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	m.mu.Lock()
	if m.hasContentLocked(pos) {
		m.mu.Unlock()
		return nil
	}
	if m.hasContentLocked(base) {
		m.mu.Unlock()
		m.log.Warn("%v не сгенерирован, но %v уже есть", pos, base)
		return nil
	}
	m.mu.Unlock()

	bmax := base.Add(vec.Splat(m.opts.SuperChunkSize - 1))

	blocks := m.loadCached(base, bmax)
	cached := blocks != nil
	span.SetAttributes(attribute.Bool("cache.hit", cached))
	if blocks == nil {
		blocks, err = m.generate(base, bmax)
		if err != nil {
			return err
		}
	}

	m.mu.Lock()
	for _, b := range blocks {
		if err := m.pushBlockLocked(b); err != nil {
			m.log.Warn("блок %v отброшен: %v", b.Pos, err)
		}
	}
	m.metrics.StoreSize.Set(float64(m.size))
	m.mu.Unlock()

	m.publish(ctx, eventbus.EventSuperChunkReady, SuperChunkEvent{Base: base, Blocks: len(blocks), Cached: cached})

	return m.meshRange(ctx, base.Sub(vec.Splat(1)), bmax.Add(vec.Splat(1)))
}

// generate запускает генератор на окне [base, bmax] и забирает из него блоки
func (m *Map) generate(base, bmax vec.Vec3) ([]*voxel.Block, error) {
	vm := voxel.NewMMVManip(base, bmax)

	start := time.Now()
	if err := m.gen.Generate(vm, base, bmax, m.opts.Seed); err != nil {
		return nil, fmt.Errorf("generate %v..%v: %w", base, bmax, err)
	}
	m.metrics.MapgenDuration.Observe(time.Since(start).Seconds())

	blocks := make([]*voxel.Block, 0, vm.Max().Sub(vm.Min()).Add(vec.Splat(1)).Volume())
	for pos := range vec.Box(base, bmax) {
		b, err := vm.TakeBlock(pos)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	m.metrics.BlocksGenerated.Add(float64(len(blocks)))

	if m.opts.Cache != nil {
		for _, b := range blocks {
			if err := m.opts.Cache.SaveBlock(b); err != nil {
				m.log.Warn("не удалось сохранить блок %v в кэш: %v", b.Pos, err)
				break
			}
		}
	}
	return blocks, nil
}

// loadCached читает область из кэша; nil, если хотя бы одного блока нет
func (m *Map) loadCached(base, bmax vec.Vec3) []*voxel.Block {
	if m.opts.Cache == nil {
		return nil
	}
	var blocks []*voxel.Block
	for pos := range vec.Box(base, bmax) {
		b, ok, err := m.opts.Cache.LoadBlock(pos)
		if err != nil {
			m.log.Warn("ошибка чтения блока %v из кэша: %v", pos, err)
			return nil
		}
		if !ok {
			return nil
		}
		blocks = append(blocks, b)
	}
	m.metrics.BlocksLoaded.Add(float64(len(blocks)))
	return blocks
}

func (m *Map) entryLocked(pos vec.Vec3) *ClientBlockEntry {
	e := m.data[pos]
	if e == nil {
		e = &ClientBlockEntry{}
		m.data[pos] = e
	}
	return e
}

func (m *Map) hasContentLocked(pos vec.Vec3) bool {
	e := m.data[pos]
	return e != nil && e.Content != nil
}

// pushBlockLocked кладёт блок в хранилище. Повторная вставка
// отбрасывается, первый записавший побеждает.
func (m *Map) pushBlockLocked(b *voxel.Block) error {
	e := m.entryLocked(b.Pos)
	if e.Content != nil {
		return fmt.Errorf("block %v: %w", b.Pos, ErrDuplicateBlock)
	}
	e.Content = b
	m.size++
	for _, dir := range vec.Neighbours6 {
		m.entryLocked(b.Pos.Add(dir)).Neighbours++
	}
	return nil
}

func (m *Map) resolveLocked(pos vec.Vec3) (*voxel.Block, bool) {
	e := m.data[pos]
	if e == nil || e.Content == nil {
		return nil, false
	}
	return e.Content, true
}

// meshRange мешит все блоки [lo, hi], при наличии пула параллельно
func (m *Map) meshRange(ctx context.Context, lo, hi vec.Vec3) error {
	if m.pool == nil {
		var errs []error
		for pos := range vec.Box(lo, hi) {
			if err := m.generateMesh(ctx, pos); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	var (
		wg    sync.WaitGroup
		errMu sync.Mutex
		errs  []error
	)
	for pos := range vec.Box(lo, hi) {
		wg.Add(1)
		m.pool.Submit(func() {
			defer wg.Done()
			if err := m.generateMesh(ctx, pos); err != nil {
				errMu.Lock()
				errs = append(errs, err)
				errMu.Unlock()
			}
		})
	}
	wg.Wait()
	return errors.Join(errs...)
}

// GenerateMesh строит меши блока pos, если у него и всех шести соседей
// есть содержимое. Иначе ничего не делает: блок будет замешен, когда
// придёт недостающий сосед.
func (m *Map) GenerateMesh(pos vec.Vec3) error {
	return m.generateMesh(context.Background(), pos)
}

func (m *Map) generateMesh(ctx context.Context, pos vec.Vec3) error {
	m.mu.Lock()
	e := m.data[pos]
	if e == nil || e.Content == nil || e.Neighbours < len(vec.Neighbours6) || e.Meshes[0] != nil {
		m.mu.Unlock()
		return nil
	}
	vm := voxel.NewVManip(pos.Sub(vec.Splat(1)), pos.Add(vec.Splat(1)), m.resolveLocked)
	m.mu.Unlock()

	ctx, span := tracer.Start(ctx, "world.GenerateMesh")
	defer span.End()
	span.SetAttributes(attribute.IntSlice("block.pos", []int{pos.X, pos.Y, pos.Z}))

	start := time.Now()
	levels, err := meshgen.BuildLODs(vm, pos, meshgen.NewRand(m.opts.Seed, pos), m.opts.Colors)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("mesh block %v: %w", pos, err)
	}
	m.metrics.MeshgenDuration.Observe(time.Since(start).Seconds())

	if levels[0].Empty() {
		return nil
	}
	if m.beforePublish != nil {
		m.beforePublish(pos)
	}

	m.mu.Lock()
	if e.Meshes[0] != nil {
		m.mu.Unlock()
		m.metrics.DuplicatePublishes.Inc()
		m.log.Warn("меш блока %v уже есть, новый отброшен", pos)
		return nil
	}
	e.Meshes = levels
	m.mu.Unlock()

	m.metrics.MeshesPublished.Inc()
	m.metrics.MeshQuads.Add(float64(levels[0].QuadCount()))

	ev := BlockMeshedEvent{Pos: pos}
	for lv, msh := range levels {
		ev.Quads[lv] = msh.QuadCount()
	}
	m.publish(ctx, eventbus.EventBlockMeshed, ev)
	return nil
}

// publish отправляет событие в шину. Ошибки шины не прерывают генерацию.
func (m *Map) publish(ctx context.Context, eventType string, payload any) {
	if m.opts.Events == nil {
		return
	}
	ev, err := eventbus.NewEnvelope("vcore", eventType, 1, payload)
	if err == nil {
		err = m.opts.Events.Publish(ctx, ev)
	}
	if err != nil {
		m.log.Warn("Событие %s не отправлено: %v", eventType, err)
	}
}

// Size возвращает число блоков с содержимым
func (m *Map) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.size
}

// Block возвращает опубликованное содержимое блока. Содержимое
// неизменяемо, читать его можно без блокировок.
func (m *Map) Block(pos vec.Vec3) (*voxel.Block, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolveLocked(pos)
}

// MeshLevels возвращает копию массива мешей блока
func (m *Map) MeshLevels(pos vec.Vec3) (meshgen.Levels, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.data[pos]
	if e == nil || e.Meshes[0] == nil {
		return meshgen.Levels{}, false
	}
	return e.Meshes, true
}

// Neighbours возвращает счётчик соседей блока с содержимым
func (m *Map) Neighbours(pos vec.Vec3) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e := m.data[pos]; e != nil {
		return e.Neighbours
	}
	return 0
}
