package world

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/vec"
)

// PositionProvider – источник позиции, вокруг которой стримятся чанки
type PositionProvider interface {
	Position() mgl64.Vec3
}

// ChunkState – состояние слота чанка в мире
type ChunkState uint8

const (
	// ChunkAbsent – чанка нет в карте загруженных
	ChunkAbsent ChunkState = iota
	// ChunkLoading – чанк добавлен, генерация ещё не выполнена
	ChunkLoading
	// ChunkReady – чанк сгенерирован и отвечает на запросы
	ChunkReady
)

// String возвращает строковое представление состояния
func (s ChunkState) String() string {
	switch s {
	case ChunkAbsent:
		return "absent"
	case ChunkLoading:
		return "loading"
	case ChunkReady:
		return "ready"
	default:
		return "unknown"
	}
}

// ChunkCoords – результат перевода мировых координат
type ChunkCoords struct {
	Chunk vec.Vec2 // Координаты чанка
	Block vec.Vec3 // Локальные координаты блока внутри чанка
}

// World владеет набором загруженных чанков и стримит их вокруг игрока.
// Мир не потокобезопасен: все вызовы выполняются из цикла кадров.
type World struct {
	id      uuid.UUID
	params  Params
	chunks  map[vec.Vec2]*Chunk
	loader  *loader
	metrics *Metrics
	logger  *logging.Logger
}

// Option настраивает мир при создании
type Option func(*World)

// WithMetrics подключает метрики стриминга
func WithMetrics(m *Metrics) Option {
	return func(w *World) {
		w.metrics = m
	}
}

// WithRateLimit ограничивает число отложенных генераций в секунду
func WithRateLimit(perSecond float64, burst int) Option {
	return func(w *World) {
		if perSecond <= 0 {
			return
		}
		if burst < 1 {
			burst = 1
		}
		w.loader.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithLogger задаёт логгер мира
func WithLogger(l *logging.Logger) Option {
	return func(w *World) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWorld создаёт пустой мир с указанными параметрами
func NewWorld(params Params, opts ...Option) (*World, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	w := &World{
		id:     uuid.New(),
		params: params,
		chunks: make(map[vec.Vec2]*Chunk),
		loader: newLoader(nil),
		logger: logging.GetWorldLogger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.metrics == nil {
		w.metrics = NewMetrics(nil)
	}

	w.logger.Info("Мир %s создан: seed=%d, чанк %dx%d, дальность %d, async=%v",
		w.id, params.Seed, params.ChunkSize.Width, params.ChunkSize.Height,
		params.DrawDistance, params.AsyncLoading)
	return w, nil
}

// ID возвращает идентификатор экземпляра мира
func (w *World) ID() string {
	return w.id.String()
}

// Params возвращает параметры мира
func (w *World) Params() Params {
	return w.params
}

// WorldToChunkCoords переводит мировые координаты блока в координаты чанка
// и локальные координаты внутри него. Y передаётся без изменений.
func (w *World) WorldToChunkCoords(x, y, z int) ChunkCoords {
	column := vec.Vec2{X: x, Z: z}
	local := column.LocalInChunk(w.params.ChunkSize.Width)
	return ChunkCoords{
		Chunk: column.ToChunkCoords(w.params.ChunkSize.Width),
		Block: vec.Vec3{X: local.X, Y: y, Z: local.Z},
	}
}

// chunkAt возвращает координаты чанка, содержащего мировую точку
func (w *World) chunkAt(pos mgl64.Vec3) vec.Vec2 {
	return vec.FloorVec3(pos).Column().ToChunkCoords(w.params.ChunkSize.Width)
}

// VisibleChunks возвращает квадрат чанков радиуса DrawDistance
// (по Чебышёву) вокруг чанка, содержащего pos.
func (w *World) VisibleChunks(pos mgl64.Vec3) []vec.Vec2 {
	center := w.chunkAt(pos)
	d := w.params.DrawDistance

	visible := make([]vec.Vec2, 0, (2*d+1)*(2*d+1))
	for x := center.X - d; x <= center.X+d; x++ {
		for z := center.Z - d; z <= center.Z+d; z++ {
			visible = append(visible, vec.Vec2{X: x, Z: z})
		}
	}
	return visible
}

// Update приводит набор загруженных чанков к видимому набору вокруг p.
// Возвращает число добавленных и выгруженных чанков.
func (w *World) Update(ctx context.Context, p PositionProvider) (added, removed int) {
	visible := w.VisibleChunks(p.Position())

	wanted := make(map[vec.Vec2]struct{}, len(visible))
	for _, coords := range visible {
		wanted[coords] = struct{}{}
	}

	for coords := range w.chunks {
		if _, ok := wanted[coords]; !ok {
			w.removeChunk(coords)
			removed++
		}
	}

	for _, coords := range visible {
		if _, ok := w.chunks[coords]; ok {
			continue
		}
		w.addChunk(ctx, coords)
		added++
	}

	w.metrics.active.Set(float64(len(w.chunks)))
	w.metrics.pending.Set(float64(w.loader.pending()))
	return added, removed
}

// addChunk создаёт чанк и генерирует его сразу либо ставит в очередь
func (w *World) addChunk(ctx context.Context, coords vec.Vec2) {
	c := NewChunk(coords, w.params)
	w.chunks[coords] = c
	w.logger.Debug("Добавлен чанк %d,%d", coords.X, coords.Z)

	if w.params.AsyncLoading {
		w.loader.enqueue(c)
		return
	}
	w.generateChunk(ctx, c)
}

// removeChunk освобождает инстансы чанка и убирает его из карты.
// Ожидающая генерация отменяется.
func (w *World) removeChunk(coords vec.Vec2) {
	c, ok := w.chunks[coords]
	if !ok {
		return
	}
	if w.loader.cancel(coords) {
		w.metrics.chunksCancelled.Inc()
		w.logger.Debug("Отменена генерация чанка %d,%d", coords.X, coords.Z)
	}
	c.DisposeInstances()
	delete(w.chunks, coords)
	w.metrics.chunksUnloaded.Inc()
	w.logger.Debug("Удалён чанк %d,%d", coords.X, coords.Z)
}

// generateChunk выполняет генерацию и записывает метрики
func (w *World) generateChunk(ctx context.Context, c *Chunk) {
	elapsed := c.Generate(ctx)
	w.metrics.chunksLoaded.Inc()
	w.metrics.generation.Observe(elapsed.Seconds())
	w.logger.Debug("Загружен чанк %d,%d за %.2fms", c.coords.X, c.coords.Z,
		float64(elapsed.Microseconds())/1000)
}

// ProcessPending выполняет отложенные генерации в пределах бюджета времени.
// budget <= 0 – разобрать всю очередь. Возвращает число сгенерированных чанков.
func (w *World) ProcessPending(ctx context.Context, budget time.Duration) int {
	n := w.loader.drain(ctx, budget, func(c *Chunk) {
		w.generateChunk(ctx, c)
	})
	w.metrics.pending.Set(float64(w.loader.pending()))
	return n
}

// PendingCount возвращает число ожидающих генерации чанков
func (w *World) PendingCount() int {
	return w.loader.pending()
}

// GetBlock возвращает блок по мировым координатам.
// Отсутствующий или ещё не сгенерированный чанк даёт NotLoaded,
// координата вне вертикальных границ – OutOfBounds.
func (w *World) GetBlock(x, y, z int) Lookup {
	coords := w.WorldToChunkCoords(x, y, z)

	c, ok := w.chunks[coords.Chunk]
	if !ok || !c.Loaded() {
		return Lookup{State: NotLoaded}
	}

	b, ok := c.GetBlock(coords.Block.X, coords.Block.Y, coords.Block.Z)
	if !ok {
		return Lookup{State: OutOfBounds}
	}
	return Lookup{State: Present, Block: b}
}

// ChunkState возвращает состояние слота чанка
func (w *World) ChunkState(coords vec.Vec2) ChunkState {
	c, ok := w.chunks[coords]
	switch {
	case !ok:
		return ChunkAbsent
	case !c.Loaded():
		return ChunkLoading
	default:
		return ChunkReady
	}
}

// Chunk возвращает чанк по координатам
func (w *World) Chunk(cx, cz int) (*Chunk, bool) {
	c, ok := w.chunks[vec.Vec2{X: cx, Z: cz}]
	return c, ok
}

// LoadedChunks возвращает координаты всех чанков в карте (включая
// генерирующиеся) в детерминированном порядке.
func (w *World) LoadedChunks() []vec.Vec2 {
	coords := make([]vec.Vec2, 0, len(w.chunks))
	for c := range w.chunks {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool {
		return coords[i].Less(coords[j])
	})
	return coords
}

// DisposeChunks выгружает все чанки и отменяет очередь генерации
func (w *World) DisposeChunks() {
	for coords := range w.chunks {
		w.removeChunk(coords)
	}
	w.loader.clear()
	w.metrics.active.Set(0)
	w.metrics.pending.Set(0)
}

// Generate заново синхронно генерирует окрестность начала координат
func (w *World) Generate(ctx context.Context) {
	start := time.Now()
	w.DisposeChunks()

	for _, coords := range w.VisibleChunks(mgl64.Vec3{}) {
		c := NewChunk(coords, w.params)
		w.chunks[coords] = c
		w.generateChunk(ctx, c)
	}

	w.metrics.active.Set(float64(len(w.chunks)))
	w.logger.Info("Мир сгенерирован: %d чанков за %v", len(w.chunks), time.Since(start))
}

// Regenerate применяет новые параметры и выгружает все чанки.
// Новые чанки появятся при следующем Update.
func (w *World) Regenerate(params Params) error {
	if err := params.Validate(); err != nil {
		return fmt.Errorf("regenerate: %w", err)
	}
	w.DisposeChunks()
	w.params = params
	w.logger.Info("Параметры мира обновлены: seed=%d", params.Seed)
	return nil
}
