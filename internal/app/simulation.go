package app

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/annel0/voxel-world/internal/config"
	"github.com/annel0/voxel-world/internal/entity"
	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/physics"
	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world"
)

// Status – снимок состояния симуляции для API
type Status struct {
	WorldID       string     `json:"world_id"`
	Seed          uint32     `json:"seed"`
	Frame         uint64     `json:"frame"`
	Steps         uint64     `json:"steps"`
	Position      mgl64.Vec3 `json:"position"`
	Velocity      mgl64.Vec3 `json:"velocity"` // В мировой системе
	OnGround      bool       `json:"on_ground"`
	Yaw           float64    `json:"yaw"`
	Pitch         float64    `json:"pitch"`
	Chunk         vec.Vec2   `json:"chunk"`
	LoadedChunks  int        `json:"loaded_chunks"`
	PendingChunks int        `json:"pending_chunks"`
}

// ChunkInfo – описание чанка для API
type ChunkInfo struct {
	X         int    `json:"x"`
	Z         int    `json:"z"`
	State     string `json:"state"`
	Instances int    `json:"instances"`
	Digest    string `json:"digest,omitempty"`
}

// Simulation связывает мир, физику и игрока в один цикл кадров.
// Все изменения происходят под мьютексом, поэтому HTTP обработчики
// могут читать состояние из других горутин.
type Simulation struct {
	mu sync.RWMutex

	world  *world.World
	engine *physics.Engine
	player *entity.Player

	budget time.Duration // Время на отложенную генерацию за кадр, 0 – без ограничения
	frame  uint64
	steps  uint64

	logger *logging.Logger
}

// New создаёт симуляцию из готовых компонентов
func New(w *world.World, e *physics.Engine, p *entity.Player, budget time.Duration) *Simulation {
	return &Simulation{
		world:  w,
		engine: e,
		player: p,
		budget: budget,
		logger: logging.GetComponentLogger("simulation"),
	}
}

// NewFromConfig собирает симуляцию по конфигурации.
// Метрики регистрируются в reg, если он не nil.
func NewFromConfig(cfg *config.Config, reg prometheus.Registerer) (*Simulation, error) {
	w, err := world.NewWorld(cfg.World.Params,
		world.WithMetrics(world.NewMetrics(reg)),
		world.WithRateLimit(cfg.World.MaxGenerationsPerSecond, cfg.World.GenerationBurst),
	)
	if err != nil {
		return nil, fmt.Errorf("создание мира: %w", err)
	}

	e, err := physics.NewEngine(cfg.Physics, physics.WithMetrics(physics.NewMetrics(reg)))
	if err != nil {
		return nil, fmt.Errorf("создание физики: %w", err)
	}

	return New(w, e, entity.NewPlayer(cfg.Player), cfg.World.GenerationBudget()), nil
}

// Frame продвигает симуляцию на dt секунд: физика, затем стриминг чанков,
// затем отложенная генерация. Возвращает число шагов физики.
func (s *Simulation) Frame(ctx context.Context, dt float64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	steps := s.engine.Update(dt, s.player, s.world)
	s.world.Update(ctx, s.player)
	s.world.ProcessPending(ctx, s.budget)

	s.frame++
	s.steps += uint64(steps)
	return steps
}

// Run крутит цикл кадров с частотой frameRate до отмены ctx
func (s *Simulation) Run(ctx context.Context, frameRate float64) error {
	if frameRate <= 0 {
		return fmt.Errorf("частота кадров должна быть положительной, получено %v", frameRate)
	}

	ticker := time.NewTicker(time.Duration(float64(time.Second) / frameRate))
	defer ticker.Stop()

	s.logger.Info("Цикл симуляции запущен: %.0f кадров/с", frameRate)

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Цикл симуляции остановлен на кадре %d", s.FrameCount())
			return nil
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			s.Frame(ctx, dt)
		}
	}
}

// FrameCount возвращает число выполненных кадров
func (s *Simulation) FrameCount() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame
}

// Status возвращает снимок состояния
func (s *Simulation) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos := s.player.Position()
	params := s.world.Params()
	return Status{
		WorldID:       s.world.ID(),
		Seed:          params.Seed,
		Frame:         s.frame,
		Steps:         s.steps,
		Position:      pos,
		Velocity:      s.player.WorldVelocity(),
		OnGround:      s.player.OnGround(),
		Yaw:           s.player.Yaw(),
		Pitch:         s.player.Pitch(),
		Chunk:         vec.FloorVec3(pos).Column().ToChunkCoords(params.ChunkSize.Width),
		LoadedChunks:  len(s.world.LoadedChunks()),
		PendingChunks: s.world.PendingCount(),
	}
}

// Chunks возвращает описание всех чанков в карте мира
func (s *Simulation) Chunks() []ChunkInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	coords := s.world.LoadedChunks()
	infos := make([]ChunkInfo, 0, len(coords))
	for _, cc := range coords {
		info := ChunkInfo{X: cc.X, Z: cc.Z, State: s.world.ChunkState(cc).String()}
		if c, ok := s.world.Chunk(cc.X, cc.Z); ok && c.Loaded() {
			info.Instances = c.InstanceCount()
			info.Digest = strconv.FormatUint(c.Digest(), 16)
		}
		infos = append(infos, info)
	}
	return infos
}

// BlockAt возвращает блок по мировым координатам
func (s *Simulation) BlockAt(x, y, z int) world.Lookup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.world.GetBlock(x, y, z)
}

// HandleKey передаёт нажатие клавиши игроку
func (s *Simulation) HandleKey(key entity.Key, pressed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player.HandleKey(key, pressed)
}

// Look поворачивает взгляд игрока
func (s *Simulation) Look(dx, dy float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player.Look(dx, dy)
}

// ColumnHeight возвращает высоту поверхности мировой колонки,
// если её чанк сгенерирован.
func (s *Simulation) ColumnHeight(x, z int) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	coords := s.world.WorldToChunkCoords(x, 0, z)
	c, ok := s.world.Chunk(coords.Chunk.X, coords.Chunk.Z)
	if !ok || !c.Loaded() {
		return 0, false
	}
	return c.ColumnHeight(coords.Block.X, coords.Block.Z), true
}
