package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/annel0/voxel-world/internal/entity"
	"github.com/annel0/voxel-world/internal/logging"
)

// Config – параметры симуляции
type Config struct {
	Gravity        float64 `yaml:"gravity" json:"gravity"`                 // Ускорение свободного падения, блоков/с²
	SimulationRate float64 `yaml:"simulation_rate" json:"simulation_rate"` // Шагов симуляции в секунду
}

// DefaultConfig возвращает параметры по умолчанию
func DefaultConfig() Config {
	return Config{
		Gravity:        32,
		SimulationRate: 200,
	}
}

// Validate проверяет параметры
func (c Config) Validate() error {
	if c.SimulationRate <= 0 {
		return fmt.Errorf("physics: simulation_rate должен быть положительным, получено %v", c.SimulationRate)
	}
	if c.Gravity < 0 {
		return fmt.Errorf("physics: gravity не может быть отрицательной, получено %v", c.Gravity)
	}
	return nil
}

// Engine продвигает игрока фиксированными шагами. Остаток времени кадра,
// меньший шага, переносится в следующий кадр.
type Engine struct {
	cfg         Config
	timestep    float64
	accumulator float64

	bounds  entity.Bounds
	metrics *Metrics
	logger  *logging.Logger
}

// Option настраивает движок
type Option func(*Engine)

// WithMetrics подключает метрики физики
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// NewEngine создаёт движок физики
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:      cfg,
		timestep: 1 / cfg.SimulationRate,
		logger:   logging.GetPhysicsLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = NewMetrics(nil)
	}
	return e, nil
}

// Timestep возвращает длительность одного шага в секундах
func (e *Engine) Timestep() float64 { return e.timestep }

// Accumulator возвращает накопленное, но ещё не просимулированное время
func (e *Engine) Accumulator() float64 { return e.accumulator }

// Bounds возвращает цилиндр игрока после последнего шага
func (e *Engine) Bounds() entity.Bounds { return e.bounds }

// Update добавляет dt к накопителю и выполняет все целые шаги.
// Возвращает число выполненных шагов.
func (e *Engine) Update(dt float64, p *entity.Player, src BlockSource) int {
	e.accumulator += dt

	steps := 0
	for e.accumulator >= e.timestep {
		e.Step(p, src)
		e.accumulator -= e.timestep
		steps++
	}

	if steps > 0 {
		e.metrics.steps.Add(float64(steps))
	}
	return steps
}

// Step выполняет один шаг симуляции: гравитация, ввод, столкновения
func (e *Engine) Step(p *entity.Player, src BlockSource) {
	p.ApplyWorldDeltaVelocity(mgl64.Vec3{0, -e.cfg.Gravity * e.timestep, 0})
	p.ApplyInputs(e.timestep)
	e.DetectCollisions(p, src)
	e.bounds = p.Bounds()
}

// DetectCollisions ищет и разрешает столкновения игрока с блоками
func (e *Engine) DetectCollisions(p *entity.Player, src BlockSource) []Collision {
	candidates := BroadPhase(src, p)
	e.logger.Trace("Кандидатов broad phase: %d", len(candidates))

	collisions := NarrowPhase(candidates, p)
	if len(collisions) == 0 {
		return nil
	}

	resolved := ResolveCollisions(collisions, p)
	e.metrics.collisions.Add(float64(resolved))
	e.metrics.skipped.Add(float64(len(collisions) - resolved))
	return collisions
}
