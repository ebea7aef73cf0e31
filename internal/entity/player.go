package entity

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// PlayerConfig – неизменяемые параметры игрока
type PlayerConfig struct {
	Radius          float64    `yaml:"radius" json:"radius"`
	Height          float64    `yaml:"height" json:"height"`
	JumpSpeed       float64    `yaml:"jump_speed" json:"jump_speed"`
	MaxSpeed        float64    `yaml:"max_speed" json:"max_speed"`
	Spawn           mgl64.Vec3 `yaml:"spawn" json:"spawn"`
	LookSensitivity float64    `yaml:"look_sensitivity" json:"look_sensitivity"` // Радиан на единицу смещения указателя
}

// DefaultPlayerConfig возвращает параметры игрока по умолчанию
func DefaultPlayerConfig() PlayerConfig {
	return PlayerConfig{
		Radius:          0.5,
		Height:          1.75,
		JumpSpeed:       10,
		MaxSpeed:        10,
		Spawn:           mgl64.Vec3{32, 16, 32},
		LookSensitivity: 0.002,
	}
}

// Bounds – цилиндр игрока для отладочной отрисовки
type Bounds struct {
	Center mgl64.Vec3
	Radius float64
	Height float64
}

// Player хранит позицию (точку глаз, верх цилиндра), скорость в локальной
// системе координат и ввод. Локальная ось X – вправо, Z – вперёд.
type Player struct {
	cfg PlayerConfig

	position mgl64.Vec3
	velocity mgl64.Vec3 // Локальная скорость
	input    mgl64.Vec3 // Желаемая горизонтальная скорость

	yaw   float64
	pitch float64

	onGround bool
}

// NewPlayer создаёт игрока в точке появления
func NewPlayer(cfg PlayerConfig) *Player {
	return &Player{
		cfg:      cfg,
		position: cfg.Spawn,
	}
}

// Config возвращает параметры игрока
func (p *Player) Config() PlayerConfig { return p.cfg }

// Radius возвращает радиус цилиндра
func (p *Player) Radius() float64 { return p.cfg.Radius }

// Height возвращает высоту цилиндра
func (p *Player) Height() float64 { return p.cfg.Height }

// Position возвращает мировую позицию глаз
func (p *Player) Position() mgl64.Vec3 { return p.position }

// SetPosition переносит игрока (появление, сброс)
func (p *Player) SetPosition(pos mgl64.Vec3) { p.position = pos }

// Translate сдвигает игрока на d в мировых координатах
func (p *Player) Translate(d mgl64.Vec3) { p.position = p.position.Add(d) }

// Velocity возвращает скорость в локальной системе
func (p *Player) Velocity() mgl64.Vec3 { return p.velocity }

// SetVelocity задаёт локальную скорость
func (p *Player) SetVelocity(v mgl64.Vec3) { p.velocity = v }

// Input возвращает текущий вектор ввода
func (p *Player) Input() mgl64.Vec3 { return p.input }

// SetInput задаёт желаемую локальную горизонтальную скорость
func (p *Player) SetInput(in mgl64.Vec3) { p.input = in }

// OnGround сообщает, стоит ли игрок на блоке
func (p *Player) OnGround() bool { return p.onGround }

// SetOnGround выставляется физикой при вертикальном контакте
func (p *Player) SetOnGround(v bool) { p.onGround = v }

// Yaw возвращает поворот вокруг вертикальной оси
func (p *Player) Yaw() float64 { return p.yaw }

// Pitch возвращает наклон взгляда
func (p *Player) Pitch() float64 { return p.pitch }

// SetYaw задаёт поворот вокруг вертикальной оси
func (p *Player) SetYaw(yaw float64) { p.yaw = yaw }

// Look поворачивает взгляд на смещение указателя.
// Наклон ограничен ±90°.
func (p *Player) Look(dx, dy float64) {
	p.yaw -= dx * p.cfg.LookSensitivity
	p.pitch -= dy * p.cfg.LookSensitivity
	p.pitch = mgl64.Clamp(p.pitch, -math.Pi/2, math.Pi/2)
}

func (p *Player) toWorld() mgl64.Mat3 {
	return mgl64.Rotate3DY(p.yaw)
}

// WorldVelocity возвращает скорость в мировой системе координат
func (p *Player) WorldVelocity() mgl64.Vec3 {
	return p.toWorld().Mul3x1(p.velocity)
}

// ApplyWorldDeltaVelocity добавляет изменение скорости, заданное в мировой
// системе, к локальной скорости.
func (p *Player) ApplyWorldDeltaVelocity(dv mgl64.Vec3) {
	local := mgl64.Rotate3DY(-p.yaw).Mul3x1(dv)
	p.velocity = p.velocity.Add(local)
}

// Forward возвращает горизонтальное направление взгляда в мире
func (p *Player) Forward() mgl64.Vec3 {
	return p.toWorld().Mul3x1(mgl64.Vec3{0, 0, 1})
}

// ApplyInputs копирует ввод в горизонтальную скорость и интегрирует позицию:
// по горизонтали вдоль текущего направления, по вертикали напрямую.
func (p *Player) ApplyInputs(dt float64) {
	p.velocity[0] = p.input.X()
	p.velocity[2] = p.input.Z()

	horizontal := p.toWorld().Mul3x1(mgl64.Vec3{p.velocity.X(), 0, p.velocity.Z()})
	p.position = p.position.Add(horizontal.Mul(dt))
	p.position[1] += p.velocity.Y() * dt
}

// Jump придаёт вертикальную скорость, если игрок на земле
func (p *Player) Jump() bool {
	if !p.onGround {
		return false
	}
	p.velocity[1] += p.cfg.JumpSpeed
	p.onGround = false
	return true
}

// Reset возвращает игрока в точку появления с нулевой скоростью
func (p *Player) Reset() {
	p.position = p.cfg.Spawn
	p.velocity = mgl64.Vec3{}
}

// Bounds возвращает цилиндр игрока; центр на высоте position.y - height/2
func (p *Player) Bounds() Bounds {
	center := p.position
	center[1] -= p.cfg.Height / 2
	return Bounds{Center: center, Radius: p.cfg.Radius, Height: p.cfg.Height}
}

// String возвращает позицию в читаемом виде
func (p *Player) String() string {
	return fmt.Sprintf("X: %.3f Y: %.3f Z: %.3f", p.position.X(), p.position.Y(), p.position.Z())
}
