package physics

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/annel0/voxel-world/internal/entity"
	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world"
	"github.com/annel0/voxel-world/internal/world/block"
)

// BlockSource отвечает на запросы блоков по мировым координатам.
// Реализуется world.World.
type BlockSource interface {
	GetBlock(x, y, z int) world.Lookup
}

// Candidate – блок, попавший в ограничивающий параллелепипед игрока
type Candidate struct {
	Position vec.Vec3
	ID       block.BlockID
}

// Collision – найденное пересечение игрока с блоком
type Collision struct {
	Block   Candidate
	Contact mgl64.Vec3 // Ближайшая к оси игрока точка куба
	Normal  mgl64.Vec3 // Направление выталкивания игрока
	Overlap float64    // Глубина проникновения вдоль Normal
}

// BroadPhase перебирает все непустые загруженные блоки в габаритах игрока.
// Сбрасывает OnGround. Незагруженные и внешние блоки пропускаются.
func BroadPhase(src BlockSource, p *entity.Player) []Candidate {
	p.SetOnGround(false)

	pos := p.Position()
	r, h := p.Radius(), p.Height()

	minX, maxX := int(math.Floor(pos.X()-r)), int(math.Ceil(pos.X()+r))
	minY, maxY := int(math.Floor(pos.Y()-h)), int(math.Ceil(pos.Y()))
	minZ, maxZ := int(math.Floor(pos.Z()-r)), int(math.Ceil(pos.Z()+r))

	var candidates []Candidate
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for z := minZ; z <= maxZ; z++ {
				lookup := src.GetBlock(x, y, z)
				if !lookup.Solid() {
					continue
				}
				candidates = append(candidates, Candidate{
					Position: vec.Vec3{X: x, Y: y, Z: z},
					ID:       lookup.Block.ID,
				})
			}
		}
	}
	return candidates
}

// NarrowPhase оставляет кандидатов, реально пересекающих цилиндр игрока.
// Вертикальный контакт выставляет OnGround.
func NarrowPhase(candidates []Candidate, p *entity.Player) []Collision {
	var collisions []Collision

	pos := p.Position()
	r, h := p.Radius(), p.Height()
	center := mgl64.Vec3{pos.X(), pos.Y() - h/2, pos.Z()}

	for _, c := range candidates {
		b := c.Position.Float()
		closest := mgl64.Vec3{
			mgl64.Clamp(center.X(), b.X()-0.5, b.X()+0.5),
			mgl64.Clamp(center.Y(), b.Y()-0.5, b.Y()+0.5),
			mgl64.Clamp(center.Z(), b.Z()-0.5, b.Z()+0.5),
		}

		if !PointInCylinder(closest, p) {
			continue
		}

		dx := closest.X() - center.X()
		dy := closest.Y() - center.Y()
		dz := closest.Z() - center.Z()

		horizontal := math.Sqrt(dx*dx + dz*dz)
		overlapY := h/2 - math.Abs(dy)
		overlapXZ := r - horizontal

		var normal mgl64.Vec3
		var overlap float64
		switch {
		case overlapY < overlapXZ:
			normal = mgl64.Vec3{0, -math.Copysign(1, dy), 0}
			overlap = overlapY
			p.SetOnGround(true)
		case horizontal == 0:
			// Горизонтальной нормали нет: выталкиваем по вертикали от блока,
			// при совпадении центров вверх
			dir := 1.0
			if dy > 0 {
				dir = -1
			}
			normal = mgl64.Vec3{0, dir, 0}
			overlap = overlapY
			if dir > 0 {
				p.SetOnGround(true)
			}
		default:
			normal = mgl64.Vec3{-dx, 0, -dz}.Normalize()
			overlap = overlapXZ
		}

		collisions = append(collisions, Collision{
			Block:   c,
			Contact: closest,
			Normal:  normal,
			Overlap: overlap,
		})
	}
	return collisions
}

// ResolveCollisions разрешает столкновения от меньшего проникновения к большему.
// Контакт, уже вышедший из цилиндра после предыдущих сдвигов, пропускается.
// Возвращает число разрешённых столкновений.
func ResolveCollisions(collisions []Collision, p *entity.Player) int {
	sort.SliceStable(collisions, func(i, j int) bool {
		return collisions[i].Overlap < collisions[j].Overlap
	})

	resolved := 0
	for _, c := range collisions {
		if !PointInCylinder(c.Contact, p) {
			continue
		}

		p.Translate(c.Normal.Mul(c.Overlap))

		// Убираем составляющую скорости вдоль нормали
		along := c.Normal.Dot(p.WorldVelocity())
		p.ApplyWorldDeltaVelocity(c.Normal.Mul(-along))
		resolved++
	}
	return resolved
}

// PointInCylinder проверяет, лежит ли точка строго внутри цилиндра игрока
func PointInCylinder(point mgl64.Vec3, p *entity.Player) bool {
	pos := p.Position()
	r, h := p.Radius(), p.Height()

	dx := point.X() - pos.X()
	dy := point.Y() - (pos.Y() - h/2)
	dz := point.Z() - pos.Z()

	return math.Abs(dy) < h/2 && dx*dx+dz*dz < r*r
}
