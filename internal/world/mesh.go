package world

import (
	"fmt"
	"sort"

	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world/block"
)

// InstanceSet – набор инстансов одного типа блока внутри чанка.
// Рендерер получает из него список позиций и флаги включения инстансов.
type InstanceSet struct {
	kind      block.BlockID
	capacity  int
	positions []vec.Vec3 // Мировые координаты центров блоков
	enabled   []bool
	disposed  bool
}

// newInstanceSet создаёт набор заданной ёмкости
func newInstanceSet(kind block.BlockID, capacity int) *InstanceSet {
	return &InstanceSet{kind: kind, capacity: capacity}
}

// Kind возвращает тип блока набора
func (s *InstanceSet) Kind() block.BlockID {
	return s.kind
}

// Count возвращает количество выданных слотов
func (s *InstanceSet) Count() int {
	return len(s.positions)
}

// Capacity возвращает максимальное количество слотов
func (s *InstanceSet) Capacity() int {
	return s.capacity
}

// Disposed сообщает, освобождены ли ресурсы набора
func (s *InstanceSet) Disposed() bool {
	return s.disposed
}

// add выдаёт следующий слот. Переполнение – нарушение контракта
// (ёмкость равна объёму чанка), поэтому паникуем.
func (s *InstanceSet) add(pos vec.Vec3) int {
	if s.disposed {
		panic(fmt.Sprintf("instance set %s: add after dispose", s.kind))
	}
	if len(s.positions) >= s.capacity {
		panic(fmt.Sprintf("instance set %s: capacity %d exceeded", s.kind, s.capacity))
	}
	s.positions = append(s.positions, pos)
	s.enabled = append(s.enabled, true)
	return len(s.positions) - 1
}

// Position возвращает мировую позицию инстанса
func (s *InstanceSet) Position(slot int) vec.Vec3 {
	return s.positions[slot]
}

// Positions возвращает копию всех позиций
func (s *InstanceSet) Positions() []vec.Vec3 {
	out := make([]vec.Vec3, len(s.positions))
	copy(out, s.positions)
	return out
}

// SetEnabled включает или выключает отрисовку инстанса
func (s *InstanceSet) SetEnabled(slot int, enabled bool) {
	if slot < 0 || slot >= len(s.enabled) {
		return
	}
	s.enabled[slot] = enabled
}

// Enabled сообщает, включён ли инстанс
func (s *InstanceSet) Enabled(slot int) bool {
	if slot < 0 || slot >= len(s.enabled) {
		return false
	}
	return s.enabled[slot]
}

// Dispose освобождает ресурсы набора; повторный вызов безопасен
func (s *InstanceSet) Dispose() {
	s.positions = nil
	s.enabled = nil
	s.disposed = true
}

// IsBlockObscured возвращает true, если все шесть соседей непустые.
// Соседи за пределами чанка считаются пустыми.
func (c *Chunk) IsBlockObscured(x, y, z int) bool {
	neighbours := [6][3]int{
		{x, y + 1, z},
		{x, y - 1, z},
		{x + 1, y, z},
		{x - 1, y, z},
		{x, y, z + 1},
		{x, y, z - 1},
	}

	for _, n := range neighbours {
		b, ok := c.GetBlock(n[0], n[1], n[2])
		if !ok || b.IsEmpty() {
			return false
		}
	}
	return true
}

// GenerateMeshes выдаёт слоты инстансов всем видимым непустым блокам.
// Полностью закрытые блоки слота не получают.
func (c *Chunk) GenerateMeshes() {
	c.DisposeInstances()

	capacity := c.size.Volume()
	c.meshes = make(map[block.BlockID]*InstanceSet)
	for _, kind := range block.Solid() {
		c.meshes[kind.ID] = newInstanceSet(kind.ID, capacity)
	}

	origin := c.Origin()
	for x := 0; x < c.size.Width; x++ {
		for y := 0; y < c.size.Height; y++ {
			for z := 0; z < c.size.Width; z++ {
				b, _ := c.GetBlock(x, y, z)
				if b.IsEmpty() {
					continue
				}

				c.clearBlockInstance(x, y, z)
				if c.IsBlockObscured(x, y, z) {
					continue
				}

				set, ok := c.meshes[b.ID]
				if !ok {
					panic(fmt.Sprintf("chunk %v: нет набора инстансов для блока %s", c.coords, b.ID))
				}
				slot := set.add(origin.Add(vec.Vec3{X: x, Y: y, Z: z}))
				c.SetBlockInstance(x, y, z, slot)
			}
		}
	}
}

// InstanceSet возвращает набор инстансов для типа блока
func (c *Chunk) InstanceSet(id block.BlockID) (*InstanceSet, bool) {
	set, ok := c.meshes[id]
	return set, ok
}

// InstanceSets возвращает наборы в порядке ID блока
func (c *Chunk) InstanceSets() []*InstanceSet {
	sets := make([]*InstanceSet, 0, len(c.meshes))
	for _, s := range c.meshes {
		sets = append(sets, s)
	}
	sort.Slice(sets, func(i, j int) bool { return sets[i].kind < sets[j].kind })
	return sets
}

// InstanceCount возвращает суммарное количество инстансов чанка
func (c *Chunk) InstanceCount() int {
	total := 0
	for _, s := range c.meshes {
		total += s.Count()
	}
	return total
}

// DisposeInstances освобождает все наборы инстансов чанка; идемпотентно
func (c *Chunk) DisposeInstances() {
	for _, s := range c.meshes {
		s.Dispose()
	}
	c.meshes = nil
}
