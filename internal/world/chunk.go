package world

import (
	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world/block"
)

// Chunk представляет участок мира размером Width x Height x Width блоков.
// Чанк владеет своими блоками эксклюзивно; наружу отдаются только копии.
type Chunk struct {
	coords vec.Vec2 // Координаты чанка в сетке чанков
	size   ChunkSize
	params Params

	// Плотный массив блоков, индекс см. index()
	blocks []Block
	// Наборы инстансов по типам блоков
	meshes map[block.BlockID]*InstanceSet

	loaded bool // Генерация завершена
}

// NewChunk создаёт пустой (не сгенерированный) чанк с указанными координатами
func NewChunk(coords vec.Vec2, params Params) *Chunk {
	return &Chunk{
		coords: coords,
		size:   params.ChunkSize,
		params: params,
		blocks: make([]Block, params.ChunkSize.Volume()),
	}
}

// Coords возвращает координаты чанка
func (c *Chunk) Coords() vec.Vec2 {
	return c.coords
}

// Size возвращает размеры чанка
func (c *Chunk) Size() ChunkSize {
	return c.size
}

// Loaded сообщает, завершена ли генерация
func (c *Chunk) Loaded() bool {
	return c.loaded
}

// Origin возвращает мировые координаты локальной ячейки (0,0,0)
func (c *Chunk) Origin() vec.Vec3 {
	return vec.Vec3{X: c.coords.X * c.size.Width, Y: 0, Z: c.coords.Z * c.size.Width}
}

// InBounds проверяет, лежат ли локальные координаты внутри чанка
func (c *Chunk) InBounds(x, y, z int) bool {
	return x >= 0 && x < c.size.Width &&
		y >= 0 && y < c.size.Height &&
		z >= 0 && z < c.size.Width
}

// index возвращает индекс в плотном массиве: x, затем y, затем z
func (c *Chunk) index(x, y, z int) int {
	return (x*c.size.Height+y)*c.size.Width + z
}

// GetBlock возвращает копию блока по локальным координатам.
// Второй результат false означает выход за границы.
func (c *Chunk) GetBlock(x, y, z int) (Block, bool) {
	if !c.InBounds(x, y, z) {
		return Block{}, false
	}
	return c.blocks[c.index(x, y, z)], true
}

// SetBlock устанавливает тип блока; вне границ – no-op
func (c *Chunk) SetBlock(x, y, z int, id block.BlockID) {
	if !c.InBounds(x, y, z) {
		return
	}
	c.blocks[c.index(x, y, z)].ID = id
}

// SetBlockInstance записывает слот инстанса; вне границ – no-op
func (c *Chunk) SetBlockInstance(x, y, z int, slot int) {
	if !c.InBounds(x, y, z) {
		return
	}
	b := &c.blocks[c.index(x, y, z)]
	b.Instance = slot
	b.HasInstance = true
}

// clearBlockInstance сбрасывает слот инстанса
func (c *Chunk) clearBlockInstance(x, y, z int) {
	if !c.InBounds(x, y, z) {
		return
	}
	b := &c.blocks[c.index(x, y, z)]
	b.Instance = 0
	b.HasInstance = false
}

// ColumnHeight возвращает высоту самого верхнего непустого блока колонки
// или -1, если колонка пуста.
func (c *Chunk) ColumnHeight(x, z int) int {
	for y := c.size.Height - 1; y >= 0; y-- {
		if b, ok := c.GetBlock(x, y, z); ok && !b.IsEmpty() {
			return y
		}
	}
	return -1
}

// CountBlocks подсчитывает блоки каждого типа
func (c *Chunk) CountBlocks() map[block.BlockID]int {
	counts := make(map[block.BlockID]int)
	for _, b := range c.blocks {
		counts[b.ID]++
	}
	return counts
}

// BlockIDs возвращает копию сетки идентификаторов в порядке index()
func (c *Chunk) BlockIDs() []block.BlockID {
	ids := make([]block.BlockID, len(c.blocks))
	for i, b := range c.blocks {
		ids[i] = b.ID
	}
	return ids
}

// Digest возвращает хеш xxhash сетки идентификаторов.
// Одинаковые сид, координаты и параметры дают одинаковый хеш.
func (c *Chunk) Digest() uint64 {
	return c.Snapshot().Digest()
}
