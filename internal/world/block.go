package world

import (
	"github.com/annel0/voxel-world/internal/world/block"
)

// Block – запись о блоке внутри чанка
type Block struct {
	ID          block.BlockID // Идентификатор типа блока
	Instance    int           // Слот инстанса для отрисовки (валиден при HasInstance)
	HasInstance bool
}

// IsEmpty возвращает true для пустого блока
func (b Block) IsEmpty() bool {
	return b.ID == block.EmptyBlockID
}

// LookupState – результат запроса блока у мира
type LookupState uint8

const (
	// NotLoaded – чанк отсутствует или ещё генерируется
	NotLoaded LookupState = iota
	// OutOfBounds – координата вне вертикальных границ чанка
	OutOfBounds
	// Present – блок известен
	Present
)

// String возвращает строковое представление состояния
func (s LookupState) String() string {
	switch s {
	case NotLoaded:
		return "not_loaded"
	case OutOfBounds:
		return "out_of_bounds"
	case Present:
		return "present"
	default:
		return "unknown"
	}
}

// Lookup – явный трёхзначный ответ на запрос блока
type Lookup struct {
	State LookupState
	Block Block
}

// Solid возвращает true, если блок известен и не пустой.
// NotLoaded и OutOfBounds никогда не считаются твёрдыми.
func (l Lookup) Solid() bool {
	return l.State == Present && !l.Block.IsEmpty()
}
