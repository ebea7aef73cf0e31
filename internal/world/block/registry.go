package block

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// BlockID представляет идентификатор типа блока
type BlockID uint8

// Константы ID блоков
const (
	EmptyBlockID   BlockID = iota // 0 – пустота (воздух)
	GrassBlockID                  // 1
	DirtBlockID                   // 2
	StoneBlockID                  // 3
	CoalOreBlockID                // 4
	IronOreBlockID                // 5

	kindCount // всегда последний: количество типов
)

// Kind описывает тип блока: визуальные параметры и, для ресурсов,
// параметры шума, управляющие их редкостью.
type Kind struct {
	ID    BlockID
	Name  string
	Color uint32 // RGB цвет материала

	// Ресурсные параметры (используются только при IsResource)
	IsResource bool
	Scale      mgl64.Vec3 // Масштаб шума по осям
	Scarcity   float64    // Порог: ресурс появляется, если шум больше порога
}

// registry – неизменяемый каталог, индексируется по BlockID.
// Порядок ресурсов в каталоге определяет порядок их генерации.
var registry = [kindCount]Kind{
	EmptyBlockID: {ID: EmptyBlockID, Name: "empty"},
	GrassBlockID: {ID: GrassBlockID, Name: "grass", Color: 0x559020},
	DirtBlockID:  {ID: DirtBlockID, Name: "dirt", Color: 0x807020},
	StoneBlockID: {
		ID: StoneBlockID, Name: "stone", Color: 0x808080,
		IsResource: true, Scale: mgl64.Vec3{30, 30, 30}, Scarcity: 0.5,
	},
	CoalOreBlockID: {
		ID: CoalOreBlockID, Name: "coal_ore", Color: 0x202020,
		IsResource: true, Scale: mgl64.Vec3{20, 20, 20}, Scarcity: 0.8,
	},
	IronOreBlockID: {
		ID: IronOreBlockID, Name: "iron_ore", Color: 0x806060,
		IsResource: true, Scale: mgl64.Vec3{60, 60, 60}, Scarcity: 0.9,
	},
}

// Get возвращает описание типа для указанного ID
func Get(id BlockID) (Kind, bool) {
	if !IsValidBlockID(id) {
		return Kind{}, false
	}
	return registry[id], true
}

// IsValidBlockID проверяет, является ли ID допустимым идентификатором блока
func IsValidBlockID(id BlockID) bool {
	return id < kindCount
}

// All возвращает копию каталога в порядке ID
func All() []Kind {
	out := make([]Kind, len(registry))
	copy(out, registry[:])
	return out
}

// Solid возвращает все непустые типы (для них строятся наборы инстансов)
func Solid() []Kind {
	out := make([]Kind, 0, len(registry)-1)
	for _, k := range registry {
		if k.ID != EmptyBlockID {
			out = append(out, k)
		}
	}
	return out
}

// Resources возвращает ресурсные типы в порядке каталога
func Resources() []Kind {
	var out []Kind
	for _, k := range registry {
		if k.IsResource {
			out = append(out, k)
		}
	}
	return out
}

// String возвращает имя типа блока
func (id BlockID) String() string {
	if k, ok := Get(id); ok {
		return k.Name
	}
	return fmt.Sprintf("unknown(%d)", uint8(id))
}
