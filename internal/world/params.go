package world

import (
	"errors"
	"fmt"
)

// ErrInvalidParams возвращается при недопустимых параметрах мира
var ErrInvalidParams = errors.New("недопустимые параметры мира")

// ChunkSize задаёт размеры чанка: Width по X и Z, Height по Y
type ChunkSize struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// Volume возвращает количество ячеек в чанке
func (s ChunkSize) Volume() int {
	return s.Width * s.Height * s.Width
}

// TerrainParams управляет картой высот
type TerrainParams struct {
	Scale     float64 `yaml:"scale" json:"scale"`         // Горизонтальный масштаб шума
	Magnitude float64 `yaml:"magnitude" json:"magnitude"` // Амплитуда шума
	Offset    float64 `yaml:"offset" json:"offset"`       // Смещение средней высоты (доля высоты чанка)
}

// Params – неизменяемые параметры экземпляра мира
type Params struct {
	Seed         uint32        `yaml:"seed" json:"seed"`
	ChunkSize    ChunkSize     `yaml:"chunk_size" json:"chunk_size"`
	Terrain      TerrainParams `yaml:"terrain" json:"terrain"`
	DrawDistance int           `yaml:"draw_distance" json:"draw_distance"` // Радиус Чебышёва в чанках
	AsyncLoading bool          `yaml:"async_loading" json:"async_loading"` // Откладывать генерацию новых чанков
}

// DefaultParams возвращает параметры по умолчанию
func DefaultParams() Params {
	return Params{
		Seed:      0,
		ChunkSize: ChunkSize{Width: 32, Height: 32},
		Terrain: TerrainParams{
			Scale:     30,
			Magnitude: 1,
			Offset:    0.2,
		},
		DrawDistance: 1,
		AsyncLoading: true,
	}
}

// Validate проверяет параметры
func (p Params) Validate() error {
	if p.ChunkSize.Width <= 0 || p.ChunkSize.Height <= 0 {
		return fmt.Errorf("%w: размер чанка %dx%d", ErrInvalidParams, p.ChunkSize.Width, p.ChunkSize.Height)
	}
	if p.Terrain.Scale <= 0 {
		return fmt.Errorf("%w: terrain.scale=%v", ErrInvalidParams, p.Terrain.Scale)
	}
	if p.DrawDistance < 0 {
		return fmt.Errorf("%w: draw_distance=%d", ErrInvalidParams, p.DrawDistance)
	}
	return nil
}
