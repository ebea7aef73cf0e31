package world

import (
	"context"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/annel0/voxel-world/internal/util"
	"github.com/annel0/voxel-world/internal/world/block"
)

var tracer = otel.Tracer("github.com/annel0/voxel-world/internal/world")

// Generate выполняет полный конвейер генерации чанка и помечает его загруженным.
// Все шаги – чистые функции от (сид, координаты, параметры).
func (c *Chunk) Generate(ctx context.Context) time.Duration {
	start := time.Now()

	_, span := tracer.Start(ctx, "chunk.generate", trace.WithAttributes(
		attribute.Int("chunk.x", c.coords.X),
		attribute.Int("chunk.z", c.coords.Z),
	))
	defer span.End()

	// Сэмплеры создаются из одного потока, поэтому порядок шагов важен
	rng := util.NewRNG(c.params.Seed)
	c.InitializeTerrain()
	c.GenerateResources(rng)
	c.GenerateTerrain(rng)
	c.GenerateMeshes()

	c.loaded = true

	elapsed := time.Since(start)
	span.SetAttributes(attribute.Int64("chunk.generate_ms", elapsed.Milliseconds()))
	return elapsed
}

// InitializeTerrain заполняет все ячейки пустыми блоками
func (c *Chunk) InitializeTerrain() {
	for i := range c.blocks {
		c.blocks[i] = Block{ID: block.EmptyBlockID}
	}
}

// GenerateResources расставляет ресурсы по 3D шуму в мировых координатах.
// Ресурсы применяются в порядке каталога, поздний перезаписывает ранний.
func (c *Chunk) GenerateResources(rng *util.RNG) {
	sampler := util.NewSampler(rng)
	origin := c.Origin()

	for _, res := range block.Resources() {
		for x := 0; x < c.size.Width; x++ {
			for y := 0; y < c.size.Height; y++ {
				for z := 0; z < c.size.Width; z++ {
					value := sampler.Noise3D(
						float64(origin.X+x)/res.Scale.X(),
						float64(origin.Y+y)/res.Scale.Y(),
						float64(origin.Z+z)/res.Scale.Z(),
					)
					if value > res.Scarcity {
						c.SetBlock(x, y, z, res.ID)
					}
				}
			}
		}
	}
}

// GenerateTerrain строит карту высот по 2D шуму.
// Ниже поверхности сохраняются уже поставленные ресурсы, поверхность – трава,
// выше поверхности всё вырезается в пустоту (включая ресурсы).
func (c *Chunk) GenerateTerrain(rng *util.RNG) {
	sampler := util.NewSampler(rng)
	origin := c.Origin()

	for x := 0; x < c.size.Width; x++ {
		for z := 0; z < c.size.Width; z++ {
			height := c.terrainHeight(sampler, origin.X+x, origin.Z+z)

			for y := 0; y < c.size.Height; y++ {
				current, _ := c.GetBlock(x, y, z)
				switch {
				case y < height && current.IsEmpty():
					c.SetBlock(x, y, z, block.DirtBlockID)
				case y == height:
					c.SetBlock(x, y, z, block.GrassBlockID)
				case y > height:
					c.SetBlock(x, y, z, block.EmptyBlockID)
				}
			}
		}
	}
}

// terrainHeight вычисляет высоту поверхности в мировой колонке (worldX, worldZ),
// ограниченную диапазоном [0, Height-1].
func (c *Chunk) terrainHeight(sampler *util.Sampler, worldX, worldZ int) int {
	t := c.params.Terrain
	value := sampler.Noise2D(float64(worldX)/t.Scale, float64(worldZ)/t.Scale)

	scaled := t.Offset + t.Magnitude*value
	height := int(math.Floor(float64(c.size.Height) * scaled))

	if height < 0 {
		height = 0
	}
	if height > c.size.Height-1 {
		height = c.size.Height - 1
	}
	return height
}

// TerrainHeight возвращает высоту поверхности для мировой колонки так,
// как её вычислил бы любой чанк с этими параметрами.
func TerrainHeight(params Params, worldX, worldZ int) int {
	rng := util.NewRNG(params.Seed)
	_ = util.NewSampler(rng) // сэмплер ресурсов
	terrain := util.NewSampler(rng)

	c := &Chunk{size: params.ChunkSize, params: params}
	return c.terrainHeight(terrain, worldX, worldZ)
}
