package util

import (
	"math/rand"

	"github.com/aquilax/go-perlin"
)

// Параметры шума Перлина, общие для всего мира
const (
	perlinAlpha   = 2.0 // Сглаживание шума
	perlinBeta    = 2.0 // Частота шума
	perlinOctaves = 3   // Количество октав
)

// RNG – воспроизводимый поток псевдослучайных чисел, заданный 32-битным сидом
type RNG struct {
	src *rand.Rand
}

// NewRNG создаёт генератор с указанным сидом.
// Одинаковый сид всегда даёт одинаковую последовательность.
func NewRNG(seed uint32) *RNG {
	return &RNG{src: rand.New(rand.NewSource(int64(seed)))}
}

// Next возвращает следующее число в диапазоне [0,1)
func (r *RNG) Next() float64 {
	return r.src.Float64()
}

// Int63 возвращает следующее неотрицательное 63-битное число
func (r *RNG) Int63() int64 {
	return r.src.Int63()
}

// Sampler – когерентный шум поверх RNG.
// Значения непрерывны и примерно лежат в [-1,1].
type Sampler struct {
	seed   int64
	perlin *perlin.Perlin
}

// NewSampler строит шум, забирая из rng один сид.
// Порядок создания сэмплеров из одного rng влияет на результат.
func NewSampler(rng *RNG) *Sampler {
	seed := rng.Int63()
	return &Sampler{
		seed:   seed,
		perlin: perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, seed),
	}
}

// Seed возвращает сид, из которого построен шум
func (s *Sampler) Seed() int64 {
	return s.seed
}

// Noise2D возвращает значение 2D шума
func (s *Sampler) Noise2D(x, y float64) float64 {
	return s.perlin.Noise2D(x, y)
}

// Noise3D возвращает значение 3D шума
func (s *Sampler) Noise3D(x, y, z float64) float64 {
	return s.perlin.Noise3D(x, y, z)
}
