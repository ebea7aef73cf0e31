package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRNGDeterministic(t *testing.T) {
	a := NewRNG(42)
	b := NewRNG(42)

	for i := 0; i < 100; i++ {
		va, vb := a.Next(), b.Next()
		require.Equal(t, va, vb, "одинаковый сид должен давать одинаковую последовательность")
		assert.GreaterOrEqual(t, va, 0.0)
		assert.Less(t, va, 1.0)
	}
}

func TestRNGDifferentSeeds(t *testing.T) {
	a := NewRNG(1)
	b := NewRNG(2)

	same := true
	for i := 0; i < 10; i++ {
		if a.Next() != b.Next() {
			same = false
		}
	}
	assert.False(t, same, "разные сиды должны давать разные последовательности")
}

func TestSamplerDeterministic(t *testing.T) {
	s1 := NewSampler(NewRNG(0))
	s2 := NewSampler(NewRNG(0))

	for i := 0; i < 50; i++ {
		x := float64(i) / 7.3
		y := float64(i) / 3.1
		assert.Equal(t, s1.Noise2D(x, y), s2.Noise2D(x, y))
		assert.Equal(t, s1.Noise3D(x, y, x+y), s2.Noise3D(x, y, x+y))
	}
}

func TestSamplerContinuity(t *testing.T) {
	s := NewSampler(NewRNG(7))

	// Соседние точки с маленьким шагом не должны сильно отличаться
	const step = 1e-4
	for i := 0; i < 200; i++ {
		x := float64(i) * 0.137
		a := s.Noise2D(x, 0.5)
		b := s.Noise2D(x+step, 0.5)
		assert.InDelta(t, a, b, 0.01, "шум должен быть непрерывным в x=%f", x)
	}
}

func TestSamplerRange(t *testing.T) {
	s := NewSampler(NewRNG(99))

	for i := 0; i < 500; i++ {
		v := s.Noise3D(float64(i)*0.31, float64(i)*0.17, float64(i)*0.05)
		assert.GreaterOrEqual(t, v, -2.0)
		assert.LessOrEqual(t, v, 2.0)
	}
}
