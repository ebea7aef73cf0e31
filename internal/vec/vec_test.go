package vec

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestFloorDiv(t *testing.T) {
	cases := []struct {
		a, b, want int
	}{
		{0, 32, 0},
		{31, 32, 0},
		{32, 32, 1},
		{-1, 32, -1},
		{-32, 32, -1},
		{-33, 32, -2},
		{65, 32, 2},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, FloorDiv(c.a, c.b), "FloorDiv(%d, %d)", c.a, c.b)
	}
}

func TestLocalInChunkNonNegative(t *testing.T) {
	for x := -70; x <= 70; x++ {
		local := Vec2{X: x, Z: -x}.LocalInChunk(32)
		assert.GreaterOrEqual(t, local.X, 0)
		assert.Less(t, local.X, 32)
		assert.GreaterOrEqual(t, local.Z, 0)
		assert.Less(t, local.Z, 32)

		chunk := Vec2{X: x, Z: -x}.ToChunkCoords(32)
		assert.Equal(t, x, chunk.X*32+local.X, "обратное преобразование должно давать исходную координату")
	}
}

func TestChebyshevDistance(t *testing.T) {
	a := Vec2{X: 1, Z: 1}
	assert.Equal(t, 0, a.ChebyshevDistance(a))
	assert.Equal(t, 3, a.ChebyshevDistance(Vec2{X: -2, Z: 0}))
	assert.Equal(t, 4, a.ChebyshevDistance(Vec2{X: 2, Z: 5}))
}

func TestFloorVec3(t *testing.T) {
	got := FloorVec3(mgl64.Vec3{1.5, -0.25, -3})
	assert.Equal(t, Vec3{X: 1, Y: -1, Z: -3}, got)
}
