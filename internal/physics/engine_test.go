package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-world/internal/world"
)

func TestNewEngineValidates(t *testing.T) {
	_, err := NewEngine(Config{Gravity: 32, SimulationRate: 0})
	assert.Error(t, err)

	_, err = NewEngine(Config{Gravity: -1, SimulationRate: 60})
	assert.Error(t, err)

	e, err := NewEngine(DefaultConfig())
	require.NoError(t, err)
	assert.InDelta(t, 0.005, e.Timestep(), 1e-12)
}

func TestAccumulatorCarriesRemainder(t *testing.T) {
	e, err := NewEngine(Config{Gravity: 0, SimulationRate: 64})
	require.NoError(t, err)

	empty := blockFunc(func(x, y, z int) world.Lookup { return world.Lookup{State: world.NotLoaded} })
	p := newPlayerAt(mgl64.Vec3{})

	assert.Equal(t, 2, e.Update(0.03125, p, empty))
	assert.Zero(t, e.Accumulator())

	assert.Equal(t, 0, e.Update(0.0078125, p, empty))
	assert.Equal(t, 0.0078125, e.Accumulator())

	assert.Equal(t, 1, e.Update(0.0078125, p, empty))
	assert.Zero(t, e.Accumulator())
}

func TestGravityWithoutTerrain(t *testing.T) {
	e, err := NewEngine(Config{Gravity: 32, SimulationRate: 128})
	require.NoError(t, err)

	// Незагруженный мир: игрок падает, столкновений нет
	notLoaded := blockFunc(func(x, y, z int) world.Lookup { return world.Lookup{State: world.NotLoaded} })
	p := newPlayerAt(mgl64.Vec3{0, 100, 0})

	steps := e.Update(0.5, p, notLoaded)
	assert.Equal(t, 64, steps)
	assert.InDelta(t, -16, p.WorldVelocity().Y(), 1e-6)
	assert.Less(t, p.Position().Y(), 100.0)
	assert.False(t, p.OnGround())
}

func TestRestsOnFlatSurface(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	e, err := NewEngine(DefaultConfig(), WithMetrics(m))
	require.NoError(t, err)

	p := newPlayerAt(mgl64.Vec3{0, 3, 0})
	for i := 0; i < 120; i++ {
		e.Update(1.0/60, p, flatFloor)
	}

	// Верх блока y=0 на высоте 0.5, глаза на 0.5 + 1.75
	assert.InDelta(t, 2.25, p.Position().Y(), 1e-3)
	assert.True(t, p.OnGround())
	assert.InDelta(t, 0, p.WorldVelocity().Y(), 0.2)
	assert.InDelta(t, 0, p.Position().X(), 1e-9)

	b := e.Bounds()
	assert.InDelta(t, p.Position().Y()-0.875, b.Center.Y(), 1e-9)

	assert.Greater(t, testutil.ToFloat64(m.steps), 0.0)
	assert.Greater(t, testutil.ToFloat64(m.collisions), 0.0)
}

func TestWalkIntoWallStops(t *testing.T) {
	// Пол на y=0 и стена x=3
	src := blockFunc(func(x, y, z int) world.Lookup {
		if y == 0 || (x == 3 && y > 0 && y < 4) {
			return present(1)
		}
		return present(0)
	})

	e, err := NewEngine(DefaultConfig())
	require.NoError(t, err)

	p := newPlayerAt(mgl64.Vec3{0, 2.25, 0})
	p.SetYaw(1.5707963267948966) // вперёд = +X
	p.SetInput(mgl64.Vec3{0, 0, 10})

	for i := 0; i < 120; i++ {
		e.Update(1.0/60, p, src)
	}

	// Грань стены на x=2.5, радиус 0.5
	assert.InDelta(t, 2.0, p.Position().X(), 0.06)
	assert.True(t, p.OnGround())
}

func TestJumpLeavesGround(t *testing.T) {
	e, err := NewEngine(DefaultConfig())
	require.NoError(t, err)

	p := newPlayerAt(mgl64.Vec3{0, 2.25, 0})
	e.Update(0.1, p, flatFloor)
	require.True(t, p.OnGround())

	require.True(t, p.Jump())
	e.Update(0.05, p, flatFloor)
	assert.Greater(t, p.Position().Y(), 2.25)
	assert.False(t, p.OnGround())
}
