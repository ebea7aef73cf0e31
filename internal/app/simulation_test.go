package app

import (
	"context"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-world/internal/config"
	"github.com/annel0/voxel-world/internal/entity"
	"github.com/annel0/voxel-world/internal/world"
)

func testConfig(async bool) *config.Config {
	cfg := config.Default()
	cfg.World.Seed = 0
	cfg.World.ChunkSize = world.ChunkSize{Width: 32, Height: 32}
	cfg.World.Terrain = world.TerrainParams{Scale: 30, Magnitude: 1, Offset: 0.2}
	cfg.World.DrawDistance = 1
	cfg.World.AsyncLoading = async
	cfg.World.GenerationBudgetMs = 0
	cfg.Player.Spawn = mgl64.Vec3{16, 40, 16}
	return cfg
}

// landAt роняет игрока с высоты 40 над колонкой (x, z) и возвращает
// состояние после 600 кадров и высоту поверхности колонки.
func landAt(t *testing.T, x, z float64) (Status, int) {
	t.Helper()
	cfg := testConfig(false)
	cfg.Player.Spawn = mgl64.Vec3{x, 40, z}

	sim, err := NewFromConfig(cfg, prometheus.NewRegistry())
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 600; i++ {
		sim.Frame(ctx, 1.0/60)
	}

	h, ok := sim.ColumnHeight(int(x), int(z))
	require.True(t, ok)
	return sim.Status(), h
}

func TestPlayerLandsOnGeneratedTerrain(t *testing.T) {
	st, h := landAt(t, 16, 16)
	require.True(t, st.OnGround, "игрок должен стоять на блоке")
	require.GreaterOrEqual(t, h, 0)

	// Верх блока h на h+0.5, глаза выше на рост игрока
	assert.InDelta(t, float64(h)+0.5+1.75, st.Position.Y(), 1e-2)
	assert.GreaterOrEqual(t, st.Position.Y(), 0.0)
	assert.LessOrEqual(t, st.Position.Y(), 32.0)
	assert.InDelta(t, 16, st.Position.X(), 1e-9)
	assert.InDelta(t, 16, st.Position.Z(), 1e-9)
	assert.InDelta(t, 0, st.Velocity.Y(), 0.2)

	assert.Equal(t, uint64(600), st.Frame)
	assert.Equal(t, 9, st.LoadedChunks)
	assert.Zero(t, st.PendingChunks)
}

func TestPlayerLandsOnRaisedColumn(t *testing.T) {
	params := testConfig(false).World.Params

	// Ищем в чанке (0,0) колонку заметно выше дна, но с местом для роста игрока
	x, z, found := 0, 0, false
	for cx := 0; cx < 32 && !found; cx++ {
		for cz := 0; cz < 32; cz++ {
			if h := world.TerrainHeight(params, cx, cz); h > 5 && h <= 29 {
				x, z, found = cx, cz, true
				break
			}
		}
	}
	require.True(t, found, "нет колонки с высотой в (5, 29]")

	st, h := landAt(t, float64(x), float64(z))
	require.Equal(t, world.TerrainHeight(params, x, z), h)
	require.True(t, st.OnGround)

	assert.InDelta(t, float64(h)+0.5+1.75, st.Position.Y(), 1e-2)
	assert.Greater(t, st.Position.Y(), 5.0)
	assert.LessOrEqual(t, st.Position.Y(), 32.0)
	assert.InDelta(t, float64(x), st.Position.X(), 1e-9)
	assert.InDelta(t, float64(z), st.Position.Z(), 1e-9)
}

func TestAsyncFramesConvergeToVisibleSet(t *testing.T) {
	sim, err := NewFromConfig(testConfig(true), nil)
	require.NoError(t, err)

	sim.Frame(context.Background(), 1.0/60)

	chunks := sim.Chunks()
	require.Len(t, chunks, 9)
	for _, c := range chunks {
		assert.Equal(t, world.ChunkReady.String(), c.State)
		assert.NotEmpty(t, c.Digest)
		assert.Positive(t, c.Instances)
	}
}

func TestHandleKeyThroughSimulation(t *testing.T) {
	sim, err := NewFromConfig(testConfig(false), nil)
	require.NoError(t, err)

	sim.HandleKey(entity.KeyReset, true)
	assert.Equal(t, mgl64.Vec3{16, 40, 16}, sim.Status().Position)

	sim.Look(100, 0)
	assert.InDelta(t, -0.2, sim.Status().Yaw, 1e-9)

	lookup := sim.BlockAt(0, 0, 0)
	assert.Equal(t, world.NotLoaded, lookup.State, "до первого кадра мир пуст")
}

func TestRunStopsOnCancel(t *testing.T) {
	sim, err := NewFromConfig(testConfig(false), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	require.NoError(t, sim.Run(ctx, 100))
	assert.Positive(t, sim.FrameCount())

	assert.Error(t, sim.Run(context.Background(), 0))
}
