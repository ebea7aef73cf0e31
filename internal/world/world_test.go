package world

import (
	"context"
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-world/internal/vec"
)

type fixedPosition mgl64.Vec3

func (p fixedPosition) Position() mgl64.Vec3 { return mgl64.Vec3(p) }

func newTestWorld(t *testing.T, async bool, opts ...Option) *World {
	t.Helper()
	params := DefaultParams()
	params.ChunkSize = ChunkSize{Width: 16, Height: 32}
	params.AsyncLoading = async
	w, err := NewWorld(params, opts...)
	require.NoError(t, err)
	return w
}

func TestNewWorldRejectsInvalidParams(t *testing.T) {
	params := DefaultParams()
	params.ChunkSize.Width = 0

	_, err := NewWorld(params)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidParams))
}

func TestWorldToChunkCoords(t *testing.T) {
	w := newTestWorld(t, false)

	tests := []struct {
		x, y, z int
		chunk   vec.Vec2
		local   vec.Vec3
	}{
		{0, 5, 0, vec.Vec2{X: 0, Z: 0}, vec.Vec3{X: 0, Y: 5, Z: 0}},
		{15, 0, 16, vec.Vec2{X: 0, Z: 1}, vec.Vec3{X: 15, Y: 0, Z: 0}},
		{-1, 40, -16, vec.Vec2{X: -1, Z: -1}, vec.Vec3{X: 15, Y: 40, Z: 0}},
		{-17, -3, 33, vec.Vec2{X: -2, Z: 2}, vec.Vec3{X: 15, Y: -3, Z: 1}},
	}

	for _, tt := range tests {
		got := w.WorldToChunkCoords(tt.x, tt.y, tt.z)
		assert.Equal(t, tt.chunk, got.Chunk, "чанк для (%d,%d,%d)", tt.x, tt.y, tt.z)
		assert.Equal(t, tt.local, got.Block, "локальные координаты для (%d,%d,%d)", tt.x, tt.y, tt.z)
	}
}

func TestVisibleChunksSquare(t *testing.T) {
	for _, d := range []int{0, 1, 2, 3} {
		params := DefaultParams()
		params.DrawDistance = d
		w, err := NewWorld(params)
		require.NoError(t, err)

		visible := w.VisibleChunks(mgl64.Vec3{-40, 10, 70})
		require.Len(t, visible, (2*d+1)*(2*d+1))

		center := vec.Vec2{X: -2, Z: 2}
		seen := make(map[vec.Vec2]bool)
		for _, c := range visible {
			assert.LessOrEqual(t, c.ChebyshevDistance(center), d)
			assert.False(t, seen[c], "дубликат %v", c)
			seen[c] = true
		}
	}
}

func TestUpdateSyncLoadsVisibleSet(t *testing.T) {
	w := newTestWorld(t, false)
	ctx := context.Background()

	added, removed := w.Update(ctx, fixedPosition{8, 20, 8})
	assert.Equal(t, 9, added)
	assert.Equal(t, 0, removed)
	assert.Equal(t, w.VisibleChunks(mgl64.Vec3{8, 20, 8}), w.LoadedChunks())

	for _, c := range w.LoadedChunks() {
		assert.Equal(t, ChunkReady, w.ChunkState(c))
	}

	// Сдвиг на один чанк: 3 новых, 3 выгруженных
	added, removed = w.Update(ctx, fixedPosition{24, 20, 8})
	assert.Equal(t, 3, added)
	assert.Equal(t, 3, removed)
	assert.Equal(t, w.VisibleChunks(mgl64.Vec3{24, 20, 8}), w.LoadedChunks())
	assert.Equal(t, ChunkAbsent, w.ChunkState(vec.Vec2{X: -1, Z: 0}))
}

func TestUpdateAsyncDefersGeneration(t *testing.T) {
	w := newTestWorld(t, true)
	ctx := context.Background()

	w.Update(ctx, fixedPosition{})
	require.Len(t, w.LoadedChunks(), 9)
	assert.Equal(t, 9, w.PendingCount())
	assert.Equal(t, ChunkLoading, w.ChunkState(vec.Vec2{}))
	assert.Equal(t, NotLoaded, w.GetBlock(0, 0, 0).State, "генерирующийся чанк отвечает NotLoaded")

	n := w.ProcessPending(ctx, 0)
	assert.Equal(t, 9, n)
	assert.Equal(t, 0, w.PendingCount())
	assert.Equal(t, ChunkReady, w.ChunkState(vec.Vec2{}))
	assert.Equal(t, Present, w.GetBlock(0, 0, 0).State)
	assert.Equal(t, w.VisibleChunks(mgl64.Vec3{}), w.LoadedChunks())
}

func TestEvictionCancelsPendingGeneration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	w := newTestWorld(t, true, WithMetrics(m))
	ctx := context.Background()

	w.Update(ctx, fixedPosition{})
	// Уходим далеко: все девять отложенных генераций отменяются
	_, removed := w.Update(ctx, fixedPosition{1000, 0, 1000})
	assert.Equal(t, 9, removed)
	assert.Equal(t, 9, w.PendingCount())

	n := w.ProcessPending(ctx, 0)
	assert.Equal(t, 9, n, "генерируются только новые чанки")
	assert.Equal(t, float64(9), testutil.ToFloat64(m.chunksCancelled))
	assert.Equal(t, float64(9), testutil.ToFloat64(m.chunksLoaded))
	assert.Equal(t, float64(9), testutil.ToFloat64(m.active))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.pending))
}

func TestProcessPendingRateLimited(t *testing.T) {
	w := newTestWorld(t, true, WithRateLimit(0.001, 2))
	ctx := context.Background()

	w.Update(ctx, fixedPosition{})
	assert.Equal(t, 2, w.ProcessPending(ctx, 0), "лимитер пропускает только burst")
	assert.Equal(t, 7, w.PendingCount())
	assert.Equal(t, 0, w.ProcessPending(ctx, 0))
}

func TestProcessPendingStopsOnCancelledContext(t *testing.T) {
	w := newTestWorld(t, true)
	w.Update(context.Background(), fixedPosition{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, 0, w.ProcessPending(ctx, 0))
	assert.Equal(t, 9, w.PendingCount())
}

func TestGetBlockTriState(t *testing.T) {
	w := newTestWorld(t, false)
	ctx := context.Background()

	assert.Equal(t, NotLoaded, w.GetBlock(0, 0, 0).State, "чанк отсутствует")

	w.Update(ctx, fixedPosition{})
	ground := w.GetBlock(0, 0, 0)
	assert.Equal(t, Present, ground.State)
	assert.True(t, ground.Solid(), "нижний слой всегда твёрдый")

	assert.Equal(t, OutOfBounds, w.GetBlock(0, -1, 0).State)
	assert.Equal(t, OutOfBounds, w.GetBlock(0, 32, 0).State)
	assert.False(t, w.GetBlock(0, 32, 0).Solid())

	assert.Equal(t, NotLoaded, w.GetBlock(100, 0, 100).State)

	// Мировые отрицательные координаты попадают в чанк (-1,-1)
	c, ok := w.Chunk(-1, -1)
	require.True(t, ok)
	local, _ := c.GetBlock(15, 3, 15)
	assert.Equal(t, local.ID, w.GetBlock(-1, 3, -1).Block.ID)
}

func TestGenerateAroundOrigin(t *testing.T) {
	w := newTestWorld(t, true)
	w.Update(context.Background(), fixedPosition{500, 0, 500})
	require.Equal(t, 9, w.PendingCount())

	w.Generate(context.Background())
	assert.Equal(t, 0, w.PendingCount())
	assert.Equal(t, w.VisibleChunks(mgl64.Vec3{}), w.LoadedChunks())
	for _, c := range w.LoadedChunks() {
		assert.Equal(t, ChunkReady, w.ChunkState(c))
	}
}

func TestRegenerate(t *testing.T) {
	w := newTestWorld(t, false)
	ctx := context.Background()
	w.Update(ctx, fixedPosition{})
	c, _ := w.Chunk(0, 0)
	before := c.Digest()

	params := w.Params()
	params.Seed = 99
	require.NoError(t, w.Regenerate(params))
	assert.Empty(t, w.LoadedChunks())

	w.Update(ctx, fixedPosition{})
	c, _ = w.Chunk(0, 0)
	assert.NotEqual(t, before, c.Digest())

	params.Terrain.Scale = 0
	err := w.Regenerate(params)
	assert.True(t, errors.Is(err, ErrInvalidParams))
	assert.Equal(t, uint32(99), w.Params().Seed, "неверные параметры не применяются")
}

func TestDisposeChunks(t *testing.T) {
	w := newTestWorld(t, false)
	w.Update(context.Background(), fixedPosition{})
	c, _ := w.Chunk(0, 0)
	require.NotZero(t, c.InstanceCount())

	w.DisposeChunks()
	assert.Empty(t, w.LoadedChunks())
	assert.Zero(t, c.InstanceCount())
	assert.NotEmpty(t, w.ID())
}
