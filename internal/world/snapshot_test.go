package world

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTripPreservesDigest(t *testing.T) {
	w := newTestWorld(t, true)
	ctx := context.Background()
	w.Update(ctx, fixedPosition{})
	w.ProcessPending(ctx, 0)

	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, w.Params().Seed, w.ReadyChunks()))

	seed, chunks, err := ReadSnapshot(&buf)
	require.NoError(t, err)
	assert.Equal(t, w.Params().Seed, seed)
	require.Len(t, chunks, 9)

	for _, s := range chunks {
		c, ok := w.Chunk(s.Coords.X, s.Coords.Z)
		require.True(t, ok)
		assert.Equal(t, c.Digest(), s.Digest(), "чанк %v", s.Coords)
	}
}

func TestSnapshotSkipsLoadingChunks(t *testing.T) {
	w := newTestWorld(t, true)
	w.Update(context.Background(), fixedPosition{})

	var all []*Chunk
	for _, coords := range w.LoadedChunks() {
		c, _ := w.Chunk(coords.X, coords.Z)
		all = append(all, c)
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, 0, all))
	_, chunks, err := ReadSnapshot(&buf)
	require.NoError(t, err)
	assert.Empty(t, chunks)
	assert.Empty(t, w.ReadyChunks())
}

func TestReadSnapshotRejectsGarbage(t *testing.T) {
	_, _, err := ReadSnapshot(bytes.NewReader([]byte("not a snapshot")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadSnapshot))
}

func TestReadSnapshotHugeCountWithoutChunks(t *testing.T) {
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	require.NoError(t, err)

	hdr := make([]byte, 13)
	copy(hdr, snapshotMagic)
	hdr[4] = snapshotVersion
	binary.LittleEndian.PutUint32(hdr[5:], 0)
	binary.LittleEndian.PutUint32(hdr[9:], math.MaxUint32)
	_, err = enc.Write(hdr)
	require.NoError(t, err)
	require.NoError(t, enc.Close())

	_, chunks, err := ReadSnapshot(&buf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadSnapshot))
	assert.Nil(t, chunks)
}
