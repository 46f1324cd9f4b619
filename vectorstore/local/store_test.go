package local

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	badgerstore "github.com/poiesic/passage/storage/badger"
	"github.com/poiesic/passage/vectorstore"
)

func newTestStore(t *testing.T) (*Store, context.Context) {
	t.Helper()
	repo, backend, err := badgerstore.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return NewStore(repo), context.Background()
}

func record(id string, values []float32) vectorstore.Record {
	return vectorstore.Record{
		ID:     id,
		Values: values,
		Metadata: map[string]any{
			"video_id":        "vid1",
			"chunk_index":     float64(0),
			"text":            "chunk text",
			"start_time":      0.0,
			"end_time":        75.0,
			"start_timestamp": "0:00",
			"end_timestamp":   "1:15",
			"duration_seconds": 75.0,
			"video_title":     "A Video",
			"channel":         "Some Channel",
		},
	}
}

func TestUpsertAndStats(t *testing.T) {
	store, ctx := newTestStore(t)

	vec := vectorstore.NormalizeVector([]float32{1, 2, 3})
	require.NoError(t, store.Upsert(ctx, []vectorstore.Record{record("vid1-0000", vec)}))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalVectors)
	assert.Equal(t, 3, stats.Dimension)
}

func TestUpsertRebuildsChunkRow(t *testing.T) {
	store, ctx := newTestStore(t)

	vec := vectorstore.NormalizeVector([]float32{1, 0})
	require.NoError(t, store.Upsert(ctx, []vectorstore.Record{record("vid1-0000", vec)}))

	results, err := store.repo.FindSimilar(ctx, vec, 0.9, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)

	chunk := results[0].Chunk
	assert.Equal(t, "vid1-0000", chunk.ChunkID)
	assert.Equal(t, "vid1", chunk.VideoID)
	assert.Equal(t, "A Video", chunk.VideoTitle)
	assert.Equal(t, 75.0, chunk.End)
	assert.Equal(t, vec, chunk.Vector)
}

func TestUpsertIdempotentPerID(t *testing.T) {
	store, ctx := newTestStore(t)

	vec := vectorstore.NormalizeVector([]float32{1, 0})
	recs := []vectorstore.Record{record("vid1-0000", vec)}
	require.NoError(t, store.Upsert(ctx, recs))
	require.NoError(t, store.Upsert(ctx, recs))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalVectors)
}

func TestStatsEmpty(t *testing.T) {
	store, ctx := newTestStore(t)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalVectors)
	assert.Equal(t, 0, stats.Dimension)
}
