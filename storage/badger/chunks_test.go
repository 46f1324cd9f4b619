package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/passage/core"
	"github.com/poiesic/passage/storage"
	"github.com/poiesic/passage/vectorstore"
)

func newTestRepo(t *testing.T) storage.ChunkRepository {
	t.Helper()
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo
}

func testChunk(videoID string, index int, vector []float32) *core.Chunk {
	return &core.Chunk{
		ChunkID:  core.ChunkID(videoID, index),
		VideoID:  videoID,
		Index:    index,
		Text:     "chunk text",
		Start:    float64(index) * 75,
		End:      float64(index+1) * 75,
		Duration: 75,
		Vector:   vector,
	}
}

func TestPutAndGetChunk(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	chunk := testChunk("vid1", 0, []float32{0.5, 0.5})
	require.NoError(t, repo.PutChunks(ctx, chunk))

	got, err := repo.GetChunk(ctx, "vid1-0000")
	require.NoError(t, err)
	assert.Equal(t, chunk.Text, got.Text)
	assert.Equal(t, chunk.Vector, got.Vector)
}

func TestGetChunkNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetChunk(context.Background(), "missing-0000")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPutChunksRejectsInvalid(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.PutChunks(context.Background(), &core.Chunk{VideoID: "vid1", Text: "x", End: 1})
	assert.ErrorIs(t, err, core.ErrEmptyChunkID)
}

func TestPutChunksOverwrites(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	chunk := testChunk("vid1", 0, nil)
	require.NoError(t, repo.PutChunks(ctx, chunk))

	chunk.Text = "updated text"
	require.NoError(t, repo.PutChunks(ctx, chunk))

	got, err := repo.GetChunk(ctx, "vid1-0000")
	require.NoError(t, err)
	assert.Equal(t, "updated text", got.Text)

	count, err := repo.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGetChunksBySourceOrdered(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// Insert out of order across two videos.
	require.NoError(t, repo.PutChunks(ctx,
		testChunk("vid1", 2, nil),
		testChunk("vid2", 0, nil),
		testChunk("vid1", 0, nil),
		testChunk("vid1", 1, nil),
	))

	chunks, err := repo.GetChunksBySource(ctx, "vid1")
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
		assert.Equal(t, "vid1", chunk.VideoID)
	}
}

func TestCountChunks(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	count, err := repo.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, repo.PutChunks(ctx, testChunk("vid1", 0, nil), testChunk("vid1", 1, nil)))

	count, err = repo.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestFindSimilar(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.PutChunks(ctx,
		testChunk("vid1", 0, vectorstore.NormalizeVector([]float32{1, 0})),
		testChunk("vid1", 1, vectorstore.NormalizeVector([]float32{0.9, 0.1})),
		testChunk("vid1", 2, vectorstore.NormalizeVector([]float32{0, 1})),
		testChunk("vid1", 3, nil), // no vector, never matches
	))

	query := vectorstore.NormalizeVector([]float32{1, 0})
	results, err := repo.FindSimilar(ctx, query, 0.6, 10)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "vid1-0000", results[0].Chunk.ChunkID)
	assert.Equal(t, "vid1-0001", results[1].Chunk.ChunkID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestFindSimilarLimit(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.PutChunks(ctx, testChunk("vid1", i, vectorstore.NormalizeVector([]float32{1, 0}))))
	}

	results, err := repo.FindSimilar(ctx, []float32{1, 0}, 0.5, 3)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}
