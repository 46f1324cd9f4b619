package embedding

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/passage/ai/mock"
	"github.com/poiesic/passage/artifact"
	"github.com/poiesic/passage/core"
	"github.com/poiesic/passage/pipeline"
)

func writeChunkDoc(t *testing.T, path string, n int) {
	t.Helper()
	doc := &artifact.ChunkDocument{TotalVideos: 1}
	for i := 0; i < n; i++ {
		doc.Chunks = append(doc.Chunks, &core.Chunk{
			ChunkID:       core.ChunkID("vid1", i),
			VideoID:       "vid1",
			Index:         i,
			Text:          "chunk text",
			EmbeddingText: "Video | 0:00\n\nchunk text",
			Start:         float64(i) * 75,
			End:           float64(i+1) * 75,
			Duration:      75,
		})
	}
	require.NoError(t, artifact.WriteChunkDocument(path, doc))
}

func testRunConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	pipeCfg := pipeline.DefaultConfig()
	pipeCfg.BatchSize = 4
	pipeCfg.CheckpointEvery = 1
	pipeCfg.Throttle = 0
	return &Config{
		InputPath:    filepath.Join(dir, "chunks.json"),
		OutputPath:   filepath.Join(dir, "embeddings.json"),
		ProgressPath: filepath.Join(dir, "progress.json"),
		Model:        "text-embedding-3-small",
		Dimensions:   8,
		Pipeline:     pipeCfg,
	}
}

func TestRunEmbedsAllChunks(t *testing.T) {
	cfg := testRunConfig(t)
	writeChunkDoc(t, cfg.InputPath, 10)

	embedder := mock.NewMockEmbedder()
	embedder.Dimensions = 8

	sum, err := Run(context.Background(), cfg, embedder, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 10, sum.Succeeded)
	assert.Equal(t, 0, sum.Failed)

	doc, err := artifact.LoadEmbeddingDocument(cfg.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, 10, doc.TotalChunks)
	assert.Equal(t, "text-embedding-3-small", doc.Model)
	for _, chunk := range doc.Chunks {
		assert.Len(t, chunk.Vector, 8)
	}
}

func TestRunMissingInputIsFatal(t *testing.T) {
	cfg := testRunConfig(t)

	_, err := Run(context.Background(), cfg, mock.NewMockEmbedder(), io.Discard)
	assert.ErrorIs(t, err, artifact.ErrNotFound)
}

func TestRunResumesWithoutReembedding(t *testing.T) {
	cfg := testRunConfig(t)
	writeChunkDoc(t, cfg.InputPath, 8)

	embedder := mock.NewMockEmbedder()
	_, err := Run(context.Background(), cfg, embedder, io.Discard)
	require.NoError(t, err)
	firstCalls := embedder.CallCount()

	sum, err := Run(context.Background(), cfg, embedder, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 8, sum.Skipped)
	assert.Equal(t, 0, sum.Succeeded)
	assert.Equal(t, firstCalls, embedder.CallCount())

	// The document still carries every embedded chunk.
	doc, err := artifact.LoadEmbeddingDocument(cfg.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, 8, doc.TotalChunks)
}

func TestRunFailedBatchRecordedAndRetried(t *testing.T) {
	cfg := testRunConfig(t)
	writeChunkDoc(t, cfg.InputPath, 8)

	embedder := mock.NewMockEmbedder()
	calls := 0
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("service unavailable")
		}
		vecs := make([][]float32, len(texts))
		for i := range texts {
			vecs[i] = []float32{1, 0}
		}
		return vecs, nil
	}

	sum, err := Run(context.Background(), cfg, embedder, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Succeeded)
	assert.Equal(t, 4, sum.Failed)
	assert.Len(t, sum.FailedIDs, 4)

	// The failed chunks embed on the next incremental run.
	sum, err = Run(context.Background(), cfg, embedder, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Succeeded)
	assert.Empty(t, sum.FailedIDs)
}

func TestRunEmbedsFallbackText(t *testing.T) {
	cfg := testRunConfig(t)
	doc := &artifact.ChunkDocument{
		Chunks: []*core.Chunk{{
			ChunkID: "vid1-0000", VideoID: "vid1", Text: "plain text only",
			End: 75, Duration: 75,
		}},
	}
	require.NoError(t, artifact.WriteChunkDocument(cfg.InputPath, doc))

	var got []string
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		got = texts
		return [][]float32{{1}}, nil
	}

	_, err := Run(context.Background(), cfg, embedder, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, []string{"plain text only"}, got)
}

func TestRunCountMismatchFailsBatch(t *testing.T) {
	cfg := testRunConfig(t)
	writeChunkDoc(t, cfg.InputPath, 4)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1}}, nil // short result
	}

	sum, err := Run(context.Background(), cfg, embedder, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Succeeded)
	assert.Equal(t, 4, sum.Failed)
}

func TestRunRequiresEmbedder(t *testing.T) {
	_, err := Run(context.Background(), testRunConfig(t), nil, io.Discard)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}
