package artifact

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/passage/chunker"
	"github.com/poiesic/passage/core"
)

func sampleChunk(id string, index int) *core.Chunk {
	return &core.Chunk{
		ChunkID:  core.ChunkID(id, index),
		VideoID:  id,
		Index:    index,
		Text:     "some transcript text",
		Start:    0,
		End:      75,
		Duration: 75,
	}
}

func TestChunkDocumentRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chunks.json")

	doc := &ChunkDocument{
		ChannelHandle:      "somechannel",
		ChannelDisplayName: "Some Channel",
		TotalVideos:        1,
		Parameters:         ParametersFrom(chunker.DefaultConfig()),
		Chunks:             []*core.Chunk{sampleChunk("vid1", 0), sampleChunk("vid1", 1)},
	}
	require.NoError(t, WriteChunkDocument(path, doc))

	loaded, err := LoadChunkDocument(path)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.TotalChunks)
	assert.Equal(t, "somechannel", loaded.ChannelHandle)
	assert.Equal(t, 75.0, loaded.Parameters.TargetDuration)
	assert.Equal(t, "vid1-0000", loaded.Chunks[0].ChunkID)
	assert.False(t, loaded.CreatedAt.IsZero())
}

func TestLoadChunkDocumentMissing(t *testing.T) {
	_, err := LoadChunkDocument(filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadChunkDocumentCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chunks.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	_, err := LoadChunkDocument(path)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestEmbeddingDocumentRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "embeddings.json")

	c := sampleChunk("vid1", 0)
	c.Vector = []float32{0.1, 0.2, 0.3}
	require.NoError(t, WriteEmbeddingDocument(path, &EmbeddingDocument{
		Model:      "text-embedding-3-small",
		Dimensions: 3,
		Chunks:     []*core.Chunk{c},
	}))

	loaded, err := LoadEmbeddingDocument(path)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.TotalChunks)
	assert.Equal(t, "text-embedding-3-small", loaded.Model)
	assert.Len(t, loaded.Chunks[0].Vector, 3)
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chunks.json")
	require.NoError(t, WriteChunkDocument(path, &ChunkDocument{}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "chunks.json", entries[0].Name())
}

func TestEmbeddingSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "embeddings.json")
	sink := NewEmbeddingSink(path, "text-embedding-3-small", 1536)

	prior := sampleChunk("vid1", 0)
	sink.Preload([]*core.Chunk{prior})
	assert.Equal(t, 1, sink.Len())

	// Preload alone writes nothing.
	require.NoError(t, sink.Flush(context.Background()))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	sink.Append(sampleChunk("vid1", 1), sampleChunk("vid1", 2))
	require.NoError(t, sink.Flush(context.Background()))

	loaded, err := LoadEmbeddingDocument(path)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.TotalChunks)
	assert.Equal(t, 1536, loaded.Dimensions)
}
