package storage

import (
	"context"

	"github.com/poiesic/passage/core"
)

// ChunkRepository provides operations for managing chunk records.
// Implementations must be thread-safe and support concurrent access.
type ChunkRepository interface {
	// PutChunks stores one or more chunks, overwriting existing records
	// with the same chunk id.
	PutChunks(ctx context.Context, chunks ...*core.Chunk) error

	// GetChunk retrieves a single chunk by its id.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, chunkID string) (*core.Chunk, error)

	// GetChunksBySource retrieves all chunks for one source video,
	// ordered by chunk index.
	GetChunksBySource(ctx context.Context, videoID string) ([]*core.Chunk, error)

	// CountChunks returns the number of stored chunks.
	CountChunks(ctx context.Context) (int, error)

	// FindSimilar finds chunks similar to the given vector.
	// Returns chunks with similarity >= minSimilarity, up to limit
	// results, ordered by similarity score (highest first). Vectors are
	// expected to be unit length.
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
