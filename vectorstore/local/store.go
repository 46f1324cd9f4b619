package local

import (
	"context"
	"log/slog"

	"github.com/poiesic/passage/core"
	"github.com/poiesic/passage/storage"
	"github.com/poiesic/passage/vectorstore"
)

// Store adapts a chunk repository to the vector index boundary. Records
// are rebuilt into chunk rows from their metadata, so the local index
// serves the same payload a hosted index would.
type Store struct {
	repo   storage.ChunkRepository
	logger *slog.Logger
}

var _ vectorstore.Upserter = (*Store)(nil)

// NewStore creates a local vector index over the given repository. The
// caller retains ownership of the repository; Close here is a no-op.
func NewStore(repo storage.ChunkRepository) *Store {
	return &Store{
		repo:   repo,
		logger: slog.Default().With("component", "local-vectorstore"),
	}
}

// Upsert stores each record as a chunk row with its vector attached.
func (s *Store) Upsert(ctx context.Context, records []vectorstore.Record) error {
	if len(records) == 0 {
		return nil
	}

	chunks := make([]*core.Chunk, 0, len(records))
	for _, rec := range records {
		chunks = append(chunks, chunkFromRecord(rec))
	}
	if err := s.repo.PutChunks(ctx, chunks...); err != nil {
		return err
	}
	s.logger.Debug("stored vectors", "count", len(chunks))
	return nil
}

// Stats reports the chunk count; dimension comes from any stored vector.
func (s *Store) Stats(ctx context.Context) (*vectorstore.IndexStats, error) {
	count, err := s.repo.CountChunks(ctx)
	if err != nil {
		return nil, err
	}

	dim := 0
	if count > 0 {
		// Any high-scoring probe returns at least one stored vector.
		results, err := s.repo.FindSimilar(ctx, nil, -1, 1)
		if err == nil && len(results) > 0 {
			dim = len(results[0].Chunk.Vector)
		}
	}

	return &vectorstore.IndexStats{TotalVectors: count, Dimension: dim}, nil
}

// Close is a no-op; the repository is owned by the caller.
func (s *Store) Close() error {
	return nil
}

// chunkFromRecord rebuilds a chunk row from the metadata contract the
// upload stage writes. Numeric metadata may arrive as float64 (JSON) or
// native int, depending on whether the record crossed a JSON boundary.
func chunkFromRecord(rec vectorstore.Record) *core.Chunk {
	md := rec.Metadata
	return &core.Chunk{
		ChunkID:       rec.ID,
		VideoID:       mdString(md, "video_id"),
		Index:         mdInt(md, "chunk_index"),
		Text:          mdString(md, "text"),
		Start:         mdFloat(md, "start_time"),
		End:           mdFloat(md, "end_time"),
		StartStamp:    mdString(md, "start_timestamp"),
		EndStamp:      mdString(md, "end_timestamp"),
		Duration:      mdFloat(md, "duration_seconds"),
		VideoTitle:    mdString(md, "video_title"),
		Channel:       mdString(md, "channel"),
		VideoDuration: mdFloat(md, "video_duration_seconds"),
		ThumbnailURL:  mdString(md, "thumbnail_url"),
		WatchURL:      mdString(md, "youtube_url"),
		VideoURL:      mdString(md, "video_url"),
		EmbeddingText: mdString(md, "embedding_text"),
		Vector:        rec.Values,
	}
}

func mdString(md map[string]any, key string) string {
	if v, ok := md[key].(string); ok {
		return v
	}
	return ""
}

func mdFloat(md map[string]any, key string) float64 {
	switch v := md[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

func mdInt(md map[string]any, key string) int {
	switch v := md[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}
