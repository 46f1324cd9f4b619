package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/passage/artifact"
	"github.com/poiesic/passage/core"
	"github.com/poiesic/passage/pipeline"
	"github.com/poiesic/passage/vectorstore"
)

var (
	// ErrUpserterRequired is returned when no vector index is provided.
	ErrUpserterRequired = errors.New("upserter required")
)

// Config holds configuration for an upload run.
type Config struct {
	// InputPath is the embedding document from the embedding stage.
	InputPath string

	// ProgressPath is where per-chunk progress is persisted.
	ProgressPath string

	// DryRun prints a sample record instead of uploading anything.
	DryRun bool

	// Pipeline holds batching and checkpoint knobs. Nil means defaults.
	Pipeline *pipeline.Config
}

// Run upserts every pending embedded chunk into the index.
// progress: where to write human-readable progress output (typically os.Stderr)
func Run(ctx context.Context, cfg *Config, upserter vectorstore.Upserter, progress io.Writer) (*pipeline.Summary, error) {
	if upserter == nil {
		return nil, ErrUpserterRequired
	}
	if progress == nil {
		progress = io.Discard
	}
	logger := slog.Default().With("component", "upload-run")

	// A missing embedding document is fatal before any processing starts.
	doc, err := artifact.LoadEmbeddingDocument(cfg.InputPath)
	if err != nil {
		return nil, err
	}
	if len(doc.Chunks) == 0 {
		return nil, artifact.ErrEmptyDocument
	}

	if cfg.DryRun {
		return dryRun(doc, progress)
	}

	if stats, err := upserter.Stats(ctx); err != nil {
		logger.Warn("failed to read index stats", "err", err)
	} else {
		logger.Info("index before upload", "vectors", stats.TotalVectors, "dimension", stats.Dimension)
	}

	runner, err := pipeline.NewRunner[*core.Chunk, string](
		cfg.Pipeline, pipeline.NewFileStore(cfg.ProgressPath), pipeline.NewNopSink[string](), progress)
	if err != nil {
		return nil, err
	}

	sum, runErr := runner.Run(ctx, doc.Chunks, func(ctx context.Context, batch []*core.Chunk) (pipeline.BatchResult[string], error) {
		return upsertBatch(ctx, upserter, batch)
	})

	if stats, err := upserter.Stats(ctx); err == nil {
		logger.Info("index after upload", "vectors", stats.TotalVectors, "dimension", stats.Dimension)
	}
	return sum, runErr
}

// upsertBatch uploads one batch. Chunks without vectors are recorded
// failed individually; the embedding stage left them behind and
// uploading an empty vector would poison the index.
func upsertBatch(ctx context.Context, upserter vectorstore.Upserter, batch []*core.Chunk) (pipeline.BatchResult[string], error) {
	var result pipeline.BatchResult[string]

	records := make([]vectorstore.Record, 0, len(batch))
	uploadable := make([]*core.Chunk, 0, len(batch))
	for _, chunk := range batch {
		if len(chunk.Vector) == 0 {
			result.Failed = append(result.Failed, chunk.ChunkID)
			continue
		}
		records = append(records, BuildRecord(chunk))
		uploadable = append(uploadable, chunk)
	}

	if len(records) > 0 {
		if err := upserter.Upsert(ctx, records); err != nil {
			return pipeline.BatchResult[string]{}, err
		}
		for _, chunk := range uploadable {
			result.Succeeded = append(result.Succeeded, pipeline.Payload[string]{
				ID:    chunk.ChunkID,
				Value: chunk.ChunkID,
			})
		}
	}
	return result, nil
}

// dryRun prints the first uploadable record and an overall count, then
// returns without touching the index or the progress file.
func dryRun(doc *artifact.EmbeddingDocument, progress io.Writer) (*pipeline.Summary, error) {
	uploadable := 0
	var sample *vectorstore.Record
	for _, chunk := range doc.Chunks {
		if len(chunk.Vector) == 0 {
			continue
		}
		uploadable++
		if sample == nil {
			rec := BuildRecord(chunk)
			// Elide the vector; its width is all that matters here.
			rec.Values = rec.Values[:0]
			sample = &rec
		}
	}

	fmt.Fprintf(progress, "Dry run: %d of %d chunks would upload\n", uploadable, len(doc.Chunks))
	if sample != nil {
		data, err := json.MarshalIndent(sample, "", "  ")
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(progress, "Sample record:\n%s\n", data)
	}

	return &pipeline.Summary{Skipped: len(doc.Chunks)}, nil
}
