// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package embedding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/passage/ai"
	"github.com/poiesic/passage/artifact"
	"github.com/poiesic/passage/core"
	"github.com/poiesic/passage/pipeline"
)

// costPerMillionTokens is the advisory price used for the pre-run
// estimate, matching the hosted small embedding model tier.
const costPerMillionTokens = 0.02

var (
	// ErrEmbedderRequired is returned when no embedder is provided.
	ErrEmbedderRequired = errors.New("embedder required")
)

// Config holds configuration for an embedding run.
type Config struct {
	// InputPath is the chunk document from the chunking stage.
	InputPath string

	// OutputPath is where the embedding document is written.
	OutputPath string

	// ProgressPath is where per-chunk progress is persisted.
	ProgressPath string

	// Model and Dimensions identify the embedding model in the output
	// document header.
	Model      string
	Dimensions int

	// Pipeline holds batching and checkpoint knobs. Nil means defaults.
	Pipeline *pipeline.Config
}

// Run embeds every pending chunk and writes the embedding document.
// progress: where to write human-readable progress output (typically os.Stderr)
func Run(ctx context.Context, cfg *Config, embedder ai.Embedder, progress io.Writer) (*pipeline.Summary, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	logger := slog.Default().With("component", "embed-run")

	// A missing chunk document is fatal before any processing starts.
	doc, err := artifact.LoadChunkDocument(cfg.InputPath)
	if err != nil {
		return nil, err
	}
	if len(doc.Chunks) == 0 {
		return nil, artifact.ErrEmptyDocument
	}

	pipeCfg := cfg.Pipeline
	if pipeCfg == nil {
		pipeCfg = pipeline.DefaultConfig()
	}

	logCostEstimate(logger, doc.Chunks)

	sink := artifact.NewEmbeddingSink(cfg.OutputPath, cfg.Model, cfg.Dimensions)
	if !pipeCfg.Rebuild {
		if existing, err := artifact.LoadEmbeddingDocument(cfg.OutputPath); err == nil {
			sink.Preload(existing.Chunks)
			logger.Info("loaded existing embeddings", "count", len(existing.Chunks))
		}
	}

	runner, err := pipeline.NewRunner[*core.Chunk, *core.Chunk](
		pipeCfg, pipeline.NewFileStore(cfg.ProgressPath), sink, progress)
	if err != nil {
		return nil, err
	}

	return runner.Run(ctx, doc.Chunks, func(ctx context.Context, batch []*core.Chunk) (pipeline.BatchResult[*core.Chunk], error) {
		return embedBatch(ctx, embedder, batch)
	})
}

// embedBatch embeds one batch of chunks. The embedder retries
// internally, so any error here fails the whole batch.
func embedBatch(ctx context.Context, embedder ai.Embedder, batch []*core.Chunk) (pipeline.BatchResult[*core.Chunk], error) {
	var result pipeline.BatchResult[*core.Chunk]

	texts := make([]string, len(batch))
	for i, chunk := range batch {
		texts[i] = embeddingInput(chunk)
	}

	vectors, err := embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return result, err
	}
	if len(vectors) != len(batch) {
		return result, fmt.Errorf("embedding count mismatch: sent %d chunks, got %d vectors", len(batch), len(vectors))
	}

	for i, chunk := range batch {
		embedded := *chunk
		embedded.Vector = vectors[i]
		result.Succeeded = append(result.Succeeded, pipeline.Payload[*core.Chunk]{
			ID:    chunk.ChunkID,
			Value: &embedded,
		})
	}
	return result, nil
}

// embeddingInput returns the text to embed: the contextualized
// embedding text when the chunking stage produced one, the raw chunk
// text otherwise.
func embeddingInput(chunk *core.Chunk) string {
	if chunk.EmbeddingText != "" {
		return chunk.EmbeddingText
	}
	return chunk.Text
}

// logCostEstimate logs a rough token and cost figure before the run.
// Characters/4 approximates tokens for English text.
func logCostEstimate(logger *slog.Logger, chunks []*core.Chunk) {
	totalChars := 0
	for _, chunk := range chunks {
		totalChars += len(embeddingInput(chunk))
	}
	tokens := totalChars / 4
	cost := float64(tokens) / 1_000_000 * costPerMillionTokens
	logger.Info("embedding cost estimate",
		"chunks", len(chunks), "estTokens", tokens, "estCostUSD", fmt.Sprintf("$%.4f", cost))
}
