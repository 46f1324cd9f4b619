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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/passage/ai"
	"github.com/poiesic/passage/ai/openai"
	"github.com/poiesic/passage/chunker"
	"github.com/poiesic/passage/embedding"
	"github.com/poiesic/passage/ingestion"
	"github.com/poiesic/passage/pipeline"
	"github.com/poiesic/passage/search"
	"github.com/poiesic/passage/storage/badger"
	"github.com/poiesic/passage/upload"
	"github.com/poiesic/passage/vectorstore"
	"github.com/poiesic/passage/vectorstore/local"
	"github.com/poiesic/passage/vectorstore/pinecone"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "passage",
		Usage: "Turn video transcripts into a searchable timestamp index",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "chunk",
				Usage:  "Chunk fetched transcripts into a chunk document",
				Action: chunkCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "transcripts",
						Aliases:  []string{"t"},
						Usage:    "Directory of fetched transcript JSON files",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "metadata",
						Usage: "Path to the video metadata document",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Path for the chunk document",
						Value:   "chunks.json",
					},
					&cli.StringFlag{
						Name:  "progress",
						Usage: "Path for the chunking progress file",
						Value: "chunk_progress.json",
					},
					&cli.Float64Flag{
						Name:  "target-duration",
						Usage: "Ideal chunk length in seconds",
						Value: chunker.DefaultConfig().TargetDuration,
					},
					&cli.Float64Flag{
						Name:  "min-duration",
						Usage: "Smallest acceptable chunk length in seconds",
						Value: chunker.DefaultConfig().MinDuration,
					},
					&cli.Float64Flag{
						Name:  "max-duration",
						Usage: "Largest acceptable chunk length in seconds",
						Value: chunker.DefaultConfig().MaxDuration,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Chunking pool size (0 = half the CPUs)",
					},
					&cli.BoolFlag{
						Name:  "rebuild",
						Usage: "Re-chunk every video instead of resuming",
					},
					&cli.StringFlag{
						Name:  "channel-handle",
						Usage: "Channel handle for the document header",
					},
					&cli.StringFlag{
						Name:  "channel-name",
						Usage: "Channel display name for the document header",
					},
				},
			},
			{
				Name:   "embed",
				Usage:  "Embed a chunk document into an embedding document",
				Action: embedCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "input",
						Aliases: []string{"i"},
						Usage:   "Path to the chunk document",
						Value:   "chunks.json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Path for the embedding document",
						Value:   "embeddings.json",
					},
					&cli.StringFlag{
						Name:  "progress",
						Usage: "Path for the embedding progress file",
						Value: "embed_progress.json",
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: ai.DefaultConfig().EmbeddingHost,
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "dimensions",
						Usage: "Embedding vector dimensions",
						Value: ai.DefaultConfig().Dimensions,
					},
					&cli.StringFlag{
						Name:    "api-key",
						Usage:   "Embedding service API key",
						EnvVars: []string{"OPENAI_API_KEY"},
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed embedding calls",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				}, batchFlags()...),
			},
			{
				Name:   "upload",
				Usage:  "Upload an embedding document to a vector index",
				Action: uploadCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "input",
						Aliases: []string{"i"},
						Usage:   "Path to the embedding document",
						Value:   "embeddings.json",
					},
					&cli.StringFlag{
						Name:  "progress",
						Usage: "Path for the upload progress file",
						Value: "upload_progress.json",
					},
					&cli.StringFlag{
						Name:  "index-host",
						Usage: "Pinecone index data-plane host URL",
					},
					&cli.StringFlag{
						Name:    "api-key",
						Usage:   "Pinecone API key",
						EnvVars: []string{"PINECONE_API_KEY"},
					},
					&cli.StringFlag{
						Name:  "namespace",
						Usage: "Pinecone namespace",
					},
					&cli.StringFlag{
						Name:    "local",
						Aliases: []string{"d"},
						Usage:   "Upload into a local BadgerDB directory instead of Pinecone",
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Print a sample record instead of uploading",
					},
				}, batchFlags()...),
			},
			{
				Name:      "search",
				Usage:     "Search a local chunk index",
				Action:    searchCommand,
				ArgsUsage: "QUERY",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: ai.DefaultConfig().EmbeddingHost,
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "api-key",
						Usage:   "Embedding service API key",
						EnvVars: []string{"OPENAI_API_KEY"},
					},
					&cli.IntFlag{
						Name:  "max-hits",
						Usage: "Maximum number of results",
						Value: 5,
					},
					&cli.Float64Flag{
						Name:  "min-score",
						Usage: "Minimum similarity score for a match",
						Value: float64(search.DefaultMinScore),
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// batchFlags returns the batching and checkpoint knobs shared by the
// embed and upload commands.
func batchFlags() []cli.Flag {
	defaults := pipeline.DefaultConfig()
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "batch-size",
			Usage: "Number of chunks to process in each batch",
			Value: defaults.BatchSize,
		},
		&cli.IntFlag{
			Name:  "checkpoint-every",
			Usage: "Persist progress every N batches",
			Value: defaults.CheckpointEvery,
		},
		&cli.DurationFlag{
			Name:  "throttle",
			Usage: "Delay between batches",
			Value: defaults.Throttle,
		},
		&cli.BoolFlag{
			Name:  "rebuild",
			Usage: "Reprocess every chunk instead of resuming",
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Process at most N pending chunks (0 = no limit)",
		},
	}
}

func pipelineConfigFromFlags(c *cli.Context) (*pipeline.Config, error) {
	cfg := &pipeline.Config{
		BatchSize:       c.Int("batch-size"),
		CheckpointEvery: c.Int("checkpoint-every"),
		Throttle:        c.Duration("throttle"),
		Rebuild:         c.Bool("rebuild"),
		Limit:           c.Int("limit"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func chunkCommand(c *cli.Context) error {
	ctx := context.Background()

	chunkerConfig := &chunker.Config{
		TargetDuration: c.Float64("target-duration"),
		MinDuration:    c.Float64("min-duration"),
		MaxDuration:    c.Float64("max-duration"),
	}
	if err := chunkerConfig.Validate(); err != nil {
		return fmt.Errorf("invalid chunking configuration: %w", err)
	}

	cfg := &ingestion.Config{
		TranscriptDir:      c.String("transcripts"),
		MetadataPath:       c.String("metadata"),
		OutputPath:         c.String("output"),
		ProgressPath:       c.String("progress"),
		Chunker:            chunkerConfig,
		Workers:            c.Int("workers"),
		Rebuild:            c.Bool("rebuild"),
		ChannelHandle:      c.String("channel-handle"),
		ChannelDisplayName: c.String("channel-name"),
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid chunking configuration: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Transcripts: %s\n", cfg.TranscriptDir)
	fmt.Fprintf(os.Stderr, "Output: %s\n", cfg.OutputPath)
	fmt.Fprintf(os.Stderr, "Durations: target %.0fs, min %.0fs, max %.0fs\n",
		chunkerConfig.TargetDuration, chunkerConfig.MinDuration, chunkerConfig.MaxDuration)
	fmt.Fprintln(os.Stderr)

	summary, err := ingestion.Run(ctx, cfg, os.Stderr)
	if err != nil {
		return fmt.Errorf("chunking failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Chunked %d videos into %d chunks (%d skipped, %d failed) in %s\n",
		summary.Videos, summary.Chunks, summary.Skipped, summary.Failed, summary.Elapsed.Round(time.Millisecond))
	return nil
}

func embedCommand(c *cli.Context) error {
	ctx := context.Background()

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithDimensions(c.Int("dimensions")),
		ai.WithAPIKey(c.String("api-key")),
		ai.WithMaxRetries(c.Int("max-retries")),
		ai.WithRetryDelay(c.Duration("retry-delay")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	pipelineConfig, err := pipelineConfigFromFlags(c)
	if err != nil {
		return fmt.Errorf("invalid batch configuration: %w", err)
	}

	cfg := &embedding.Config{
		InputPath:    c.String("input"),
		OutputPath:   c.String("output"),
		ProgressPath: c.String("progress"),
		Model:        aiConfig.EmbeddingModel,
		Dimensions:   aiConfig.Dimensions,
		Pipeline:     pipelineConfig,
	}

	fmt.Fprintf(os.Stderr, "Input: %s\n", cfg.InputPath)
	fmt.Fprintf(os.Stderr, "Output: %s\n", cfg.OutputPath)
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", aiConfig.EmbeddingHost)
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", aiConfig.EmbeddingModel)
	fmt.Fprintln(os.Stderr)

	summary, err := embedding.Run(ctx, cfg, embedder, os.Stderr)
	if err != nil {
		return fmt.Errorf("embedding failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Embedded %d chunks (%d skipped, %d failed) in %s\n",
		summary.Succeeded, summary.Skipped, summary.Failed, summary.Elapsed.Round(time.Millisecond))
	return nil
}

func uploadCommand(c *cli.Context) error {
	ctx := context.Background()

	upserter, target, err := buildUpserter(c)
	if err != nil {
		return err
	}
	defer upserter.Close()

	pipelineConfig, err := pipelineConfigFromFlags(c)
	if err != nil {
		return fmt.Errorf("invalid batch configuration: %w", err)
	}

	cfg := &upload.Config{
		InputPath:    c.String("input"),
		ProgressPath: c.String("progress"),
		DryRun:       c.Bool("dry-run"),
		Pipeline:     pipelineConfig,
	}

	fmt.Fprintf(os.Stderr, "Input: %s\n", cfg.InputPath)
	fmt.Fprintf(os.Stderr, "Index: %s\n", target)
	fmt.Fprintln(os.Stderr)

	summary, err := upload.Run(ctx, cfg, upserter, os.Stderr)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	if !cfg.DryRun {
		fmt.Fprintf(os.Stderr, "Uploaded %d chunks (%d skipped, %d failed) in %s\n",
			summary.Succeeded, summary.Skipped, summary.Failed, summary.Elapsed.Round(time.Millisecond))
	}
	return nil
}

// buildUpserter picks the upload target from flags. --local wins over the
// Pinecone flags so an operator can test a document locally without
// unsetting index credentials.
func buildUpserter(c *cli.Context) (vectorstore.Upserter, string, error) {
	if dbPath := c.String("local"); dbPath != "" {
		backend, err := badger.OpenBackend(dbPath, false)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open database: %w", err)
		}
		repo := badger.NewChunkRepository(backend)
		return &localTarget{backend: backend, Store: local.NewStore(repo)}, dbPath, nil
	}

	pineconeConfig := &pinecone.Config{
		IndexHost: c.String("index-host"),
		APIKey:    c.String("api-key"),
		Namespace: c.String("namespace"),
	}
	client, err := pinecone.NewClient(pineconeConfig)
	if err != nil {
		return nil, "", fmt.Errorf("invalid index configuration: %w", err)
	}
	return client, pineconeConfig.IndexHost, nil
}

// localTarget wraps a local store so closing the upserter also closes the
// backing database.
type localTarget struct {
	*local.Store
	backend *badger.Backend
}

func (t *localTarget) Close() error {
	if err := t.Store.Close(); err != nil {
		return err
	}
	return t.backend.Close()
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a search query is required")
	}

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo := badger.NewChunkRepository(backend)
	defer repo.Close()

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithAPIKey(c.String("api-key")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	searcher, err := search.NewSearcher(repo, embedder,
		search.WithMinScore(float32(c.Float64("min-score"))))
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	results, err := searcher.FindSimilar(ctx, query, c.Int("max-hits"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No matches.")
		return nil
	}

	for i, res := range results {
		chunk := res.Chunk
		fmt.Printf("%d. [%.3f] %s (%s - %s)\n", i+1, res.Score, chunk.VideoTitle, chunk.StartStamp, chunk.EndStamp)
		fmt.Printf("   %s\n", chunk.WatchURL)
		fmt.Printf("   %s\n\n", chunk.Text)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
