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


// Package passage turns long-form video transcripts into a searchable
// index of timestamp-addressable chunks. The Library type ties the local
// chunk store and the embedding service together for embedded use; the
// pipeline stages themselves live in the ingestion, embedding and upload
// packages.
package passage

import (
	"log/slog"

	"github.com/poiesic/passage/ai"
	"github.com/poiesic/passage/ai/openai"
	"github.com/poiesic/passage/search"
	"github.com/poiesic/passage/storage"
	"github.com/poiesic/passage/storage/badger"
	"github.com/poiesic/passage/vectorstore"
	"github.com/poiesic/passage/vectorstore/local"
)

// Library is the embedded-use facade: a local BadgerDB chunk index plus
// an embedding client, enough to upsert and search without any hosted
// services beyond the embedding API.
type Library struct {
	backend   *badger.Backend
	chunkRepo storage.ChunkRepository
	embedder  ai.Embedder
	logger    *slog.Logger
}

// LibraryOption configures a Library.
type LibraryOption func(*libraryOptions)

type libraryOptions struct {
	aiConfig *ai.Config
}

// WithAIConfig overrides the embedding service configuration.
func WithAIConfig(cfg *ai.Config) LibraryOption {
	return func(o *libraryOptions) {
		o.aiConfig = cfg
	}
}

// Open opens (or creates) a library at the given directory.
func Open(filePath string, opts ...LibraryOption) (*Library, error) {
	options := &libraryOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}
	chunkRepo := badger.NewChunkRepository(backend)

	embedder, err := openai.NewEmbedder(options.aiConfig)
	if err != nil {
		chunkRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Library{
		backend:   backend,
		chunkRepo: chunkRepo,
		embedder:  embedder,
		logger:    slog.Default(),
	}, nil
}

// Close releases the library's resources.
func (l *Library) Close() error {
	if err := l.chunkRepo.Close(); err != nil {
		l.logger.Error("error closing chunk repository", "err", err)
		return err
	}
	if err := l.backend.Close(); err != nil {
		l.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Chunks exposes the chunk repository.
func (l *Library) Chunks() storage.ChunkRepository {
	return l.chunkRepo
}

// Embedder exposes the embedding client.
func (l *Library) Embedder() ai.Embedder {
	return l.embedder
}

// Upserter returns a vector index view over the library's chunk store,
// for running the upload stage fully locally.
func (l *Library) Upserter() vectorstore.Upserter {
	return local.NewStore(l.chunkRepo)
}

// NewSearcher creates a searcher over the library's chunks.
func (l *Library) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(l.chunkRepo, l.embedder, opts...)
}
