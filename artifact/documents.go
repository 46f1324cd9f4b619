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


package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/poiesic/passage/chunker"
	"github.com/poiesic/passage/core"
)

// ChunkingParameters records the duration triple a chunk document was
// produced with.
type ChunkingParameters struct {
	TargetDuration float64 `json:"target_chunk_duration"`
	MinDuration    float64 `json:"min_chunk_duration"`
	MaxDuration    float64 `json:"max_chunk_duration"`
}

// ParametersFrom captures a chunker config into document form.
func ParametersFrom(cfg *chunker.Config) ChunkingParameters {
	return ChunkingParameters{
		TargetDuration: cfg.TargetDuration,
		MinDuration:    cfg.MinDuration,
		MaxDuration:    cfg.MaxDuration,
	}
}

// ChunkDocument is the chunking stage's output: every chunk produced from
// a channel's transcripts, with enough header information to audit the
// run that produced it.
type ChunkDocument struct {
	CreatedAt          time.Time          `json:"created_at"`
	ChannelHandle      string             `json:"channel_handle,omitempty"`
	ChannelDisplayName string             `json:"channel_display_name,omitempty"`
	TotalVideos        int                `json:"total_videos"`
	TotalChunks        int                `json:"total_chunks"`
	Parameters         ChunkingParameters `json:"chunking_parameters"`
	Chunks             []*core.Chunk      `json:"chunks"`
}

// EmbeddingDocument is the embedding stage's output: the chunk records
// that have vectors, plus the model identity they were embedded with.
type EmbeddingDocument struct {
	CreatedAt   time.Time     `json:"created_at"`
	Model       string        `json:"model"`
	Dimensions  int           `json:"dimensions"`
	TotalChunks int           `json:"total_chunks"`
	Chunks      []*core.Chunk `json:"chunks"`
}

// LoadChunkDocument reads a chunk document from disk. A missing file is
// reported as ErrNotFound.
func LoadChunkDocument(path string) (*ChunkDocument, error) {
	var doc ChunkDocument
	if err := loadJSON(path, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// LoadEmbeddingDocument reads an embedding document from disk. A missing
// file is reported as ErrNotFound.
func LoadEmbeddingDocument(path string) (*EmbeddingDocument, error) {
	var doc EmbeddingDocument
	if err := loadJSON(path, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// WriteChunkDocument persists a chunk document atomically, stamping
// creation time and totals.
func WriteChunkDocument(path string, doc *ChunkDocument) error {
	doc.CreatedAt = time.Now().UTC()
	doc.TotalChunks = len(doc.Chunks)
	return writeJSON(path, doc)
}

// WriteEmbeddingDocument persists an embedding document atomically,
// stamping creation time and totals.
func WriteEmbeddingDocument(path string, doc *EmbeddingDocument) error {
	doc.CreatedAt = time.Now().UTC()
	doc.TotalChunks = len(doc.Chunks)
	return writeJSON(path, doc)
}

func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return fmt.Errorf("failed to read document: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse document %s: %w", path, err)
	}
	return nil
}

// writeJSON writes v as indented JSON via a temp file in the target
// directory followed by a rename, so readers never observe a partial
// document.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".artifact-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace document: %w", err)
	}
	return nil
}
