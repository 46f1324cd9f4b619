package artifact

import (
	"context"

	"github.com/poiesic/passage/core"
)

// EmbeddingSink accumulates embedded chunks and flushes them to an
// embedding document at checkpoints. It satisfies the batch runner's
// output sink, so an interrupted embedding run leaves a valid partial
// document on disk next to its progress file.
type EmbeddingSink struct {
	path       string
	model      string
	dimensions int
	chunks     []*core.Chunk
	dirty      bool
}

// NewEmbeddingSink creates a sink that writes to path with the given
// model identity in the document header.
func NewEmbeddingSink(path, model string, dimensions int) *EmbeddingSink {
	return &EmbeddingSink{
		path:       path,
		model:      model,
		dimensions: dimensions,
	}
}

// Preload seeds the sink with chunks embedded by an earlier run, so an
// incremental run's document stays complete.
func (s *EmbeddingSink) Preload(chunks []*core.Chunk) {
	s.chunks = append(s.chunks, chunks...)
}

// Append adds embedded chunks to the pending document.
func (s *EmbeddingSink) Append(chunks ...*core.Chunk) {
	s.chunks = append(s.chunks, chunks...)
	s.dirty = true
}

// Flush writes the accumulated document if anything changed since the
// last flush.
func (s *EmbeddingSink) Flush(_ context.Context) error {
	if !s.dirty {
		return nil
	}
	doc := &EmbeddingDocument{
		Model:      s.model,
		Dimensions: s.dimensions,
		Chunks:     s.chunks,
	}
	if err := WriteEmbeddingDocument(s.path, doc); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// Len returns the number of chunks accumulated, preloaded ones included.
func (s *EmbeddingSink) Len() int {
	return len(s.chunks)
}

// Chunks exposes the accumulated chunks.
func (s *EmbeddingSink) Chunks() []*core.Chunk {
	return s.chunks
}
