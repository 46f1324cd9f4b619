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


package core

import "fmt"

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - ChunkID and VideoID must not be empty
//   - Text must not be empty
//   - End must be strictly after Start
//
// NOT validated (populated by later stages):
//   - Vector (can be empty until the embedding stage runs)
//   - Display metadata (can be empty for sources without metadata)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.ChunkID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyChunkID)
	}

	if chunk.VideoID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyVideoID)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyText)
	}

	if chunk.End <= chunk.Start {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrInvalidTimeRange)
	}

	return nil
}

// ValidateTranscript validates a Transcript according to domain rules.
//
// Validation rules:
//   - VideoID must not be empty
//   - Segments must be ordered by start time, non-decreasingly
//   - Segment starts and durations must be non-negative
//
// An empty segment list is valid; the chunker emits no chunks for it.
func ValidateTranscript(t *Transcript) error {
	if t == nil {
		return fmt.Errorf("%w: transcript is nil", ErrInvalidTranscript)
	}

	if t.VideoID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidTranscript, ErrEmptyVideoID)
	}

	prev := 0.0
	for i, seg := range t.Segments {
		if seg.Start < 0 || seg.Duration < 0 {
			return fmt.Errorf("%w: segment %d: %w", ErrInvalidTranscript, i, ErrNegativeTiming)
		}
		if seg.Start < prev {
			return fmt.Errorf("%w: segment %d: %w", ErrInvalidTranscript, i, ErrUnorderedSegments)
		}
		prev = seg.Start
	}

	return nil
}
