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

import (
	"encoding/binary"
	"fmt"

	"github.com/go-crypt/x/blake2b"
)

// RawSegment is one raw timed caption fragment as fetched from the
// transcript source. Fragments are small (typically 2-5 seconds) and are
// ordered by Start non-decreasingly within a transcript.
type RawSegment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// End returns the fragment's end offset in seconds.
func (s RawSegment) End() float64 {
	return s.Start + s.Duration
}

// Transcript is one video's full caption track plus the identifying
// metadata the transcript fetcher stores alongside it.
type Transcript struct {
	VideoID         string       `json:"video_id"`
	Title           string       `json:"title"`
	Channel         string       `json:"channel"`
	DurationSeconds float64      `json:"duration_seconds"`
	Segments        []RawSegment `json:"segments"`
}

// VideoMeta is the display metadata for a video, produced by the metadata
// fetch step. Used to enrich chunks with titles and thumbnails.
type VideoMeta struct {
	VideoID         string  `json:"video_id"`
	Title           string  `json:"title"`
	DurationSeconds float64 `json:"duration_seconds"`
	ThumbnailURL    string  `json:"thumbnail_url"`
}

// Chunk is a merged, duration-bounded span of fragments with its own id,
// time range and text. Chunks are immutable once emitted, except that the
// last chunk of a source may absorb a too-short trailing remainder during
// segmentation.
type Chunk struct {
	ChunkID string `json:"chunk_id"`
	VideoID string `json:"video_id"`
	Index   int    `json:"chunk_index"`

	// Text is the whitespace-normalized join of the fragment texts.
	Text string `json:"text"`

	Start      float64 `json:"start_time"`
	End        float64 `json:"end_time"`
	StartStamp string  `json:"start_timestamp"`
	EndStamp   string  `json:"end_timestamp"`
	Duration   float64 `json:"duration_seconds"`

	VideoTitle    string  `json:"video_title"`
	Channel       string  `json:"channel"`
	VideoDuration float64 `json:"video_duration_seconds"`
	ThumbnailURL  string  `json:"thumbnail_url"`

	// WatchURL deep-links to the chunk's start offset; VideoURL is the
	// plain video link.
	WatchURL string `json:"youtube_url"`
	VideoURL string `json:"video_url"`

	// EmbeddingText is the text actually sent to the embedding model:
	// title and start stamp prepended for extra context.
	EmbeddingText string `json:"embedding_text"`

	// Vector is the embedding, populated by the embedding stage.
	Vector []float32 `json:"embedding,omitempty"`
}

// ItemID returns the chunk's stable unique id. It satisfies the pipeline
// work-item contract so chunks can flow through the batch runner directly.
func (c *Chunk) ItemID() string {
	return c.ChunkID
}

// ChunkID builds the deterministic chunk id for a source and index.
func ChunkID(sourceID string, index int) string {
	return fmt.Sprintf("%s-%04d", sourceID, index)
}

// SearchResult is a chunk match from vector similarity search.
type SearchResult struct {
	Chunk *Chunk
	Score float32
}

// Fingerprint is a 64-bit content hash used to detect changed transcripts
// between incremental runs.
type Fingerprint uint64

// FingerprintContent hashes raw content with BLAKE2b. Identical content
// always produces the same fingerprint.
func FingerprintContent(data []byte) Fingerprint {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write(data)
	sum := h.Sum(nil)
	return Fingerprint(binary.LittleEndian.Uint64(sum))
}

// String renders the fingerprint as fixed-width hex, the form persisted in
// progress files.
func (f Fingerprint) String() string {
	return fmt.Sprintf("%016x", uint64(f))
}
