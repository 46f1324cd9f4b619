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


package upload

import (
	"github.com/poiesic/passage/core"
	"github.com/poiesic/passage/vectorstore"
)

// Metadata size caps. Vector index metadata is a serving payload with
// per-record size limits, so long fields are truncated on the way in.
// Search results serve the truncated text regardless of index; the full
// text remains in the chunk and embedding documents.
const (
	maxMetadataTextLen  = 1000
	maxMetadataTitleLen = 200
)

// contentType discriminates these records from other content in a
// shared index.
const contentType = "youtube_transcript"

// BuildRecord converts an embedded chunk into an index record.
func BuildRecord(chunk *core.Chunk) vectorstore.Record {
	return vectorstore.Record{
		ID:     chunk.ChunkID,
		Values: chunk.Vector,
		Metadata: map[string]any{
			"video_id":               chunk.VideoID,
			"chunk_index":            chunk.Index,
			"text":                   truncate(chunk.Text, maxMetadataTextLen),
			"start_time":             chunk.Start,
			"end_time":               chunk.End,
			"start_timestamp":        chunk.StartStamp,
			"end_timestamp":          chunk.EndStamp,
			"duration_seconds":       chunk.Duration,
			"video_title":            truncate(chunk.VideoTitle, maxMetadataTitleLen),
			"channel":                chunk.Channel,
			"video_duration_seconds": chunk.VideoDuration,
			"thumbnail_url":          chunk.ThumbnailURL,
			"youtube_url":            chunk.WatchURL,
			"video_url":              chunk.VideoURL,
			"content_type":           contentType,
		},
	}
}

// truncate caps s at max runes, marking the cut with an ellipsis. The
// cut never lands inside a multibyte rune, so the result stays valid
// UTF-8.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
