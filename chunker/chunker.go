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


package chunker

import (
	"strings"

	"github.com/poiesic/passage/core"
)

// Chunker segments ordered caption fragments into chunks.
type Chunker struct {
	cfg *Config
}

// New creates a Chunker. A nil config uses DefaultConfig.
func New(cfg *Config) (*Chunker, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Chunker{cfg: cfg}, nil
}

// Config returns the chunker's duration triple.
func (ck *Chunker) Config() *Config {
	return ck.cfg
}

// Split segments one source's ordered fragments into chunks. Fragments
// with whitespace-only text are skipped entirely and do not count toward
// chunk spans. An empty fragment list yields no chunks.
//
// The output is deterministic: identical input and parameters produce an
// identical chunk list, with ids "{sourceID}-{index:04d}".
func (ck *Chunker) Split(sourceID string, segments []core.RawSegment) []*core.Chunk {
	if len(segments) == 0 {
		return nil
	}

	var chunks []*core.Chunk
	var texts []string
	chunkStart := segments[0].Start
	chunkSpan := 0.0
	index := 0

	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}

		potentialSpan := seg.End() - chunkStart

		switch {
		case chunkSpan >= ck.cfg.TargetDuration && len(texts) > 0:
			// Target reached: close at this fragment's start, excluding it.
			chunks = append(chunks, newChunk(sourceID, index, texts, chunkStart, seg.Start))
			index++
			texts = []string{text}
			chunkStart = seg.Start
			chunkSpan = seg.Duration

		case potentialSpan > ck.cfg.MaxDuration && len(texts) > 0:
			// Forced split: the fragment would push the span past max. An
			// empty open chunk always accepts its first fragment, so a
			// single oversized fragment still becomes its own chunk.
			chunks = append(chunks, newChunk(sourceID, index, texts, chunkStart, seg.Start))
			index++
			texts = []string{text}
			chunkStart = seg.Start
			chunkSpan = seg.Duration

		default:
			texts = append(texts, text)
			chunkSpan = seg.End() - chunkStart
		}
	}

	if len(texts) > 0 {
		// The end of the final chunk is the end of the last raw fragment,
		// whether or not it carried text.
		end := segments[len(segments)-1].End()

		if chunkSpan >= ck.cfg.MinDuration || index == 0 {
			chunks = append(chunks, newChunk(sourceID, index, texts, chunkStart, end))
		} else if len(chunks) > 0 {
			// Too short to stand alone: merge into the previous chunk.
			prev := chunks[len(chunks)-1]
			prev.Text = prev.Text + " " + joinFragments(texts)
			prev.End = end
			prev.EndStamp = core.FormatTimestamp(end)
			prev.Duration = end - prev.Start
		}
	}

	return chunks
}

// newChunk assembles a chunk from accumulated fragment texts.
func newChunk(sourceID string, index int, texts []string, start, end float64) *core.Chunk {
	return &core.Chunk{
		ChunkID:    core.ChunkID(sourceID, index),
		VideoID:    sourceID,
		Index:      index,
		Text:       joinFragments(texts),
		Start:      start,
		End:        end,
		StartStamp: core.FormatTimestamp(start),
		EndStamp:   core.FormatTimestamp(end),
		Duration:   end - start,
	}
}

// joinFragments joins fragment texts with single spaces and collapses
// internal whitespace runs.
func joinFragments(texts []string) string {
	return strings.Join(strings.Fields(strings.Join(texts, " ")), " ")
}
