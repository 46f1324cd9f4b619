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


package storage

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"

	"github.com/poiesic/passage/core"
)

var vectorSer = ord.NewSliceSer[float32](raw.Float32)

// chunkSer serializes a core.Chunk field by field in declaration order.
type chunkSer struct{}

// ChunkMUS is the MUS serializer for chunk records.
var ChunkMUS = chunkSer{}

func (chunkSer) Marshal(c core.Chunk, bs []byte) (n int) {
	n = ord.String.Marshal(c.ChunkID, bs)
	n += ord.String.Marshal(c.VideoID, bs[n:])
	n += varint.Int.Marshal(c.Index, bs[n:])
	n += ord.String.Marshal(c.Text, bs[n:])
	n += raw.Float64.Marshal(c.Start, bs[n:])
	n += raw.Float64.Marshal(c.End, bs[n:])
	n += ord.String.Marshal(c.StartStamp, bs[n:])
	n += ord.String.Marshal(c.EndStamp, bs[n:])
	n += raw.Float64.Marshal(c.Duration, bs[n:])
	n += ord.String.Marshal(c.VideoTitle, bs[n:])
	n += ord.String.Marshal(c.Channel, bs[n:])
	n += raw.Float64.Marshal(c.VideoDuration, bs[n:])
	n += ord.String.Marshal(c.ThumbnailURL, bs[n:])
	n += ord.String.Marshal(c.WatchURL, bs[n:])
	n += ord.String.Marshal(c.VideoURL, bs[n:])
	n += ord.String.Marshal(c.EmbeddingText, bs[n:])
	n += vectorSer.Marshal(c.Vector, bs[n:])
	return n
}

func (chunkSer) Unmarshal(bs []byte) (c core.Chunk, n int, err error) {
	var n1 int
	if c.ChunkID, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if c.VideoID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Index, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Text, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Start, n1, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.End, n1, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.StartStamp, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.EndStamp, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Duration, n1, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.VideoTitle, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Channel, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.VideoDuration, n1, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.ThumbnailURL, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.WatchURL, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.VideoURL, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.EmbeddingText, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Vector, n1, err = vectorSer.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (chunkSer) Size(c core.Chunk) (size int) {
	size = ord.String.Size(c.ChunkID)
	size += ord.String.Size(c.VideoID)
	size += varint.Int.Size(c.Index)
	size += ord.String.Size(c.Text)
	size += raw.Float64.Size(c.Start)
	size += raw.Float64.Size(c.End)
	size += ord.String.Size(c.StartStamp)
	size += ord.String.Size(c.EndStamp)
	size += raw.Float64.Size(c.Duration)
	size += ord.String.Size(c.VideoTitle)
	size += ord.String.Size(c.Channel)
	size += raw.Float64.Size(c.VideoDuration)
	size += ord.String.Size(c.ThumbnailURL)
	size += ord.String.Size(c.WatchURL)
	size += ord.String.Size(c.VideoURL)
	size += ord.String.Size(c.EmbeddingText)
	size += vectorSer.Size(c.Vector)
	return size
}

func (s chunkSer) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

// MarshalChunk serializes a Chunk to bytes.
func MarshalChunk(chunk *core.Chunk) []byte {
	buf := make([]byte, ChunkMUS.Size(*chunk))
	ChunkMUS.Marshal(*chunk, buf)
	return buf
}

// UnmarshalChunk deserializes a Chunk from bytes.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	chunk, _, err := ChunkMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &chunk, nil
}
