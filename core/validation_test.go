package core

import (
	"errors"
	"testing"
)

func validChunk() *Chunk {
	return &Chunk{
		ChunkID: "vid-0000",
		VideoID: "vid",
		Text:    "some text",
		Start:   0,
		End:     75,
	}
}

func TestValidateChunk(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Chunk)
		wantErr error
	}{
		{
			name:    "valid chunk",
			mutate:  func(c *Chunk) {},
			wantErr: nil,
		},
		{
			name:    "empty chunk id",
			mutate:  func(c *Chunk) { c.ChunkID = "" },
			wantErr: ErrEmptyChunkID,
		},
		{
			name:    "empty video id",
			mutate:  func(c *Chunk) { c.VideoID = "" },
			wantErr: ErrEmptyVideoID,
		},
		{
			name:    "empty text",
			mutate:  func(c *Chunk) { c.Text = "" },
			wantErr: ErrEmptyText,
		},
		{
			name:    "end equals start",
			mutate:  func(c *Chunk) { c.End = c.Start },
			wantErr: ErrInvalidTimeRange,
		},
		{
			name:    "end before start",
			mutate:  func(c *Chunk) { c.Start = 100; c.End = 50 },
			wantErr: ErrInvalidTimeRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunk := validChunk()
			tt.mutate(chunk)
			err := ValidateChunk(chunk)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateChunk() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateChunk() = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidChunk) {
				t.Errorf("ValidateChunk() should wrap ErrInvalidChunk, got %v", err)
			}
		})
	}
}

func TestValidateChunk_Nil(t *testing.T) {
	if err := ValidateChunk(nil); !errors.Is(err, ErrInvalidChunk) {
		t.Errorf("ValidateChunk(nil) = %v, want ErrInvalidChunk", err)
	}
}

func TestValidateTranscript(t *testing.T) {
	tests := []struct {
		name       string
		transcript *Transcript
		wantErr    error
	}{
		{
			name: "valid transcript",
			transcript: &Transcript{
				VideoID: "vid",
				Segments: []RawSegment{
					{Text: "a", Start: 0, Duration: 2},
					{Text: "b", Start: 2, Duration: 2},
				},
			},
			wantErr: nil,
		},
		{
			name:       "empty segments are valid",
			transcript: &Transcript{VideoID: "vid"},
			wantErr:    nil,
		},
		{
			name:       "missing video id",
			transcript: &Transcript{},
			wantErr:    ErrEmptyVideoID,
		},
		{
			name: "segments out of order",
			transcript: &Transcript{
				VideoID: "vid",
				Segments: []RawSegment{
					{Text: "a", Start: 5, Duration: 2},
					{Text: "b", Start: 2, Duration: 2},
				},
			},
			wantErr: ErrUnorderedSegments,
		},
		{
			name: "negative duration",
			transcript: &Transcript{
				VideoID:  "vid",
				Segments: []RawSegment{{Text: "a", Start: 0, Duration: -1}},
			},
			wantErr: ErrNegativeTiming,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTranscript(tt.transcript)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateTranscript() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateTranscript() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
