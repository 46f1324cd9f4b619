package chunker

import (
	"strings"
	"testing"

	"github.com/poiesic/passage/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustChunker(t *testing.T, cfg *Config) *Chunker {
	t.Helper()
	ck, err := New(cfg)
	require.NoError(t, err)
	return ck
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{name: "zero min", cfg: &Config{TargetDuration: 75, MinDuration: 0, MaxDuration: 120}},
		{name: "negative min", cfg: &Config{TargetDuration: 75, MinDuration: -1, MaxDuration: 120}},
		{name: "target below min", cfg: &Config{TargetDuration: 30, MinDuration: 45, MaxDuration: 120}},
		{name: "max below target", cfg: &Config{TargetDuration: 75, MinDuration: 45, MaxDuration: 60}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestNew_NilConfigUsesDefaults(t *testing.T) {
	ck, err := New(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultTargetDuration, ck.Config().TargetDuration)
	assert.Equal(t, DefaultMinDuration, ck.Config().MinDuration)
	assert.Equal(t, DefaultMaxDuration, ck.Config().MaxDuration)
}

func TestSplit_EmptyInput(t *testing.T) {
	ck := mustChunker(t, nil)
	assert.Empty(t, ck.Split("src", nil))
	assert.Empty(t, ck.Split("src", []core.RawSegment{}))
}

func TestSplit_WhitespaceOnlyFragments(t *testing.T) {
	ck := mustChunker(t, nil)
	segments := []core.RawSegment{
		{Text: "   ", Start: 0, Duration: 2},
		{Text: "\n\t", Start: 2, Duration: 2},
	}
	assert.Empty(t, ck.Split("src", segments))
}

// Traces the five-fragment sequence through the greedy pass: "learn" would
// push the open chunk's span to 146s, past the 120s maximum, so the chunk
// closes at 66s with everything accumulated so far. The 80s remainder
// clears the minimum and stands alone.
func TestSplit_ForcedMaxSplit(t *testing.T) {
	ck := mustChunker(t, &Config{TargetDuration: 75, MinDuration: 45, MaxDuration: 120})
	segments := []core.RawSegment{
		{Text: "Hello", Start: 0, Duration: 2},
		{Text: "world", Start: 2, Duration: 2},
		{Text: "today", Start: 4, Duration: 60},
		{Text: "we", Start: 64, Duration: 2},
		{Text: "learn", Start: 66, Duration: 80},
	}

	chunks := ck.Split("src", segments)
	require.Len(t, chunks, 2)

	assert.Equal(t, "src-0000", chunks[0].ChunkID)
	assert.Equal(t, "Hello world today we", chunks[0].Text)
	assert.Equal(t, 0.0, chunks[0].Start)
	assert.Equal(t, 66.0, chunks[0].End)

	assert.Equal(t, "src-0001", chunks[1].ChunkID)
	assert.Equal(t, "learn", chunks[1].Text)
	assert.Equal(t, 66.0, chunks[1].Start)
	assert.Equal(t, 146.0, chunks[1].End)
	assert.Equal(t, 80.0, chunks[1].Duration)
}

// A single fragment longer than max still becomes its own chunk: the
// force-split check only applies when the open chunk already has content.
func TestSplit_SingleOversizedFragment(t *testing.T) {
	ck := mustChunker(t, &Config{TargetDuration: 75, MinDuration: 45, MaxDuration: 120})
	segments := []core.RawSegment{
		{Text: "one very long monologue", Start: 0, Duration: 500},
	}

	chunks := ck.Split("src", segments)
	require.Len(t, chunks, 1)
	assert.Equal(t, "src-0000", chunks[0].ChunkID)
	assert.Equal(t, 0.0, chunks[0].Start)
	assert.Equal(t, 500.0, chunks[0].End)
}

func TestSplit_TargetClose(t *testing.T) {
	ck := mustChunker(t, &Config{TargetDuration: 75, MinDuration: 45, MaxDuration: 120})
	segments := []core.RawSegment{
		{Text: "first", Start: 0, Duration: 75},
		{Text: "second", Start: 75, Duration: 50},
	}

	chunks := ck.Split("src", segments)
	require.Len(t, chunks, 2)

	// The closing chunk ends at the next fragment's start, not including it.
	assert.Equal(t, 0.0, chunks[0].Start)
	assert.Equal(t, 75.0, chunks[0].End)
	assert.Equal(t, "first", chunks[0].Text)

	assert.Equal(t, 75.0, chunks[1].Start)
	assert.Equal(t, 125.0, chunks[1].End)
	assert.Equal(t, "second", chunks[1].Text)
}

func TestSplit_TrailingMerge(t *testing.T) {
	ck := mustChunker(t, &Config{TargetDuration: 75, MinDuration: 45, MaxDuration: 120})
	segments := []core.RawSegment{
		{Text: "a", Start: 0, Duration: 40},
		{Text: "b", Start: 40, Duration: 40},
		{Text: "c", Start: 80, Duration: 10},
	}

	chunks := ck.Split("src", segments)
	require.Len(t, chunks, 1)

	// The 10s remainder is below min, so it folds into the previous chunk,
	// extending its end and duration.
	assert.Equal(t, "a b c", chunks[0].Text)
	assert.Equal(t, 0.0, chunks[0].Start)
	assert.Equal(t, 90.0, chunks[0].End)
	assert.Equal(t, 90.0, chunks[0].Duration)
	assert.Equal(t, "1:30", chunks[0].EndStamp)
}

func TestSplit_ShortOnlyChunkStillEmitted(t *testing.T) {
	ck := mustChunker(t, &Config{TargetDuration: 75, MinDuration: 45, MaxDuration: 120})
	segments := []core.RawSegment{
		{Text: "brief", Start: 0, Duration: 10},
	}

	chunks := ck.Split("src", segments)
	require.Len(t, chunks, 1)
	assert.Equal(t, 10.0, chunks[0].Duration)
}

func TestSplit_FinalEndUsesLastRawFragment(t *testing.T) {
	ck := mustChunker(t, nil)
	// The trailing fragment has no text but still defines the final end.
	segments := []core.RawSegment{
		{Text: "spoken", Start: 0, Duration: 50},
		{Text: "  ", Start: 50, Duration: 5},
	}

	chunks := ck.Split("src", segments)
	require.Len(t, chunks, 1)
	assert.Equal(t, "spoken", chunks[0].Text)
	assert.Equal(t, 55.0, chunks[0].End)
}

func TestSplit_WhitespaceNormalization(t *testing.T) {
	ck := mustChunker(t, nil)
	segments := []core.RawSegment{
		{Text: "  Hello   there ", Start: 0, Duration: 30},
		{Text: "\tgeneral\n Kenobi ", Start: 30, Duration: 30},
	}

	chunks := ck.Split("src", segments)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Hello there general Kenobi", chunks[0].Text)
}

func TestSplit_Deterministic(t *testing.T) {
	ck := mustChunker(t, nil)
	segments := make([]core.RawSegment, 0, 100)
	for i := 0; i < 100; i++ {
		segments = append(segments, core.RawSegment{
			Text:     strings.Repeat("word ", i%5+1),
			Start:    float64(i) * 3,
			Duration: 3,
		})
	}

	first := ck.Split("vid", segments)
	second := ck.Split("vid", segments)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, *first[i], *second[i], "chunk %d differs between runs", i)
	}
}

// Every non-empty fragment's text must land in exactly one chunk, and
// chunks must be ordered and non-overlapping.
func TestSplit_CoverageAndNonOverlap(t *testing.T) {
	ck := mustChunker(t, nil)
	segments := make([]core.RawSegment, 0, 200)
	var wantWords []string
	for i := 0; i < 200; i++ {
		text := "w" + strings.Repeat("x", i%7)
		if i%13 == 0 {
			text = "  " // skipped, not counted
		} else {
			wantWords = append(wantWords, text)
		}
		segments = append(segments, core.RawSegment{Text: text, Start: float64(i) * 4, Duration: 4})
	}

	chunks := ck.Split("vid", segments)
	require.NotEmpty(t, chunks)

	var gotWords []string
	for i, chunk := range chunks {
		require.NoError(t, core.ValidateChunk(chunk))
		assert.Equal(t, core.ChunkID("vid", i), chunk.ChunkID)
		if i > 0 {
			assert.GreaterOrEqual(t, chunk.Start, chunks[i-1].End, "chunk %d overlaps previous", i)
		}
		gotWords = append(gotWords, strings.Fields(chunk.Text)...)
	}
	assert.Equal(t, wantWords, gotWords)
}

// Duration bounds hold for every chunk except possibly the first and the
// merged trailing one; forced splits may exceed max by at most one
// fragment's duration.
func TestSplit_DurationBounds(t *testing.T) {
	cfg := &Config{TargetDuration: 75, MinDuration: 45, MaxDuration: 120}
	ck := mustChunker(t, cfg)
	segments := make([]core.RawSegment, 0, 300)
	for i := 0; i < 300; i++ {
		segments = append(segments, core.RawSegment{
			Text:     "seg",
			Start:    float64(i) * 5,
			Duration: 5,
		})
	}

	chunks := ck.Split("vid", segments)
	require.Greater(t, len(chunks), 2)

	for i, chunk := range chunks[:len(chunks)-1] {
		if i == 0 {
			continue
		}
		assert.GreaterOrEqual(t, chunk.Duration, cfg.MinDuration, "chunk %d below min", i)
		assert.LessOrEqual(t, chunk.Duration, cfg.MaxDuration+5, "chunk %d above max tolerance", i)
	}
}
