package ingestion

import "errors"

var (
	// ErrTranscriptDirRequired is returned when no transcript directory is provided.
	ErrTranscriptDirRequired = errors.New("transcript directory required")

	// ErrOutputPathRequired is returned when no output path is provided.
	ErrOutputPathRequired = errors.New("output path required")

	// ErrProgressPathRequired is returned when no progress path is provided.
	ErrProgressPathRequired = errors.New("progress path required")

	// ErrNoTranscripts is returned when the transcript directory holds no
	// transcript files.
	ErrNoTranscripts = errors.New("no transcripts found")

	// ErrEmptyTranscript is returned when a transcript yields no chunks.
	ErrEmptyTranscript = errors.New("transcript yielded no chunks")
)
