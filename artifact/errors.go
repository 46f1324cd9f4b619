package artifact

import "errors"

var (
	// ErrNotFound is returned when a required input document does not
	// exist. Stages treat this as fatal before any processing starts.
	ErrNotFound = errors.New("artifact document not found")

	// ErrEmptyDocument is returned when a loaded document contains no
	// chunks.
	ErrEmptyDocument = errors.New("artifact document has no chunks")
)
