package chunker

import "errors"

var (
	// ErrInvalidConfig indicates the duration triple violates
	// 0 < min <= target <= max.
	ErrInvalidConfig = errors.New("invalid chunking config")
)
