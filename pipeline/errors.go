package pipeline

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrInvalidBatchSize is returned when the batch size is <= 0
	ErrInvalidBatchSize = errors.New("batch size must be greater than 0")

	// ErrInvalidCheckpointEvery is returned when the checkpoint cadence is <= 0
	ErrInvalidCheckpointEvery = errors.New("checkpoint cadence must be greater than 0")

	// ErrStoreRequired is returned when no progress store is supplied
	ErrStoreRequired = errors.New("progress store is required")

	// ErrSinkRequired is returned when no output sink is supplied
	ErrSinkRequired = errors.New("output sink is required")
)
