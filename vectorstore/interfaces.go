package vectorstore

import "context"

// Record is one vector with its id and display metadata, in the shape
// vector indexes ingest. Metadata stays a generic map because it is the
// index's serving payload, not a domain object.
type Record struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// IndexStats summarizes an index for operator inspection before and
// after an upload run.
type IndexStats struct {
	TotalVectors int
	Dimension    int
}

// Upserter writes vector records into an index. Implementations must be
// safe for sequential reuse across batches; Upsert is idempotent per
// record id.
type Upserter interface {
	Upsert(ctx context.Context, records []Record) error
	Stats(ctx context.Context) (*IndexStats, error)
	Close() error
}
