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


package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Item is any unit of work with a stable unique id, used for progress
// tracking and for result correlation after a batch call.
type Item interface {
	ItemID() string
}

// Payload pairs a succeeded item's id with the value the batch operation
// produced for it.
type Payload[P any] struct {
	ID    string
	Value P
}

// BatchResult reports the per-item outcome of one batch operation.
type BatchResult[P any] struct {
	Succeeded []Payload[P]
	Failed    []string
}

// BatchFunc applies one external batch operation (embed, upsert) to a
// batch of items. Returning an error fails the whole batch; returning a
// BatchResult lets the adapter report partial failure.
type BatchFunc[T Item, P any] func(ctx context.Context, batch []T) (BatchResult[P], error)

// Sink accumulates batch payloads and persists them at checkpoints.
type Sink[P any] interface {
	Append(values ...P)
	Flush(ctx context.Context) error
	Len() int
}

// NopSink discards payloads, for stages whose output lives elsewhere
// (the vector index itself, for the upload stage).
type NopSink[P any] struct {
	count int
}

// NewNopSink creates a sink that only counts appends.
func NewNopSink[P any]() *NopSink[P] { return &NopSink[P]{} }

func (s *NopSink[P]) Append(values ...P)            { s.count += len(values) }
func (s *NopSink[P]) Flush(_ context.Context) error { return nil }
func (s *NopSink[P]) Len() int                      { return s.count }

// Config holds configuration for a pipeline run.
type Config struct {
	// BatchSize is the number of items per external batch call.
	BatchSize int

	// CheckpointEvery is the number of batches between durable writes of
	// progress and accumulated output. It bounds loss on interruption to
	// CheckpointEvery * BatchSize items of unflushed completed work.
	CheckpointEvery int

	// Throttle is a fixed inter-batch delay, a cooperative concession to
	// external rate limits. Not part of the correctness contract.
	Throttle time.Duration

	// Rebuild resets progress before running instead of skipping items
	// already marked completed.
	Rebuild bool

	// Limit caps the number of items processed after incremental
	// filtering. Zero means no limit.
	Limit int
}

// DefaultConfig returns a Config with the defaults the original stages
// ran with.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:       100,
		CheckpointEvery: 10,
		Throttle:        100 * time.Millisecond,
	}
}

// Validate checks the config values.
func (c *Config) Validate() error {
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.CheckpointEvery <= 0 {
		return ErrInvalidCheckpointEvery
	}
	return nil
}

// Summary reports the outcome of a run for operator inspection.
type Summary struct {
	// Succeeded and Failed count items processed in this run.
	Succeeded int
	Failed    int

	// Skipped counts items excluded by incremental filtering.
	Skipped int

	// OutputLen is the size of the accumulated output collection after
	// the run, including output preloaded from earlier runs.
	OutputLen int

	// Elapsed is wall time for the run.
	Elapsed time.Duration

	// ItemsPerHour is the advisory throughput over the whole run.
	ItemsPerHour float64

	// FailedIDs lists the ids recorded failed, for retry via a later
	// incremental invocation.
	FailedIDs []string
}

// Runner drives a batched, resumable pass over a work list.
type Runner[T Item, P any] struct {
	cfg      *Config
	store    Store
	sink     Sink[P]
	progress io.Writer
	logger   *slog.Logger
}

// NewRunner creates a batch runner.
// progress: where to write human-readable progress output (typically os.Stderr)
func NewRunner[T Item, P any](cfg *Config, store Store, sink Sink[P], progress io.Writer) (*Runner[T, P], error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, ErrStoreRequired
	}
	if sink == nil {
		return nil, ErrSinkRequired
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Runner[T, P]{
		cfg:      cfg,
		store:    store,
		sink:     sink,
		progress: progress,
		logger:   slog.Default().With("component", "pipeline-runner"),
	}, nil
}

// Run processes items through fn in consecutive batches.
//
// Items already marked completed in the persisted state are skipped
// unless the config requests a rebuild, in which case progress is reset
// first. A batch-level error marks every item in that batch failed and
// the run continues; progress and accumulated output are persisted every
// CheckpointEvery batches and once more at run end. Output payloads are
// appended in input order within a batch; global ordering across re-run
// merges with pre-existing output is not re-established.
func (r *Runner[T, P]) Run(ctx context.Context, items []T, fn BatchFunc[T, P]) (*Summary, error) {
	started := time.Now()

	state, err := r.store.Load()
	if err != nil {
		return nil, err
	}
	if r.cfg.Rebuild {
		state = NewState()
	}

	pending := make([]T, 0, len(items))
	for _, item := range items {
		if !r.cfg.Rebuild && state.Completed(item.ItemID()) {
			continue
		}
		pending = append(pending, item)
	}
	skipped := len(items) - len(pending)
	if skipped > 0 {
		r.logger.Info("incremental mode", "alreadyCompleted", skipped)
	}
	if r.cfg.Limit > 0 && len(pending) > r.cfg.Limit {
		pending = pending[:r.cfg.Limit]
		r.logger.Info("limit mode", "limit", r.cfg.Limit)
	}

	if len(pending) == 0 {
		fmt.Fprintf(r.progress, "Nothing to process (0 items pending)\n")
		return r.summary(state, started, 0, 0, skipped), nil
	}

	totalBatches := (len(pending) + r.cfg.BatchSize - 1) / r.cfg.BatchSize
	fmt.Fprintf(r.progress, "Processing %d items in %d batches (batch size: %d)\n",
		len(pending), totalBatches, r.cfg.BatchSize)

	tracker := NewProgressTracker(r.progress, len(pending), r.cfg.BatchSize)
	tracker.Start()

	succeeded := 0
	failed := 0

	for start, batchNum := 0, 1; start < len(pending); start, batchNum = start+r.cfg.BatchSize, batchNum+1 {
		select {
		case <-ctx.Done():
			// Persist what resolved so far; the next invocation resumes
			// from here.
			r.checkpoint(ctx, state)
			return r.summary(state, started, succeeded, failed, skipped), ctx.Err()
		default:
		}

		end := min(start+r.cfg.BatchSize, len(pending))
		batch := pending[start:end]

		result, err := fn(ctx, batch)
		if err != nil {
			r.logger.Error("batch failed", "batch", batchNum, "totalBatches", totalBatches, "size", len(batch), "err", err)
			for _, item := range batch {
				state.MarkFailed(item.ItemID())
			}
			failed += len(batch)
		} else {
			for _, p := range result.Succeeded {
				state.MarkCompleted(p.ID)
				r.sink.Append(p.Value)
			}
			for _, id := range result.Failed {
				state.MarkFailed(id)
			}
			succeeded += len(result.Succeeded)
			failed += len(result.Failed)
			r.logger.Debug("batch complete", "batch", batchNum, "totalBatches", totalBatches, "succeeded", len(result.Succeeded), "failed", len(result.Failed))
		}

		tracker.Increment(len(batch))

		if batchNum%r.cfg.CheckpointEvery == 0 {
			if err := r.checkpoint(ctx, state); err != nil {
				return r.summary(state, started, succeeded, failed, skipped), err
			}
		}

		if r.cfg.Throttle > 0 && end < len(pending) {
			timer := time.NewTimer(r.cfg.Throttle)
			select {
			case <-ctx.Done():
				timer.Stop()
			case <-timer.C:
			}
		}
	}

	if err := r.checkpoint(ctx, state); err != nil {
		return r.summary(state, started, succeeded, failed, skipped), err
	}

	tracker.Finish()

	sum := r.summary(state, started, succeeded, failed, skipped)
	fmt.Fprintf(r.progress, "Run complete. %d succeeded, %d failed in %v (%.0f items/hr)\n",
		sum.Succeeded, sum.Failed, sum.Elapsed.Round(time.Second), sum.ItemsPerHour)
	return sum, nil
}

// checkpoint persists progress and flushes accumulated output.
func (r *Runner[T, P]) checkpoint(ctx context.Context, state *State) error {
	if err := r.store.Save(state); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	if err := r.sink.Flush(ctx); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}

func (r *Runner[T, P]) summary(state *State, started time.Time, succeeded, failed, skipped int) *Summary {
	elapsed := time.Since(started)
	rate := 0.0
	if elapsed.Seconds() > 0 {
		rate = float64(succeeded) / elapsed.Seconds() * 3600
	}
	return &Summary{
		Succeeded:    succeeded,
		Failed:       failed,
		Skipped:      skipped,
		OutputLen:    r.sink.Len(),
		Elapsed:      elapsed,
		ItemsPerHour: rate,
		FailedIDs:    state.FailedIDs(),
	}
}
