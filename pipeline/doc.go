// Package pipeline provides a resumable batch runner for multi-stage,
// rate-limited bulk operations such as embedding generation and
// vector-index upload.
//
// The runner partitions a work list into fixed-size batches, applies a
// caller-supplied batch operation, records per-item completion and failure
// in a durable progress store, and checkpoints progress plus accumulated
// output at a fixed cadence so an interrupted run can resume without
// redoing completed work. One failing batch never aborts the run; its
// items are recorded as failed and retried on a later incremental
// invocation.
package pipeline
