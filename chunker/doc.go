// Package chunker converts a stream of small, irregularly-timed caption
// fragments into duration-bounded chunks with exact start and end
// timestamps.
//
// Segmentation is a single forward greedy pass with no backtracking: an
// open chunk accumulates fragments until its span reaches the target
// duration (or adding the next fragment would exceed the maximum), then
// closes at the next fragment's start. A trailing remainder shorter than
// the minimum duration is merged back into the previous chunk rather than
// emitted on its own.
package chunker
