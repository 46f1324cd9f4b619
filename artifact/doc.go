// Package artifact defines the persisted JSON documents the pipeline
// stages hand to each other: the chunk document produced by the chunking
// stage and the embedding document produced by the embedding stage.
//
// Documents are written atomically (temp file in the target directory,
// then rename) so a crash mid-write never leaves a truncated document
// behind. The EmbeddingSink adapts a document to the batch runner's
// output sink so partial results survive checkpoints.
package artifact
