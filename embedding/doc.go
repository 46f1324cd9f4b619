// Package embedding implements the embedding stage: it reads the chunk
// document, sends pending chunk texts to the embedding service in
// batches through the pipeline runner, and writes the embedding
// document. Progress and partial output survive interruption; a rerun
// picks up where the last checkpoint left off.
package embedding
