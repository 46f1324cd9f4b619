// Package upload implements the upload stage: it reads the embedding
// document and upserts each chunk's vector and serving metadata into a
// vector index in batches through the pipeline runner. The index itself
// is the stage's output, so progress is the only local state; reruns
// skip chunks already upserted.
package upload
