// Package local implements the vectorstore.Upserter interface on top of
// the BadgerDB chunk repository, so the full pipeline can run without
// any hosted vector index.
package local
