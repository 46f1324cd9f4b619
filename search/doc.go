// Package search provides query-time semantic search over the locally
// indexed chunks: the query is embedded, normalized and ranked against
// stored chunk vectors by cosine similarity.
package search
