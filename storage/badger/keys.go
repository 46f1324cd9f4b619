package badger

import "fmt"

// Key prefixes for different data types
const (
	chunkRecordPrefix = "chnk"
	chunkSourcePrefix = "csrc"
)

// makeChunkKey generates a key for a chunk record by id.
func makeChunkKey(chunkID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", chunkRecordPrefix, chunkID))
}

// makeSourceKey generates a composite key for the source index.
// Format: prefix:videoID:index. The zero-padded index keeps iteration
// order equal to chunk order within a video.
func makeSourceKey(videoID string, index int) []byte {
	return []byte(fmt.Sprintf("%s:%s:%04d", chunkSourcePrefix, videoID, index))
}

// makePartialSourceKey generates a prefix for source index scans.
func makePartialSourceKey(videoID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", chunkSourcePrefix, videoID))
}
