package ingestion

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/poiesic/passage/core"
)

// Source reads fetched transcripts from a directory. Each transcript is
// a JSON file named <video_id>.json.
type Source struct {
	dir string
}

// NewSource creates a transcript source over dir.
func NewSource(dir string) (*Source, error) {
	if dir == "" {
		return nil, ErrTranscriptDirRequired
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("transcript directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	return &Source{dir: dir}, nil
}

// List returns the video ids with a transcript file, sorted for
// deterministic run order.
func (s *Source) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list transcripts: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), ".json"))
	}
	if len(ids) == 0 {
		return nil, ErrNoTranscripts
	}

	sort.Strings(ids)
	return ids, nil
}

// Load reads one transcript and returns it with a fingerprint of the
// raw file content.
func (s *Source) Load(videoID string) (*core.Transcript, core.Fingerprint, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, videoID+".json"))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read transcript %s: %w", videoID, err)
	}

	var t core.Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, 0, fmt.Errorf("failed to parse transcript %s: %w", videoID, err)
	}
	if t.VideoID == "" {
		t.VideoID = videoID
	}

	return &t, core.FingerprintContent(data), nil
}

// videoMetaFile is the on-disk shape of the metadata fetch output.
type videoMetaFile struct {
	Videos []core.VideoMeta `json:"videos"`
}

// LoadVideoMeta reads the video metadata document and indexes it by
// video id. A missing path returns an empty map; metadata is an
// enrichment, not a requirement.
func LoadVideoMeta(path string) (map[string]core.VideoMeta, error) {
	meta := make(map[string]core.VideoMeta)
	if path == "" {
		return meta, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return meta, nil
		}
		return nil, fmt.Errorf("failed to read video metadata: %w", err)
	}

	var f videoMetaFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse video metadata: %w", err)
	}
	for _, v := range f.Videos {
		meta[v.VideoID] = v
	}
	return meta, nil
}
