package ingestion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/passage/artifact"
	"github.com/poiesic/passage/chunker"
	"github.com/poiesic/passage/core"
	"github.com/poiesic/passage/pipeline"
)

// progressSaveEvery is how many finished transcripts pass between
// durable progress writes.
const progressSaveEvery = 100

// Config holds configuration for a chunking run.
type Config struct {
	// TranscriptDir holds the fetched transcript files.
	TranscriptDir string

	// MetadataPath points at the video metadata document. Optional.
	MetadataPath string

	// OutputPath is where the chunk document is written.
	OutputPath string

	// ProgressPath is where per-video progress is persisted.
	ProgressPath string

	// Chunker holds the duration triple. Nil means defaults.
	Chunker *chunker.Config

	// Workers is the chunking pool size. Zero means half the CPUs.
	Workers int

	// Rebuild re-chunks every video instead of skipping completed ones.
	Rebuild bool

	// ChannelHandle and ChannelDisplayName go into the document header.
	ChannelHandle      string
	ChannelDisplayName string
}

// Validate checks the config values.
func (c *Config) Validate() error {
	if c.TranscriptDir == "" {
		return ErrTranscriptDirRequired
	}
	if c.OutputPath == "" {
		return ErrOutputPathRequired
	}
	if c.ProgressPath == "" {
		return ErrProgressPathRequired
	}
	return nil
}

// Summary reports the outcome of a chunking run.
type Summary struct {
	Videos       int
	Skipped      int
	Failed       int
	Chunks       int
	AvgChunkSecs float64
	MinChunkSecs float64
	MaxChunkSecs float64
	Elapsed      time.Duration
	FailedVideos []string
}

// Run chunks every pending transcript and writes the chunk document.
// progress: where to write human-readable progress output (typically os.Stderr)
func Run(ctx context.Context, cfg *Config, progress io.Writer) (*Summary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if progress == nil {
		progress = io.Discard
	}
	logger := slog.Default().With("component", "chunk-run")
	started := time.Now()

	source, err := NewSource(cfg.TranscriptDir)
	if err != nil {
		return nil, err
	}
	videoIDs, err := source.List()
	if err != nil {
		return nil, err
	}
	meta, err := LoadVideoMeta(cfg.MetadataPath)
	if err != nil {
		return nil, err
	}

	chunkCfg := cfg.Chunker
	if chunkCfg == nil {
		chunkCfg = chunker.DefaultConfig()
	}
	ck, err := chunker.New(chunkCfg)
	if err != nil {
		return nil, err
	}

	store := pipeline.NewFileStore(cfg.ProgressPath)
	state, err := store.Load()
	if err != nil {
		return nil, err
	}
	if cfg.Rebuild {
		state = pipeline.NewState()
	}

	// A completed video is re-chunked when its transcript content
	// changed since the run that processed it.
	pending := make([]string, 0, len(videoIDs))
	for _, id := range videoIDs {
		if state.Completed(id) && !contentChanged(source, state, id) {
			continue
		}
		pending = append(pending, id)
	}
	skipped := len(videoIDs) - len(pending)
	if skipped > 0 {
		logger.Info("incremental mode", "alreadyChunked", skipped)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU() / 2
		if workers < 1 {
			workers = 1
		}
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	fmt.Fprintf(progress, "Chunking %d transcripts with %d workers\n", len(pending), workers)
	tracker := pipeline.NewProgressTracker(progress, len(pending), 10)
	tracker.Start()

	type videoResult struct {
		chunks      []*core.Chunk
		fingerprint core.Fingerprint
		err         error
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]*videoResult, len(pending))
	)

	for _, videoID := range pending {
		videoID := videoID
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			res := &videoResult{}
			if ctx.Err() != nil {
				res.err = ctx.Err()
			} else {
				res.chunks, res.fingerprint, res.err = chunkOne(source, ck, meta, videoID)
			}

			mu.Lock()
			results[videoID] = res
			switch {
			case res.err == nil:
				state.MarkCompleted(videoID)
				state.SetFingerprint(videoID, res.fingerprint.String())
			case ctx.Err() == nil:
				state.MarkFailed(videoID)
			}
			if len(results)%progressSaveEvery == 0 {
				// Saved under the lock: state must not move while it
				// is being serialized.
				if err := store.Save(state); err != nil {
					logger.Error("failed to save progress", "err", err)
				}
			}
			mu.Unlock()

			tracker.Increment(1)
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			results[videoID] = &videoResult{err: submitErr}
			state.MarkFailed(videoID)
			mu.Unlock()
		}
	}
	wg.Wait()
	tracker.Finish()

	// Assemble in input order regardless of completion order. On an
	// incremental run, chunks of skipped videos carry over from the
	// existing document.
	doc := &artifact.ChunkDocument{
		ChannelHandle:      cfg.ChannelHandle,
		ChannelDisplayName: cfg.ChannelDisplayName,
		Parameters:         artifact.ParametersFrom(chunkCfg),
	}
	carriedVideos := 0
	if !cfg.Rebuild {
		if existing, err := artifact.LoadChunkDocument(cfg.OutputPath); err == nil {
			carried := make(map[string]bool)
			for _, chunk := range existing.Chunks {
				if _, rechunked := results[chunk.VideoID]; rechunked {
					continue
				}
				doc.Chunks = append(doc.Chunks, chunk)
				if !carried[chunk.VideoID] {
					carried[chunk.VideoID] = true
					carriedVideos++
				}
			}
		}
	}
	sum := &Summary{Skipped: skipped, MinChunkSecs: -1}
	for _, videoID := range pending {
		res := results[videoID]
		if res == nil {
			continue
		}
		if res.err != nil {
			if ctx.Err() == nil {
				logger.Warn("transcript failed", "videoID", videoID, "err", res.err)
				sum.Failed++
				sum.FailedVideos = append(sum.FailedVideos, videoID)
			}
			continue
		}

		sum.Videos++
		for _, chunk := range res.chunks {
			doc.Chunks = append(doc.Chunks, chunk)
			sum.Chunks++
			sum.AvgChunkSecs += chunk.Duration
			if sum.MinChunkSecs < 0 || chunk.Duration < sum.MinChunkSecs {
				sum.MinChunkSecs = chunk.Duration
			}
			if chunk.Duration > sum.MaxChunkSecs {
				sum.MaxChunkSecs = chunk.Duration
			}
		}
	}
	doc.TotalVideos = sum.Videos + carriedVideos
	if sum.Chunks > 0 {
		sum.AvgChunkSecs /= float64(sum.Chunks)
	}
	if sum.MinChunkSecs < 0 {
		sum.MinChunkSecs = 0
	}

	if err := store.Save(state); err != nil {
		return nil, err
	}
	if err := artifact.WriteChunkDocument(cfg.OutputPath, doc); err != nil {
		return nil, err
	}

	sum.Elapsed = time.Since(started)
	logger.Info("chunking complete",
		"videos", sum.Videos, "failed", sum.Failed, "skipped", sum.Skipped,
		"chunks", sum.Chunks,
		"avgChunkSecs", fmt.Sprintf("%.1f", sum.AvgChunkSecs),
		"minChunkSecs", fmt.Sprintf("%.1f", sum.MinChunkSecs),
		"maxChunkSecs", fmt.Sprintf("%.1f", sum.MaxChunkSecs),
		"elapsed", sum.Elapsed.Round(time.Second))

	if ctx.Err() != nil {
		return sum, ctx.Err()
	}
	return sum, nil
}

// chunkOne loads, validates, splits and enriches one transcript.
func chunkOne(source *Source, ck *chunker.Chunker, meta map[string]core.VideoMeta, videoID string) ([]*core.Chunk, core.Fingerprint, error) {
	transcript, fingerprint, err := source.Load(videoID)
	if err != nil {
		return nil, 0, err
	}
	if err := core.ValidateTranscript(transcript); err != nil {
		return nil, 0, err
	}

	chunks := ck.Split(videoID, transcript.Segments)
	if len(chunks) == 0 {
		return nil, 0, ErrEmptyTranscript
	}

	enrich(chunks, transcript, meta[videoID])
	return chunks, fingerprint, nil
}

// enrich attaches display metadata and the embedding text to each chunk.
func enrich(chunks []*core.Chunk, t *core.Transcript, vm core.VideoMeta) {
	title := vm.Title
	if title == "" {
		title = t.Title
	}
	videoDuration := vm.DurationSeconds
	if videoDuration == 0 {
		videoDuration = t.DurationSeconds
	}

	for _, chunk := range chunks {
		chunk.VideoTitle = title
		chunk.Channel = t.Channel
		chunk.VideoDuration = videoDuration
		chunk.ThumbnailURL = vm.ThumbnailURL
		chunk.WatchURL = core.WatchURL(chunk.VideoID, chunk.Start)
		chunk.VideoURL = core.VideoURL(chunk.VideoID)
		chunk.EmbeddingText = fmt.Sprintf("%s | %s\n\n%s", title, chunk.StartStamp, chunk.Text)
	}
}

// contentChanged reports whether a completed video's transcript content
// no longer matches its recorded fingerprint. Unreadable transcripts
// count as changed so the failure surfaces during chunking.
func contentChanged(source *Source, state *pipeline.State, videoID string) bool {
	recorded := state.FingerprintFor(videoID)
	if recorded == "" {
		return false
	}
	_, fingerprint, err := source.Load(videoID)
	if err != nil {
		return true
	}
	return fingerprint.String() != recorded
}
