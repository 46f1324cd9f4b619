package core

import "fmt"

// FormatTimestamp converts seconds into a human-readable timestamp:
// "H:MM:SS" for offsets of an hour or more, "M:SS" otherwise. The leading
// unit is not zero-padded.
func FormatTimestamp(seconds float64) string {
	hours := int(seconds) / 3600
	minutes := (int(seconds) % 3600) / 60
	secs := int(seconds) % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// WatchURL builds a deep link into a video at the given start offset.
func WatchURL(videoID string, startSeconds float64) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s&t=%ds", videoID, int(startSeconds))
}

// VideoURL builds the plain link to a video.
func VideoURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}
