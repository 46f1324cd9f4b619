package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTrackerReportsAtInterval(t *testing.T) {
	var buf strings.Builder
	tracker := NewProgressTracker(&buf, 100, 10)
	tracker.Start()

	tracker.Increment(5)
	assert.Empty(t, buf.String())

	tracker.Increment(5)
	assert.Contains(t, buf.String(), "10/100")
	assert.Contains(t, buf.String(), "10.0%")
}

func TestProgressTrackerFinish(t *testing.T) {
	var buf strings.Builder
	tracker := NewProgressTracker(&buf, 50, 10)
	tracker.Start()
	tracker.Increment(20)
	tracker.Finish()

	out := buf.String()
	assert.Contains(t, out, "50/50")
	assert.Contains(t, out, "100.0%")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestProgressTrackerClampsToTotal(t *testing.T) {
	var buf strings.Builder
	tracker := NewProgressTracker(&buf, 10, 1)
	tracker.Start()
	tracker.Increment(25)

	assert.Contains(t, buf.String(), "10/10")
}

func TestProgressTrackerBeforeStart(t *testing.T) {
	var buf strings.Builder
	tracker := NewProgressTracker(&buf, 10, 1)

	tracker.Increment(5)
	tracker.Finish()
	assert.Empty(t, buf.String())
	assert.Zero(t, tracker.Elapsed())
	assert.Zero(t, tracker.Rate())
}

func TestProgressTrackerRate(t *testing.T) {
	var buf strings.Builder
	tracker := NewProgressTracker(&buf, 10, 100)
	tracker.Start()
	tracker.Increment(5)

	assert.Greater(t, tracker.Rate(), 0.0)
}
