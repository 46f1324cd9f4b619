package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreColdStart(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "progress.json"))

	state, err := fs.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, state.CompletedCount())
	assert.Empty(t, state.FailedIDs())
}

func TestFileStoreSaveLoad(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "progress.json"))

	state := NewState()
	state.MarkCompleted("v1")
	state.MarkFailed("v2")
	require.NoError(t, fs.Save(state))

	restored, err := fs.Load()
	require.NoError(t, err)
	assert.True(t, restored.Completed("v1"))
	assert.True(t, restored.Failed("v2"))
}

func TestFileStoreSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(filepath.Join(dir, "progress.json"))

	state := NewState()
	state.MarkCompleted("v1")
	require.NoError(t, fs.Save(state))
	require.NoError(t, fs.Save(state))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "progress.json", entries[0].Name())
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileStore(path).Load()
	assert.Error(t, err)
}
