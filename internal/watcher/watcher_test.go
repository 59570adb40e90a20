package watcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanExistingIsSortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.torrent"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.torrent"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignore.txt"), nil, 0o644))

	w := New(dir)
	events, err := w.ScanExisting()
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, filepath.Join(dir, "a.torrent"), events[0].Path)
	assert.Equal(t, filepath.Join(dir, "b.torrent"), events[1].Path)
}

func TestPollDrainsBufferOnce(t *testing.T) {
	w := New(t.TempDir())
	w.buffer = []Event{{Kind: Added, Path: "x.torrent"}}

	first := w.Poll()
	assert.Len(t, first, 1)

	second := w.Poll()
	assert.Empty(t, second)
}

func TestHasTorrentExtension(t *testing.T) {
	assert.True(t, hasTorrentExtension("/a/b/c.torrent"))
	assert.True(t, hasTorrentExtension("/a/b/C.TORRENT"))
	assert.False(t, hasTorrentExtension("/a/b/c.txt"))
}
