package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPauseDownloadsSemantics(t *testing.T) {
	s := NewStub()
	require.NoError(t, s.Start(context.Background(), t.TempDir()))

	s.PauseDownloads()
	assert.Equal(t, int64(1), s.GetDownloadRateLimit())

	s.ResumeDownloads()
	assert.Equal(t, int64(0), s.GetDownloadRateLimit())
}

func TestAddTorrentOnInvalidMetadataFailsSilently(t *testing.T) {
	s := NewStub()
	hash, err := s.AddTorrent(filepath.Join(t.TempDir(), "missing.torrent"))
	require.NoError(t, err)
	assert.Empty(t, hash)
}

func TestSaveLoadStateRoundTrip(t *testing.T) {
	dir := t.TempDir()
	metaPath := filepath.Join(dir, "a.torrent")
	require.NoError(t, os.WriteFile(metaPath, []byte("fake"), 0o644))

	s := NewStub()
	_, err := s.AddTorrent(metaPath)
	require.NoError(t, err)

	statePath := filepath.Join(dir, "session.state")
	require.NoError(t, s.SaveState(statePath))

	restored := NewStub()
	require.NoError(t, restored.LoadState(statePath))
	assert.Equal(t, 1, restored.TorrentCount())
}
