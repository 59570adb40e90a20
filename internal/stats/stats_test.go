package stats

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.dat")

	r := &Record{}
	r.Update(1234, 5678)
	require.NoError(t, r.Save(path))

	loaded, ok, err := Load(path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, r.TotalDownloaded, loaded.TotalDownloaded)
	assert.Equal(t, r.TotalUploaded, loaded.TotalUploaded)
}

func TestLoadMissingFileIsSoftFailure(t *testing.T) {
	r, ok, err := Load(filepath.Join(t.TempDir(), "nope.dat"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, uint64(0), r.TotalDownloaded)
}

func TestLoadBadMagicIsSoftFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.dat")
	require.NoError(t, os.WriteFile(path, make([]byte, 24), 0o644))

	_, ok, err := Load(path)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMonotonicAcrossRestarts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.dat")

	r1 := &Record{}
	r1.Update(100, 200)
	require.NoError(t, r1.Save(path))

	loaded, ok, err := Load(path)
	require.NoError(t, err)
	require.True(t, ok)

	loaded.Update(50, 75) // this session's own deltas, added to the base loaded above
	require.NoError(t, loaded.Save(path))

	assert.Equal(t, uint64(150), loaded.TotalDownloaded)
	assert.Equal(t, uint64(275), loaded.TotalUploaded)
	assert.GreaterOrEqual(t, loaded.TotalDownloaded, r1.TotalDownloaded)
}
