package diskbudget

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string, size int) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), make([]byte, size), 0o644))
}

func TestDeleteToFreeReachesTarget(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.bin", 100)
	writeFile(t, dir, "b.bin", 100)
	writeFile(t, dir, "c.bin", 100)

	freed, err := DeleteToFree(dir, 150)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, freed, uint64(150))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Less(t, len(entries), 3, "at least one file should have been removed")
}

func TestDeleteToFreeCapsAtDirectorySize(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "only.bin", 10)

	freed, err := DeleteToFree(dir, 1000)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), freed)
}

func TestDeleteToFreeZeroTargetIsNoop(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep.bin", 10)

	freed, err := DeleteToFree(dir, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), freed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
