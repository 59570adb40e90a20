package diskbudget

import (
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
)

// DeleteToFree enumerates the regular files under dir recursively, shuffles
// them with a fair RNG, and deletes files in that order until the
// cumulative bytes freed reach target. It returns the bytes actually
// freed — which may be less than target if dir doesn't hold enough data.
// A target of zero performs no deletions.
func DeleteToFree(dir string, target uint64) (uint64, error) {
	if target == 0 {
		return 0, nil
	}

	var paths []string
	var sizes []uint64
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // transient I/O on a single entry is not fatal
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return nil
			}
			paths = append(paths, path)
			sizes = append(sizes, uint64(info.Size()))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	order := rand.Perm(len(paths))

	var freed uint64
	for _, idx := range order {
		if freed >= target {
			break
		}
		if err := os.Remove(paths[idx]); err != nil {
			continue // file may already be gone; not fatal
		}
		freed += sizes[idx]
	}
	return freed, nil
}
