package platform

import (
	"io/fs"
	"path/filepath"
)

// DiskUsage sums the actual block usage (not apparent size) of every
// regular file under dir, and the count of non-empty files — matching
// accumulate_usage's behaviour of counting honestly for sparse files.
func DiskUsage(dir string) (usage uint64, fileCount int, err error) {
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, statErr := d.Info()
		if statErr != nil {
			return nil
		}
		usage += blockUsage(info)
		if info.Size() > 0 {
			fileCount++
		}
		return nil
	})
	return usage, fileCount, err
}
