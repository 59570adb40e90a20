//go:build linux

package platform

import "golang.org/x/sys/unix"

// StorageInfo reports filesystem totals for path via statfs, the same call
// the original daemon's storage.cpp makes.
func StorageInfo(path string) (total, free uint64, err error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, 0, err
	}
	blockSize := uint64(st.Bsize)
	return st.Blocks * blockSize, st.Bavail * blockSize, nil
}
