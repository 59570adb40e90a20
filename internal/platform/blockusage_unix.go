//go:build linux || darwin

package platform

import (
	"io/fs"
	"syscall"
)

// blockUsage returns the actual number of bytes the file occupies on disk
// (st_blocks * 512), matching the original's accumulate_usage.
func blockUsage(info fs.FileInfo) uint64 {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return uint64(info.Size())
	}
	return uint64(st.Blocks) * 512
}
