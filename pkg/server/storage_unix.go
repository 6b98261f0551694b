//go:build unix

package server

import (
	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"
)

// getStorageInfo reports filesystem usage for dir.
func getStorageInfo(dir string) (StorageInfo, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return StorageInfo{}, err
	}

	//nolint:gosec // block size is positive
	blockSize := uint64(stat.Bsize)
	total := stat.Blocks * blockSize
	available := stat.Bavail * blockSize
	used := total - stat.Bfree*blockSize

	return StorageInfo{
		Total:          total,
		Used:           used,
		Available:      available,
		AvailableHuman: humanize.IBytes(available),
	}, nil
}
