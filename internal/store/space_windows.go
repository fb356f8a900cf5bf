//go:build windows

package store

import (
	"path/filepath"

	"golang.org/x/sys/windows"
)

// freeSpace reports the bytes available to the calling user on the volume
// holding path. GetDiskFreeSpaceEx wants a directory, so the probe uses the
// file's parent.
func freeSpace(path string) (uint64, error) {
	dir, err := windows.UTF16PtrFromString(filepath.Dir(path))
	if err != nil {
		return 0, err
	}
	var avail, total, free uint64
	if err := windows.GetDiskFreeSpaceEx(dir, &avail, &total, &free); err != nil {
		return 0, err
	}
	return avail, nil
}
