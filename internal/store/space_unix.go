//go:build unix

package store

import "golang.org/x/sys/unix"

// freeSpace reports the bytes available to an unprivileged caller on the
// volume holding path. path must exist.
func freeSpace(path string) (uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, err
	}
	return uint64(st.Bavail) * uint64(st.Bsize), nil
}
