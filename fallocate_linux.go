//go:build linux

package lfsrindex

import (
	"os"

	"golang.org/x/sys/unix"
)

// fallocateFile reserves size bytes for the index so a full disk fails before
// any data is written. On Linux, uses the fallocate syscall.
func fallocateFile(file *os.File, size int64) error {
	if size == 0 {
		return nil
	}
	err := unix.Fallocate(int(file.Fd()), 0, 0, size)
	if err != nil {
		// Fallback to ftruncate if fallocate fails (e.g., NFS, some filesystems)
		return unix.Ftruncate(int(file.Fd()), size)
	}
	return nil
}
