//go:build darwin

package lfsrindex

import (
	"os"

	"golang.org/x/sys/unix"
)

// fallocateFile reserves size bytes for the index so a full disk fails before
// any data is written. On macOS, uses fcntl F_PREALLOCATE.
func fallocateFile(file *os.File, size int64) error {
	if size == 0 {
		return nil
	}
	fst := unix.Fstore_t{
		Flags:   unix.F_ALLOCATEALL,
		Posmode: unix.F_PEOFPOSMODE,
		Offset:  0,
		Length:  size,
	}
	if err := unix.FcntlFstore(file.Fd(), unix.F_PREALLOCATE, &fst); err != nil {
		return unix.Ftruncate(int(file.Fd()), size)
	}
	return nil
}
