//go:build !linux && !darwin

package lfsrindex

import "os"

// fallocateFile is a no-op on platforms without native preallocation; the
// file grows as it is written.
func fallocateFile(file *os.File, size int64) error {
	return nil
}
