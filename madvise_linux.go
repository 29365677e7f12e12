//go:build linux

package lfsrindex

import "golang.org/x/sys/unix"

// adviseRandom hints that the mapping will be read at random offsets, which
// disables readahead for lookups. Best-effort: errors are ignored.
func adviseRandom(data []byte) {
	if len(data) == 0 {
		return
	}
	_ = unix.Madvise(data, unix.MADV_RANDOM)
}
