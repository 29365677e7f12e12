//go:build !linux

package lfsrindex

// adviseRandom is a no-op on non-Linux platforms.
func adviseRandom(data []byte) {
	// No-op
}
