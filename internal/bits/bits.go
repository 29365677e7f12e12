// Package bits provides big-endian fixed-width integer helpers for the
// index wire format.
package bits

// PutUintBE writes the low len(dst)*8 bits of v into dst, big-endian.
// len(dst) must be between 1 and 8.
func PutUintBE(dst []byte, v uint64) {
	for i := len(dst) - 1; i >= 0; i-- {
		dst[i] = byte(v)
		v >>= 8
	}
}

// UintBE reads a big-endian unsigned integer of len(src) bytes.
// len(src) must be between 1 and 8.
func UintBE(src []byte) uint64 {
	var v uint64
	for _, b := range src {
		v = v<<8 | uint64(b)
	}
	return v
}

// Mask returns a mask with the low n bits set. n must be at most 64.
func Mask(n uint) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return uint64(1)<<n - 1
}
