package lfsrindex

import (
	"encoding/binary"
	"fmt"

	indexerrors "github.com/tamirms/lfsrindex/errors"
	intbits "github.com/tamirms/lfsrindex/internal/bits"
)

const (
	// headerSize is the size of the file header: the highest bucket key as uint32_be.
	headerSize = 4

	// maxDescriptorSize bounds DescriptorSize so descriptors decode into a uint64.
	maxDescriptorSize = 8
)

// Layout describes the geometry of an index file. It is not stored in the
// file, so the builder and every reader of a file must use the same Layout.
//
// File layout (all integers big-endian):
//
//	Offset         Size      Field
//	0              4         N: highest bucket key present
//	4              D*(N+1)   descriptors, one per key in [0, N]
//	4+D*(N+1)      8*R       records: state uint32, origin code uint32
//
// A descriptor is (count << OffsetBits) | offset, where offset is the byte
// offset of the bucket's first record from the start of the record region
// and count is the number of records in the bucket. Empty buckets are zero.
//
// The header holds the highest key, not the number of distinct keys, so
// files whose header is a distinct-key count cannot be read with this package.
type Layout struct {
	// KeyBits is the number of low state bits used as the bucket key.
	KeyBits uint
	// DescriptorSize is the size of one descriptor in bytes.
	DescriptorSize int
	// OffsetBits is the width of the offset field; the count takes the rest.
	OffsetBits uint
}

var (
	// CompactLayout is the 24-bit descriptor format: 19-bit offset, 5-bit count.
	// The record region is limited to 512 KiB and buckets to 31 records, which
	// holds small polynomial sets or shortened sequences only.
	CompactLayout = Layout{KeyBits: 19, DescriptorSize: 3, OffsetBits: 19}

	// WideLayout uses 32-bit descriptors: 26-bit offset, 6-bit count. It holds
	// the full 32-channel set at full period (32 MiB of records, largest bucket 32).
	WideLayout = Layout{KeyBits: 19, DescriptorSize: 4, OffsetBits: 26}

	// DefaultLayout is used when no layout option is given.
	DefaultLayout = CompactLayout
)

// Validate checks that the layout is internally consistent.
func (l Layout) Validate() error {
	switch {
	case l.KeyBits == 0 || l.KeyBits > StateBits:
		return fmt.Errorf("%w: key bits %d not in [1, %d]", indexerrors.ErrInvalidLayout, l.KeyBits, StateBits)
	case l.DescriptorSize < 1 || l.DescriptorSize > maxDescriptorSize:
		return fmt.Errorf("%w: descriptor size %d not in [1, %d]", indexerrors.ErrInvalidLayout, l.DescriptorSize, maxDescriptorSize)
	case l.OffsetBits == 0 || l.OffsetBits >= uint(l.DescriptorSize*8):
		return fmt.Errorf("%w: offset bits %d leave no room for a count in %d bytes",
			indexerrors.ErrInvalidLayout, l.OffsetBits, l.DescriptorSize)
	}
	return nil
}

// String implements fmt.Stringer.
func (l Layout) String() string {
	return fmt.Sprintf("key=%d desc=%dB offset=%d count=%d", l.KeyBits, l.DescriptorSize, l.OffsetBits, l.countBits())
}

func (l Layout) countBits() uint {
	return uint(l.DescriptorSize*8) - l.OffsetBits
}

// MaxBucketLen returns the largest record count a descriptor can hold.
func (l Layout) MaxBucketLen() uint64 {
	return intbits.Mask(l.countBits())
}

// MaxRegionSize returns the largest record-region offset a descriptor can hold.
func (l Layout) MaxRegionSize() uint64 {
	return intbits.Mask(l.OffsetBits)
}

// BucketKey returns the bucket key of a state value.
func (l Layout) BucketKey(state uint32) uint32 {
	return state & uint32(intbits.Mask(l.KeyBits))
}

// NumKeys returns the number of distinct bucket keys the layout can address.
func (l Layout) NumKeys() int {
	return 1 << l.KeyBits
}

// tableSize returns the byte length of the descriptor table for keys [0, maxKey].
func (l Layout) tableSize(maxKey uint32) uint64 {
	return (uint64(maxKey) + 1) * uint64(l.DescriptorSize)
}

// putDescriptor encodes a descriptor into dst[:DescriptorSize].
func (l Layout) putDescriptor(dst []byte, count, offset uint64) {
	intbits.PutUintBE(dst[:l.DescriptorSize], count<<l.OffsetBits|offset)
}

// descriptor decodes a descriptor from src[:DescriptorSize].
func (l Layout) descriptor(src []byte) (count, offset uint64) {
	v := intbits.UintBE(src[:l.DescriptorSize])
	return v >> l.OffsetBits, v & intbits.Mask(l.OffsetBits)
}

// putRecord encodes one record into dst[:recordSize].
func putRecord(dst []byte, state, code uint32) {
	binary.BigEndian.PutUint32(dst[0:4], state)
	binary.BigEndian.PutUint32(dst[4:8], code)
}

// readRecord decodes one record from src[:recordSize].
func readRecord(src []byte) (state, code uint32) {
	return binary.BigEndian.Uint32(src[0:4]), binary.BigEndian.Uint32(src[4:8])
}
