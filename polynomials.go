package lfsrindex

import (
	"encoding/binary"
	"fmt"

	indexerrors "github.com/tamirms/lfsrindex/errors"
	"github.com/zeebo/xxh3"
)

// Polynomials is an ordered set of LFSR tap masks. The position of a mask in
// the slice is its channel id.
type Polynomials []uint32

// DefaultPolynomials is the 32-channel tap set the index was designed around.
// A full-period build of the whole set needs WideLayout: every channel starts
// at the seed, so bucket 1 holds 32 records, one more than CompactLayout's
// count field allows.
var DefaultPolynomials = Polynomials{
	0x0001D258, 0x00017E04, 0x0001FF6B, 0x00013F67, 0x0001B9EE, 0x000198D1, 0x000178C7, 0x00018A55,
	0x00015777, 0x0001D911, 0x00015769, 0x0001991F, 0x00012BD0, 0x0001CF73, 0x0001365D, 0x000197F5,
	0x000194A0, 0x0001B279, 0x00013A34, 0x0001AE41, 0x000180D4, 0x00017891, 0x00012E64, 0x00017C72,
	0x00019C6D, 0x00013F32, 0x0001AE14, 0x00014E76, 0x00013C97, 0x000130CB, 0x00013750, 0x0001CB8D,
}

// Validate checks that the set can be encoded in origin codes.
func (p Polynomials) Validate() error {
	if len(p) == 0 {
		return indexerrors.ErrNoPolynomials
	}
	if len(p) > MaxChannels {
		return fmt.Errorf("%w: %d channels (max %d)", indexerrors.ErrTooManyChannels, len(p), MaxChannels)
	}
	return nil
}

// Fingerprint returns an xxHash3 digest of the ordered tap masks. The index
// file does not record its polynomial set; the fingerprint lets tooling tie
// a file to the set it was built from.
func (p Polynomials) Fingerprint() uint64 {
	buf := make([]byte, 4*len(p))
	for i, poly := range p {
		binary.BigEndian.PutUint32(buf[i*4:], poly)
	}
	return xxh3.Hash(buf)
}

// Clone returns a copy of the set.
func (p Polynomials) Clone() Polynomials {
	return append(Polynomials(nil), p...)
}
