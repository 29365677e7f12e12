package lfsrindex

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/fnv"
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tamirms/lfsrindex/internal/lfsr"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

func newTestRNG(t testing.TB) *rand.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return rand.New(rand.NewPCG(testSeed1^s1, testSeed2^s2))
}

// reference is an independent model of the index contents: for every masked
// state, the first origin that produced it in accumulation order, plus the
// per-key record counts.
type reference struct {
	first  map[uint32]Origin
	counts map[uint32]int
	total  int
}

func newReference(polys Polynomials, seed uint32, steps int, layout Layout) *reference {
	ref := &reference{
		first:  make(map[uint32]Origin),
		counts: make(map[uint32]int),
	}
	for ch, poly := range polys {
		g := lfsr.New(poly, seed, steps)
		for step, state := range g.All() {
			masked := MaskState(state)
			if _, ok := ref.first[masked]; !ok {
				ref.first[masked] = Origin{Channel: uint32(ch), Step: step}
			}
			ref.counts[layout.BucketKey(state)]++
			ref.total++
		}
	}
	return ref
}

// buildBytes builds an index in memory and returns the blob.
func buildBytes(t *testing.T, polys Polynomials, opts ...BuildOption) []byte {
	t.Helper()
	b, err := NewBuilder(context.Background(), polys, opts...)
	require.NoError(t, err)
	defer b.Close()

	var buf bytes.Buffer
	n, err := b.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, b.Size(), n)
	require.Equal(t, int64(buf.Len()), n)
	return buf.Bytes()
}

// buildAndOpen builds an index in memory and opens it with the given layout.
func buildAndOpen(t *testing.T, polys Polynomials, layout Layout, opts ...BuildOption) *Index {
	t.Helper()
	data := buildBytes(t, polys, append([]BuildOption{WithLayout(layout)}, opts...)...)
	idx, err := OpenBytes(data, ReadLayout(layout))
	require.NoError(t, err)
	return idx
}

// buildFile builds an index to a file in a temp directory and returns its path.
func buildFile(t *testing.T, polys Polynomials, opts ...BuildOption) (string, *BuildStats) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lookup.bin")
	stats, err := Build(context.Background(), path, polys, opts...)
	require.NoError(t, err)
	return path, stats
}

// verifyRoundTrip checks that every state in ref resolves to its first origin.
func verifyRoundTrip(t *testing.T, idx *Index, ref *reference) {
	t.Helper()
	for state, want := range ref.first {
		got, ok := idx.Find(state)
		if !ok {
			t.Fatalf("Find(0x%07X): not found, want %+v", state, want)
		}
		if got != want {
			t.Fatalf("Find(0x%07X) = %+v, want %+v", state, got, want)
		}
	}
}

// verifyMisses probes n random 25-bit states absent from ref.
func verifyMisses(t *testing.T, rng *rand.Rand, idx *Index, ref *reference, n int) {
	t.Helper()
	for probed := 0; probed < n; {
		state := MaskState(rng.Uint32())
		if _, ok := ref.first[state]; ok {
			continue
		}
		probed++
		if o, ok := idx.Find(state); ok {
			t.Fatalf("Find(0x%07X) = %+v, want miss", state, o)
		}
	}
}

// verifyDescriptors checks every descriptor against the reference counts and
// that offsets are laid out back to back in key order.
func verifyDescriptors(t *testing.T, idx *Index, ref *reference) {
	t.Helper()
	var next uint64
	for k := uint32(0); k <= idx.MaxKey(); k++ {
		count, offset := idx.Bucket(k)
		require.Equalf(t, uint64(ref.counts[k]), count, "bucket %d count", k)
		if count == 0 {
			require.Zerof(t, offset, "empty bucket %d offset", k)
			continue
		}
		require.Equalf(t, next, offset, "bucket %d offset", k)
		next += count * recordSize
	}
	require.Equal(t, uint64(len(idx.records)), next)
}
