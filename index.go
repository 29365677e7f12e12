package lfsrindex

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/edsrzf/mmap-go"
	indexerrors "github.com/tamirms/lfsrindex/errors"
)

// Index is a read-only LFSR state index.
//
// Thread Safety:
// - Find, Lookup, and other read methods are safe for concurrent use
// - Close is NOT safe to call concurrently with queries
// - Close must only be called after all queries have completed
type Index struct {
	// Memory map (no file handle needed after mmap)
	mmap mmap.MMap
	data []byte

	layout  Layout
	maxKey  uint32 // highest bucket key with a descriptor
	table   []byte // descriptor table
	records []byte // record region

	closed atomic.Bool
}

// Stats holds index statistics.
type Stats struct {
	Slots        int // descriptor slots, maxKey+1
	Buckets      int // non-empty buckets
	Records      int
	MaxBucketLen int
	IndexSize    int64
	Digest       uint64 // xxHash64 of the whole file
}

// Open opens an index file for querying.
// It opens the file, memory-maps it, and closes the file descriptor.
func Open(path string, opts ...OpenOption) (*Index, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index file: %w", err)
	}
	defer file.Close()
	return OpenFile(file, opts...)
}

// OpenFile opens an index by memory-mapping the given file read-only.
// The caller is responsible for closing f; f may be closed as soon as
// OpenFile returns.
func OpenFile(f *os.File, opts ...OpenOption) (*Index, error) {
	cfg, err := newOpenConfig(opts)
	if err != nil {
		return nil, err
	}

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat index file: %w", err)
	}
	if stat.Size() < headerSize {
		return nil, indexerrors.ErrTruncatedFile
	}

	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap index file: %w", err)
	}
	// Queries touch one descriptor and one bucket each
	adviseRandom(mm)

	idx := &Index{
		mmap:   mm,
		data:   []byte(mm),
		layout: cfg.layout,
	}
	if err := idx.initFromData(); err != nil {
		return nil, errors.Join(err, idx.Close())
	}
	return idx, nil
}

// OpenBytes creates an index over an in-memory blob.
// No file is opened or memory-mapped; Close is a no-op.
// The caller must ensure data is not modified while the Index is in use.
func OpenBytes(data []byte, opts ...OpenOption) (*Index, error) {
	cfg, err := newOpenConfig(opts)
	if err != nil {
		return nil, err
	}
	idx := &Index{
		data:   data,
		layout: cfg.layout,
	}
	if err := idx.initFromData(); err != nil {
		return nil, err
	}
	return idx, nil
}

func newOpenConfig(opts []OpenOption) (*openConfig, error) {
	cfg := defaultOpenConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.layout.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// initFromData splits idx.data into header, descriptor table and records.
func (idx *Index) initFromData() error {
	size := uint64(len(idx.data))
	if size < headerSize {
		return indexerrors.ErrTruncatedFile
	}
	idx.maxKey = binary.BigEndian.Uint32(idx.data[0:headerSize])

	tableEnd := headerSize + idx.layout.tableSize(idx.maxKey)
	if tableEnd > size {
		return fmt.Errorf("%w: descriptor table needs %d bytes, file has %d",
			indexerrors.ErrTruncatedFile, tableEnd, size)
	}
	idx.table = idx.data[headerSize:tableEnd]
	idx.records = idx.data[tableEnd:]
	return nil
}

// Close releases the mapping. Queries after Close miss.
func (idx *Index) Close() error {
	if idx.closed.Swap(true) {
		return nil // Already closed
	}
	if idx.mmap != nil {
		return idx.mmap.Unmap()
	}
	return nil
}

// Find resolves a register value to the origin that produced it. Only the
// low 25 bits of state are significant. When several origins produced the
// same state, the one with the lowest channel (then step) is returned.
// A state that is not in the index, including one whose bucket key lies
// past the descriptor table, reports ok=false.
func (idx *Index) Find(state uint32) (Origin, bool) {
	if idx.closed.Load() {
		return Origin{}, false
	}

	key := idx.layout.BucketKey(state)
	if key > idx.maxKey {
		return Origin{}, false
	}
	state = MaskState(state)

	bucket, ok := idx.bucketRecords(key)
	if !ok {
		return Origin{}, false
	}
	for len(bucket) >= recordSize {
		s, code := readRecord(bucket)
		if s == state {
			return OriginFromCode(code), true
		}
		bucket = bucket[recordSize:]
	}
	return Origin{}, false
}

// Lookup is Find with the miss reported as ErrNotFound.
func (idx *Index) Lookup(state uint32) (Origin, error) {
	if idx.closed.Load() {
		return Origin{}, indexerrors.ErrIndexClosed
	}
	o, ok := idx.Find(state)
	if !ok {
		return Origin{}, indexerrors.ErrNotFound
	}
	return o, nil
}

// Bucket returns the descriptor of bucket key k: the number of records and
// the byte offset of the first one within the record region. Keys past the
// table, or any key after Close, report an empty bucket.
func (idx *Index) Bucket(k uint32) (count, offset uint64) {
	if idx.closed.Load() || k > idx.maxKey {
		return 0, 0
	}
	d := uint64(k) * uint64(idx.layout.DescriptorSize)
	return idx.layout.descriptor(idx.table[d:])
}

// bucketRecords returns the bytes of bucket k's records. A descriptor that
// points outside the record region reports ok=false.
func (idx *Index) bucketRecords(k uint32) ([]byte, bool) {
	count, offset := idx.Bucket(k)
	if count == 0 {
		return nil, false
	}
	end := offset + count*recordSize
	if end > uint64(len(idx.records)) {
		return nil, false
	}
	return idx.records[offset:end], true
}

// MaxKey returns the highest bucket key covered by the descriptor table.
func (idx *Index) MaxKey() uint32 {
	return idx.maxKey
}

// Layout returns the layout the index was opened with.
func (idx *Index) Layout() Layout {
	return idx.layout
}

// Stats walks the descriptor table and returns statistics for the index.
// A closed index reports empty statistics.
func (idx *Index) Stats() *Stats {
	if idx.closed.Load() {
		return &Stats{}
	}
	s := &Stats{
		Slots:     int(idx.maxKey) + 1,
		Records:   len(idx.records) / recordSize,
		IndexSize: int64(len(idx.data)),
		Digest:    xxhash.Sum64(idx.data),
	}
	for k := uint32(0); k <= idx.maxKey; k++ {
		count, _ := idx.Bucket(k)
		if count == 0 {
			continue
		}
		s.Buckets++
		s.MaxBucketLen = max(s.MaxBucketLen, int(count))
	}
	return s
}

// GetStats returns statistics for an index file.
func GetStats(path string, opts ...OpenOption) (*Stats, error) {
	idx, err := Open(path, opts...)
	if err != nil {
		return nil, err
	}
	return idx.Stats(), idx.Close()
}
