package lfsrindex

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

const (
	// contextCheckInterval is how many buckets are written between context checks.
	contextCheckInterval = 10000

	// progressInterval is how often serialization progress is logged.
	progressInterval = time.Second
)

// flushBuffer stages output in a fixed-capacity buffer and writes it out
// whenever the next item would not fit. It never grows past its capacity.
type flushBuffer struct {
	w       io.Writer
	buf     []byte
	written int64
	hasher  *xxhash.Digest // Streaming digest of everything flushed
}

func newFlushBuffer(w io.Writer, size int) *flushBuffer {
	return &flushBuffer{
		w:      w,
		buf:    make([]byte, 0, size),
		hasher: xxhash.New(),
	}
}

// reserve returns the next n bytes of the buffer for the caller to fill,
// flushing first if they would exceed capacity. n must not exceed the capacity.
func (f *flushBuffer) reserve(n int) ([]byte, error) {
	if len(f.buf)+n > cap(f.buf) {
		if err := f.flush(); err != nil {
			return nil, err
		}
	}
	start := len(f.buf)
	f.buf = f.buf[:start+n]
	return f.buf[start:], nil
}

// zero appends n zero bytes, flushing as needed.
func (f *flushBuffer) zero(n uint64) error {
	for n > 0 {
		if len(f.buf) == cap(f.buf) {
			if err := f.flush(); err != nil {
				return err
			}
		}
		chunk := min(n, uint64(cap(f.buf)-len(f.buf)))
		start := len(f.buf)
		f.buf = f.buf[:start+int(chunk)]
		clear(f.buf[start:])
		n -= chunk
	}
	return nil
}

// flush writes out the staged bytes.
func (f *flushBuffer) flush() error {
	if len(f.buf) == 0 {
		return nil
	}
	n, err := f.w.Write(f.buf)
	f.written += int64(n)
	if err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	if _, err := f.hasher.Write(f.buf); err != nil {
		panic("hash.Hash.Write returned unexpected error: " + err.Error())
	}
	f.buf = f.buf[:0]
	return nil
}

// writeIndex serializes t to w: header, descriptor table, then records.
// It returns the number of bytes written and the xxHash64 of the output.
func writeIndex(ctx context.Context, w io.Writer, t *stateTable, flushSize int, log *zap.Logger) (int64, uint64, error) {
	l := t.layout
	fb := newFlushBuffer(w, flushSize)

	hdr, err := fb.reserve(headerSize)
	if err != nil {
		return fb.written, 0, err
	}
	binary.BigEndian.PutUint32(hdr, t.maxKey)

	// Descriptor table: one slot per key in [0, maxKey], runs of empty keys zeroed.
	var gap uint64
	for k := uint32(0); k <= t.maxKey; k++ {
		n := t.counts[k]
		if n == 0 {
			gap++
			continue
		}
		if gap > 0 {
			if err := fb.zero(gap * uint64(l.DescriptorSize)); err != nil {
				return fb.written, 0, err
			}
			gap = 0
		}
		desc, err := fb.reserve(l.DescriptorSize)
		if err != nil {
			return fb.written, 0, err
		}
		l.putDescriptor(desc, uint64(n), uint64(t.start[k])*recordSize)
	}

	// Records, bucket by bucket in ascending key order.
	timer := time.Now()
	var total time.Duration
	for k := uint32(0); k <= t.maxKey; k++ {
		if k%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return fb.written, 0, err
			}
		}
		for _, r := range t.bucket(k) {
			dst, err := fb.reserve(recordSize)
			if err != nil {
				return fb.written, 0, err
			}
			putRecord(dst, r.state, r.code)
		}
		if elapsed := time.Since(timer); elapsed > progressInterval {
			total += elapsed
			log.Info("writing records",
				zap.Duration("elapsed", total),
				zap.Uint32("bucket", k),
				zap.Uint32("max_key", t.maxKey),
				zap.Int64("bytes", fb.written+int64(len(fb.buf))))
			timer = time.Now()
		}
	}

	if err := fb.flush(); err != nil {
		return fb.written, 0, err
	}
	return fb.written, fb.hasher.Sum64(), nil
}

// indexWriter writes an index file atomically: data goes to a temp file in
// the destination directory, which is renamed over the output only after a
// complete, synced write.
type indexWriter struct {
	file    *os.File
	tmpPath string
	output  string
	size    int64
}

// newIndexWriter creates the temp file and pre-allocates size bytes.
func newIndexWriter(output string, size int64) (*indexWriter, error) {
	dir, base := filepath.Split(output)
	if dir == "" {
		dir = "."
	}
	file, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create index file: %w", err)
	}
	iw := &indexWriter{
		file:    file,
		tmpPath: file.Name(),
		output:  output,
		size:    size,
	}

	// CreateTemp uses 0600; match the permissions os.Create would give the output
	if err := file.Chmod(0o644); err != nil {
		primaryErr := fmt.Errorf("chmod index file: %w", err)
		return nil, errors.Join(primaryErr, iw.close())
	}

	// Pre-allocate disk blocks so a full disk fails here rather than mid-write
	if err := fallocateFile(file, size); err != nil {
		primaryErr := fmt.Errorf("failed to allocate disk space: %w", err)
		return nil, errors.Join(primaryErr, iw.close())
	}
	return iw, nil
}

// Write implements io.Writer.
func (iw *indexWriter) Write(p []byte) (int, error) {
	return iw.file.Write(p)
}

// commit syncs the temp file and renames it over the output.
// On error the temp file is removed.
func (iw *indexWriter) commit(written int64) error {
	if written != iw.size {
		primaryErr := fmt.Errorf("wrote %d bytes, expected %d", written, iw.size)
		return errors.Join(primaryErr, iw.close())
	}
	if err := iw.file.Sync(); err != nil {
		primaryErr := fmt.Errorf("sync index file: %w", err)
		return errors.Join(primaryErr, iw.close())
	}
	closeErr := iw.file.Close()
	iw.file = nil
	if closeErr != nil {
		return errors.Join(fmt.Errorf("close index file: %w", closeErr), iw.close())
	}
	if err := os.Rename(iw.tmpPath, iw.output); err != nil {
		return errors.Join(fmt.Errorf("rename index file: %w", err), iw.close())
	}
	iw.tmpPath = ""
	return nil
}

// close discards the temp file without committing.
// Idempotent: safe to call multiple times.
func (iw *indexWriter) close() error {
	var closeErr error
	if iw.file != nil {
		closeErr = iw.file.Close()
		iw.file = nil
	}
	var removeErr error
	if iw.tmpPath != "" {
		if err := os.Remove(iw.tmpPath); err != nil && !os.IsNotExist(err) {
			removeErr = err
		}
		iw.tmpPath = ""
	}
	return errors.Join(closeErr, removeErr)
}
