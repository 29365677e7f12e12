package lfsrindex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	indexerrors "github.com/tamirms/lfsrindex/errors"
	"github.com/tamirms/lfsrindex/internal/lfsr"
	"go.uber.org/zap"
)

// BuildStats summarizes a finished build.
type BuildStats struct {
	Channels        int
	StepsPerChan    int
	Records         int
	Buckets         int    // non-empty buckets
	MaxKey          uint32 // highest bucket key, stored in the header
	MaxBucketLen    int
	IndexSize       int64
	Digest          uint64 // xxHash64 of the written file
	PolyFingerprint uint64
	Duration        time.Duration
}

// Builder turns a polynomial set into an index file.
//
// Usage:
//
//	builder, err := lfsrindex.NewBuilder(ctx, lfsrindex.DefaultPolynomials,
//	    lfsrindex.WithLayout(lfsrindex.WideLayout))
//	if err != nil { return err }
//	defer builder.Close()
//
//	stats, err := builder.Finish("lookup.bin")
//
// NewBuilder generates every channel and holds the state table in memory;
// Finish or WriteTo serialize it. The builder is single use.
type Builder struct {
	ctx     context.Context
	cfg     *buildConfig
	polys   Polynomials
	table   *stateTable
	started time.Time
	closed  bool
}

// NewBuilder validates the configuration and builds the in-memory state table
// for polys. The polynomial slice is copied.
func NewBuilder(ctx context.Context, polys Polynomials, opts ...BuildOption) (*Builder, error) {
	if err := polys.Validate(); err != nil {
		return nil, err
	}

	cfg := defaultBuildConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.layout.Validate(); err != nil {
		return nil, err
	}
	if cfg.steps <= 0 {
		return nil, fmt.Errorf("steps per channel must be positive, got %d", cfg.steps)
	}
	cfg.steps = min(cfg.steps, lfsr.Period)
	if cfg.flushSize < max(recordSize, cfg.layout.DescriptorSize) {
		return nil, fmt.Errorf("%w: %d bytes", indexerrors.ErrInvalidFlushSize, cfg.flushSize)
	}

	b := &Builder{
		ctx:     ctx,
		cfg:     cfg,
		polys:   polys.Clone(),
		started: time.Now(),
	}

	cfg.log.Info("building state table",
		zap.Int("channels", len(b.polys)),
		zap.Int("steps", cfg.steps),
		zap.Int("workers", cfg.workers),
		zap.Stringer("layout", cfg.layout),
		zap.String("poly_fingerprint", fmt.Sprintf("%016x", b.polys.Fingerprint())))

	t, err := newStateTable(ctx, b.polys, cfg)
	if err != nil {
		return nil, err
	}
	if err := t.checkCapacity(); err != nil {
		return nil, err
	}
	b.table = t
	return b, nil
}

// Build is a convenience wrapper around NewBuilder and Finish.
//
// With no layout option the index uses DefaultLayout (CompactLayout), which
// cannot hold the full DefaultPolynomials set; pass WithLayout(WideLayout)
// for that build or it fails with ErrBucketOverflow.
func Build(ctx context.Context, output string, polys Polynomials, opts ...BuildOption) (*BuildStats, error) {
	b, err := NewBuilder(ctx, polys, opts...)
	if err != nil {
		return nil, err
	}
	defer b.Close()
	return b.Finish(output)
}

// Size returns the exact size of the index the builder will write.
func (b *Builder) Size() int64 {
	if b.table == nil {
		return 0
	}
	return b.table.fileSize()
}

// WriteTo streams the index to w. It implements io.WriterTo and may be called
// more than once until Finish or Close.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	if b.closed {
		return 0, indexerrors.ErrBuilderClosed
	}
	n, _, err := writeIndex(b.ctx, w, b.table, b.cfg.flushSize, b.cfg.log)
	return n, err
}

// Finish writes the index to output and releases the state table. The file
// appears at output only if the whole index was written; on any error no
// file is left behind.
func (b *Builder) Finish(output string) (*BuildStats, error) {
	if b.closed {
		return nil, indexerrors.ErrBuilderClosed
	}
	b.closed = true
	defer func() { b.table = nil }()

	t := b.table
	size := t.fileSize()
	iw, err := newIndexWriter(output, size)
	if err != nil {
		return nil, fmt.Errorf("create index writer: %w", err)
	}

	written, digest, err := writeIndex(b.ctx, iw, t, b.cfg.flushSize, b.cfg.log)
	if err != nil {
		return nil, errors.Join(err, iw.close())
	}
	if err := iw.commit(written); err != nil {
		return nil, err
	}

	stats := &BuildStats{
		Channels:        len(b.polys),
		StepsPerChan:    b.cfg.steps,
		Records:         len(t.records),
		Buckets:         t.buckets,
		MaxKey:          t.maxKey,
		MaxBucketLen:    int(t.maxBucket),
		IndexSize:       written,
		Digest:          digest,
		PolyFingerprint: b.polys.Fingerprint(),
		Duration:        time.Since(b.started),
	}
	b.cfg.log.Info("index written",
		zap.String("path", output),
		zap.Int64("size", stats.IndexSize),
		zap.Int("records", stats.Records),
		zap.String("digest", fmt.Sprintf("%016x", stats.Digest)),
		zap.Duration("took", stats.Duration))
	return stats, nil
}

// Close releases the state table without writing. Safe to call after Finish.
func (b *Builder) Close() error {
	b.closed = true
	b.table = nil
	return nil
}
