package lfsrindex

import (
	"context"
	"fmt"
	"time"

	indexerrors "github.com/tamirms/lfsrindex/errors"
	"github.com/tamirms/lfsrindex/internal/lfsr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// tableRecord is one (masked state, origin code) pair of the state table.
type tableRecord struct {
	state uint32
	code  uint32
}

// stateTable is the in-memory mapping from bucket key to the records whose
// state falls in that bucket.
//
// Records are stored in one slice sorted by bucket key; within a bucket they
// keep accumulation order (channel 0..n, then step 0..steps). Bucket k spans
// records[start[k] : start[k]+counts[k]].
type stateTable struct {
	layout  Layout
	counts  []uint32 // records per bucket key
	start   []uint32 // index of each bucket's first record
	records []tableRecord

	maxKey    uint32 // highest key with a non-empty bucket
	buckets   int    // number of non-empty buckets
	maxBucket uint32 // largest bucket
}

// newStateTable generates every channel's sequence and groups the states by
// bucket key.
func newStateTable(ctx context.Context, polys Polynomials, cfg *buildConfig) (*stateTable, error) {
	seqs, err := generateSequences(ctx, polys, cfg)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	t := &stateTable{
		layout: cfg.layout,
		counts: make([]uint32, cfg.layout.NumKeys()),
		start:  make([]uint32, cfg.layout.NumKeys()),
	}

	// Pass 1: bucket sizes.
	total := 0
	for _, seq := range seqs {
		for _, state := range seq {
			t.counts[t.layout.BucketKey(state)]++
		}
		total += len(seq)
	}

	// Bucket start positions, in ascending key order.
	var next uint32
	for k, n := range t.counts {
		t.start[k] = next
		next += n
		if n == 0 {
			continue
		}
		t.buckets++
		t.maxKey = uint32(k)
		if n > t.maxBucket {
			t.maxBucket = n
		}
	}

	// Pass 2: place records. Walking channels then steps in order keeps
	// colliding records in accumulation order within each bucket.
	t.records = make([]tableRecord, total)
	cursor := make([]uint32, len(t.start))
	copy(cursor, t.start)
	for ch, seq := range seqs {
		for step, state := range seq {
			key := t.layout.BucketKey(state)
			t.records[cursor[key]] = tableRecord{
				state: MaskState(state),
				code:  Origin{Channel: uint32(ch), Step: uint32(step)}.Code(),
			}
			cursor[key]++
		}
		seqs[ch] = nil
	}

	cfg.log.Info("state table built",
		zap.Int("records", len(t.records)),
		zap.Int("buckets", t.buckets),
		zap.Uint32("max_key", t.maxKey),
		zap.Uint32("max_bucket", t.maxBucket),
		zap.Duration("took", time.Since(start)))

	return t, nil
}

// generateSequences runs one generator per polynomial. Channels may be
// generated concurrently; seqs[ch] always holds channel ch's states in step order.
func generateSequences(ctx context.Context, polys Polynomials, cfg *buildConfig) ([][]uint32, error) {
	workers := cfg.workers
	if workers <= 0 {
		workers = 1
	}

	seqs := make([][]uint32, len(polys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for ch, poly := range polys {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			gen := lfsr.New(poly, cfg.seed, cfg.steps)
			seq := make([]uint32, gen.Len())
			for step, state := range gen.All() {
				seq[step] = state
			}
			seqs[ch] = seq
			cfg.log.Debug("channel generated",
				zap.Int("channel", ch),
				zap.String("poly", fmt.Sprintf("0x%08X", poly)),
				zap.Int("steps", len(seq)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("generate sequences: %w", err)
	}
	return seqs, nil
}

// bucket returns the records of bucket key k.
func (t *stateTable) bucket(k uint32) []tableRecord {
	return t.records[t.start[k] : t.start[k]+t.counts[k]]
}

// checkCapacity verifies every descriptor fits the layout before anything is
// written.
func (t *stateTable) checkCapacity() error {
	maxLen := t.layout.MaxBucketLen()
	maxOffset := t.layout.MaxRegionSize()
	for k := uint32(0); k <= t.maxKey; k++ {
		n := t.counts[k]
		if n == 0 {
			continue
		}
		if uint64(n) > maxLen {
			return fmt.Errorf("%w: bucket %d has %d records (max %d for %s)",
				indexerrors.ErrBucketOverflow, k, n, maxLen, t.layout)
		}
		if off := uint64(t.start[k]) * recordSize; off > maxOffset {
			return fmt.Errorf("%w: bucket %d starts at byte %d (max %d for %s)",
				indexerrors.ErrOffsetOverflow, k, off, maxOffset, t.layout)
		}
	}
	return nil
}

// fileSize returns the exact size of the serialized index.
func (t *stateTable) fileSize() int64 {
	return int64(headerSize + t.layout.tableSize(t.maxKey) + uint64(len(t.records))*recordSize)
}
