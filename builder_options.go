package lfsrindex

import (
	"go.uber.org/zap"

	"github.com/tamirms/lfsrindex/internal/lfsr"
)

const (
	// defaultFlushSize is the staging buffer size for streaming the index to disk.
	defaultFlushSize = 4 << 20
)

// BuildOption is a functional option for configuring builds.
type BuildOption func(*buildConfig)

// OpenOption is a functional option for opening an index.
type OpenOption func(*openConfig)

type buildConfig struct {
	workers   int
	seed      uint32
	steps     int // states generated per channel
	layout    Layout
	flushSize int // in bytes
	log       *zap.Logger
}

func defaultBuildConfig() *buildConfig {
	return &buildConfig{
		workers:   1,
		seed:      lfsr.DefaultSeed,
		steps:     lfsr.Period,
		layout:    DefaultLayout,
		flushSize: defaultFlushSize,
		log:       zap.NewNop(),
	}
}

type openConfig struct {
	layout Layout
}

func defaultOpenConfig() *openConfig {
	return &openConfig{layout: DefaultLayout}
}

// WithWorkers sets the number of goroutines generating channel sequences.
// Sequences are always merged in channel order, so the output does not
// depend on n.
func WithWorkers(n int) BuildOption {
	return func(c *buildConfig) {
		c.workers = n
	}
}

// WithSeed sets the initial register value of every channel.
func WithSeed(seed uint32) BuildOption {
	return func(c *buildConfig) {
		c.seed = seed
	}
}

// WithSteps limits each channel to its first n states. The default is the
// full 2^17; larger values are clamped.
func WithSteps(n int) BuildOption {
	return func(c *buildConfig) {
		c.steps = n
	}
}

// WithLayout sets the file layout. Readers must open the file with the same
// layout (see ReadLayout).
func WithLayout(l Layout) BuildOption {
	return func(c *buildConfig) {
		c.layout = l
	}
}

// WithFlushSize sets the size of the staging buffer used while writing.
// The buffer is flushed whenever the next descriptor or record would not fit.
func WithFlushSize(size int) BuildOption {
	return func(c *buildConfig) {
		c.flushSize = size
	}
}

// WithLogger sets the logger for build progress. Nil keeps the no-op logger.
func WithLogger(l *zap.Logger) BuildOption {
	return func(c *buildConfig) {
		if l != nil {
			c.log = l
		}
	}
}

// ReadLayout sets the layout used to decode an index. It must match the
// layout the file was built with.
func ReadLayout(l Layout) OpenOption {
	return func(c *openConfig) {
		c.layout = l
	}
}
