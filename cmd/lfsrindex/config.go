package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"github.com/tamirms/lfsrindex"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config keys. Flags share the key names.
const (
	indexFlag       = "index"
	layoutFlag      = "layout"
	seedFlag        = "seed"
	logLevelFlag    = "log-level"
	polynomialsFlag = "polynomials"
	stepsFlag       = "steps"
	workersFlag     = "workers"
	flushSizeFlag   = "flush-size"
	queriesFlag     = "queries"
)

const (
	defaultIndexPath  = "lookup.bin"
	defaultLayoutName = "wide"
)

var layouts = map[string]lfsrindex.Layout{
	"compact": lfsrindex.CompactLayout,
	"wide":    lfsrindex.WideLayout,
}

// parseLayout resolves a layout name.
func parseLayout(name string) (lfsrindex.Layout, error) {
	l, ok := layouts[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return lfsrindex.Layout{}, fmt.Errorf("unknown layout %q (use compact or wide)", name)
	}
	return l, nil
}

// parseUint32 accepts decimal or 0x-prefixed hex values, as strings or numbers.
func parseUint32(v any) (uint32, error) {
	if s, ok := v.(string); ok {
		n, err := strconv.ParseUint(strings.TrimSpace(s), 0, 32)
		if err != nil {
			return 0, err
		}
		return uint32(n), nil
	}
	return cast.ToUint32E(v)
}

// parsePolynomials converts a config value into a polynomial set. Lists come
// from YAML, StringSlice flags, or a comma-separated string. An
// empty value selects the built-in set.
func parsePolynomials(v any) (lfsrindex.Polynomials, error) {
	var items []any
	switch t := v.(type) {
	case nil:
	case string:
		for _, s := range strings.FieldsFunc(t, func(r rune) bool { return r == ',' || r == ' ' }) {
			items = append(items, s)
		}
	case []string:
		for _, s := range t {
			items = append(items, s)
		}
	default:
		var err error
		if items, err = cast.ToSliceE(v); err != nil {
			return nil, fmt.Errorf("invalid polynomial list: %w", err)
		}
	}
	if len(items) == 0 {
		return lfsrindex.DefaultPolynomials.Clone(), nil
	}

	polys := make(lfsrindex.Polynomials, 0, len(items))
	for i, item := range items {
		p, err := parseUint32(item)
		if err != nil {
			return nil, fmt.Errorf("polynomial %d: %w", i, err)
		}
		polys = append(polys, p)
	}
	if err := polys.Validate(); err != nil {
		return nil, err
	}
	return polys, nil
}

func configLayout() (lfsrindex.Layout, error) {
	return parseLayout(viper.GetString(layoutFlag))
}

func configSeed() (uint32, error) {
	seed, err := parseUint32(viper.Get(seedFlag))
	if err != nil {
		return 0, fmt.Errorf("invalid seed: %w", err)
	}
	return seed, nil
}

func configPolynomials() (lfsrindex.Polynomials, error) {
	return parsePolynomials(viper.Get(polynomialsFlag))
}

// newLogger builds a console logger writing to stderr.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	c := zap.NewProductionConfig()
	c.Level = lvl
	c.Encoding = "console"
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return c.Build(
		zap.AddStacktrace(zap.NewAtomicLevelAt(zap.FatalLevel)),
	)
}

func configLogger() (*zap.Logger, error) {
	return newLogger(viper.GetString(logLevelFlag))
}

// openIndex opens the configured index file with the configured layout.
func openIndex() (*lfsrindex.Index, error) {
	layout, err := configLayout()
	if err != nil {
		return nil, err
	}
	return lfsrindex.Open(viper.GetString(indexFlag), lfsrindex.ReadLayout(layout))
}
