package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tamirms/lfsrindex"
	"github.com/tamirms/lfsrindex/internal/lfsr"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build an index file from a polynomial set",
	Long: `Generate every channel's state sequence and write the index file.
The file is written to a temporary path and renamed into place once complete.`,
	Args: cobra.NoArgs,
	PreRun: func(cmd *cobra.Command, _ []string) {
		bindFlags(cmd.Flags(), stepsFlag, workersFlag, flushSizeFlag)
	},
	RunE: buildFunc,
}

func init() {
	ff := buildCmd.Flags()
	ff.Int(stepsFlag, lfsr.Period, "states generated per channel")
	ff.Int(workersFlag, 1, "channels generated in parallel")
	ff.Int(flushSizeFlag, 4<<20, "write buffer size in bytes")
}

func buildFunc(cmd *cobra.Command, _ []string) error {
	log, err := configLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	polys, err := configPolynomials()
	if err != nil {
		return err
	}
	layout, err := configLayout()
	if err != nil {
		return err
	}
	seed, err := configSeed()
	if err != nil {
		return err
	}

	output := viper.GetString(indexFlag)
	stats, err := lfsrindex.Build(cmd.Context(), output, polys,
		lfsrindex.WithLayout(layout),
		lfsrindex.WithSeed(seed),
		lfsrindex.WithSteps(viper.GetInt(stepsFlag)),
		lfsrindex.WithWorkers(viper.GetInt(workersFlag)),
		lfsrindex.WithFlushSize(viper.GetInt(flushSizeFlag)),
		lfsrindex.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("build %s: %w", output, err)
	}

	cmd.Printf("Index: %s\n", output)
	cmd.Printf("Layout: %s\n", layout)
	cmd.Printf("Channels: %d x %d steps\n", stats.Channels, stats.StepsPerChan)
	cmd.Printf("Records: %d in %d buckets (max key %d, largest bucket %d)\n",
		stats.Records, stats.Buckets, stats.MaxKey, stats.MaxBucketLen)
	cmd.Printf("Size: %d bytes\n", stats.IndexSize)
	cmd.Printf("Digest: %016x\n", stats.Digest)
	cmd.Printf("Polynomial fingerprint: %016x\n", stats.PolyFingerprint)
	cmd.Printf("Took: %s\n", stats.Duration)
	return nil
}
