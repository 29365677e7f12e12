package main

import (
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print index statistics",
	Args:  cobra.NoArgs,
	RunE:  statsFunc,
}

func statsFunc(cmd *cobra.Command, _ []string) error {
	idx, err := openIndex()
	if err != nil {
		return err
	}
	defer idx.Close()

	s := idx.Stats()
	cmd.Printf("Layout: %s\n", idx.Layout())
	cmd.Printf("Descriptor slots: %d (max key %d)\n", s.Slots, idx.MaxKey())
	cmd.Printf("Non-empty buckets: %d\n", s.Buckets)
	cmd.Printf("Records: %d\n", s.Records)
	cmd.Printf("Largest bucket: %d\n", s.MaxBucketLen)
	cmd.Printf("Size: %d bytes\n", s.IndexSize)
	cmd.Printf("Digest: %016x\n", s.Digest)
	return nil
}
