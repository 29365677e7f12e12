package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tamirms/lfsrindex"
	indexerrors "github.com/tamirms/lfsrindex/errors"
)

var findCmd = &cobra.Command{
	Use:   "find STATE...",
	Short: "Resolve register states to their origin",
	Long: `Look up each state in the index and print the channel and step that
produced it. States are decimal or 0x-prefixed hex; bits above bit 24 are ignored.`,
	Args: cobra.MinimumNArgs(1),
	RunE: findFunc,
}

func findFunc(cmd *cobra.Command, args []string) error {
	states := make([]uint32, len(args))
	for i, arg := range args {
		s, err := parseUint32(arg)
		if err != nil {
			return fmt.Errorf("invalid state %q: %w", arg, err)
		}
		states[i] = s
	}

	idx, err := openIndex()
	if err != nil {
		return err
	}
	defer idx.Close()

	for _, s := range states {
		o, err := idx.Lookup(s)
		switch {
		case errors.Is(err, indexerrors.ErrNotFound):
			cmd.Printf("0x%07X: not found\n", lfsrindex.MaskState(s))
		case err != nil:
			return err
		default:
			cmd.Printf("0x%07X: channel %d step %d\n", lfsrindex.MaskState(s), o.Channel, o.Step)
		}
	}
	return nil
}
