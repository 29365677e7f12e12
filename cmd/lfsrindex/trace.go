package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tamirms/lfsrindex"
	"github.com/tamirms/lfsrindex/internal/lfsr"
)

var traceCmd = &cobra.Command{
	Use:   "trace CHANNEL STEP",
	Short: "Regenerate a state and resolve it against the index",
	Long: `Step the channel's generator to STEP, print the register value, and look it
up in the index. When another origin produced the same state first, the index
reports that origin instead.`,
	Args: cobra.ExactArgs(2),
	RunE: traceFunc,
}

func traceFunc(cmd *cobra.Command, args []string) error {
	polys, err := configPolynomials()
	if err != nil {
		return err
	}
	seed, err := configSeed()
	if err != nil {
		return err
	}

	channel, err := parseUint32(args[0])
	if err != nil {
		return fmt.Errorf("invalid channel %q: %w", args[0], err)
	}
	if int(channel) >= len(polys) {
		return fmt.Errorf("channel %d out of range (%d polynomials)", channel, len(polys))
	}
	step, err := parseUint32(args[1])
	if err != nil {
		return fmt.Errorf("invalid step %q: %w", args[1], err)
	}
	if step >= lfsr.Period {
		return fmt.Errorf("step %d out of range (period %d)", step, lfsr.Period)
	}

	state := lfsr.StateAt(polys[channel], seed, step)
	cmd.Printf("Polynomial: 0x%08X\n", polys[channel])
	cmd.Printf("State: 0x%08X (masked 0x%07X)\n", state, lfsrindex.MaskState(state))

	idx, err := openIndex()
	if err != nil {
		return err
	}
	defer idx.Close()

	o, err := idx.Lookup(state)
	if err != nil {
		return err
	}
	cmd.Printf("Found: channel %d step %d\n", o.Channel, o.Step)
	if o != (lfsrindex.Origin{Channel: channel, Step: step}) {
		cmd.Println("Note: state first produced by an earlier origin")
	}
	return nil
}
