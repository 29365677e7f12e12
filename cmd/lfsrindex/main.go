// Lfsrindex builds and queries LFSR state index files.
//
// Usage:
//
//	lfsrindex build --index lookup.bin --layout wide
//	lfsrindex find --index lookup.bin 0x2BA6CAD2
//	lfsrindex trace --index lookup.bin 10 9999
//	lfsrindex stats --index lookup.bin
//	lfsrindex bench --index lookup.bin --queries 1000000
//
// Every flag can also be set from a YAML config file passed with --config.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "lfsrindex",
	Short: "Build and query LFSR state index files",
	Long: `lfsrindex maps observed LFSR register states back to the channel and step
that produced them. It builds the on-disk index from a polynomial set and
resolves states against it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initConfig(cmd)
	},
}

func init() {
	// use stdout as default output for cmd.Print()
	rootCmd.SetOut(os.Stdout)

	ff := rootCmd.PersistentFlags()
	ff.StringVarP(&cfgFile, "config", "c", "", "YAML config file")
	ff.StringP(indexFlag, "i", defaultIndexPath, "index file path")
	ff.String(layoutFlag, defaultLayoutName, "index layout: compact or wide")
	ff.String(seedFlag, "1", "initial register value of every channel")
	ff.String(logLevelFlag, "info", "log level: debug, info, warn or error")
	ff.StringSlice(polynomialsFlag, nil, "tap masks in channel order (default: built-in 32-channel set)")

	rootCmd.AddCommand(
		buildCmd,
		findCmd,
		traceCmd,
		statsCmd,
		benchCmd,
	)
}

// initConfig binds the persistent flags and reads the config file, if any.
func initConfig(cmd *cobra.Command) error {
	bindFlags(cmd.Flags(), indexFlag, layoutFlag, seedFlag, logLevelFlag, polynomialsFlag)

	if cfgFile == "" {
		return nil
	}
	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	return nil
}

// bindFlags binds the named flags to the viper keys of the same name.
func bindFlags(ff *pflag.FlagSet, names ...string) {
	for _, name := range names {
		_ = viper.BindPFlag(name, ff.Lookup(name))
	}
}

func main() {
	err := rootCmd.Execute()
	exitOnErr(rootCmd, err)
}

// exitOnErr prints err via cmd and exits with code 1. Does nothing if err
// is nil.
func exitOnErr(cmd *cobra.Command, err error) {
	if err != nil {
		cmd.PrintErrln(err)
		os.Exit(1)
	}
}
