package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "carray",
		Short:   "Inspect and build chunked, block-compressed columns",
		Long:    "carray is a thin CLI over the pkg/carray chunked, block-compressed array format.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	}

	rootCmd.AddCommand(
		newInitCommand(),
		newAppendCommand(),
		newGetCommand(),
		newSumCommand(),
		newDumpCommand(),
		newInfoCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
