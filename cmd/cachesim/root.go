package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cachesim",
		Short: "cachesim simulates a set-associative cache with FIFO replacement.",
		Long: `cachesim simulates a set-associative cache with FIFO ` +
			`replacement. Given the cache geometry and a list of byte ` +
			`addresses, it reports a HIT or MISS for each access and dumps ` +
			`the final contents of every cache line.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newRunCmd(), newConfigCmd())

	return rootCmd
}
