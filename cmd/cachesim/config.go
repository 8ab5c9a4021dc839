package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/geometry"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Create and check cache config files.",
	}

	initCmd := &cobra.Command{
		Use:   "init <path>",
		Short: "Write the default cache config to a JSON file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := geometry.DefaultConfig().SaveConfig(args[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s\n", args[0])

			return nil
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check <path>",
		Short: "Validate a cache config file and print its geometry.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := geometry.LoadConfig(args[0])
			if err != nil {
				return err
			}

			g, err := config.Derive()
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), g.String())

			return nil
		},
	}

	configCmd.AddCommand(initCmd, checkCmd)

	return configCmd
}
