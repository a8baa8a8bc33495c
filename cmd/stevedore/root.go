package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the stevedore CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stevedore",
		Short: "Stevedore - asynchronous plugin archive loader",
		Long: `Stevedore scans a directory for plugin archives and loads the
compiled entries they contain, one archive at a time, on a single worker.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewLoadCmd())
	cmd.AddCommand(NewValidateCmd())
	cmd.AddCommand(NewSchemaCmd())

	return cmd
}
