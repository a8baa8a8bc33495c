package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stevedore/stevedore/internal/manifest"
)

// NewSchemaCmd creates the schema subcommand.
func NewSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the plugin manifest JSON Schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			schema, err := manifest.GenerateSchema()
			if err != nil {
				return fmt.Errorf("generate schema: %w", err)
			}
			cmd.Println(string(schema))
			return nil
		},
	}
}
