// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Stevedore Contributors

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stevedore/stevedore/internal/manifest"
)

// NewValidateCmd creates the validate subcommand.
func NewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <plugin.yaml>",
		Short: "Validate a plugin manifest without loading anything",
		Long: `Validates a plugin.yaml manifest against the manifest schema and
constraints. Exits with code 0 on success, non-zero on failure.

Useful in CI pipelines to catch manifest errors before shipping an archive:
  stevedore validate plugin.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0])
		},
	}
}

func runValidate(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is a user-supplied CLI argument
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	if err := manifest.ValidateSchema(data); err != nil {
		return fmt.Errorf("manifest %s: %w", path, err)
	}

	m, err := manifest.Parse(data)
	if err != nil {
		return fmt.Errorf("manifest %s: %w", path, err)
	}

	cmd.Printf("%s: valid (plugin %s %s)\n", path, m.Name, m.Version)
	return nil
}
