// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Firmdeck Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the Firmdeck CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "firmdeck",
		Short: "Firmdeck - multi-tenant company registry",
		Long: `Firmdeck is a multi-tenant backend where users register,
authenticate, and manage the company records they own.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
