// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is the pgdiff binary version, set at build time via
// -ldflags "-X github.com/supabase/pgdiff/cmd.Version=...".
var Version = "development"

func init() {
	viper.SetEnvPrefix("PGDIFF")
	viper.AutomaticEnv()
}

var rootCmd = &cobra.Command{
	Use:          "pgdiff",
	Short:        "Deterministic PostgreSQL catalog-diff and migration planner",
	SilenceUsage: true,
	Version:      Version,
}

// Execute executes the root command.
func Execute() error {
	rootCmd.AddCommand(diffCmd())
	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(applyCmd())
	rootCmd.AddCommand(statusCmd())

	return rootCmd.Execute()
}
