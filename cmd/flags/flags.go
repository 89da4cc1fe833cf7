// SPDX-License-Identifier: Apache-2.0

package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func SourceURL() string {
	return viper.GetString("SOURCE_URL")
}

func TargetURL() string {
	return viper.GetString("TARGET_URL")
}

func PostgresURL() string {
	return viper.GetString("PG_URL")
}

func StateSchema() string {
	return viper.GetString("STATE_SCHEMA")
}

func Mode() string {
	return viper.GetString("MODE")
}

func Unsafe() bool {
	return viper.GetBool("UNSAFE")
}

func OutDir() string {
	return viper.GetString("OUT_DIR")
}

// PgConnectionFlags registers the --source/--target Postgres URL flags
// shared by diff, plan, and apply.
func PgConnectionFlags(cmd *cobra.Command) {
	cmd.Flags().String("source", "", "Postgres URL of the source (\"main\") catalog")
	cmd.Flags().String("target", "", "Postgres URL of the target (\"branch\") catalog")
	cmd.MarkFlagRequired("source")
	cmd.MarkFlagRequired("target")

	viper.BindPFlag("SOURCE_URL", cmd.Flags().Lookup("source"))
	viper.BindPFlag("TARGET_URL", cmd.Flags().Lookup("target"))
}

// TargetOnlyFlag registers the --target Postgres URL flag for commands
// that export a single catalog rather than diffing two (export diffs
// target against an empty catalog to recover its declarative creation
// SQL, per spec.md §4.4).
func TargetOnlyFlag(cmd *cobra.Command) {
	cmd.Flags().String("target", "", "Postgres URL of the catalog to export")
	cmd.MarkFlagRequired("target")
	viper.BindPFlag("TARGET_URL", cmd.Flags().Lookup("target"))
}

// ModeFlag registers the --mode flag used by plan. export registers its own
// --mode flag, which defaults to declarative.
func ModeFlag(cmd *cobra.Command) {
	cmd.Flags().String("mode", "detailed", "Export layout: detailed, simple, or declarative")
	viper.BindPFlag("MODE", cmd.Flags().Lookup("mode"))
}

// StateFlag registers the --state-schema and --postgres-url flags shared
// by apply and status, which talk to pkg/state instead of a source/target
// pair.
func StateFlag(cmd *cobra.Command) {
	cmd.Flags().String("postgres-url", "", "Postgres URL of the database pgdiff's state is tracked in")
	cmd.Flags().String("state-schema", "pgdiff", "Postgres schema pgdiff's applied-plan history is stored in")

	viper.BindPFlag("PG_URL", cmd.Flags().Lookup("postgres-url"))
	viper.BindPFlag("STATE_SCHEMA", cmd.Flags().Lookup("state-schema"))
}
