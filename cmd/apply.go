// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"database/sql"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/supabase/pgdiff/cmd/flags"
	"github.com/supabase/pgdiff/pkg/db"
	"github.com/supabase/pgdiff/pkg/plan"
	"github.com/supabase/pgdiff/pkg/state"
)

func applyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Compute the plan from source to target and apply it against target",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			env, err := assemblePlan(ctx, flags.SourceURL(), flags.TargetURL(), plan.ModeDetailed)
			if err != nil {
				return err
			}

			st, err := state.New(ctx, flags.PostgresURL(), flags.StateSchema(), state.WithVersion(Version))
			if err != nil {
				return err
			}
			defer st.Close()

			ok, err := st.IsInitialized(ctx)
			if err != nil {
				return err
			}
			if !ok {
				if err := st.Init(ctx); err != nil {
					return err
				}
			}

			conn, err := sql.Open("postgres", flags.TargetURL())
			if err != nil {
				return err
			}
			defer conn.Close()

			applyOpts := plan.ApplyOptions{Unsafe: flags.Unsafe()}
			if err := plan.Apply(ctx, &db.RDB{DB: conn}, env, applyOpts); err != nil {
				return err
			}

			if err := st.RecordApply(ctx, env); err != nil {
				return err
			}

			pterm.Success.Printfln("applied plan %s (%d file(s))", env.PlanID, len(env.Files))
			return nil
		},
	}
	flags.PgConnectionFlags(cmd)
	flags.StateFlag(cmd)
	cmd.Flags().Bool("unsafe", false, "Apply a plan even if it classifies as data-loss risk")
	viper.BindPFlag("UNSAFE", cmd.Flags().Lookup("unsafe"))
	return cmd
}
