// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/supabase/pgdiff/cmd/flags"
	"github.com/supabase/pgdiff/pkg/state"
)

func statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the most recently applied plan's fingerprint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			st, err := state.New(ctx, flags.PostgresURL(), flags.StateSchema(), state.WithVersion(Version))
			if err != nil {
				return err
			}
			defer st.Close()

			if viper.GetBool("INIT") {
				if err := st.Init(ctx); err != nil {
					return err
				}
			}

			ok, err := st.IsInitialized(ctx)
			if err != nil {
				return err
			}
			if !ok {
				return errStateNotInitialized
			}

			status, err := st.Status(ctx)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(status, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	flags.StateFlag(cmd)
	cmd.Flags().Bool("init", false, "Initialize pgdiff's state schema before reporting status")
	viper.BindPFlag("INIT", cmd.Flags().Lookup("init"))
	return cmd
}
