// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/supabase/pgdiff/cmd/flags"
	"github.com/supabase/pgdiff/pkg/change"
)

func diffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Print the ordered set of changes between source and target",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			source, target, err := catalogs(ctx, flags.SourceURL(), flags.TargetURL())
			if err != nil {
				return err
			}

			changes, err := orderedChanges(source, target)
			if err != nil {
				return err
			}

			if viper.GetBool("JSON") {
				return printChangeJSON(changes)
			}
			printChangeTable(changes)
			return nil
		},
	}
	flags.PgConnectionFlags(cmd)
	cmd.Flags().Bool("json", false, "Print the change list as JSON instead of a table")
	viper.BindPFlag("JSON", cmd.Flags().Lookup("json"))
	return cmd
}

func printChangeJSON(changes []change.Change) error {
	type row struct {
		Operation  string `json:"operation"`
		ObjectType string `json:"objectType"`
		StableID   string `json:"stableId"`
	}
	rows := make([]row, len(changes))
	for i, c := range changes {
		rows[i] = row{Operation: string(c.Operation()), ObjectType: string(c.ObjectType()), StableID: string(c.StableID())}
	}
	out, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func printChangeTable(changes []change.Change) {
	rows := pterm.TableData{{"#", "Operation", "Object Type", "Target"}}
	for i, c := range changes {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			string(c.Operation()),
			string(c.ObjectType()),
			string(c.StableID()),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}
