// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/supabase/pgdiff/cmd/flags"
	"github.com/supabase/pgdiff/pkg/plan"
)

func planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Assemble a plan envelope for the changes between source and target",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			env, err := assemblePlan(ctx, flags.SourceURL(), flags.TargetURL(), plan.Mode(flags.Mode()))
			if err != nil {
				return err
			}
			if env.Risk != nil && env.Risk.Level == plan.RiskDataLoss && !flags.Unsafe() {
				pterm.Warning.Printfln("plan %s classifies as data-loss risk; rerun with --unsafe to apply it", env.PlanID)
			}

			printPlanSummary(env)

			if out := flags.OutDir(); out != "" {
				if err := writeFiles(out, env); err != nil {
					return err
				}
				pterm.Success.Printfln("wrote %d file(s) to %s", len(env.Files), out)
				return nil
			}

			marshaled, err := json.MarshalIndent(env, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(marshaled))
			return nil
		},
	}
	flags.PgConnectionFlags(cmd)
	flags.ModeFlag(cmd)
	cmd.Flags().Bool("unsafe", false, "Acknowledge a data-loss-risk plan without applying it")
	viper.BindPFlag("UNSAFE", cmd.Flags().Lookup("unsafe"))
	cmd.Flags().String("out", "", "Directory to write the plan's file tree to, instead of printing JSON")
	viper.BindPFlag("OUT_DIR", cmd.Flags().Lookup("out"))
	return cmd
}

func printPlanSummary(env *plan.Envelope) {
	riskLevel := "safe"
	if env.Risk != nil {
		riskLevel = string(env.Risk.Level)
	}

	tree := pterm.TreeNode{
		Text: fmt.Sprintf("plan %s (%s, risk=%s)", env.PlanID, env.Mode, riskLevel),
	}
	for _, f := range env.Files {
		tree.Children = append(tree.Children, pterm.TreeNode{
			Text: fmt.Sprintf("%s (%d statement(s))", f.Path, f.Statements),
		})
	}
	pterm.DefaultTree.WithRoot(tree).Render()
}
