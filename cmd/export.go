// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/supabase/pgdiff/cmd/flags"
	"github.com/supabase/pgdiff/pkg/catalog"
	"github.com/supabase/pgdiff/pkg/plan"
)

// exportCmd recovers the target catalog's declarative creation SQL by
// diffing it against an empty catalog (spec.md §4.4): every object comes
// back as a create change, and FilterDeclarative drops the (nonexistent
// here) drop changes a real source/target diff would also emit.
func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the target catalog's declarative SQL tree to a directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			target, err := extractFrom(ctx, flags.TargetURL())
			if err != nil {
				return err
			}
			empty := catalog.New(target.Version, target.CurrentUser)

			changes, err := orderedChanges(empty, target)
			if err != nil {
				return err
			}
			changes, groups, err := groupedFiles(plan.Mode(flags.Mode()), changes, target)
			if err != nil {
				return err
			}
			env := plan.Assemble(plan.Mode(flags.Mode()), changes, groups, empty, target, nil)

			if err := writeFiles(flags.OutDir(), env); err != nil {
				return err
			}

			pterm.Success.Printfln("wrote %d file(s) to %s", len(env.Files), flags.OutDir())
			return nil
		},
	}
	flags.TargetOnlyFlag(cmd)
	cmd.Flags().String("mode", "declarative", "Export layout: declarative, detailed, or simple")
	viper.BindPFlag("MODE", cmd.Flags().Lookup("mode"))
	cmd.Flags().String("out", ".", "Directory the export tree is written under")
	viper.BindPFlag("OUT_DIR", cmd.Flags().Lookup("out"))
	return cmd
}

// writeFiles materializes env's files under dir, creating parent
// directories as needed, per spec.md §4.4's file-tree layout.
func writeFiles(dir string, env *plan.Envelope) error {
	for _, f := range env.Files {
		path := filepath.Join(dir, f.Path)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(f.SQL), 0o644); err != nil {
			return err
		}
	}
	return nil
}
