// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/supabase/pgdiff/pkg/catalog"
	"github.com/supabase/pgdiff/pkg/change"
	"github.com/supabase/pgdiff/pkg/db"
	"github.com/supabase/pgdiff/pkg/diff"
	"github.com/supabase/pgdiff/pkg/export"
	"github.com/supabase/pgdiff/pkg/plan"
	"github.com/supabase/pgdiff/pkg/resolve"
)

// catalogs connects to source and target, extracts both catalogs, and
// closes the connections before returning.
func catalogs(ctx context.Context, sourceURL, targetURL string) (source, target *catalog.Catalog, err error) {
	source, err = extractFrom(ctx, sourceURL)
	if err != nil {
		return nil, nil, fmt.Errorf("extracting source catalog: %w", err)
	}
	target, err = extractFrom(ctx, targetURL)
	if err != nil {
		return nil, nil, fmt.Errorf("extracting target catalog: %w", err)
	}
	return source, target, nil
}

func extractFrom(ctx context.Context, pgURL string) (*catalog.Catalog, error) {
	conn, err := sql.Open("postgres", pgURL)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := conn.PingContext(ctx); err != nil {
		return nil, err
	}

	return catalog.Extract(ctx, &db.RDB{DB: conn}, nil)
}

// orderedChanges diffs source against target and resolves the result into
// dependency order, per spec.md §4's stages A-C.
func orderedChanges(source, target *catalog.Catalog) ([]change.Change, error) {
	return resolve.Resolve(diff.Diff(source.Context(), source, target), source, target)
}

// groupedFiles applies the layout named by mode to changes and groups them
// into file groups, per spec.md §4.4. "declarative" uses the detailed
// layout with export.FilterDeclarative applied first.
func groupedFiles(mode plan.Mode, changes []change.Change, target *catalog.Catalog) ([]change.Change, []*export.FileGroup, error) {
	var mapper export.Mapper
	switch mode {
	case plan.ModeSimple:
		mapper = export.SimpleMapper
	case plan.ModeDetailed, plan.ModeDeclarative:
		mapper = export.DetailedMapper
	default:
		return nil, nil, fmt.Errorf("unknown mode %q", mode)
	}

	if mode == plan.ModeDeclarative {
		changes = export.FilterDeclarative(changes)
	}

	grouping := &export.Grouping{
		PartitionOf: export.PartitionResolver(target.Tables),
	}
	groups := export.GroupChangesByFile(changes, mapper, grouping)
	return changes, groups, nil
}

// assemblePlan runs the full diff -> resolve -> group -> assemble pipeline
// against live source/target connections, per spec.md §4's stages A-F.
func assemblePlan(ctx context.Context, sourceURL, targetURL string, mode plan.Mode) (*plan.Envelope, error) {
	source, target, err := catalogs(ctx, sourceURL, targetURL)
	if err != nil {
		return nil, err
	}

	changes, err := orderedChanges(source, target)
	if err != nil {
		return nil, err
	}

	changes, groups, err := groupedFiles(mode, changes, target)
	if err != nil {
		return nil, err
	}

	return plan.Assemble(mode, changes, groups, source, target, nil), nil
}
