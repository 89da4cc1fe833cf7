// SPDX-License-Identifier: Apache-2.0

package diff

import (
	"fmt"

	"github.com/lib/pq"
	"github.com/supabase/pgdiff/pkg/catalog"
	"github.com/supabase/pgdiff/pkg/change"
)

// DiffViews implements spec.md §4.1.4 for non-materialized views:
// definition is non-alterable (any change forces a Replace, since
// CREATE OR REPLACE VIEW rejects column-type/removal changes and pgdiff
// does not special-case the subset it would accept).
func DiffViews(ctx *catalog.DiffContext, main, branch map[catalog.StableID]*catalog.View) []change.Change {
	var out []change.Change
	created, dropped, common := Partition(main, branch)

	for _, id := range created {
		out = append(out, createViewChanges(ctx, id, branch[id])...)
	}
	for _, id := range dropped {
		v := main[id]
		out = append(out, change.NewDrop(catalog.ObjectTypeView, id, "drop view "+v.Name,
			func() string { return "DROP VIEW " + qualified(v.Schema, v.Name) }))
	}
	for _, id := range common {
		m, b := main[id], branch[id]
		sql := qualified(b.Schema, b.Name)
		if !m.Equal(b) {
			out = append(out, change.NewReplace(catalog.ObjectTypeView, id, "replace view "+b.Name, func() string {
				return fmt.Sprintf("DROP VIEW %s;\nCREATE VIEW %s AS %s", sql, sql, b.Definition)
			}))
			continue
		}
		if m.Owner != b.Owner {
			owner := b.Owner
			out = append(out, change.NewAlter(catalog.ObjectTypeView, id, "alter view owner",
				func() string { return "ALTER VIEW " + sql + " OWNER TO " + pq.QuoteIdentifier(owner) }, id))
		}
		if c := DiffComment(catalog.ObjectTypeView, id, change.CommentTargetView, sql, id, m.Comment, b.Comment); c != nil {
			out = append(out, c)
		}
		out = append(out, DiffPrivileges(PrivilegeTarget{ID: id, SQL: sql, Kind: change.GrantKindTable}, m.Privileges, b.Privileges)...)
	}
	return out
}

func createViewChanges(ctx *catalog.DiffContext, id catalog.StableID, v *catalog.View) []change.Change {
	var out []change.Change
	sql := qualified(v.Schema, v.Name)
	out = append(out, change.NewCreate(catalog.ObjectTypeView, id, "create view "+v.Name,
		func() string { return fmt.Sprintf("CREATE VIEW %s AS %s", sql, v.Definition) }))
	out = append(out, ownerOnCreate(ctx, catalog.ObjectTypeView, id, "alter view owner", v.Owner,
		func() string { return "ALTER VIEW " + sql + " OWNER TO " + pq.QuoteIdentifier(v.Owner) })...)
	if v.Comment != "" {
		out = append(out, change.NewCreateComment(catalog.ObjectTypeView, catalog.CommentID(id), change.CommentTargetView, sql, v.Comment, id))
	}
	out = append(out, DiffPrivilegesForCreate(ctx, PrivilegeTarget{ID: id, SQL: sql, Kind: change.GrantKindTable}, "TABLES", v.Schema, v.Privileges)...)
	return out
}

// DiffMaterializedViews implements spec.md §4.1.4: every listed field is
// non-alterable, so any difference forces a Replace.
func DiffMaterializedViews(ctx *catalog.DiffContext, main, branch map[catalog.StableID]*catalog.MaterializedView) []change.Change {
	var out []change.Change
	created, dropped, common := Partition(main, branch)

	for _, id := range created {
		out = append(out, createMatviewChanges(ctx, id, branch[id])...)
	}
	for _, id := range dropped {
		v := main[id]
		out = append(out, change.NewDrop(catalog.ObjectTypeMaterializedView, id, "drop materialized view "+v.Name,
			func() string { return "DROP MATERIALIZED VIEW " + qualified(v.Schema, v.Name) }))
	}
	for _, id := range common {
		m, b := main[id], branch[id]
		sql := qualified(b.Schema, b.Name)
		if !m.Equal(b) {
			out = append(out, change.NewReplace(catalog.ObjectTypeMaterializedView, id, "replace materialized view "+b.Name, func() string {
				return fmt.Sprintf("CREATE MATERIALIZED VIEW %s AS %s", sql, b.Definition)
			}))
			continue
		}
		if m.Owner != b.Owner {
			owner := b.Owner
			out = append(out, change.NewAlter(catalog.ObjectTypeMaterializedView, id, "alter materialized view owner",
				func() string { return "ALTER MATERIALIZED VIEW " + sql + " OWNER TO " + pq.QuoteIdentifier(owner) }, id))
		}
		if c := DiffComment(catalog.ObjectTypeMaterializedView, id, change.CommentTargetMatview, sql, id, m.Comment, b.Comment); c != nil {
			out = append(out, c)
		}
		out = append(out, DiffPrivileges(PrivilegeTarget{ID: id, SQL: sql, Kind: change.GrantKindTable}, m.Privileges, b.Privileges)...)
	}
	return out
}

func createMatviewChanges(ctx *catalog.DiffContext, id catalog.StableID, v *catalog.MaterializedView) []change.Change {
	var out []change.Change
	sql := qualified(v.Schema, v.Name)
	out = append(out, change.NewCreate(catalog.ObjectTypeMaterializedView, id, "create materialized view "+v.Name,
		func() string { return fmt.Sprintf("CREATE MATERIALIZED VIEW %s AS %s", sql, v.Definition) }))
	out = append(out, ownerOnCreate(ctx, catalog.ObjectTypeMaterializedView, id, "alter materialized view owner", v.Owner,
		func() string { return "ALTER MATERIALIZED VIEW " + sql + " OWNER TO " + pq.QuoteIdentifier(v.Owner) })...)
	if v.Comment != "" {
		out = append(out, change.NewCreateComment(catalog.ObjectTypeMaterializedView, catalog.CommentID(id), change.CommentTargetMatview, sql, v.Comment, id))
	}
	out = append(out, DiffPrivilegesForCreate(ctx, PrivilegeTarget{ID: id, SQL: sql, Kind: change.GrantKindTable}, "TABLES", v.Schema, v.Privileges)...)
	return out
}
