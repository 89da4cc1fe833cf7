// SPDX-License-Identifier: Apache-2.0

package diff

import (
	"fmt"

	"github.com/lib/pq"
	"github.com/supabase/pgdiff/pkg/catalog"
	"github.com/supabase/pgdiff/pkg/change"
)

// DiffForeignTables implements spec.md §4.1.1/§4.1.4: columns are
// sub-diffed exactly like a base table's; the backing server is
// non-alterable (no ALTER FOREIGN TABLE form moves a table to a
// different server) and forces a Replace, while the table's options are
// alterable.
func DiffForeignTables(ctx *catalog.DiffContext, main, branch map[catalog.StableID]*catalog.ForeignTable) []change.Change {
	var out []change.Change
	created, dropped, common := Partition(main, branch)

	for _, id := range created {
		out = append(out, createForeignTableChanges(ctx, id, branch[id])...)
	}
	for _, id := range dropped {
		t := main[id]
		out = append(out, change.NewDrop(catalog.ObjectTypeForeignTable, id, "drop foreign table "+t.Name,
			func() string { return "DROP FOREIGN TABLE " + qualified(t.Schema, t.Name) }))
	}
	for _, id := range common {
		m, b := main[id], branch[id]
		sql := qualified(b.Schema, b.Name)
		if m.Server != b.Server {
			out = append(out, change.NewReplace(catalog.ObjectTypeForeignTable, id, "replace foreign table "+b.Name,
				func() string { return createForeignTableSQL(b) }))
			continue
		}
		out = append(out, diffColumns(id, sql, m.Columns, b.Columns)...)
		if set, reset := change.DiffStorageParams(m.Options, b.Options); len(set) > 0 || len(reset) > 0 {
			out = append(out, change.NewAlterStorageOptions(catalog.ObjectTypeForeignTable, id, "FOREIGN TABLE", set, reset))
		}
		if m.Owner != b.Owner {
			owner := b.Owner
			out = append(out, change.NewAlter(catalog.ObjectTypeForeignTable, id, "alter foreign table owner",
				func() string { return "ALTER FOREIGN TABLE " + sql + " OWNER TO " + pq.QuoteIdentifier(owner) }, id))
		}
		if c := DiffComment(catalog.ObjectTypeForeignTable, id, change.CommentTargetTable, sql, id, m.Comment, b.Comment); c != nil {
			out = append(out, c)
		}
		out = append(out, DiffPrivileges(PrivilegeTarget{ID: id, SQL: sql, Kind: change.GrantKindTable}, m.Privileges, b.Privileges)...)
	}
	return out
}

func createForeignTableSQL(t *catalog.ForeignTable) string {
	return fmt.Sprintf("CREATE FOREIGN TABLE %s (...) SERVER %s%s", qualified(t.Schema, t.Name), pq.QuoteIdentifier(t.Server), optionsClauseSQL(t.Options))
}

func createForeignTableChanges(ctx *catalog.DiffContext, id catalog.StableID, t *catalog.ForeignTable) []change.Change {
	var out []change.Change
	sql := qualified(t.Schema, t.Name)
	out = append(out, change.NewCreate(catalog.ObjectTypeForeignTable, id, "create foreign table "+t.Name, func() string { return createForeignTableSQL(t) }))
	out = append(out, ownerOnCreate(ctx, catalog.ObjectTypeForeignTable, id, "alter foreign table owner", t.Owner,
		func() string { return "ALTER FOREIGN TABLE " + sql + " OWNER TO " + pq.QuoteIdentifier(t.Owner) })...)
	if t.Comment != "" {
		out = append(out, change.NewCreateComment(catalog.ObjectTypeForeignTable, catalog.CommentID(id), change.CommentTargetTable, sql, t.Comment, id))
	}
	out = append(out, DiffPrivilegesForCreate(ctx, PrivilegeTarget{ID: id, SQL: sql, Kind: change.GrantKindTable}, "TABLES", t.Schema, t.Privileges)...)
	return out
}
