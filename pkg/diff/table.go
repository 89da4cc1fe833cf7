// SPDX-License-Identifier: Apache-2.0

package diff

import (
	"fmt"

	"github.com/lib/pq"
	"github.com/supabase/pgdiff/pkg/catalog"
	"github.com/supabase/pgdiff/pkg/change"
)

// DiffTables implements spec.md §4.1.1: tables are never replaced
// wholesale (no non-alterable whole-table field) — every difference is
// expressed as a column, constraint, storage-param, or RLS-flag ALTER.
func DiffTables(ctx *catalog.DiffContext, main, branch map[catalog.StableID]*catalog.Table) []change.Change {
	var out []change.Change
	created, dropped, common := Partition(main, branch)

	for _, id := range created {
		out = append(out, createTableChanges(ctx, id, branch[id])...)
	}
	for _, id := range dropped {
		t := main[id]
		out = append(out, change.NewDrop(catalog.ObjectTypeTable, id, "drop table "+t.Name,
			func() string { return "DROP TABLE " + qualified(t.Schema, t.Name) }))
	}
	for _, id := range common {
		out = append(out, diffTable(id, main[id], branch[id])...)
	}
	return out
}

func qualified(schema, name string) string {
	if schema == "" {
		return pq.QuoteIdentifier(name)
	}
	return pq.QuoteIdentifier(schema) + "." + pq.QuoteIdentifier(name)
}

func createTableChanges(ctx *catalog.DiffContext, id catalog.StableID, t *catalog.Table) []change.Change {
	var out []change.Change
	sql := qualified(t.Schema, t.Name)
	out = append(out, change.NewCreate(catalog.ObjectTypeTable, id, "create table "+t.Name, func() string {
		return fmt.Sprintf("CREATE TABLE %s (...)", sql) // column list rendered by the exporter from the full Table value
	}))
	out = append(out, ownerOnCreate(ctx, catalog.ObjectTypeTable, id, "alter table owner", t.Owner,
		func() string { return "ALTER TABLE " + sql + " OWNER TO " + pq.QuoteIdentifier(t.Owner) })...)
	for _, c := range t.Constraints {
		if c.Type == catalog.ConstraintForeignKey {
			out = append(out, change.NewAddConstraint(id, c, false, id))
			continue
		}
		out = append(out, change.NewAddConstraint(id, c, false, id))
		if c.Type == catalog.ConstraintCheck && !c.Validated {
			out = append(out, change.NewValidateConstraint(id, c.Name))
		}
	}
	if t.Comment != "" {
		out = append(out, change.NewCreateComment(catalog.ObjectTypeTable, catalog.CommentID(id), change.CommentTargetTable, sql, t.Comment, id))
	}
	for _, c := range t.Columns {
		if c.Comment != "" {
			out = append(out, change.NewCreateComment(catalog.ObjectTypeColumn, catalog.ColumnCommentID(id, c.Name), change.CommentTargetColumn, change.ColumnCommentTarget(id, c.Name), c.Comment, id))
		}
	}
	out = append(out, DiffPrivilegesForCreate(ctx, PrivilegeTarget{ID: id, SQL: sql, Kind: change.GrantKindTable}, "TABLES", t.Schema, t.Privileges)...)
	return out
}

func diffTable(id catalog.StableID, m, b *catalog.Table) []change.Change {
	var out []change.Change
	sql := qualified(b.Schema, b.Name)

	out = append(out, diffColumns(id, sql, m.Columns, b.Columns)...)
	out = append(out, diffConstraints(id, m.Constraints, b.Constraints)...)

	if set, reset := change.DiffStorageParams(m.StorageParams, b.StorageParams); len(set) > 0 || len(reset) > 0 {
		out = append(out, change.NewAlterStorageOptions(catalog.ObjectTypeTable, id, "TABLE", set, reset))
	}
	if m.RLSEnabled != b.RLSEnabled {
		enable := b.RLSEnabled
		out = append(out, change.NewAlter(catalog.ObjectTypeTable, id, "alter table row security", func() string {
			if enable {
				return "ALTER TABLE " + sql + " ENABLE ROW LEVEL SECURITY"
			}
			return "ALTER TABLE " + sql + " DISABLE ROW LEVEL SECURITY"
		}, id))
	}
	if m.RLSForced != b.RLSForced {
		force := b.RLSForced
		out = append(out, change.NewAlter(catalog.ObjectTypeTable, id, "alter table force row security", func() string {
			if force {
				return "ALTER TABLE " + sql + " FORCE ROW LEVEL SECURITY"
			}
			return "ALTER TABLE " + sql + " NO FORCE ROW LEVEL SECURITY"
		}, id))
	}
	if m.Owner != b.Owner {
		owner := b.Owner
		out = append(out, change.NewAlter(catalog.ObjectTypeTable, id, "alter table owner", func() string {
			return "ALTER TABLE " + sql + " OWNER TO " + pq.QuoteIdentifier(owner)
		}, id))
	}
	if c := DiffComment(catalog.ObjectTypeTable, id, change.CommentTargetTable, sql, id, m.Comment, b.Comment); c != nil {
		out = append(out, c)
	}
	out = append(out, DiffPrivileges(PrivilegeTarget{ID: id, SQL: sql, Kind: change.GrantKindTable}, m.Privileges, b.Privileges)...)
	return out
}

func diffColumns(table catalog.StableID, tableSQL string, main, branch []*catalog.Column) []change.Change {
	var out []change.Change
	mainByName := map[string]*catalog.Column{}
	for _, c := range main {
		mainByName[c.Name] = c
	}
	branchByName := map[string]*catalog.Column{}
	for _, c := range branch {
		branchByName[c.Name] = c
	}

	for _, c := range branch {
		if _, ok := mainByName[c.Name]; !ok {
			out = append(out, change.NewAddColumn(table, c, table))
			if c.Comment != "" {
				out = append(out, change.NewCreateComment(catalog.ObjectTypeColumn, catalog.ColumnCommentID(table, c.Name), change.CommentTargetColumn, change.ColumnCommentTarget(table, c.Name), c.Comment, table))
			}
		}
	}
	for _, c := range main {
		if _, ok := branchByName[c.Name]; !ok {
			out = append(out, change.NewDropColumn(table, c.Name))
		}
	}
	for _, mc := range main {
		bc, ok := branchByName[mc.Name]
		if !ok {
			continue
		}
		out = append(out, diffColumn(table, mc, bc)...)
		if c := DiffComment(catalog.ObjectTypeColumn, catalog.ColumnCommentID(table, mc.Name), change.CommentTargetColumn, change.ColumnCommentTarget(table, mc.Name), table, mc.Comment, bc.Comment); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// diffColumn emits one AlterColumn per differing field, per spec.md
// §4.1.1's per-field column sub-diff.
func diffColumn(table catalog.StableID, m, b *catalog.Column) []change.Change {
	var out []change.Change
	if m.DataTypeStr != b.DataTypeStr {
		out = append(out, change.NewAlterColumn(table, b.Name, change.AlterColumnType, b))
	}
	mv, mok := catalog.StringValue(m.Default)
	bv, bok := catalog.StringValue(b.Default)
	if mok != bok || mv != bv {
		out = append(out, change.NewAlterColumn(table, b.Name, change.AlterColumnDefault, b))
	}
	if m.NotNull != b.NotNull {
		out = append(out, change.NewAlterColumn(table, b.Name, change.AlterColumnNotNull, b))
	}
	if m.IsIdentity != b.IsIdentity || m.IsIdentityAlways != b.IsIdentityAlways {
		out = append(out, change.NewAlterColumn(table, b.Name, change.AlterColumnIdentity, b))
	}
	if m.IsGenerated != b.IsGenerated {
		out = append(out, change.NewAlterColumn(table, b.Name, change.AlterColumnGenerated, b))
	}
	if m.Collation != b.Collation {
		out = append(out, change.NewAlterColumn(table, b.Name, change.AlterColumnCollation, b))
	}
	return out
}

func diffConstraints(owner catalog.StableID, main, branch map[string]*catalog.Constraint) []change.Change {
	return diffConstraintsKind(owner, main, branch, false)
}

func diffConstraintsKind(owner catalog.StableID, main, branch map[string]*catalog.Constraint, isDomain bool) []change.Change {
	var out []change.Change
	for name, c := range branch {
		if _, ok := main[name]; !ok {
			out = append(out, change.NewAddConstraint(owner, c, isDomain, owner))
			if c.Type == catalog.ConstraintCheck && !c.Validated {
				out = append(out, change.NewValidateConstraint(owner, name))
			}
		}
	}
	for name, c := range main {
		if _, ok := branch[name]; !ok {
			out = append(out, change.NewDropConstraint(owner, name, isDomain, c.Type == catalog.ConstraintForeignKey))
		}
	}
	for name, mc := range main {
		bc, ok := branch[name]
		if !ok || mc.Equal(bc) {
			continue
		}
		// Non-alterable: constraint definition changes are a drop+add
		// pair, never an in-place ALTER CONSTRAINT (spec.md §4.1.1).
		out = append(out, change.NewDropConstraint(owner, name, isDomain, mc.Type == catalog.ConstraintForeignKey))
		out = append(out, change.NewAddConstraint(owner, bc, isDomain, owner))
		if bc.Type == catalog.ConstraintCheck && !bc.Validated {
			out = append(out, change.NewValidateConstraint(owner, name))
		}
	}
	return out
}
