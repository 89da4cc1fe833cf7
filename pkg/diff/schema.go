// SPDX-License-Identifier: Apache-2.0

package diff

import (
	"fmt"

	"github.com/lib/pq"
	"github.com/supabase/pgdiff/pkg/catalog"
	"github.com/supabase/pgdiff/pkg/change"
)

// DiffSchemas implements spec.md §4.1 step 1-4 for the schema kind: create/
// drop by partition, plus owner/comment/privilege sub-diffs for schemas
// present on both sides (schemas have no other alterable field).
func DiffSchemas(ctx *catalog.DiffContext, main, branch map[catalog.StableID]*catalog.Schema) []change.Change {
	var out []change.Change
	created, dropped, common := Partition(main, branch)

	for _, id := range created {
		s := branch[id]
		sql := pq.QuoteIdentifier(s.Name)
		out = append(out, change.NewCreate(catalog.ObjectTypeSchema, id, "create schema "+s.Name,
			func() string { return fmt.Sprintf("CREATE SCHEMA %s AUTHORIZATION %s", sql, pq.QuoteIdentifier(s.Owner)) }))
		if s.Comment != "" {
			out = append(out, change.NewCreateComment(catalog.ObjectTypeSchema, catalog.CommentID(id), change.CommentTargetSchema, sql, s.Comment, id))
		}
		out = append(out, DiffPrivilegesForCreate(ctx, PrivilegeTarget{ID: id, SQL: sql, Kind: change.GrantKindSchema}, "SCHEMAS", "", s.Privileges)...)
	}
	for _, id := range dropped {
		s := main[id]
		out = append(out, change.NewDrop(catalog.ObjectTypeSchema, id, "drop schema "+s.Name,
			func() string { return "DROP SCHEMA " + pq.QuoteIdentifier(s.Name) }))
	}
	for _, id := range common {
		m, b := main[id], branch[id]
		sql := pq.QuoteIdentifier(b.Name)
		if m.Owner != b.Owner {
			out = append(out, change.NewAlter(catalog.ObjectTypeSchema, id, "alter schema owner",
				func() string { return fmt.Sprintf("ALTER SCHEMA %s OWNER TO %s", sql, pq.QuoteIdentifier(b.Owner)) }, id))
		}
		if c := DiffComment(catalog.ObjectTypeSchema, id, change.CommentTargetSchema, sql, id, m.Comment, b.Comment); c != nil {
			out = append(out, c)
		}
		out = append(out, DiffPrivileges(PrivilegeTarget{ID: id, SQL: sql, Kind: change.GrantKindSchema}, m.Privileges, b.Privileges)...)
	}
	return out
}
