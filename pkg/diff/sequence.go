// SPDX-License-Identifier: Apache-2.0

package diff

import (
	"fmt"

	"github.com/lib/pq"
	"github.com/supabase/pgdiff/pkg/catalog"
	"github.com/supabase/pgdiff/pkg/change"
)

// DiffSequences implements spec.md §4.1.4: sequences are alterable
// field-by-field (no non-alterable field forces a replace), and ownership
// changes are filed separately via AlterSequenceOwnedBy, keyed against
// the owning table rather than the sequence itself.
func DiffSequences(ctx *catalog.DiffContext, main, branch map[catalog.StableID]*catalog.Sequence) []change.Change {
	var out []change.Change
	created, dropped, common := Partition(main, branch)

	for _, id := range created {
		out = append(out, createSequenceChanges(ctx, id, branch[id])...)
	}
	for _, id := range dropped {
		s := main[id]
		out = append(out, change.NewDrop(catalog.ObjectTypeSequence, id, "drop sequence "+s.Name,
			func() string { return "DROP SEQUENCE " + qualified(s.Schema, s.Name) }))
	}
	for _, id := range common {
		m, b := main[id], branch[id]
		sql := qualified(b.Schema, b.Name)
		if m.DataType != b.DataType || m.Start != b.Start || m.Increment != b.Increment ||
			m.MinValue != b.MinValue || m.MaxValue != b.MaxValue || m.Cycle != b.Cycle || m.CacheSize != b.CacheSize {
			out = append(out, change.NewAlter(catalog.ObjectTypeSequence, id, "alter sequence "+b.Name,
				func() string { return fmt.Sprintf("ALTER SEQUENCE %s %s", sql, sequenceOptionsSQL(b)) }, id))
		}
		if !ownershipEqual(m.OwnedBy, b.OwnedBy) {
			if b.OwnedBy == nil {
				out = append(out, change.NewAlterSequenceOwnedBy(id, "", ""))
			} else {
				out = append(out, change.NewAlterSequenceOwnedBy(id, catalog.TableID(b.OwnedBy.Schema, b.OwnedBy.Table), b.OwnedBy.Column))
			}
		}
		if m.Owner != b.Owner {
			owner := b.Owner
			out = append(out, change.NewAlter(catalog.ObjectTypeSequence, id, "alter sequence owner",
				func() string { return "ALTER SEQUENCE " + sql + " OWNER TO " + pq.QuoteIdentifier(owner) }, id))
		}
		if c := DiffComment(catalog.ObjectTypeSequence, id, change.CommentTargetSequence, sql, id, m.Comment, b.Comment); c != nil {
			out = append(out, c)
		}
		out = append(out, DiffPrivileges(PrivilegeTarget{ID: id, SQL: sql, Kind: change.GrantKindTable}, m.Privileges, b.Privileges)...)
	}
	return out
}

func ownershipEqual(a, b *catalog.SequenceOwnership) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sequenceOptionsSQL(s *catalog.Sequence) string {
	cycle := "NO CYCLE"
	if s.Cycle {
		cycle = "CYCLE"
	}
	return fmt.Sprintf("AS %s INCREMENT BY %d MINVALUE %d MAXVALUE %d START WITH %d CACHE %d %s",
		s.DataType, s.Increment, s.MinValue, s.MaxValue, s.Start, s.CacheSize, cycle)
}

func createSequenceChanges(ctx *catalog.DiffContext, id catalog.StableID, s *catalog.Sequence) []change.Change {
	var out []change.Change
	sql := qualified(s.Schema, s.Name)
	out = append(out, change.NewCreate(catalog.ObjectTypeSequence, id, "create sequence "+s.Name,
		func() string { return fmt.Sprintf("CREATE SEQUENCE %s %s", sql, sequenceOptionsSQL(s)) }))
	out = append(out, ownerOnCreate(ctx, catalog.ObjectTypeSequence, id, "alter sequence owner", s.Owner,
		func() string { return "ALTER SEQUENCE " + sql + " OWNER TO " + pq.QuoteIdentifier(s.Owner) })...)
	if s.OwnedBy != nil {
		out = append(out, change.NewAlterSequenceOwnedBy(id, catalog.TableID(s.OwnedBy.Schema, s.OwnedBy.Table), s.OwnedBy.Column))
	}
	if s.Comment != "" {
		out = append(out, change.NewCreateComment(catalog.ObjectTypeSequence, catalog.CommentID(id), change.CommentTargetSequence, sql, s.Comment, id))
	}
	out = append(out, DiffPrivilegesForCreate(ctx, PrivilegeTarget{ID: id, SQL: sql, Kind: change.GrantKindTable}, "SEQUENCES", s.Schema, s.Privileges)...)
	return out
}
