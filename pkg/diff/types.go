// SPDX-License-Identifier: Apache-2.0

package diff

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/supabase/pgdiff/pkg/catalog"
	"github.com/supabase/pgdiff/pkg/change"
)

// DiffCompositeTypes implements spec.md §4.1.4: attribute list differences
// are non-alterable (ALTER TYPE ... ADD/DROP/ALTER ATTRIBUTE exists but
// pgdiff treats the attribute array as a single non-alterable unit,
// consistent with its treatment of enum labels) — any difference forces
// a Replace.
func DiffCompositeTypes(ctx *catalog.DiffContext, main, branch map[catalog.StableID]*catalog.CompositeType) []change.Change {
	var out []change.Change
	created, dropped, common := Partition(main, branch)

	for _, id := range created {
		out = append(out, createCompositeChanges(ctx, id, branch[id])...)
	}
	for _, id := range dropped {
		t := main[id]
		out = append(out, change.NewDrop(catalog.ObjectTypeCompositeType, id, "drop type "+t.Name,
			func() string { return "DROP TYPE " + qualified(t.Schema, t.Name) }))
	}
	for _, id := range common {
		m, b := main[id], branch[id]
		sql := qualified(b.Schema, b.Name)
		if !m.Equal(b) {
			out = append(out, change.NewReplace(catalog.ObjectTypeCompositeType, id, "replace type "+b.Name,
				func() string { return fmt.Sprintf("CREATE TYPE %s AS (%s)", sql, compositeAttrsSQL(b)) }))
			continue
		}
		if m.Owner != b.Owner {
			owner := b.Owner
			out = append(out, change.NewAlter(catalog.ObjectTypeCompositeType, id, "alter type owner",
				func() string { return "ALTER TYPE " + sql + " OWNER TO " + pq.QuoteIdentifier(owner) }, id))
		}
		if c := DiffComment(catalog.ObjectTypeCompositeType, id, change.CommentTargetType, sql, id, m.Comment, b.Comment); c != nil {
			out = append(out, c)
		}
		out = append(out, DiffPrivileges(PrivilegeTarget{ID: id, SQL: sql, Kind: change.GrantKindType}, m.Privileges, b.Privileges)...)
	}
	return out
}

func compositeAttrsSQL(t *catalog.CompositeType) string {
	parts := make([]string, len(t.Attributes))
	for i, a := range t.Attributes {
		parts[i] = pq.QuoteIdentifier(a.Name) + " " + a.DataTypeStr
	}
	return strings.Join(parts, ", ")
}

func createCompositeChanges(ctx *catalog.DiffContext, id catalog.StableID, t *catalog.CompositeType) []change.Change {
	var out []change.Change
	sql := qualified(t.Schema, t.Name)
	out = append(out, change.NewCreate(catalog.ObjectTypeCompositeType, id, "create type "+t.Name,
		func() string { return fmt.Sprintf("CREATE TYPE %s AS (%s)", sql, compositeAttrsSQL(t)) }))
	out = append(out, ownerOnCreate(ctx, catalog.ObjectTypeCompositeType, id, "alter type owner", t.Owner,
		func() string { return "ALTER TYPE " + sql + " OWNER TO " + pq.QuoteIdentifier(t.Owner) })...)
	if t.Comment != "" {
		out = append(out, change.NewCreateComment(catalog.ObjectTypeCompositeType, catalog.CommentID(id), change.CommentTargetType, sql, t.Comment, id))
	}
	out = append(out, DiffPrivilegesForCreate(ctx, PrivilegeTarget{ID: id, SQL: sql, Kind: change.GrantKindType}, "TYPES", t.Schema, t.Privileges)...)
	return out
}

// DiffEnumTypes implements spec.md §4.1.4: the label array, including
// order, is non-alterable as a whole — but when the branch's labels are a
// superset that preserves main's relative order (an append/insert-only
// change), pgdiff emits ALTER TYPE ... ADD VALUE instead of a Replace,
// since that is the one case ALTER TYPE can actually express.
func DiffEnumTypes(ctx *catalog.DiffContext, main, branch map[catalog.StableID]*catalog.EnumType) []change.Change {
	var out []change.Change
	created, dropped, common := Partition(main, branch)

	for _, id := range created {
		out = append(out, createEnumChanges(ctx, id, branch[id])...)
	}
	for _, id := range dropped {
		t := main[id]
		out = append(out, change.NewDrop(catalog.ObjectTypeEnumType, id, "drop type "+t.Name,
			func() string { return "DROP TYPE " + qualified(t.Schema, t.Name) }))
	}
	for _, id := range common {
		m, b := main[id], branch[id]
		sql := qualified(b.Schema, b.Name)
		if !equalStringSlice(m.Labels, b.Labels) {
			if isAppendOnly(m.Labels, b.Labels) {
				added := b.Labels[len(m.Labels):]
				for _, label := range added {
					lbl := label
					out = append(out, change.NewAlter(catalog.ObjectTypeEnumType, id, "alter type add value",
						func() string { return fmt.Sprintf("ALTER TYPE %s ADD VALUE %s", sql, quoteLit(lbl)) }, id))
				}
			} else {
				out = append(out, change.NewReplace(catalog.ObjectTypeEnumType, id, "replace type "+b.Name,
					func() string { return fmt.Sprintf("CREATE TYPE %s AS ENUM (%s)", sql, enumLabelsSQL(b)) }))
				continue
			}
		}
		if m.Owner != b.Owner {
			owner := b.Owner
			out = append(out, change.NewAlter(catalog.ObjectTypeEnumType, id, "alter type owner",
				func() string { return "ALTER TYPE " + sql + " OWNER TO " + pq.QuoteIdentifier(owner) }, id))
		}
		if c := DiffComment(catalog.ObjectTypeEnumType, id, change.CommentTargetType, sql, id, m.Comment, b.Comment); c != nil {
			out = append(out, c)
		}
		out = append(out, DiffPrivileges(PrivilegeTarget{ID: id, SQL: sql, Kind: change.GrantKindType}, m.Privileges, b.Privileges)...)
	}
	return out
}

func isAppendOnly(main, branch []string) bool {
	if len(branch) <= len(main) {
		return false
	}
	for i, l := range main {
		if branch[i] != l {
			return false
		}
	}
	return true
}

func equalStringSlice(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func quoteLit(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func enumLabelsSQL(t *catalog.EnumType) string {
	parts := make([]string, len(t.Labels))
	for i, l := range t.Labels {
		parts[i] = quoteLit(l)
	}
	return strings.Join(parts, ", ")
}

func createEnumChanges(ctx *catalog.DiffContext, id catalog.StableID, t *catalog.EnumType) []change.Change {
	var out []change.Change
	sql := qualified(t.Schema, t.Name)
	out = append(out, change.NewCreate(catalog.ObjectTypeEnumType, id, "create type "+t.Name,
		func() string { return fmt.Sprintf("CREATE TYPE %s AS ENUM (%s)", sql, enumLabelsSQL(t)) }))
	out = append(out, ownerOnCreate(ctx, catalog.ObjectTypeEnumType, id, "alter type owner", t.Owner,
		func() string { return "ALTER TYPE " + sql + " OWNER TO " + pq.QuoteIdentifier(t.Owner) })...)
	if t.Comment != "" {
		out = append(out, change.NewCreateComment(catalog.ObjectTypeEnumType, catalog.CommentID(id), change.CommentTargetType, sql, t.Comment, id))
	}
	out = append(out, DiffPrivilegesForCreate(ctx, PrivilegeTarget{ID: id, SQL: sql, Kind: change.GrantKindType}, "TYPES", t.Schema, t.Privileges)...)
	return out
}

// DiffRangeTypes implements spec.md §4.1.4: every subtype-related field is
// non-alterable (there is no ALTER TYPE form for a range type's subtype
// machinery) — any difference forces a Replace.
func DiffRangeTypes(ctx *catalog.DiffContext, main, branch map[catalog.StableID]*catalog.RangeType) []change.Change {
	var out []change.Change
	created, dropped, common := Partition(main, branch)

	for _, id := range created {
		out = append(out, createRangeChanges(ctx, id, branch[id])...)
	}
	for _, id := range dropped {
		t := main[id]
		out = append(out, change.NewDrop(catalog.ObjectTypeRangeType, id, "drop type "+t.Name,
			func() string { return "DROP TYPE " + qualified(t.Schema, t.Name) }))
	}
	for _, id := range common {
		m, b := main[id], branch[id]
		sql := qualified(b.Schema, b.Name)
		if !m.Equal(b) {
			out = append(out, change.NewReplace(catalog.ObjectTypeRangeType, id, "replace type "+b.Name,
				func() string { return fmt.Sprintf("CREATE TYPE %s AS RANGE (%s)", sql, rangeOptsSQL(b)) }))
			continue
		}
		if m.Owner != b.Owner {
			owner := b.Owner
			out = append(out, change.NewAlter(catalog.ObjectTypeRangeType, id, "alter type owner",
				func() string { return "ALTER TYPE " + sql + " OWNER TO " + pq.QuoteIdentifier(owner) }, id))
		}
		if c := DiffComment(catalog.ObjectTypeRangeType, id, change.CommentTargetType, sql, id, m.Comment, b.Comment); c != nil {
			out = append(out, c)
		}
		out = append(out, DiffPrivileges(PrivilegeTarget{ID: id, SQL: sql, Kind: change.GrantKindType}, m.Privileges, b.Privileges)...)
	}
	return out
}

func rangeOptsSQL(t *catalog.RangeType) string {
	s := "SUBTYPE = " + t.SubType
	if t.SubTypeOpClass != "" {
		s += ", SUBTYPE_OPCLASS = " + t.SubTypeOpClass
	}
	if t.Collation != "" {
		s += ", COLLATION = " + pq.QuoteIdentifier(t.Collation)
	}
	if t.Canonical != "" {
		s += ", CANONICAL = " + t.Canonical
	}
	if t.SubTypeDiff != "" {
		s += ", SUBTYPE_DIFF = " + t.SubTypeDiff
	}
	return s
}

func createRangeChanges(ctx *catalog.DiffContext, id catalog.StableID, t *catalog.RangeType) []change.Change {
	var out []change.Change
	sql := qualified(t.Schema, t.Name)
	out = append(out, change.NewCreate(catalog.ObjectTypeRangeType, id, "create type "+t.Name,
		func() string { return fmt.Sprintf("CREATE TYPE %s AS RANGE (%s)", sql, rangeOptsSQL(t)) }))
	out = append(out, ownerOnCreate(ctx, catalog.ObjectTypeRangeType, id, "alter type owner", t.Owner,
		func() string { return "ALTER TYPE " + sql + " OWNER TO " + pq.QuoteIdentifier(t.Owner) })...)
	if t.Comment != "" {
		out = append(out, change.NewCreateComment(catalog.ObjectTypeRangeType, catalog.CommentID(id), change.CommentTargetType, sql, t.Comment, id))
	}
	out = append(out, DiffPrivilegesForCreate(ctx, PrivilegeTarget{ID: id, SQL: sql, Kind: change.GrantKindType}, "TYPES", t.Schema, t.Privileges)...)
	return out
}

// DiffCollations implements spec.md §4.1.4: all locale/provider fields are
// non-alterable.
func DiffCollations(ctx *catalog.DiffContext, main, branch map[catalog.StableID]*catalog.Collation) []change.Change {
	var out []change.Change
	created, dropped, common := Partition(main, branch)

	for _, id := range created {
		t := branch[id]
		sql := qualified(t.Schema, t.Name)
		out = append(out, change.NewCreate(catalog.ObjectTypeCollation, id, "create collation "+t.Name,
			func() string { return fmt.Sprintf("CREATE COLLATION %s (PROVIDER = %s, LOCALE = %s)", sql, t.Provider, quoteLit(t.LCCollate)) }))
		out = append(out, ownerOnCreate(ctx, catalog.ObjectTypeCollation, id, "alter collation owner", t.Owner,
			func() string { return "ALTER COLLATION " + sql + " OWNER TO " + pq.QuoteIdentifier(t.Owner) })...)
		if t.Comment != "" {
			out = append(out, change.NewCreateComment(catalog.ObjectTypeCollation, catalog.CommentID(id), "COLLATION", sql, t.Comment, id))
		}
	}
	for _, id := range dropped {
		t := main[id]
		out = append(out, change.NewDrop(catalog.ObjectTypeCollation, id, "drop collation "+t.Name,
			func() string { return "DROP COLLATION " + qualified(t.Schema, t.Name) }))
	}
	for _, id := range common {
		m, b := main[id], branch[id]
		sql := qualified(b.Schema, b.Name)
		if !m.Equal(b) {
			out = append(out, change.NewReplace(catalog.ObjectTypeCollation, id, "replace collation "+b.Name,
				func() string {
					return fmt.Sprintf("CREATE COLLATION %s (PROVIDER = %s, LOCALE = %s)", sql, b.Provider, quoteLit(b.LCCollate))
				}))
			continue
		}
		if m.Owner != b.Owner {
			owner := b.Owner
			out = append(out, change.NewAlter(catalog.ObjectTypeCollation, id, "alter collation owner",
				func() string { return "ALTER COLLATION " + sql + " OWNER TO " + pq.QuoteIdentifier(owner) }, id))
		}
		if c := DiffComment(catalog.ObjectTypeCollation, id, "COLLATION", sql, id, m.Comment, b.Comment); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// DiffDomains implements spec.md §4.1.4: the base type, not-null, default
// and collation are non-alterable-as-a-set (a Replace), but the domain's
// Constraints map is diffed the same way table constraints are, with
// non-validated CHECK constraints getting a follow-up ValidateConstraint.
func DiffDomains(ctx *catalog.DiffContext, main, branch map[catalog.StableID]*catalog.Domain) []change.Change {
	var out []change.Change
	created, dropped, common := Partition(main, branch)

	for _, id := range created {
		out = append(out, createDomainChanges(ctx, id, branch[id])...)
	}
	for _, id := range dropped {
		d := main[id]
		out = append(out, change.NewDrop(catalog.ObjectTypeDomain, id, "drop domain "+d.Name,
			func() string { return "DROP DOMAIN " + qualified(d.Schema, d.Name) }))
	}
	for _, id := range common {
		m, b := main[id], branch[id]
		sql := qualified(b.Schema, b.Name)
		baseEqual := m.BaseType == b.BaseType && m.NotNull == b.NotNull &&
			defaultsEqual(m, b) && m.Collation == b.Collation
		if !baseEqual {
			out = append(out, change.NewReplace(catalog.ObjectTypeDomain, id, "replace domain "+b.Name,
				func() string { return fmt.Sprintf("CREATE DOMAIN %s AS %s%s", sql, b.BaseType, domainModifiersSQL(b)) }))
			continue
		}
		out = append(out, diffConstraintsKind(id, m.Constraints, b.Constraints, true)...)
		if m.Owner != b.Owner {
			owner := b.Owner
			out = append(out, change.NewAlter(catalog.ObjectTypeDomain, id, "alter domain owner",
				func() string { return "ALTER DOMAIN " + sql + " OWNER TO " + pq.QuoteIdentifier(owner) }, id))
		}
		if c := DiffComment(catalog.ObjectTypeDomain, id, change.CommentTargetDomain, sql, id, m.Comment, b.Comment); c != nil {
			out = append(out, c)
		}
		out = append(out, DiffPrivileges(PrivilegeTarget{ID: id, SQL: sql, Kind: change.GrantKindType}, m.Privileges, b.Privileges)...)
	}
	return out
}

func defaultsEqual(m, b *catalog.Domain) bool {
	mv, mok := catalog.StringValue(m.Default)
	bv, bok := catalog.StringValue(b.Default)
	return mok == bok && mv == bv
}

func domainModifiersSQL(d *catalog.Domain) string {
	s := ""
	if d.Collation != "" {
		s += " COLLATE " + pq.QuoteIdentifier(d.Collation)
	}
	if v, ok := catalog.StringValue(d.Default); ok {
		s += " DEFAULT " + v
	}
	if d.NotNull {
		s += " NOT NULL"
	}
	return s
}

func createDomainChanges(ctx *catalog.DiffContext, id catalog.StableID, d *catalog.Domain) []change.Change {
	var out []change.Change
	sql := qualified(d.Schema, d.Name)
	out = append(out, change.NewCreate(catalog.ObjectTypeDomain, id, "create domain "+d.Name,
		func() string { return fmt.Sprintf("CREATE DOMAIN %s AS %s%s", sql, d.BaseType, domainModifiersSQL(d)) }))
	out = append(out, ownerOnCreate(ctx, catalog.ObjectTypeDomain, id, "alter domain owner", d.Owner,
		func() string { return "ALTER DOMAIN " + sql + " OWNER TO " + pq.QuoteIdentifier(d.Owner) })...)
	for _, c := range d.Constraints {
		out = append(out, change.NewAddConstraint(id, c, true, id))
		if c.Type == catalog.ConstraintCheck && !c.Validated {
			out = append(out, change.NewValidateConstraint(id, c.Name))
		}
	}
	if d.Comment != "" {
		out = append(out, change.NewCreateComment(catalog.ObjectTypeDomain, catalog.CommentID(id), change.CommentTargetDomain, sql, d.Comment, id))
	}
	out = append(out, DiffPrivilegesForCreate(ctx, PrivilegeTarget{ID: id, SQL: sql, Kind: change.GrantKindType}, "TYPES", d.Schema, d.Privileges)...)
	return out
}
