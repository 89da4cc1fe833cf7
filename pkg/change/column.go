// SPDX-License-Identifier: Apache-2.0

package change

import (
	"fmt"

	"github.com/lib/pq"
	"github.com/supabase/pgdiff/pkg/catalog"
)

// AddColumn adds a column to an existing table/view/matview/foreign
// table, per spec.md §4.1.1.
type AddColumn struct {
	Header
	Table  catalog.StableID
	Column *catalog.Column
}

func NewAddColumn(table catalog.StableID, col *catalog.Column, requires ...catalog.StableID) *AddColumn {
	id := catalog.ColumnCommentID(table, col.Name) // reuse the "<table>.<col>" shape for the column's own identity
	h := NewCreateHeader(ScopeColumn, catalog.ObjectTypeColumn, id, append(requires, table)...)
	return &AddColumn{Header: h, Table: table, Column: col}
}

func (c *AddColumn) OwnedBy() catalog.StableID { return c.Table }

func (c *AddColumn) Serialize() string {
	def := columnDefSQL(c.Column)
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", qualifiedFromID(c.Table), pq.QuoteIdentifier(c.Column.Name), def)
}

func columnDefSQL(col *catalog.Column) string {
	s := col.DataTypeStr
	if col.NotNull {
		s += " NOT NULL"
	}
	if v, ok := catalog.StringValue(col.Default); ok {
		s += " DEFAULT " + v
	}
	if col.Collation != "" {
		s += " COLLATE " + pq.QuoteIdentifier(col.Collation)
	}
	return s
}

func qualifiedFromID(id catalog.StableID) string {
	// StableIDs are "<kind>:<schema>.<name>"; render the schema-qualified,
	// identifier-quoted name for use inside generated SQL text.
	s := string(id)
	for i, r := range s {
		if r == ':' {
			s = s[i+1:]
			break
		}
	}
	return quoteQualifiedName(s)
}

func quoteQualifiedName(dotted string) string {
	schema, name := splitLast(dotted, '.')
	if schema == "" {
		return pq.QuoteIdentifier(name)
	}
	return pq.QuoteIdentifier(schema) + "." + pq.QuoteIdentifier(name)
}

func splitLast(s string, sep byte) (head, tail string) {
	idx := -1
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			idx = i
		}
	}
	if idx < 0 {
		return "", s
	}
	return s[:idx], s[idx+1:]
}

// DropColumn removes a column from a table/view/matview/foreign table.
// Column name is identity (spec.md §4.1.1): a rename manifests as
// DropColumn + AddColumn, never an in-place rename.
type DropColumn struct {
	Header
	Table  catalog.StableID
	Column string
}

func NewDropColumn(table catalog.StableID, column string) *DropColumn {
	id := catalog.ColumnCommentID(table, column)
	return &DropColumn{Header: NewDropHeader(ScopeColumn, catalog.ObjectTypeColumn, id, table), Table: table, Column: column}
}

func (c *DropColumn) OwnedBy() catalog.StableID { return c.Table }

func (c *DropColumn) Serialize() string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", qualifiedFromID(c.Table), pq.QuoteIdentifier(c.Column))
}

// AlterColumnKind distinguishes the specific targeted ALTER COLUMN clause,
// per spec.md §4.1.1's list of sub-diffable column fields.
type AlterColumnKind string

const (
	AlterColumnType       AlterColumnKind = "type"
	AlterColumnDefault    AlterColumnKind = "default"
	AlterColumnNotNull    AlterColumnKind = "not_null"
	AlterColumnIdentity   AlterColumnKind = "identity"
	AlterColumnGenerated  AlterColumnKind = "generated"
	AlterColumnCollation  AlterColumnKind = "collation"
)

// AlterColumn is a single targeted column ALTER. One is emitted per
// differing field, not one combined statement, matching spec.md §4.1.1's
// "emit the specific AlterColumn… change" per field.
type AlterColumn struct {
	Header
	Table  catalog.StableID
	Column string
	Kind   AlterColumnKind
	New    *catalog.Column
}

func NewAlterColumn(table catalog.StableID, column string, kind AlterColumnKind, newCol *catalog.Column) *AlterColumn {
	id := catalog.ColumnCommentID(table, column)
	return &AlterColumn{Header: NewAlterHeader(ScopeColumn, catalog.ObjectTypeColumn, id, table), Table: table, Column: column, Kind: kind, New: newCol}
}

func (c *AlterColumn) OwnedBy() catalog.StableID { return c.Table }

func (c *AlterColumn) Serialize() string {
	prefix := fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s", qualifiedFromID(c.Table), pq.QuoteIdentifier(c.Column))
	switch c.Kind {
	case AlterColumnType:
		return prefix + " TYPE " + c.New.DataTypeStr
	case AlterColumnDefault:
		if v, ok := catalog.StringValue(c.New.Default); ok {
			return prefix + " SET DEFAULT " + v
		}
		return prefix + " DROP DEFAULT"
	case AlterColumnNotNull:
		if c.New.NotNull {
			return prefix + " SET NOT NULL"
		}
		return prefix + " DROP NOT NULL"
	case AlterColumnIdentity:
		if !c.New.IsIdentity {
			return prefix + " DROP IDENTITY IF EXISTS"
		}
		gen := "BY DEFAULT"
		if c.New.IsIdentityAlways {
			gen = "ALWAYS"
		}
		return prefix + " ADD GENERATED " + gen + " AS IDENTITY"
	case AlterColumnGenerated:
		return prefix + " SET GENERATED ALWAYS" // generated-expression changes are otherwise non-alterable per-kind
	case AlterColumnCollation:
		return prefix + " SET DATA TYPE " + c.New.DataTypeStr + " COLLATE " + pq.QuoteIdentifier(c.New.Collation)
	default:
		return prefix
	}
}
