// SPDX-License-Identifier: Apache-2.0

package catalog

import "github.com/oapi-codegen/nullable"

// Column is a column of a table, view, materialized view, or foreign
// table, per spec.md §3.
type Column struct {
	Name             string
	Position         int
	DataTypeStr      string
	NotNull          bool
	Default          nullable.Nullable[string]
	IsIdentity       bool
	IsIdentityAlways bool
	IsGenerated      bool
	Collation        string
	Comment          string
	IsCustomType     bool
	CustomTypeRef    StableID
}

// Equal reports whether c and other have identical identity and data
// fields, per spec.md §3's model-object equality rule. Column name is
// identity; everything else is data.
func (c *Column) Equal(other *Column) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.Name == other.Name &&
		c.DataTypeStr == other.DataTypeStr &&
		c.NotNull == other.NotNull &&
		nullableEqual(c.Default, other.Default) &&
		c.IsIdentity == other.IsIdentity &&
		c.IsIdentityAlways == other.IsIdentityAlways &&
		c.IsGenerated == other.IsGenerated &&
		c.Collation == other.Collation &&
		c.CustomTypeRef == other.CustomTypeRef
}

func nullableEqual(a, b nullable.Nullable[string]) bool {
	if a.IsSpecified() != b.IsSpecified() {
		return false
	}
	if !a.IsSpecified() {
		return true
	}
	if a.IsNull() != b.IsNull() {
		return false
	}
	av, _ := a.Get()
	bv, _ := b.Get()
	return av == bv
}

// StringValue returns the concrete value of a specified, non-null
// Nullable[string], or ("", false) if it is unspecified or explicitly
// SQL NULL.
func StringValue(n nullable.Nullable[string]) (string, bool) {
	if !n.IsSpecified() || n.IsNull() {
		return "", false
	}
	v, err := n.Get()
	if err != nil {
		return "", false
	}
	return v, true
}

// ConstraintType enumerates PostgreSQL's pg_constraint.contype values.
type ConstraintType string

const (
	ConstraintCheck      ConstraintType = "c"
	ConstraintForeignKey ConstraintType = "f"
	ConstraintPrimaryKey ConstraintType = "p"
	ConstraintUnique     ConstraintType = "u"
	ConstraintExclusion  ConstraintType = "x"
	ConstraintTrigger    ConstraintType = "t"
)

// Constraint is a table- or domain-owned constraint, per spec.md §3.
type Constraint struct {
	Name           string
	Type           ConstraintType
	Validated      bool
	Deferrable     bool
	DefinitionSQL  string
}

func (c *Constraint) Equal(other *Constraint) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.Name == other.Name &&
		c.Type == other.Type &&
		c.Validated == other.Validated &&
		c.Deferrable == other.Deferrable &&
		c.DefinitionSQL == other.DefinitionSQL
}

// Index is a table index, keyed in Catalog.Indexes and naming its table
// by Schema/Table; the owning Table value does not carry it.
type Index struct {
	StableID    StableID
	Schema      string
	Table       string
	Name        string
	Unique      bool
	Method      string
	Columns     []string
	Predicate   nullable.Nullable[string]
	DefinitionSQL string
	Comment     string
	Owner       string
	Privileges  []Privilege
}

func (i *Index) Equal(other *Index) bool {
	if i == nil || other == nil {
		return i == other
	}
	return i.Unique == other.Unique &&
		i.Method == other.Method &&
		equalStringSlice(i.Columns, other.Columns) &&
		nullableEqual(i.Predicate, other.Predicate) &&
		i.DefinitionSQL == other.DefinitionSQL
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

// Trigger is a table trigger.
type Trigger struct {
	StableID      StableID
	Schema        string
	Table         string
	Name          string
	DefinitionSQL string
	Comment       string
}

func (t *Trigger) Equal(other *Trigger) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.DefinitionSQL == other.DefinitionSQL
}

// Rule is a table rewrite rule (CREATE RULE).
type Rule struct {
	StableID      StableID
	Schema        string
	Table         string
	Name          string
	DefinitionSQL string
	Comment       string
}

func (r *Rule) Equal(other *Rule) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.DefinitionSQL == other.DefinitionSQL
}

// Policy is a row-level-security policy.
type Policy struct {
	StableID   StableID
	Schema     string
	Table      string
	Name       string
	Command    string // ALL, SELECT, INSERT, UPDATE, DELETE
	Permissive bool
	Roles      []string
	Using      nullable.Nullable[string]
	WithCheck  nullable.Nullable[string]
	Comment    string
}

func (p *Policy) Equal(other *Policy) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.Command == other.Command &&
		p.Permissive == other.Permissive &&
		equalStringSlice(p.Roles, other.Roles) &&
		nullableEqual(p.Using, other.Using) &&
		nullableEqual(p.WithCheck, other.WithCheck)
}

// Table is a base table, per spec.md §3.
type Table struct {
	StableID    StableID
	Schema      string
	Name        string
	Columns     []*Column
	Constraints map[string]*Constraint
	IsPartition bool
	ParentName  string
	PartitionStrategy string
	PartitionKey      string
	PartitionBound    string
	Comment     string
	Owner       string
	Privileges  []Privilege
	StorageParams map[string]string // options/storage-params sub-diff input, spec.md §4.1.3
	RLSEnabled  bool
	RLSForced   bool
}

// Equal reports whether two Table values agree on their columns (in
// order), RLS enabled/forced flags, constraints and storage params. It is
// not a non-alterable-field check: tables are altered field-by-field
// (unlike e.g. aggregates or enums).
func (t *Table) Equal(other *Table) bool {
	if t == nil || other == nil {
		return t == other
	}
	if len(t.Columns) != len(other.Columns) || t.RLSEnabled != other.RLSEnabled || t.RLSForced != other.RLSForced {
		return false
	}
	for i := range t.Columns {
		if !t.Columns[i].Equal(other.Columns[i]) {
			return false
		}
	}
	if len(t.Constraints) != len(other.Constraints) {
		return false
	}
	for k, c := range t.Constraints {
		oc, ok := other.Constraints[k]
		if !ok || !c.Equal(oc) {
			return false
		}
	}
	return mapEqual(t.StorageParams, other.StorageParams)
}

func mapEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

// ForeignTable is a foreign-data-wrapper-backed table.
type ForeignTable struct {
	StableID StableID
	Schema   string
	Name     string
	Server   string
	Columns  []*Column
	Options  map[string]string
	Comment  string
	Owner    string
	Privileges []Privilege
}

func (f *ForeignTable) Equal(other *ForeignTable) bool {
	if f == nil || other == nil {
		return f == other
	}
	if f.Server != other.Server || len(f.Columns) != len(other.Columns) {
		return false
	}
	for i := range f.Columns {
		if !f.Columns[i].Equal(other.Columns[i]) {
			return false
		}
	}
	return mapEqual(f.Options, other.Options)
}
