// SPDX-License-Identifier: Apache-2.0

package catalog

import "github.com/oapi-codegen/nullable"

// CompositeType is a CREATE TYPE ... AS (...) structured type.
type CompositeType struct {
	StableID   StableID
	Schema     string
	Name       string
	Attributes []*Column // reuses Column for attribute name/type/collation
	Comment    string
	Owner      string
	Privileges []Privilege
}

func (t *CompositeType) Equal(other *CompositeType) bool {
	if t == nil || other == nil {
		return t == other
	}
	if len(t.Attributes) != len(other.Attributes) {
		return false
	}
	for i := range t.Attributes {
		if !t.Attributes[i].Equal(other.Attributes[i]) {
			return false
		}
	}
	return true
}

// EnumType is a CREATE TYPE ... AS ENUM (...) type. The label array is an
// ordered sequence where order is semantic (ALTER TYPE ... ADD VALUE can
// only append/insert, never reorder in place), so any difference in the
// label array — including reordering — is non-alterable (spec.md §4.1.4:
// "label array change is a replace").
type EnumType struct {
	StableID StableID
	Schema   string
	Name     string
	Labels   []string
	Comment  string
	Owner    string
	Privileges []Privilege
}

func (e *EnumType) Equal(other *EnumType) bool {
	if e == nil || other == nil {
		return e == other
	}
	return equalStringSlice(e.Labels, other.Labels)
}

// RangeType is a CREATE TYPE ... AS RANGE type.
type RangeType struct {
	StableID    StableID
	Schema      string
	Name        string
	SubType     string
	SubTypeOpClass string
	Collation   string
	Canonical   string
	SubTypeDiff string
	Comment     string
	Owner       string
	Privileges  []Privilege
}

func (r *RangeType) Equal(other *RangeType) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.SubType == other.SubType &&
		r.SubTypeOpClass == other.SubTypeOpClass &&
		r.Collation == other.Collation &&
		r.Canonical == other.Canonical &&
		r.SubTypeDiff == other.SubTypeDiff
}

// Domain is a CREATE DOMAIN type: a base type plus constraints/default/
// not-null. Domains carry their own Constraint set (typically CHECK
// constraints), diffed the same way table constraints are (spec.md §4.1.4:
// "Non-validated check constraints on domains get an additional
// ValidateConstraint emission after AddConstraint").
type Domain struct {
	StableID    StableID
	Schema      string
	Name        string
	BaseType    string
	NotNull     bool
	Default     nullable.Nullable[string]
	Collation   string
	Constraints map[string]*Constraint
	Comment     string
	Owner       string
	Privileges  []Privilege
}

func (d *Domain) Equal(other *Domain) bool {
	if d == nil || other == nil {
		return d == other
	}
	if d.BaseType != other.BaseType || d.NotNull != other.NotNull ||
		!nullableEqual(d.Default, other.Default) || d.Collation != other.Collation {
		return false
	}
	if len(d.Constraints) != len(other.Constraints) {
		return false
	}
	for k, c := range d.Constraints {
		oc, ok := other.Constraints[k]
		if !ok || !c.Equal(oc) {
			return false
		}
	}
	return true
}

// Collation is a CREATE COLLATION object.
type Collation struct {
	StableID StableID
	Schema   string
	Name     string
	LCCollate string
	LCCtype   string
	Provider  string
	Deterministic bool
	Comment   string
	Owner     string
}

func (c *Collation) Equal(other *Collation) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.LCCollate == other.LCCollate && c.LCCtype == other.LCCtype &&
		c.Provider == other.Provider && c.Deterministic == other.Deterministic
}
