// SPDX-License-Identifier: Apache-2.0

package catalog

// Schema is a PostgreSQL namespace (CREATE SCHEMA).
type Schema struct {
	StableID   StableID
	Name       string
	Owner      string
	Comment    string
	Privileges []Privilege
}

func (s *Schema) Equal(other *Schema) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.Name == other.Name
}

// View is a non-materialized view.
type View struct {
	StableID   StableID
	Schema     string
	Name       string
	Columns    []*Column
	Definition string
	Comment    string
	Owner      string
	Privileges []Privilege
}

func (v *View) Equal(other *View) bool {
	if v == nil || other == nil {
		return v == other
	}
	return v.Definition == other.Definition
}

// MaterializedView is a materialized view.
type MaterializedView struct {
	StableID       StableID
	Schema         string
	Name           string
	Columns        []*Column
	Definition     string
	Populated      bool
	ReplicaIdentity string
	IsPartitioned  bool
	StorageParams  map[string]string
	RLSEnabled     bool
	Indexes        map[string]*Index
	Comment        string
	Owner          string
	Privileges     []Privilege
}

// Equal implements the §4.1 step 4a non-alterable-field check for
// materialized views: definition, populated-state, replica identity,
// partition attributes, options, and row-security flags are all
// non-alterable — any difference forces a Replace (drop+create).
func (m *MaterializedView) Equal(other *MaterializedView) bool {
	if m == nil || other == nil {
		return m == other
	}
	return m.Definition == other.Definition &&
		m.Populated == other.Populated &&
		m.ReplicaIdentity == other.ReplicaIdentity &&
		m.IsPartitioned == other.IsPartitioned &&
		m.RLSEnabled == other.RLSEnabled &&
		mapEqual(m.StorageParams, other.StorageParams)
}

// Sequence is a standalone or identity-backed sequence.
type Sequence struct {
	StableID  StableID
	Schema    string
	Name      string
	DataType  string
	Start     int64
	Increment int64
	MinValue  int64
	MaxValue  int64
	Cycle     bool
	CacheSize int64
	OwnedBy   *SequenceOwnership // nil if not owned by a column
	Comment   string
	Owner     string
	Privileges []Privilege
}

// SequenceOwnership names the table/column an identity (or serial-style)
// sequence is wired to, per spec.md §4.1.4.
type SequenceOwnership struct {
	Schema string
	Table  string
	Column string
}

func (s *Sequence) Equal(other *Sequence) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.DataType == other.DataType &&
		s.Start == other.Start &&
		s.Increment == other.Increment &&
		s.MinValue == other.MinValue &&
		s.MaxValue == other.MaxValue &&
		s.Cycle == other.Cycle &&
		s.CacheSize == other.CacheSize &&
		ownershipEqual(s.OwnedBy, other.OwnedBy)
}

func ownershipEqual(a, b *SequenceOwnership) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
