// SPDX-License-Identifier: Apache-2.0

// Package change defines the typed change-record vocabulary (spec.md §3,
// §4.2) passed between the differ (pkg/diff), the resolver (pkg/resolve),
// and the exporter (pkg/export). A Change is immutable once constructed;
// nothing downstream mutates it.
package change

import "github.com/supabase/pgdiff/pkg/catalog"

// Operation is the kind of SQL statement a Change represents.
type Operation string

const (
	OpCreate  Operation = "create"
	OpAlter   Operation = "alter"
	OpDrop    Operation = "drop"
	OpReplace Operation = "replace"
)

// Scope is the granularity a Change operates at.
type Scope string

const (
	ScopeObject           Scope = "object"
	ScopeColumn           Scope = "column"
	ScopeConstraint       Scope = "constraint"
	ScopeComment          Scope = "comment"
	ScopePrivilege        Scope = "privilege"
	ScopeDefaultPrivilege Scope = "default_privilege"
	ScopeMembership       Scope = "membership"
)

// Change is the common header every concrete change payload embeds.
// Per spec.md §3's invariants:
//   - operation=create  => Creates is non-empty
//   - operation=drop    => Drops is non-empty
//   - operation=replace => both Creates and Drops are non-empty, and
//     re-create the same StableID
//   - Requires lists every StableID the rendered SQL text references
type Change interface {
	Operation() Operation
	Scope() Scope
	ObjectType() catalog.ObjectType
	StableID() catalog.StableID
	Creates() []catalog.StableID
	Drops() []catalog.StableID
	Requires() []catalog.StableID
	Serialize() string
}

// Header is embedded by every concrete change type and implements the
// header accessors of Change; each concrete type additionally implements
// Serialize().
type Header struct {
	Op         Operation
	Sc         Scope
	OType      catalog.ObjectType
	ID         catalog.StableID
	CreatesIDs []catalog.StableID
	DropsIDs   []catalog.StableID
	RequiresIDs []catalog.StableID
}

func (h Header) Operation() Operation               { return h.Op }
func (h Header) Scope() Scope                       { return h.Sc }
func (h Header) ObjectType() catalog.ObjectType      { return h.OType }
func (h Header) StableID() catalog.StableID         { return h.ID }
func (h Header) Creates() []catalog.StableID        { return h.CreatesIDs }
func (h Header) Drops() []catalog.StableID          { return h.DropsIDs }
func (h Header) Requires() []catalog.StableID       { return h.RequiresIDs }

// NewCreateHeader builds the Header for a create-operation change whose
// sole effect is bringing id into existence, requiring reqs to already
// exist.
func NewCreateHeader(scope Scope, ot catalog.ObjectType, id catalog.StableID, reqs ...catalog.StableID) Header {
	return Header{Op: OpCreate, Sc: scope, OType: ot, ID: id, CreatesIDs: []catalog.StableID{id}, RequiresIDs: reqs}
}

// NewDropHeader builds the Header for a drop-operation change.
func NewDropHeader(scope Scope, ot catalog.ObjectType, id catalog.StableID, reqs ...catalog.StableID) Header {
	return Header{Op: OpDrop, Sc: scope, OType: ot, ID: id, DropsIDs: []catalog.StableID{id}, RequiresIDs: reqs}
}

// NewAlterHeader builds the Header for an alter-operation change: id
// continues to exist, unmodified in identity.
func NewAlterHeader(scope Scope, ot catalog.ObjectType, id catalog.StableID, reqs ...catalog.StableID) Header {
	return Header{Op: OpAlter, Sc: scope, OType: ot, ID: id, RequiresIDs: reqs}
}

// NewReplaceHeader builds the Header for a replace-operation change: a
// drop+create pair re-creating the same StableID (spec.md §3, §4.1 step 4a).
func NewReplaceHeader(scope Scope, ot catalog.ObjectType, id catalog.StableID, reqs ...catalog.StableID) Header {
	return Header{
		Op: OpReplace, Sc: scope, OType: ot, ID: id,
		CreatesIDs: []catalog.StableID{id}, DropsIDs: []catalog.StableID{id}, RequiresIDs: reqs,
	}
}

// Owned is implemented by sub-object change payloads that the exporter
// (pkg/export) files against some other object's generated file rather
// than a file of their own — columns, constraints, comments, privileges,
// storage options, sequence ownership, and role membership all nest
// under the object they describe, per spec.md §4.4's detailed layout.
type Owned interface {
	OwnedBy() catalog.StableID
}
