// SPDX-License-Identifier: Apache-2.0

package change

import "github.com/supabase/pgdiff/pkg/catalog"

// ObjectChange is the generic payload for whole-object create/drop/replace/
// owner-alter changes: the overwhelming majority of the 24 object kinds
// listed in spec.md §3 need nothing beyond "render this one SQL statement,
// referencing these StableIDs" at the object scope. Per-kind differs build
// one of these with a Render closure instead of hand-writing 24 near-
// identical named structs (spec.md §9: "tagged variant... per-variant
// payload" — the variant tag here is Header.ObjectType combined with
// Header.Operation, and the payload is the closure plus the description
// used for logging).
type ObjectChange struct {
	Header
	Description string // human-readable, used by the CLI/logger
	Render      func() string
	// FiledUnder overrides the object this change is exported alongside;
	// zero value means "itself" (the common case for whole-object
	// create/drop/replace/alter changes). Only membership grants/revokes
	// set this, to file under the role's generated output instead of a
	// membership-specific one.
	FiledUnder catalog.StableID
}

func (c *ObjectChange) Serialize() string { return c.Render() }

// OwnedBy implements change.Owned for the one ObjectChange use that needs
// it: role membership changes are filed under the role's own file.
func (c *ObjectChange) OwnedBy() catalog.StableID {
	if c.FiledUnder != "" {
		return c.FiledUnder
	}
	return c.ID
}

// NewCreate builds a Create<Kind> change.
func NewCreate(ot catalog.ObjectType, id catalog.StableID, desc string, render func() string, reqs ...catalog.StableID) *ObjectChange {
	return &ObjectChange{Header: NewCreateHeader(ScopeObject, ot, id, reqs...), Description: desc, Render: render}
}

// NewDrop builds a Drop<Kind> change.
func NewDrop(ot catalog.ObjectType, id catalog.StableID, desc string, render func() string, reqs ...catalog.StableID) *ObjectChange {
	return &ObjectChange{Header: NewDropHeader(ScopeObject, ot, id, reqs...), Description: desc, Render: render}
}

// NewReplace builds a Replace<Kind> change (drop+create of the same
// StableID because a non-alterable field differs, spec.md §4.1 step 4a).
func NewReplace(ot catalog.ObjectType, id catalog.StableID, desc string, render func() string, reqs ...catalog.StableID) *ObjectChange {
	return &ObjectChange{Header: NewReplaceHeader(ScopeObject, ot, id, reqs...), Description: desc, Render: render}
}

// NewAlter builds a targeted whole-object ALTER (e.g. owner change,
// storage param SET, a single scalar property change) that does not fit
// the column/constraint/privilege/comment sub-scopes.
func NewAlter(ot catalog.ObjectType, id catalog.StableID, desc string, render func() string, reqs ...catalog.StableID) *ObjectChange {
	return &ObjectChange{Header: NewAlterHeader(ScopeObject, ot, id, reqs...), Description: desc, Render: render}
}

// NewMembershipGrant builds a GRANT <role> TO <role> change at
// ScopeMembership, per spec.md §3's membership scope: role membership is
// diffed independently of either role's own attributes. owner is the role
// gaining the membership; its file is where the exporter places this
// change.
func NewMembershipGrant(owner, id catalog.StableID, desc string, render func() string, reqs ...catalog.StableID) *ObjectChange {
	return &ObjectChange{Header: NewCreateHeader(ScopeMembership, catalog.ObjectTypeRole, id, reqs...), Description: desc, Render: render, FiledUnder: owner}
}

// NewMembershipRevoke builds a REVOKE <role> FROM <role> change.
func NewMembershipRevoke(owner, id catalog.StableID, desc string, render func() string, reqs ...catalog.StableID) *ObjectChange {
	return &ObjectChange{Header: NewDropHeader(ScopeMembership, catalog.ObjectTypeRole, id, reqs...), Description: desc, Render: render, FiledUnder: owner}
}
