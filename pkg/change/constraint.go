// SPDX-License-Identifier: Apache-2.0

package change

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/supabase/pgdiff/pkg/catalog"
)

// AddConstraint adds a table- or domain-owned constraint. Every constraint
// keeps ObjectTypeConstraint; foreign keys are marked by IsForeignKey
// (spec.md §4.1.4) so the exporter can place them in a late, separate
// category without conflicting with the rest of the owning table's
// structure.
type AddConstraint struct {
	Header
	Owner        catalog.StableID
	Constraint   *catalog.Constraint
	IsForeignKey bool
	IsDomain     bool
}

func NewAddConstraint(owner catalog.StableID, c *catalog.Constraint, isDomain bool, requires ...catalog.StableID) *AddConstraint {
	ot := catalog.ObjectTypeConstraint
	id := catalog.ConstraintID(owner, c.Name)
	return &AddConstraint{
		Header:       NewCreateHeader(ScopeConstraint, ot, id, append(requires, owner)...),
		Owner:        owner,
		Constraint:   c,
		IsForeignKey: c.Type == catalog.ConstraintForeignKey,
		IsDomain:     isDomain,
	}
}

func (c *AddConstraint) OwnedBy() catalog.StableID { return c.Owner }

func (c *AddConstraint) Serialize() string {
	notValid := ""
	if !c.Constraint.Validated {
		notValid = " NOT VALID"
	}
	keyword := "TABLE"
	if c.IsDomain {
		keyword = "DOMAIN"
	}
	return fmt.Sprintf("ALTER %s %s ADD CONSTRAINT %s %s%s",
		keyword, qualifiedFromID(c.Owner), pq.QuoteIdentifier(c.Constraint.Name), c.Constraint.DefinitionSQL, notValid)
}

// DropConstraint removes a table- or domain-owned constraint.
type DropConstraint struct {
	Header
	Owner          catalog.StableID
	ConstraintName string
	IsDomain       bool
	IsForeignKey   bool
}

func NewDropConstraint(owner catalog.StableID, name string, isDomain, isForeignKey bool) *DropConstraint {
	id := catalog.ConstraintID(owner, name)
	return &DropConstraint{Header: NewDropHeader(ScopeConstraint, catalog.ObjectTypeConstraint, id, owner), Owner: owner, ConstraintName: name, IsDomain: isDomain, IsForeignKey: isForeignKey}
}

func (c *DropConstraint) OwnedBy() catalog.StableID { return c.Owner }

func (c *DropConstraint) Serialize() string {
	keyword := "TABLE"
	if c.IsDomain {
		keyword = "DOMAIN"
	}
	return fmt.Sprintf("ALTER %s %s DROP CONSTRAINT %s", keyword, qualifiedFromID(c.Owner), pq.QuoteIdentifier(c.ConstraintName))
}

// ValidateConstraint validates a previously NOT VALID constraint.
// Emitted after AddConstraint for non-validated CHECK constraints on
// tables and domains (spec.md §4.1.4).
type ValidateConstraint struct {
	Header
	Owner          catalog.StableID
	ConstraintName string
}

func NewValidateConstraint(owner catalog.StableID, name string) *ValidateConstraint {
	id := catalog.ConstraintID(owner, name)
	return &ValidateConstraint{Header: NewAlterHeader(ScopeConstraint, catalog.ObjectTypeConstraint, id, owner), Owner: owner, ConstraintName: name}
}

func (c *ValidateConstraint) OwnedBy() catalog.StableID { return c.Owner }

func (c *ValidateConstraint) Serialize() string {
	keyword := "TABLE"
	if strings.HasPrefix(string(c.Owner), "domain:") {
		keyword = "DOMAIN"
	}
	return fmt.Sprintf("ALTER %s %s VALIDATE CONSTRAINT %s", keyword, qualifiedFromID(c.Owner), pq.QuoteIdentifier(c.ConstraintName))
}
