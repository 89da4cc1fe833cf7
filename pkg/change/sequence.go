// SPDX-License-Identifier: Apache-2.0

package change

import (
	"fmt"

	"github.com/supabase/pgdiff/pkg/catalog"
)

// AlterSequenceOwnedBy sets or clears a sequence's OWNED BY link.
// Per spec.md §4.1.4, ownership changes are filed against the owning
// table's StableID, not the sequence's — so this change Requires both
// the sequence and (when set) the owning column's table, and is ordered
// alongside the table's own alterations.
type AlterSequenceOwnedBy struct {
	Header
	Sequence   catalog.StableID
	OwnerTable catalog.StableID // zero value when clearing ownership
	OwnerCol   string
}

func NewAlterSequenceOwnedBy(seq catalog.StableID, ownerTable catalog.StableID, ownerCol string) *AlterSequenceOwnedBy {
	reqs := []catalog.StableID{seq}
	if ownerTable != "" {
		reqs = append(reqs, ownerTable)
	}
	return &AlterSequenceOwnedBy{
		Header:     NewAlterHeader(ScopeObject, catalog.ObjectTypeSequence, seq, reqs...),
		Sequence:   seq,
		OwnerTable: ownerTable,
		OwnerCol:   ownerCol,
	}
}

// OwnedBy files this change against the owning table's generated file
// when ownership is set, per spec.md §4.4's "ALTER SEQUENCE ... OWNED BY
// grouped with owning table" deviation; clearing ownership has no table
// to file against, so it stays with the sequence itself.
func (a *AlterSequenceOwnedBy) OwnedBy() catalog.StableID {
	if a.OwnerTable != "" {
		return a.OwnerTable
	}
	return a.Sequence
}

func (a *AlterSequenceOwnedBy) Serialize() string {
	if a.OwnerTable == "" {
		return fmt.Sprintf("ALTER SEQUENCE %s OWNED BY NONE", qualifiedFromID(a.Sequence))
	}
	return fmt.Sprintf("ALTER SEQUENCE %s OWNED BY %s", qualifiedFromID(a.Sequence), ColumnCommentTarget(a.OwnerTable, a.OwnerCol))
}
