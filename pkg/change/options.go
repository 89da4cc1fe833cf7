// SPDX-License-Identifier: Apache-2.0

package change

import (
	"fmt"
	"strings"

	"github.com/supabase/pgdiff/pkg/catalog"
)

// OptionAction is the storage-parameter action a single SET/RESET
// difference expands into, per spec.md §4.1.3's options/storage-params
// sub-diff ("added keys -> SET, removed keys -> RESET, changed values ->
// SET").
type OptionAction string

const (
	OptionSet   OptionAction = "set"
	OptionReset OptionAction = "reset"
)

// AlterStorageOptions carries one or more storage-parameter SET/RESET
// clauses for a table, index, view, or materialized view, batched into a
// single ALTER ... SET/RESET statement pair per spec.md §4.1.3.
type AlterStorageOptions struct {
	Header
	Owner       catalog.StableID
	OwnerKind   string // "TABLE", "INDEX", "VIEW", "MATERIALIZED VIEW"
	SetParams   map[string]string
	ResetParams []string
}

func NewAlterStorageOptions(ot catalog.ObjectType, owner catalog.StableID, ownerKind string, set map[string]string, reset []string) *AlterStorageOptions {
	return &AlterStorageOptions{
		Header:      NewAlterHeader(ScopeObject, ot, owner, owner),
		Owner:       owner,
		OwnerKind:   ownerKind,
		SetParams:   set,
		ResetParams: reset,
	}
}

func (a *AlterStorageOptions) OwnedBy() catalog.StableID { return a.Owner }

func (a *AlterStorageOptions) Serialize() string {
	var stmts []string
	if len(a.SetParams) > 0 {
		pairs := make([]string, 0, len(a.SetParams))
		for k, v := range a.SetParams {
			pairs = append(pairs, fmt.Sprintf("%s = %s", k, v))
		}
		stmts = append(stmts, fmt.Sprintf("ALTER %s %s SET (%s)", a.OwnerKind, qualifiedFromID(a.Owner), strings.Join(pairs, ", ")))
	}
	if len(a.ResetParams) > 0 {
		stmts = append(stmts, fmt.Sprintf("ALTER %s %s RESET (%s)", a.OwnerKind, qualifiedFromID(a.Owner), strings.Join(a.ResetParams, ", ")))
	}
	return strings.Join(stmts, ";\n")
}

// DiffStorageParams computes the SET/RESET split spec.md §4.1.3 describes
// between an old and new storage-params map. Exported so pkg/diff's
// per-kind differs can share one implementation across tables, indexes,
// views, and materialized views.
func DiffStorageParams(oldParams, newParams map[string]string) (set map[string]string, reset []string) {
	set = map[string]string{}
	for k, v := range newParams {
		if old, ok := oldParams[k]; !ok || old != v {
			set[k] = v
		}
	}
	for k := range oldParams {
		if _, ok := newParams[k]; !ok {
			reset = append(reset, k)
		}
	}
	return set, reset
}
