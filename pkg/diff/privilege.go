// SPDX-License-Identifier: Apache-2.0

package diff

import (
	"github.com/supabase/pgdiff/pkg/catalog"
	"github.com/supabase/pgdiff/pkg/change"
)

// PrivilegeTarget bundles the information the privilege sub-diff needs
// about the object the privileges are attached to, independent of kind.
type PrivilegeTarget struct {
	ID   catalog.StableID
	SQL  string // quoted schema-qualified SQL name
	Kind change.GrantKind
}

// DiffPrivileges implements spec.md §4.1.2 in full: group both sides by
// grantee (step 1), key each grantee's records by (privilege, grantable,
// sorted_columns) (step 2), diff the two key sets, and emit Grant /
// Revoke / RevokeGrantOption changes (step 3) — collapsing the
// grant-option upgrade/downgrade special case into a single Grant (for an
// upgrade, since re-granting with WITH GRANT OPTION both adds the
// privilege and raises the option) or a single RevokeGrantOption (for a
// downgrade, since the base privilege must survive).
func DiffPrivileges(target PrivilegeTarget, mainPrivs, branchPrivs []catalog.Privilege) []change.Change {
	var out []change.Change
	mainByGrantee := catalog.GroupByGrantee(mainPrivs)
	branchByGrantee := catalog.GroupByGrantee(branchPrivs)

	grantees := map[string]bool{}
	for g := range mainByGrantee {
		grantees[g] = true
	}
	for g := range branchByGrantee {
		grantees[g] = true
	}

	for _, grantee := range sortedKeys(grantees) {
		mainKeyed := keyPrivileges(mainByGrantee[grantee])
		branchKeyed := keyPrivileges(branchByGrantee[grantee])

		for key, mp := range mainKeyed {
			if _, ok := branchKeyed[key]; ok {
				continue
			}
			// Present in main only. Two special cases collapse to a
			// single ALTER-shaped change instead of a REVOKE+GRANT pair:
			if key.Grantable {
				// downgrade: same (privilege, columns) survives at
				// grantable=false on the branch side.
				downKey := key
				downKey.Grantable = false
				if _, ok := branchKeyed[downKey]; ok {
					out = append(out, change.NewRevokeGrantOption(target.Kind, target.ID, target.SQL, grantee, []catalog.Privilege{mp}, mp.SortedColumns()))
					continue
				}
			} else {
				// upgrade: same (privilege, columns) exists on branch but
				// WITH GRANT OPTION — the GRANT emitted below for that
				// key already raises the option, so no REVOKE is needed.
				upKey := key
				upKey.Grantable = true
				if _, ok := branchKeyed[upKey]; ok {
					continue
				}
			}
			out = append(out, change.NewRevoke(target.Kind, target.ID, target.SQL, grantee, []catalog.Privilege{mp}, mp.SortedColumns()))
		}
		for key, bp := range branchKeyed {
			if _, ok := mainKeyed[key]; ok {
				continue
			}
			out = append(out, change.NewGrant(target.Kind, target.ID, target.SQL, grantee, []catalog.Privilege{bp}, bp.Grantable, bp.SortedColumns()))
		}
	}
	return out
}

// DiffPrivilegesForCreate implements the create-path half of spec.md
// §4.1.2: a newly created object is diffed against nil, but first the
// privileges PostgreSQL's built-in PUBLIC defaults or a matching ALTER
// DEFAULT PRIVILEGES entry would already have granted are subtracted
// from branchPrivs, so the result only contains grants that exceed the
// default (otherwise every created function/domain/sequence/etc. would
// pick up a spurious GRANT ... TO PUBLIC). objType is the keyword ALTER
// DEFAULT PRIVILEGES itself uses (TABLES, SEQUENCES, ROUTINES, TYPES,
// SCHEMAS), except that foreign servers pass "FOREIGN SERVER", which no
// default matches; schema is the object's own schema, or "" for
// schema-less objects such as servers and schemas themselves.
func DiffPrivilegesForCreate(ctx *catalog.DiffContext, target PrivilegeTarget, objType, schema string, branchPrivs []catalog.Privilege) []change.Change {
	return DiffPrivileges(target, nil, effectivePrivileges(ctx, objType, schema, branchPrivs))
}

func effectivePrivileges(ctx *catalog.DiffContext, objType, schema string, privs []catalog.Privilege) []catalog.Privilege {
	if ctx == nil || ctx.DefaultPrivilegeState == nil {
		return privs
	}
	defaults := keyPrivileges(ctx.DefaultPrivilegeState.EffectiveDefaults(ctx.CurrentUser, objType, schema))
	var out []catalog.Privilege
	for _, p := range privs {
		kind, grantable, cols := p.Key()
		if _, ok := defaults[keyedPrivilege{kind, grantable, cols}]; ok {
			continue
		}
		out = append(out, p)
	}
	return out
}

type keyedPrivilege struct {
	Privilege catalog.PrivilegeKind
	Grantable bool
	Columns   string
}

func keyPrivileges(privs []catalog.Privilege) map[keyedPrivilege]catalog.Privilege {
	out := map[keyedPrivilege]catalog.Privilege{}
	for _, p := range privs {
		kind, grantable, cols := p.Key()
		out[keyedPrivilege{kind, grantable, cols}] = p
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
