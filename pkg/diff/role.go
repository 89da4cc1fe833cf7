// SPDX-License-Identifier: Apache-2.0

package diff

import (
	"fmt"

	"github.com/lib/pq"
	"github.com/supabase/pgdiff/pkg/catalog"
	"github.com/supabase/pgdiff/pkg/change"
)

// DiffRoles implements spec.md §4.1.4: all role attributes are alterable
// via ALTER ROLE; membership (MemberOf) is diffed separately at
// ScopeMembership since GRANT/REVOKE role-membership is its own
// statement, independent of the role's own attributes.
func DiffRoles(ctx *catalog.DiffContext, main, branch map[catalog.StableID]*catalog.Role) []change.Change {
	var out []change.Change
	created, dropped, common := Partition(main, branch)

	for _, id := range created {
		r := branch[id]
		out = append(out, change.NewCreate(catalog.ObjectTypeRole, id, "create role "+r.Name, func() string { return fmt.Sprintf("CREATE ROLE %s %s", pq.QuoteIdentifier(r.Name), roleAttrsSQL(r)) }))
		out = append(out, membershipGrants(id, r.Name, nil, r.MemberOf)...)
	}
	for _, id := range dropped {
		r := main[id]
		out = append(out, change.NewDrop(catalog.ObjectTypeRole, id, "drop role "+r.Name, func() string { return "DROP ROLE " + pq.QuoteIdentifier(r.Name) }))
	}
	for _, id := range common {
		m, b := main[id], branch[id]
		if !m.Equal(b) {
			out = append(out, change.NewAlter(catalog.ObjectTypeRole, id, "alter role "+b.Name,
				func() string { return fmt.Sprintf("ALTER ROLE %s %s", pq.QuoteIdentifier(b.Name), roleAttrsSQL(b)) }, id))
		}
		out = append(out, diffMembership(id, b.Name, m.MemberOf, b.MemberOf)...)
	}
	return out
}

func roleAttrsSQL(r *catalog.Role) string {
	s := "NOLOGIN"
	if r.Login {
		s = "LOGIN"
	}
	if r.Superuser {
		s += " SUPERUSER"
	} else {
		s += " NOSUPERUSER"
	}
	if r.CreateDB {
		s += " CREATEDB"
	}
	if r.CreateRole {
		s += " CREATEROLE"
	}
	if r.Replication {
		s += " REPLICATION"
	}
	s += fmt.Sprintf(" CONNECTION LIMIT %d", r.ConnectionLimit)
	return s
}

func diffMembership(role catalog.StableID, name string, main, branch []string) []change.Change {
	mainSet := map[string]bool{}
	for _, m := range main {
		mainSet[m] = true
	}
	branchSet := map[string]bool{}
	for _, b := range branch {
		branchSet[b] = true
	}
	var toGrant, toRevoke []string
	for _, b := range branch {
		if !mainSet[b] {
			toGrant = append(toGrant, b)
		}
	}
	for _, m := range main {
		if !branchSet[m] {
			toRevoke = append(toRevoke, m)
		}
	}
	return membershipGrants(role, name, toRevoke, toGrant)
}

func membershipGrants(role catalog.StableID, name string, revoke, grant []string) []change.Change {
	var out []change.Change
	for _, g := range grant {
		grp := g
		id := catalog.StableID(fmt.Sprintf("membership:%s:%s", name, grp))
		out = append(out, change.NewMembershipGrant(role, id, "grant role membership", func() string {
			return fmt.Sprintf("GRANT %s TO %s", pq.QuoteIdentifier(grp), pq.QuoteIdentifier(name))
		}, role, catalog.RoleID(grp)))
	}
	for _, g := range revoke {
		grp := g
		id := catalog.StableID(fmt.Sprintf("membership:%s:%s", name, grp))
		out = append(out, change.NewMembershipRevoke(role, id, "revoke role membership", func() string {
			return fmt.Sprintf("REVOKE %s FROM %s", pq.QuoteIdentifier(grp), pq.QuoteIdentifier(name))
		}, role))
	}
	return out
}
