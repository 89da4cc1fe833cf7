// SPDX-License-Identifier: Apache-2.0

package change

import (
	"fmt"
	"strings"

	"github.com/supabase/pgdiff/pkg/catalog"
)

// AlterDefaultPrivilegeGrant adds an ALTER DEFAULT PRIVILEGES ... GRANT
// entry, per spec.md §4.1.4: default privileges are keyed by
// (grantor, scope, object_type, grantee) and diffed independently of any
// concrete object's own privilege sub-diff.
type AlterDefaultPrivilegeGrant struct {
	Header
	Grantor    string
	Scope      string // "" for global, else a schema name
	ObjectType string
	Grantee    string
	Privileges []catalog.Privilege
	Grantable  bool
}

func NewAlterDefaultPrivilegeGrant(id catalog.StableID, grantor, scope, objType, grantee string, privs []catalog.Privilege, grantable bool) *AlterDefaultPrivilegeGrant {
	reqs := []catalog.StableID{catalog.RoleID(grantor), catalog.RoleID(grantee)}
	if scope != "" {
		reqs = append(reqs, catalog.SchemaID(scope))
	}
	return &AlterDefaultPrivilegeGrant{
		Header:     NewCreateHeader(ScopeDefaultPrivilege, catalog.ObjectTypeDefaultACL, id, reqs...),
		Grantor:    grantor,
		Scope:      scope,
		ObjectType: objType,
		Grantee:    grantee,
		Privileges: privs,
		Grantable:  grantable,
	}
}

func (g *AlterDefaultPrivilegeGrant) Serialize() string {
	names := make([]string, len(g.Privileges))
	for i, p := range g.Privileges {
		names[i] = string(p.Privilege)
	}
	stmt := fmt.Sprintf("ALTER DEFAULT PRIVILEGES FOR ROLE %s%s GRANT %s ON %s TO %s",
		quoteIdent(g.Grantor), inSchemaClause(g.Scope), strings.Join(names, ", "), g.ObjectType, granteeSQL(g.Grantee))
	if g.Grantable {
		stmt += " WITH GRANT OPTION"
	}
	return stmt
}

// AlterDefaultPrivilegeRevoke removes a default-privilege entry.
type AlterDefaultPrivilegeRevoke struct {
	Header
	Grantor    string
	Scope      string
	ObjectType string
	Grantee    string
	Privileges []catalog.Privilege
}

func NewAlterDefaultPrivilegeRevoke(id catalog.StableID, grantor, scope, objType, grantee string, privs []catalog.Privilege) *AlterDefaultPrivilegeRevoke {
	return &AlterDefaultPrivilegeRevoke{
		Header:     NewDropHeader(ScopeDefaultPrivilege, catalog.ObjectTypeDefaultACL, id, catalog.RoleID(grantor)),
		Grantor:    grantor,
		Scope:      scope,
		ObjectType: objType,
		Grantee:    grantee,
		Privileges: privs,
	}
}

func (r *AlterDefaultPrivilegeRevoke) Serialize() string {
	names := make([]string, len(r.Privileges))
	for i, p := range r.Privileges {
		names[i] = string(p.Privilege)
	}
	return fmt.Sprintf("ALTER DEFAULT PRIVILEGES FOR ROLE %s%s REVOKE %s ON %s FROM %s",
		quoteIdent(r.Grantor), inSchemaClause(r.Scope), strings.Join(names, ", "), r.ObjectType, granteeSQL(r.Grantee))
}

func inSchemaClause(schema string) string {
	if schema == "" {
		return ""
	}
	return " IN SCHEMA " + quoteIdent(schema)
}

func quoteIdent(s string) string {
	return granteeSQL(s) // identical quoting rule; PUBLIC is never a grantor but the helper is safe either way
}
