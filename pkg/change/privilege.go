// SPDX-License-Identifier: Apache-2.0

package change

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/supabase/pgdiff/pkg/catalog"
)

// GrantKind distinguishes the SQL keyword a Grant object expands into.
type GrantKind string

const (
	GrantKindTable    GrantKind = "table"    // GRANT ... ON TABLE/VIEW/SEQUENCE ...
	GrantKindRoutine  GrantKind = "routine"  // GRANT EXECUTE ON FUNCTION/PROCEDURE/AGGREGATE ...
	GrantKindType     GrantKind = "type"     // GRANT USAGE ON TYPE/DOMAIN ...
	GrantKindSchema   GrantKind = "schema"
	GrantKindDatabase GrantKind = "database"
	GrantKindLanguage GrantKind = "language"
	GrantKindFDW      GrantKind = "fdw"
	GrantKindServer   GrantKind = "server"
)

// Grant grants one or more privileges to one grantee, per spec.md §4.1.2
// step 3 ("Grant further grouped by grantable"). All privileges in one
// Grant share the same grantable flag and column set.
type Grant struct {
	Header
	Kind       GrantKind
	Object     catalog.StableID
	ObjectSQL  string // schema-qualified, quoted SQL name of Object
	Grantee    string
	Privileges []catalog.Privilege
	Grantable  bool
	Columns    []string
}

func NewGrant(kind GrantKind, object catalog.StableID, objectSQL, grantee string, privs []catalog.Privilege, grantable bool, columns []string) *Grant {
	id := catalog.ACLID(object, grantee)
	reqs := []catalog.StableID{object, catalog.RoleID(grantee)}
	return &Grant{
		Header:     NewCreateHeader(ScopePrivilege, catalog.ObjectTypeACL, id, reqs...),
		Kind:       kind,
		Object:     object,
		ObjectSQL:  objectSQL,
		Grantee:    grantee,
		Privileges: privs,
		Grantable:  grantable,
		Columns:    columns,
	}
}

func (g *Grant) OwnedBy() catalog.StableID { return g.Object }

func (g *Grant) Serialize() string {
	names := make([]string, len(g.Privileges))
	for i, p := range g.Privileges {
		names[i] = string(p.Privilege)
	}
	privList := strings.Join(names, ", ")
	colClause := ""
	if len(g.Columns) > 0 {
		colClause = fmt.Sprintf(" (%s)", quoteIdentList(g.Columns))
	}
	stmt := fmt.Sprintf("GRANT %s%s ON %s %s TO %s", privList, colClause, grantObjectKeyword(g.Kind), g.ObjectSQL, granteeSQL(g.Grantee))
	if g.Grantable {
		stmt += " WITH GRANT OPTION"
	}
	return stmt
}

func grantObjectKeyword(k GrantKind) string {
	switch k {
	case GrantKindRoutine:
		return "FUNCTION"
	case GrantKindType:
		return "TYPE"
	case GrantKindSchema:
		return "SCHEMA"
	case GrantKindDatabase:
		return "DATABASE"
	case GrantKindLanguage:
		return "LANGUAGE"
	case GrantKindFDW:
		return "FOREIGN DATA WRAPPER"
	case GrantKindServer:
		return "FOREIGN SERVER"
	default:
		return "TABLE"
	}
}

func granteeSQL(grantee string) string {
	if grantee == "PUBLIC" {
		return "PUBLIC"
	}
	return pq.QuoteIdentifier(grantee)
}

func quoteIdentList(cols []string) string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = pq.QuoteIdentifier(c)
	}
	return strings.Join(out, ", ")
}

// Revoke fully revokes one or more privileges from a grantee.
type Revoke struct {
	Header
	Kind       GrantKind
	Object     catalog.StableID
	ObjectSQL  string
	Grantee    string
	Privileges []catalog.Privilege
	Columns    []string
}

func NewRevoke(kind GrantKind, object catalog.StableID, objectSQL, grantee string, privs []catalog.Privilege, columns []string) *Revoke {
	id := catalog.ACLID(object, grantee)
	return &Revoke{
		Header:     NewDropHeader(ScopePrivilege, catalog.ObjectTypeACL, id, object),
		Kind:       kind,
		Object:     object,
		ObjectSQL:  objectSQL,
		Grantee:    grantee,
		Privileges: privs,
		Columns:    columns,
	}
}

func (r *Revoke) OwnedBy() catalog.StableID { return r.Object }

func (r *Revoke) Serialize() string {
	names := make([]string, len(r.Privileges))
	for i, p := range r.Privileges {
		names[i] = string(p.Privilege)
	}
	colClause := ""
	if len(r.Columns) > 0 {
		colClause = fmt.Sprintf(" (%s)", quoteIdentList(r.Columns))
	}
	return fmt.Sprintf("REVOKE %s%s ON %s %s FROM %s", strings.Join(names, ", "), colClause, grantObjectKeyword(r.Kind), r.ObjectSQL, granteeSQL(r.Grantee))
}

// RevokeGrantOption downgrades a grant from WITH GRANT OPTION back to a
// plain grant, per spec.md §4.1.2 step 2's "downgrade" exception: the base
// privilege remains, only the grant option is revoked.
type RevokeGrantOption struct {
	Header
	Kind       GrantKind
	Object     catalog.StableID
	ObjectSQL  string
	Grantee    string
	Privileges []catalog.Privilege
	Columns    []string
}

func NewRevokeGrantOption(kind GrantKind, object catalog.StableID, objectSQL, grantee string, privs []catalog.Privilege, columns []string) *RevokeGrantOption {
	id := catalog.ACLID(object, grantee)
	return &RevokeGrantOption{
		Header:     NewAlterHeader(ScopePrivilege, catalog.ObjectTypeACL, id, object),
		Kind:       kind,
		Object:     object,
		ObjectSQL:  objectSQL,
		Grantee:    grantee,
		Privileges: privs,
		Columns:    columns,
	}
}

func (r *RevokeGrantOption) OwnedBy() catalog.StableID { return r.Object }

func (r *RevokeGrantOption) Serialize() string {
	names := make([]string, len(r.Privileges))
	for i, p := range r.Privileges {
		names[i] = string(p.Privilege)
	}
	colClause := ""
	if len(r.Columns) > 0 {
		colClause = fmt.Sprintf(" (%s)", quoteIdentList(r.Columns))
	}
	return fmt.Sprintf("REVOKE GRANT OPTION FOR %s%s ON %s %s FROM %s", strings.Join(names, ", "), colClause, grantObjectKeyword(r.Kind), r.ObjectSQL, granteeSQL(r.Grantee))
}
