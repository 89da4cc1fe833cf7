// SPDX-License-Identifier: Apache-2.0

package change_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/supabase/pgdiff/pkg/catalog"
	"github.com/supabase/pgdiff/pkg/change"
)

func TestNewCreateSatisfiesCreateInvariant(t *testing.T) {
	id := catalog.TableID("public", "widgets")
	c := change.NewCreate(catalog.ObjectTypeTable, id, "create table widgets",
		func() string { return "CREATE TABLE public.widgets ()" })

	assert.Equal(t, change.OpCreate, c.Operation())
	assert.Equal(t, change.ScopeObject, c.Scope())
	assert.Equal(t, catalog.ObjectTypeTable, c.ObjectType())
	assert.Equal(t, id, c.StableID())
	assert.Equal(t, []catalog.StableID{id}, c.Creates())
	assert.Empty(t, c.Drops())
	assert.Equal(t, "CREATE TABLE public.widgets ()", c.Serialize())
}

func TestNewDropSatisfiesDropInvariant(t *testing.T) {
	id := catalog.TableID("public", "widgets")
	c := change.NewDrop(catalog.ObjectTypeTable, id, "drop table widgets",
		func() string { return "DROP TABLE public.widgets" })

	assert.Equal(t, change.OpDrop, c.Operation())
	assert.Empty(t, c.Creates())
	assert.Equal(t, []catalog.StableID{id}, c.Drops())
}

func TestNewReplaceCreatesAndDropsTheSameID(t *testing.T) {
	id := catalog.EnumTypeID("public", "status")
	c := change.NewReplace(catalog.ObjectTypeEnumType, id, "replace enum status",
		func() string { return "CREATE TYPE public.status AS ENUM ('a', 'b')" })

	assert.Equal(t, change.OpReplace, c.Operation())
	assert.Equal(t, []catalog.StableID{id}, c.Creates())
	assert.Equal(t, []catalog.StableID{id}, c.Drops())
}

func TestNewAlterCarriesRequiresButNoCreatesOrDrops(t *testing.T) {
	id := catalog.TableID("public", "widgets")
	req := catalog.SchemaID("public")
	c := change.NewAlter(catalog.ObjectTypeTable, id, "alter table owner",
		func() string { return "ALTER TABLE public.widgets OWNER TO admin" }, req)

	assert.Equal(t, change.OpAlter, c.Operation())
	assert.Empty(t, c.Creates())
	assert.Empty(t, c.Drops())
	assert.Equal(t, []catalog.StableID{req}, c.Requires())
}

func TestMembershipGrantFilesUnderTheGainingRole(t *testing.T) {
	owner := catalog.RoleID("app_admin")
	member := catalog.RoleID("app_user")
	c := change.NewMembershipGrant(owner, member, "grant app_user to app_admin",
		func() string { return "GRANT app_user TO app_admin" })

	assert.Equal(t, change.ScopeMembership, c.Scope())
	assert.Equal(t, owner, c.OwnedBy())
	assert.Equal(t, change.OpCreate, c.Operation())
}

func TestMembershipRevokeFilesUnderTheLosingRole(t *testing.T) {
	owner := catalog.RoleID("app_admin")
	member := catalog.RoleID("app_user")
	c := change.NewMembershipRevoke(owner, member, "revoke app_user from app_admin",
		func() string { return "REVOKE app_user FROM app_admin" })

	assert.Equal(t, change.OpDrop, c.Operation())
	assert.Equal(t, owner, c.OwnedBy())
}

func TestObjectChangeOwnedByDefaultsToItsOwnID(t *testing.T) {
	id := catalog.TableID("public", "widgets")
	c := change.NewAlter(catalog.ObjectTypeTable, id, "alter table", func() string { return "" })

	assert.Equal(t, id, c.OwnedBy())
}
