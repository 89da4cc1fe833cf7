// SPDX-License-Identifier: Apache-2.0

package catalog_test

import (
	"testing"

	"github.com/oapi-codegen/nullable"
	"github.com/stretchr/testify/assert"

	"github.com/supabase/pgdiff/pkg/catalog"
)

func TestNewAllocatesEveryObjectKindMap(t *testing.T) {
	cat := catalog.New(160000, "postgres")

	assert.Equal(t, 160000, cat.Version)
	assert.Equal(t, "postgres", cat.CurrentUser)
	assert.NotNil(t, cat.Schemas)
	assert.NotNil(t, cat.Tables)
	assert.NotNil(t, cat.ForeignTables)
	assert.NotNil(t, cat.Views)
	assert.NotNil(t, cat.MaterializedViews)
	assert.NotNil(t, cat.Sequences)
	assert.NotNil(t, cat.CompositeTypes)
	assert.NotNil(t, cat.EnumTypes)
	assert.NotNil(t, cat.RangeTypes)
	assert.NotNil(t, cat.Domains)
	assert.NotNil(t, cat.Functions)
	assert.NotNil(t, cat.Procedures)
	assert.NotNil(t, cat.Aggregates)
	assert.NotNil(t, cat.Indexes)
	assert.NotNil(t, cat.Triggers)
	assert.NotNil(t, cat.Rules)
	assert.NotNil(t, cat.Policies)
	assert.NotNil(t, cat.Roles)
	assert.NotNil(t, cat.Extensions)
	assert.NotNil(t, cat.Publications)
	assert.NotNil(t, cat.Subscriptions)
	assert.NotNil(t, cat.ForeignDataWrappers)
	assert.NotNil(t, cat.ForeignServers)
	assert.NotNil(t, cat.UserMappings)
	assert.NotNil(t, cat.Languages)
	assert.NotNil(t, cat.EventTriggers)
	assert.NotNil(t, cat.Collations)
	assert.NotNil(t, cat.DefaultPrivileges)
	assert.Empty(t, cat.Schemas)
	assert.Empty(t, cat.Depends)
}

func TestContextCarriesOwnRolesAsMainRoles(t *testing.T) {
	cat := catalog.New(160000, "postgres")
	cat.Roles[catalog.RoleID("app_user")] = &catalog.Role{StableID: catalog.RoleID("app_user"), Name: "app_user"}

	ctx := cat.Context()

	assert.Equal(t, cat.Version, ctx.Version)
	assert.Equal(t, cat.CurrentUser, ctx.CurrentUser)
	assert.Same(t, cat.DefaultPrivileges, ctx.DefaultPrivilegeState)
	assert.Len(t, ctx.MainRoles, 1)
}

func TestStableIDConstructorsAreColonDelimitedAndSchemaQualified(t *testing.T) {
	tests := []struct {
		name string
		id   catalog.StableID
		want string
	}{
		{"schema", catalog.SchemaID("public"), "schema:public"},
		{"table", catalog.TableID("public", "widgets"), "table:public.widgets"},
		{"view", catalog.ViewID("public", "widget_totals"), "view:public.widget_totals"},
		{"sequence", catalog.SequenceID("public", "widgets_id_seq"), "sequence:public.widgets_id_seq"},
		{"index", catalog.IndexID("public", "widgets", "widgets_pkey"), "index:public.widgets.widgets_pkey"},
		{"role", catalog.RoleID("app_user"), "role:app_user"},
		{"function", catalog.FunctionID("public", "fn", "integer,text"), "function:public.fn(integer,text)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(tt.id))
		})
	}
}

func TestStableIDIsUnknown(t *testing.T) {
	assert.True(t, catalog.StableID("unknown.42").IsUnknown())
	assert.False(t, catalog.TableID("public", "widgets").IsUnknown())
}

func TestColumnEqualComparesDataFieldsNotPosition(t *testing.T) {
	a := &catalog.Column{Name: "id", Position: 1, DataTypeStr: "integer", NotNull: true}
	b := &catalog.Column{Name: "id", Position: 7, DataTypeStr: "integer", NotNull: true}
	assert.True(t, a.Equal(b), "Position is not identity-or-data for Equal")

	c := &catalog.Column{Name: "id", Position: 1, DataTypeStr: "bigint", NotNull: true}
	assert.False(t, a.Equal(c))
}

func TestColumnEqualComparesNullableDefault(t *testing.T) {
	withDefault := &catalog.Column{Name: "status", Default: nullable.NewNullableWithValue("'active'")}
	withoutDefault := &catalog.Column{Name: "status"}
	sameDefault := &catalog.Column{Name: "status", Default: nullable.NewNullableWithValue("'active'")}
	explicitNull := &catalog.Column{Name: "status", Default: nullable.NewNullNullable[string]()}

	assert.False(t, withDefault.Equal(withoutDefault))
	assert.True(t, withDefault.Equal(sameDefault))
	assert.False(t, withoutDefault.Equal(explicitNull), "unspecified and explicit NULL are distinct states")
}

func TestConstraintEqual(t *testing.T) {
	a := &catalog.Constraint{Name: "widgets_pkey", Type: catalog.ConstraintPrimaryKey, Validated: true, DefinitionSQL: "PRIMARY KEY (id)"}
	b := &catalog.Constraint{Name: "widgets_pkey", Type: catalog.ConstraintPrimaryKey, Validated: true, DefinitionSQL: "PRIMARY KEY (id)"}
	assert.True(t, a.Equal(b))

	c := &catalog.Constraint{Name: "widgets_pkey", Type: catalog.ConstraintPrimaryKey, Validated: false, DefinitionSQL: "PRIMARY KEY (id)"}
	assert.False(t, a.Equal(c))
}

func TestTableEqualComparesColumnsConstraintsAndStorageParams(t *testing.T) {
	base := func() *catalog.Table {
		return &catalog.Table{
			Columns: []*catalog.Column{{Name: "id", DataTypeStr: "integer"}},
			Constraints: map[string]*catalog.Constraint{
				"widgets_pkey": {Name: "widgets_pkey", Type: catalog.ConstraintPrimaryKey, DefinitionSQL: "PRIMARY KEY (id)"},
			},
			StorageParams: map[string]string{"fillfactor": "90"},
		}
	}
	a, b := base(), base()
	assert.True(t, a.Equal(b))

	b.StorageParams["fillfactor"] = "80"
	assert.False(t, a.Equal(b))
}

func TestRoleEqualIgnoresMemberOfOrdering(t *testing.T) {
	a := &catalog.Role{Name: "app_admin", Superuser: true, MemberOf: []string{"app_user", "app_readonly"}}
	b := &catalog.Role{Name: "app_admin", Superuser: true, MemberOf: []string{"app_readonly", "app_user"}}
	assert.True(t, a.Equal(b))

	c := &catalog.Role{Name: "app_admin", Superuser: false, MemberOf: []string{"app_user", "app_readonly"}}
	assert.False(t, a.Equal(c))
}

func TestRelevantObjectsFollowsDependenciesInBothDirections(t *testing.T) {
	cat := catalog.New(160000, "postgres")
	table := catalog.TableID("public", "widgets")
	view := catalog.ViewID("public", "widget_totals")
	seq := catalog.SequenceID("public", "widgets_id_seq")
	unrelated := catalog.TableID("public", "unrelated")

	cat.Depends = []catalog.DependencyEdge{
		{Dependent: view, Referenced: table, DepType: catalog.DepTypeNormal},
		{Dependent: table, Referenced: seq, DepType: catalog.DepTypeAuto},
	}

	relevant := cat.RelevantObjects([]catalog.StableID{table}, 1)

	assert.True(t, relevant[table])
	assert.True(t, relevant[view], "backward edge (view depends on table) reachable in one hop")
	assert.True(t, relevant[seq], "forward edge (table depends on sequence) reachable in one hop")
	assert.False(t, relevant[unrelated])
}

func TestRelevantObjectsSkipsUnknownEndpoints(t *testing.T) {
	cat := catalog.New(160000, "postgres")
	table := catalog.TableID("public", "widgets")
	cat.Depends = []catalog.DependencyEdge{
		{Dependent: table, Referenced: catalog.StableID("unknown.1"), DepType: catalog.DepTypeNormal},
	}

	relevant := cat.RelevantObjects([]catalog.StableID{table}, 2)

	assert.Len(t, relevant, 1)
	assert.True(t, relevant[table])
}
