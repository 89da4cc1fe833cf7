// SPDX-License-Identifier: Apache-2.0

package export

import (
	"bytes"
	"io"
	"testing"

	"github.com/supabase/pgdiff/pkg/catalog"
	"github.com/supabase/pgdiff/pkg/change"
)

func noopChange(ot catalog.ObjectType, id catalog.StableID, sql string) change.Change {
	return change.NewCreate(ot, id, "test", func() string { return sql })
}

func TestParseTargetSchemaQualified(t *testing.T) {
	kind, schema, name := parseTarget(catalog.TableID("public", "users"))
	if kind != "table" || schema != "public" || name != "users" {
		t.Fatalf("got kind=%q schema=%q name=%q", kind, schema, name)
	}
}

func TestParseTargetClusterLevel(t *testing.T) {
	kind, schema, name := parseTarget(catalog.RoleID("app_user"))
	if kind != "role" || schema != "" || name != "app_user" {
		t.Fatalf("got kind=%q schema=%q name=%q", kind, schema, name)
	}
}

func TestParseTargetFunctionSignature(t *testing.T) {
	kind, schema, name := parseTarget(catalog.FunctionID("public", "fn", "integer,text"))
	if kind != "function" || schema != "public" {
		t.Fatalf("got kind=%q schema=%q", kind, schema)
	}
	if name != "fn(integer,text)" {
		t.Fatalf("got name=%q", name)
	}
}

func TestTargetFallsBackToStableIDForUnownedChange(t *testing.T) {
	id := catalog.TableID("public", "users")
	c := noopChange(catalog.ObjectTypeTable, id, "CREATE TABLE public.users ()")
	if got := target(c); got != id {
		t.Fatalf("got %q, want %q", got, id)
	}
}

func TestTargetUsesOwnedByForSubObjectChange(t *testing.T) {
	table := catalog.TableID("public", "users")
	col := &catalog.Column{Name: "id"}
	c := change.NewAddColumn(table, col, table)
	if got := target(c); got != table {
		t.Fatalf("got %q, want owner %q", got, table)
	}
}

func TestDetailedMapperFiltersForeignKeysIntoOwnCategory(t *testing.T) {
	table := catalog.TableID("public", "orders")
	fk := &catalog.Constraint{Name: "orders_customer_fk", Type: catalog.ConstraintForeignKey}
	c := change.NewAddConstraint(table, fk, false, table)

	loc := DetailedMapper(c)
	if loc.Category != CategoryForeignKeys {
		t.Fatalf("got category %q, want %q", loc.Category, CategoryForeignKeys)
	}
	if loc.Path != "foreign_keys/orders.sql" {
		t.Fatalf("got path %q", loc.Path)
	}
}

func TestDetailedMapperFiltersTriggersIntoPolicies(t *testing.T) {
	table := catalog.TableID("public", "orders")
	id := catalog.TriggerID("public", "orders", "audit")
	c := change.NewCreate(catalog.ObjectTypeTrigger, id, "create trigger", func() string { return "" }, table)

	loc := DetailedMapper(c)
	if loc.Category != CategoryPolicies {
		t.Fatalf("got category %q", loc.Category)
	}
	if loc.Path != "policies/orders.sql" {
		t.Fatalf("got path %q", loc.Path)
	}
}

func TestDetailedMapperFilesClusterLevelObjectsUnderCluster(t *testing.T) {
	id := catalog.RoleID("app_user")
	c := noopChange(catalog.ObjectTypeRole, id, "CREATE ROLE app_user")

	loc := DetailedMapper(c)
	if loc.Category != CategoryCluster {
		t.Fatalf("got category %q", loc.Category)
	}
	if loc.Path != "cluster/app_user.sql" {
		t.Fatalf("got path %q", loc.Path)
	}
}

func TestDetailedMapperFilesOrdinaryObjectUnderSchemaCategory(t *testing.T) {
	id := catalog.TableID("public", "users")
	c := noopChange(catalog.ObjectTypeTable, id, "CREATE TABLE public.users ()")

	loc := DetailedMapper(c)
	if loc.Category != CategoryTables {
		t.Fatalf("got category %q", loc.Category)
	}
	if loc.Path != "schemas/public/tables/users.sql" {
		t.Fatalf("got path %q", loc.Path)
	}
}

func TestSimpleMapperMergesTablesAndFunctions(t *testing.T) {
	tableLoc := SimpleMapper(noopChange(catalog.ObjectTypeTable, catalog.TableID("public", "users"), ""))
	fnLoc := SimpleMapper(noopChange(catalog.ObjectTypeFunction, catalog.FunctionID("public", "fn", ""), ""))
	if tableLoc.Path != fnLoc.Path {
		t.Fatalf("expected tables and functions to merge, got %q vs %q", tableLoc.Path, fnLoc.Path)
	}
	if tableLoc.Path != "tables_and_functions.sql" {
		t.Fatalf("got %q", tableLoc.Path)
	}
}

func TestFileGroupEffectiveIndexUsesMaxIndexForTerminalCategories(t *testing.T) {
	g := newFileGroup("foreign_keys/orders.sql", CategoryForeignKeys)
	g.add(0, noopChange(catalog.ObjectTypeConstraint, "constraint:x", ""))
	g.add(5, noopChange(catalog.ObjectTypeConstraint, "constraint:y", ""))
	if got := g.effectiveIndex(); got != 5 {
		t.Fatalf("got %d, want 5", got)
	}
}

func TestFileGroupEffectiveIndexUsesCreateObjectMaxIndexForTables(t *testing.T) {
	g := newFileGroup("schemas/public/tables/users.sql", CategoryTables)
	create := change.NewCreate(catalog.ObjectTypeTable, catalog.TableID("public", "users"), "create", func() string { return "" })
	alter := change.NewAlter(catalog.ObjectTypeTable, catalog.TableID("public", "users"), "alter", func() string { return "" })
	g.add(1, alter)
	g.add(3, create)
	g.add(4, alter)
	if got := g.effectiveIndex(); got != 3 {
		t.Fatalf("got %d, want 3 (create's index, not the later alter's)", got)
	}
}

func TestFileGroupEffectiveIndexUsesMinIndexOtherwise(t *testing.T) {
	g := newFileGroup("schemas/public/sequences/seq.sql", CategorySequences)
	g.add(4, noopChange(catalog.ObjectTypeSequence, "sequence:x", ""))
	g.add(1, noopChange(catalog.ObjectTypeSequence, "sequence:y", ""))
	if got := g.effectiveIndex(); got != 1 {
		t.Fatalf("got %d, want 1", got)
	}
}

func TestSortGroupsOrdersByIndexThenPriorityThenPath(t *testing.T) {
	a := newFileGroup("schemas/public/tables/b.sql", CategoryTables)
	a.add(0, noopChange(catalog.ObjectTypeTable, "table:x", ""))
	b := newFileGroup("schemas/public/sequences/seq.sql", CategorySequences)
	b.add(0, noopChange(catalog.ObjectTypeSequence, "sequence:y", ""))
	c := newFileGroup("schemas/public/tables/a.sql", CategoryTables)
	c.add(0, noopChange(catalog.ObjectTypeTable, "table:z", ""))

	groups := []*FileGroup{a, b, c}
	sortGroups(groups)

	if groups[0] != b {
		t.Fatalf("expected sequences (lower category priority) first, got path %q", groups[0].Path)
	}
	if groups[1].Path != "schemas/public/tables/a.sql" || groups[2].Path != "schemas/public/tables/b.sql" {
		t.Fatalf("expected tables tie-broken by path, got %q then %q", groups[1].Path, groups[2].Path)
	}
}

func TestFilterDeclarativeDropsDropsExceptDefaultPrivileges(t *testing.T) {
	table := catalog.TableID("public", "users")
	dropTable := change.NewDrop(catalog.ObjectTypeTable, table, "drop", func() string { return "" })
	createTable := change.NewCreate(catalog.ObjectTypeTable, table, "create", func() string { return "" })
	defID := catalog.DefaultACLID("owner_role", "table", "public", "PUBLIC")
	revokeDefault := change.NewAlterDefaultPrivilegeRevoke(defID, "owner_role", "public", "table", "PUBLIC", nil)

	out := FilterDeclarative([]change.Change{dropTable, createTable, revokeDefault})

	if len(out) != 2 {
		t.Fatalf("got %d changes, want 2: %+v", len(out), out)
	}
	for _, c := range out {
		if c == dropTable {
			t.Fatalf("plain DROP should have been filtered out")
		}
	}
}

func TestGroupingFlattensSchema(t *testing.T) {
	g := &Grouping{FlatSchemas: map[string]bool{"public": true}}
	loc := Location{Path: "schemas/public/tables/users.sql", Category: CategoryTables}
	out := g.Apply(loc, catalog.TableID("public", "users"), "public", "users")
	if out.Path != "schemas/public/tables.sql" {
		t.Fatalf("got %q", out.Path)
	}
}

func TestGroupingMergesByPrefixRule(t *testing.T) {
	g := &Grouping{Rules: []GroupRule{{Prefix: "project_", Group: "project"}}}
	loc := Location{Path: "schemas/public/tables/project_members.sql", Category: CategoryTables}
	out := g.Apply(loc, catalog.TableID("public", "project_members"), "public", "project_members")
	if out.Path != "schemas/public/tables/project.sql" {
		t.Fatalf("got %q", out.Path)
	}
}

func TestGroupingFollowsPartitionParent(t *testing.T) {
	child := catalog.TableID("public", "events_2024")
	g := &Grouping{
		Rules: []GroupRule{{Prefix: "events", Group: "events"}},
		PartitionOf: func(id catalog.StableID) (string, bool) {
			if id == child {
				return "events", true
			}
			return "", false
		},
	}
	loc := Location{Path: "schemas/public/tables/events_2024.sql", Category: CategoryTables}
	out := g.Apply(loc, child, "public", "events_2024")
	if out.Path != "schemas/public/tables/events.sql" {
		t.Fatalf("got %q", out.Path)
	}
}

func TestGroupChangesByFileOrdersGroupsByResolverPosition(t *testing.T) {
	schema := catalog.SchemaID("app")
	table := catalog.TableID("app", "widgets")
	createSchema := change.NewCreate(catalog.ObjectTypeSchema, schema, "create schema", func() string { return "CREATE SCHEMA app" })
	createTable := change.NewCreate(catalog.ObjectTypeTable, table, "create table", func() string { return "CREATE TABLE app.widgets ()" })

	groups := GroupChangesByFile([]change.Change{createSchema, createTable}, DetailedMapper, nil)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].Category != CategorySchema || groups[1].Category != CategoryTables {
		t.Fatalf("expected schema group before table group, got %q then %q", groups[0].Category, groups[1].Category)
	}
}

func TestGroupChangesByFileSetsRoutinePreamble(t *testing.T) {
	id := catalog.ProcedureID("public", "do_thing", "")
	create := change.NewCreate(catalog.ObjectTypeProcedure, id, "create procedure", func() string { return "CREATE PROCEDURE public.do_thing()" })

	groups := GroupChangesByFile([]change.Change{create}, DetailedMapper, nil)
	if len(groups) != 1 {
		t.Fatalf("got %d groups", len(groups))
	}
	if groups[0].Metadata["preamble"] != "SET check_function_bodies = false;" {
		t.Fatalf("got metadata %+v", groups[0].Metadata)
	}
}

func TestRenderEmitsPreambleThenStatements(t *testing.T) {
	g := newFileGroup("schemas/public/procedures/do_thing.sql", CategoryProcedures)
	g.Metadata["preamble"] = "SET check_function_bodies = false;"
	g.add(0, noopChange(catalog.ObjectTypeProcedure, "procedure:x", "CREATE PROCEDURE public.do_thing()"))

	out := Render(g, nil)
	want := "SET check_function_bodies = false;\n\nCREATE PROCEDURE public.do_thing();\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestRenderAppliesSerializerOverride(t *testing.T) {
	g := newFileGroup("schemas/public/tables/users.sql", CategoryTables)
	g.add(0, noopChange(catalog.ObjectTypeTable, "table:x", "CREATE TABLE public.users ()"))

	override := func(c change.Change) (string, bool) { return "-- overridden", true }
	out := Render(g, override)
	if out != "-- overridden;\n" {
		t.Fatalf("got %q", out)
	}
}

type closeTrackingBuffer struct {
	bytes.Buffer
	closed bool
}

func (b *closeTrackingBuffer) Close() error {
	b.closed = true
	return nil
}

func TestWriteAllOpensAndClosesEachGroupPath(t *testing.T) {
	g1 := newFileGroup("a.sql", CategoryCluster)
	g1.add(0, noopChange(catalog.ObjectTypeRole, "role:x", "CREATE ROLE x"))
	g2 := newFileGroup("b.sql", CategoryCluster)
	g2.add(0, noopChange(catalog.ObjectTypeRole, "role:y", "CREATE ROLE y"))

	written := map[string]string{}
	bufs := map[string]*closeTrackingBuffer{}
	open := func(path string) (io.WriteCloser, error) {
		buf := &closeTrackingBuffer{}
		bufs[path] = buf
		return buf, nil
	}

	if err := WriteAll([]*FileGroup{g1, g2}, nil, open); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	for path, buf := range bufs {
		written[path] = buf.String()
		if !buf.closed {
			t.Fatalf("%s: writer not closed", path)
		}
	}
	if written["a.sql"] != "CREATE ROLE x;\n" || written["b.sql"] != "CREATE ROLE y;\n" {
		t.Fatalf("got %+v", written)
	}
}
