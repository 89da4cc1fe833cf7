// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"testing"

	"github.com/supabase/pgdiff/pkg/catalog"
	"github.com/supabase/pgdiff/pkg/change"
)

func noop() string { return "" }

func emptyCatalogs() (*catalog.Catalog, *catalog.Catalog) {
	return catalog.New(1, "tester"), catalog.New(1, "tester")
}

func TestResolveOrdersProducerBeforeConsumer(t *testing.T) {
	schemaID := catalog.SchemaID("app")
	tableID := catalog.TableID("app", "orders")

	createTable := change.NewCreate(catalog.ObjectTypeTable, tableID, "create table", noop, schemaID)
	createSchema := change.NewCreate(catalog.ObjectTypeSchema, schemaID, "create schema", noop)

	main, branch := emptyCatalogs()
	branch.Depends = []catalog.DependencyEdge{
		{Dependent: tableID, Referenced: schemaID, DepType: catalog.DepTypeNormal},
	}

	// Deliberately pass the consumer first to confirm the resolver, not
	// input order, decides precedence here.
	out, err := Resolve([]change.Change{createTable, createSchema}, main, branch)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(out) != 2 || out[0].StableID() != schemaID || out[1].StableID() != tableID {
		t.Fatalf("expected schema before table, got %v", ids(out))
	}
}

func TestResolveReversesOrderForDrops(t *testing.T) {
	schemaID := catalog.SchemaID("app")
	tableID := catalog.TableID("app", "orders")

	dropTable := change.NewDrop(catalog.ObjectTypeTable, tableID, "drop table", noop, schemaID)
	dropSchema := change.NewDrop(catalog.ObjectTypeSchema, schemaID, "drop schema", noop)

	main, branch := emptyCatalogs()
	main.Depends = []catalog.DependencyEdge{
		{Dependent: tableID, Referenced: schemaID, DepType: catalog.DepTypeNormal},
	}

	out, err := Resolve([]change.Change{dropSchema, dropTable}, main, branch)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	// the dependent (table) must be dropped before the referenced schema
	if len(out) != 2 || out[0].StableID() != tableID || out[1].StableID() != schemaID {
		t.Fatalf("expected table drop before schema drop, got %v", ids(out))
	}
}

func TestResolveSequenceBeforeTable(t *testing.T) {
	seqID := catalog.SequenceID("app", "orders_id_seq")
	tableID := catalog.TableID("app", "orders")

	createTable := change.NewCreate(catalog.ObjectTypeTable, tableID, "create table", noop)
	createSeq := change.NewCreate(catalog.ObjectTypeSequence, seqID, "create sequence", noop)

	main, branch := emptyCatalogs()
	branch.Depends = []catalog.DependencyEdge{
		{Dependent: tableID, Referenced: seqID, DepType: catalog.DepTypeAuto},
	}

	out, err := Resolve([]change.Change{createTable, createSeq}, main, branch)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(out) != 2 || out[0].StableID() != seqID || out[1].StableID() != tableID {
		t.Fatalf("expected sequence before table, got %v", ids(out))
	}
}

func TestResolveSequenceBeforeTableWithInternalDepType(t *testing.T) {
	seqID := catalog.SequenceID("app", "orders_id_seq")
	tableID := catalog.TableID("app", "orders")

	createTable := change.NewCreate(catalog.ObjectTypeTable, tableID, "create table", noop)
	createSeq := change.NewCreate(catalog.ObjectTypeSequence, seqID, "create sequence", noop)

	main, branch := emptyCatalogs()
	branch.Depends = []catalog.DependencyEdge{
		{Dependent: tableID, Referenced: seqID, DepType: catalog.DepTypeInternal},
	}

	out, err := Resolve([]change.Change{createTable, createSeq}, main, branch)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(out) != 2 || out[0].StableID() != seqID || out[1].StableID() != tableID {
		t.Fatalf("expected sequence before table, got %v", ids(out))
	}
}

func TestResolveSameObjectDropBeforeCreate(t *testing.T) {
	tableID := catalog.TableID("app", "orders")
	drop := change.NewDrop(catalog.ObjectTypeTable, tableID, "drop table", noop)
	create := change.NewCreate(catalog.ObjectTypeTable, tableID, "create table", noop)

	main, branch := emptyCatalogs()
	out, err := Resolve([]change.Change{create, drop}, main, branch)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(out) != 2 || out[0].StableID() != tableID || out[1].Operation() != change.OpCreate {
		t.Fatalf("expected drop before create of same object, got %v", ids(out))
	}
}

func TestResolveIsStableAmongUnrelatedChanges(t *testing.T) {
	a := change.NewCreate(catalog.ObjectTypeTable, catalog.TableID("app", "a"), "a", noop)
	b := change.NewCreate(catalog.ObjectTypeTable, catalog.TableID("app", "b"), "b", noop)
	c := change.NewCreate(catalog.ObjectTypeTable, catalog.TableID("app", "c"), "c", noop)

	main, branch := emptyCatalogs()
	out, err := Resolve([]change.Change{c, a, b}, main, branch)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(out) != 3 || out[0] != change.Change(c) || out[1] != change.Change(a) || out[2] != change.Change(b) {
		t.Fatalf("expected input order preserved among unrelated changes, got %v", ids(out))
	}
}

func TestResolveDetectsCycle(t *testing.T) {
	// Three catalog dependency edges chained into a ring (x->y->z->x) so
	// that the pairwise producer-before-consumer rule, applied to every
	// pair independently, yields contradictory constraints overall: no
	// single node can be emitted first.
	xID := catalog.TableID("app", "x")
	yID := catalog.TableID("app", "y")
	zID := catalog.TableID("app", "z")
	cx := change.NewCreate(catalog.ObjectTypeTable, xID, "x", noop)
	cy := change.NewCreate(catalog.ObjectTypeTable, yID, "y", noop)
	cz := change.NewCreate(catalog.ObjectTypeTable, zID, "z", noop)

	main, branch := emptyCatalogs()
	branch.Depends = []catalog.DependencyEdge{
		{Dependent: xID, Referenced: yID, DepType: catalog.DepTypeNormal},
		{Dependent: yID, Referenced: zID, DepType: catalog.DepTypeNormal},
		{Dependent: zID, Referenced: xID, DepType: catalog.DepTypeNormal},
	}

	_, err := Resolve([]change.Change{cx, cy, cz}, main, branch)
	if err == nil {
		t.Fatalf("expected cycle error, got nil")
	}
	cycleErr, ok := err.(*CycleError)
	if !ok {
		t.Fatalf("expected *CycleError, got %T", err)
	}
	if len(cycleErr.Members) != 3 {
		t.Fatalf("expected all three members in cycle, got %v", cycleErr.Members)
	}
}

func TestBuildDependencyModelExcludesEdgesBeyondDepth(t *testing.T) {
	// a -> b -> c -> d: d sits three hops from the only seed, a, one hop
	// past the depth-2 closure BuildDependencyModel restricts itself to.
	aID := catalog.TableID("app", "a")
	bID := catalog.TableID("app", "b")
	cID := catalog.TableID("app", "c")
	dID := catalog.TableID("app", "d")

	main, branch := emptyCatalogs()
	branch.Depends = []catalog.DependencyEdge{
		{Dependent: aID, Referenced: bID, DepType: catalog.DepTypeNormal},
		{Dependent: bID, Referenced: cID, DepType: catalog.DepTypeNormal},
		{Dependent: cID, Referenced: dID, DepType: catalog.DepTypeNormal},
	}

	model := BuildDependencyModel([]catalog.StableID{aID}, main, branch)

	if !model.HasDependency(aID, bID, SourceBranch) {
		t.Fatalf("expected a->b to survive the depth-2 closure")
	}
	if !model.HasDependency(bID, cID, SourceBranch) {
		t.Fatalf("expected b->c to survive the depth-2 closure")
	}
	if model.HasDependency(cID, dID, SourceBranch) {
		t.Fatalf("expected c->d to be excluded: d is three hops from the only seed")
	}
}

func TestResolveIgnoresDependencyThreeHopsAway(t *testing.T) {
	// Only a and d have changes in the set; the chain connecting them
	// (a -> b -> c -> d) never produces a direct a-d edge, so no ordering
	// constraint should appear between the two changes regardless of how
	// the intermediate hops are wired.
	aID := catalog.TableID("app", "a")
	bID := catalog.TableID("app", "b")
	cID := catalog.TableID("app", "c")
	dID := catalog.TableID("app", "d")

	createA := change.NewCreate(catalog.ObjectTypeTable, aID, "create a", noop)
	createD := change.NewCreate(catalog.ObjectTypeTable, dID, "create d", noop)

	main, branch := emptyCatalogs()
	branch.Depends = []catalog.DependencyEdge{
		{Dependent: aID, Referenced: bID, DepType: catalog.DepTypeNormal},
		{Dependent: bID, Referenced: cID, DepType: catalog.DepTypeNormal},
		{Dependent: cID, Referenced: dID, DepType: catalog.DepTypeNormal},
	}

	out, err := Resolve([]change.Change{createD, createA}, main, branch)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	// No constraint between a and d means input order (d, then a) holds.
	if len(out) != 2 || out[0].StableID() != dID || out[1].StableID() != aID {
		t.Fatalf("expected input order preserved for unconstrained a/d pair, got %v", ids(out))
	}
}

func TestResolveEmptyInput(t *testing.T) {
	main, branch := emptyCatalogs()
	out, err := Resolve(nil, main, branch)
	if err != nil || out != nil {
		t.Fatalf("expected nil, nil for empty input, got %v, %v", out, err)
	}
}

func ids(changes []change.Change) []catalog.StableID {
	out := make([]catalog.StableID, len(changes))
	for i, c := range changes {
		out[i] = c.StableID()
	}
	return out
}
