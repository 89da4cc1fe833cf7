// SPDX-License-Identifier: Apache-2.0

// Package resolve implements the dependency resolver (spec.md §4.3):
// given an unordered change-set plus the main and branch catalogs it was
// computed from, produce a total order that respects catalog-declared
// object dependencies, per-operation-kind ordering rules, and same-object
// ordering rules, detecting cycles rather than emitting a partial plan.
package resolve

import "github.com/supabase/pgdiff/pkg/catalog"

// Source selects which catalog's dependency edges a DependencyModel
// query consults — main (the "old" graph, relevant to DROPs) or branch
// (the "new" graph, relevant to CREATE/ALTER/REPLACE), per spec.md
// §4.3's "source=main for DROPs, source=branch for CREATE/ALTER/REPLACE"
// rule.
type Source int

const (
	SourceMain Source = iota
	SourceBranch
)

// DependencyModel answers hasDependency(dependent, referenced, source)
// queries over the relevant-objects closure of an input changeset, per
// spec.md §4.3.
type DependencyModel struct {
	main   map[catalog.StableID]map[catalog.StableID]bool
	branch map[catalog.StableID]map[catalog.StableID]bool
	// branchAuto records edges PostgreSQL's own dependency tracking
	// created rather than a branch-declared reference (DepTypeAuto and
	// DepTypeInternal), keyed by (dependent, referenced) on the branch
	// side — consulted by the sequence-before-table special case.
	branchAuto map[catalog.StableID]map[catalog.StableID]bool
}

// BuildDependencyModel restricts each catalog's depends edges to the
// two-hop relevant-objects closure of seeds (the union of every
// StableID any change in the input set creates, drops, or requires), per
// spec.md §4.3's depth-bound rule (design value: 2).
func BuildDependencyModel(seeds []catalog.StableID, mainCatalog, branchCatalog *catalog.Catalog) *DependencyModel {
	const depth = 2
	mainRelevant := mainCatalog.RelevantObjects(seeds, depth)
	branchRelevant := branchCatalog.RelevantObjects(seeds, depth)

	m := &DependencyModel{
		main:       map[catalog.StableID]map[catalog.StableID]bool{},
		branch:     map[catalog.StableID]map[catalog.StableID]bool{},
		branchAuto: map[catalog.StableID]map[catalog.StableID]bool{},
	}
	for _, e := range mainCatalog.Depends {
		if e.Dependent.IsUnknown() || e.Referenced.IsUnknown() {
			continue
		}
		if !mainRelevant[e.Dependent] || !mainRelevant[e.Referenced] {
			continue
		}
		addEdge(m.main, e.Dependent, e.Referenced)
	}
	for _, e := range branchCatalog.Depends {
		if e.Dependent.IsUnknown() || e.Referenced.IsUnknown() {
			continue
		}
		if !branchRelevant[e.Dependent] || !branchRelevant[e.Referenced] {
			continue
		}
		addEdge(m.branch, e.Dependent, e.Referenced)
		if e.DepType == catalog.DepTypeAuto || e.DepType == catalog.DepTypeInternal {
			addEdge(m.branchAuto, e.Dependent, e.Referenced)
		}
	}
	return m
}

func addEdge(m map[catalog.StableID]map[catalog.StableID]bool, dependent, referenced catalog.StableID) {
	set, ok := m[dependent]
	if !ok {
		set = map[catalog.StableID]bool{}
		m[dependent] = set
	}
	set[referenced] = true
}

// HasDependency reports whether dependent requires referenced to exist,
// according to source's catalog.
func (m *DependencyModel) HasDependency(dependent, referenced catalog.StableID, source Source) bool {
	tbl := m.main
	if source == SourceBranch {
		tbl = m.branch
	}
	return tbl[dependent][referenced]
}

// HasAutoDependency reports whether the branch catalog recorded an
// "auto" or "internal" (DepTypeAuto or DepTypeInternal) edge from
// dependent to referenced — the signature
// of identity-column/serial-style sequence wiring the sequence-before-
// table special case looks for.
func (m *DependencyModel) HasAutoDependency(dependent, referenced catalog.StableID) bool {
	return m.branchAuto[dependent][referenced]
}
