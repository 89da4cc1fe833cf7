// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"github.com/supabase/pgdiff/pkg/catalog"
	"github.com/supabase/pgdiff/pkg/change"
)

// Resolve orders an unordered change-set into a sequence safe to execute
// top to bottom, per spec.md §4.3. It never mutates or drops a change —
// on success the returned slice is a permutation of changes; on failure
// (a cycle in the generated ordering constraints) it returns a
// *CycleError and no changes, since a partial plan is unsafe to execute.
func Resolve(changes []change.Change, mainCatalog, branchCatalog *catalog.Catalog) ([]change.Change, error) {
	if len(changes) == 0 {
		return nil, nil
	}

	model := BuildDependencyModel(seeds(changes), mainCatalog, branchCatalog)

	n := len(changes)
	// before[i] holds the indices that must be emitted after i.
	before := make([][]int, n)
	inDegree := make([]int, n)
	addConstraint := func(beforeIdx, afterIdx int) {
		before[beforeIdx] = append(before[beforeIdx], afterIdx)
		inDegree[afterIdx]++
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			switch decide(changes[i], changes[j], model, branchCatalog) {
			case edgeBeforeAfter:
				addConstraint(i, j)
			case edgeAfterBefore:
				addConstraint(j, i)
			}
		}
	}

	return kahnStable(changes, before, inDegree)
}

// seeds collects every StableID any change in the set creates, drops, or
// requires — the frontier BuildDependencyModel's relevant-objects closure
// expands from.
func seeds(changes []change.Change) []catalog.StableID {
	seen := map[catalog.StableID]bool{}
	var out []catalog.StableID
	add := func(id catalog.StableID) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
	}
	for _, c := range changes {
		add(c.StableID())
		for _, id := range c.Creates() {
			add(id)
		}
		for _, id := range c.Drops() {
			add(id)
		}
		for _, id := range c.Requires() {
			add(id)
		}
	}
	return out
}

type edge int

const (
	edgeNone edge = iota
	edgeBeforeAfter
	edgeAfterBefore
)

// decide applies spec.md §4.3's three constraint-generation layers, in
// priority order, to the unordered pair (x, y): the sequence-before-table
// special case, the operation-kind rules, and the same-object rule. The
// first layer that yields a verdict wins; layers that don't apply to this
// pair are skipped rather than consulted.
func decide(x, y change.Change, model *DependencyModel, branch *catalog.Catalog) edge {
	if e := sequenceBeforeTable(x, y, model); e != edgeNone {
		return e
	}

	xProducer, yProducer := isProducer(x), isProducer(y)
	xDrop, yDrop := x.Operation() == change.OpDrop, y.Operation() == change.OpDrop

	// Producer-before-consumer: if the dependent's producer is y and the
	// referenced object's producer is x, x must run first.
	if xProducer && yProducer {
		if model.HasDependency(y.StableID(), x.StableID(), SourceBranch) {
			return edgeBeforeAfter
		}
		if model.HasDependency(x.StableID(), y.StableID(), SourceBranch) {
			return edgeAfterBefore
		}
	}

	// Reverse order for drops: the dependent must be dropped before the
	// object it depends on.
	if xDrop && yDrop {
		if model.HasDependency(x.StableID(), y.StableID(), SourceMain) {
			return edgeBeforeAfter
		}
		if model.HasDependency(y.StableID(), x.StableID(), SourceMain) {
			return edgeAfterBefore
		}
	}

	// Mixed drop/create of distinct, dependency-related objects: the drop
	// of the old object goes before the create of the new one whenever
	// they share a referenced ancestor (e.g. a column drop-add pair being
	// replaced under a common table, or a drop of an object a new object
	// of the same name's dependents also reference).
	if x.StableID() != y.StableID() {
		if xDrop && yProducer && sharesReferencedAncestor(x, y, model) {
			return edgeBeforeAfter
		}
		if yDrop && xProducer && sharesReferencedAncestor(x, y, model) {
			return edgeAfterBefore
		}
	}

	// Same-object operations: a drop always precedes a create/alter/
	// replace of the same StableID (this covers a table being dropped
	// and later recreated with an incompatible shape within one plan).
	if x.StableID() != "" && x.StableID() == y.StableID() {
		if xDrop && !yDrop {
			return edgeBeforeAfter
		}
		if yDrop && !xDrop {
			return edgeAfterBefore
		}
	}

	return edgeNone
}

func isProducer(c change.Change) bool {
	switch c.Operation() {
	case change.OpCreate, change.OpAlter, change.OpReplace:
		return true
	default:
		return false
	}
}

// sequenceBeforeTable implements spec.md §4.3's special case: a CREATE
// SEQUENCE the branch catalog wired into a table via an auto (identity/
// serial) dependency must run before that table's CREATE, overriding
// whatever the raw dependency direction would otherwise say.
func sequenceBeforeTable(x, y change.Change, model *DependencyModel) edge {
	if isCreateOf(x, catalog.ObjectTypeSequence) && isCreateOf(y, catalog.ObjectTypeTable) {
		if model.HasAutoDependency(y.StableID(), x.StableID()) {
			return edgeBeforeAfter
		}
	}
	if isCreateOf(y, catalog.ObjectTypeSequence) && isCreateOf(x, catalog.ObjectTypeTable) {
		if model.HasAutoDependency(x.StableID(), y.StableID()) {
			return edgeAfterBefore
		}
	}
	return edgeNone
}

func isCreateOf(c change.Change, ot catalog.ObjectType) bool {
	return c.Operation() == change.OpCreate && c.ObjectType() == ot
}

// sharesReferencedAncestor reports whether x and y's Requires sets
// overlap, i.e. both changes depend on at least one common object — the
// signal spec.md §4.3 uses to decide that an unrelated drop and create
// pair are close enough in the dependency graph to need ordering (e.g. a
// DROP of an old overload and a CREATE of a new one under the same
// schema-qualified name).
func sharesReferencedAncestor(x, y change.Change, _ *DependencyModel) bool {
	xReq := map[catalog.StableID]bool{}
	for _, id := range x.Requires() {
		xReq[id] = true
	}
	for _, id := range y.Requires() {
		if xReq[id] {
			return true
		}
	}
	return false
}

// kahnStable performs a Kahn topological sort that is stable with respect
// to the caller's input order: among all nodes whose in-edges are
// currently satisfied, the one that appeared earliest in changes is
// always emitted next (spec.md §4.3's "stable sort" requirement).
func kahnStable(changes []change.Change, before [][]int, inDegree []int) ([]change.Change, error) {
	n := len(changes)
	remaining := make([]bool, n)
	for i := range remaining {
		remaining[i] = true
	}

	out := make([]change.Change, 0, n)
	for emitted := 0; emitted < n; emitted++ {
		next := -1
		for i := 0; i < n; i++ {
			if remaining[i] && inDegree[i] == 0 {
				next = i
				break
			}
		}
		if next == -1 {
			return nil, cycleError(changes, remaining)
		}
		remaining[next] = false
		out = append(out, changes[next])
		for _, j := range before[next] {
			inDegree[j]--
		}
	}
	return out, nil
}

func cycleError(changes []change.Change, remaining []bool) error {
	var members []catalog.StableID
	for i, r := range remaining {
		if r {
			members = append(members, changes[i].StableID())
		}
	}
	return &CycleError{Members: members}
}
