// SPDX-License-Identifier: Apache-2.0

// Package diff implements the per-kind structural differ (spec.md §4.1):
// given a main and branch catalog.Catalog, it produces the change.Change
// slice describing how to bring main to branch.
package diff

import "github.com/supabase/pgdiff/pkg/catalog"

// Partition splits the keys of two StableID-keyed maps into created
// (branch-only), dropped (main-only), and common (present in both, for
// the caller to compare field-by-field), per spec.md §4.1 step 1-2's
// "partition main/branch keys into created/dropped/altered".
//
// Iteration order of the returned slices is the sorted StableID order so
// differs are deterministic independent of Go's randomized map iteration
// (spec.md §5).
func Partition[V any](main, branch map[catalog.StableID]V) (created, dropped, common []catalog.StableID) {
	for id := range branch {
		if _, ok := main[id]; !ok {
			created = append(created, id)
		} else {
			common = append(common, id)
		}
	}
	for id := range main {
		if _, ok := branch[id]; !ok {
			dropped = append(dropped, id)
		}
	}
	sortIDs(created)
	sortIDs(dropped)
	sortIDs(common)
	return created, dropped, common
}

// sortIDs sorts ids in place, lexicographically over the underlying
// string — insertion sort is fine, these slices are small relative to a
// single schema's object count and this avoids importing sort per call
// site inconsistency across the package.
func sortIDs(ids []catalog.StableID) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}
