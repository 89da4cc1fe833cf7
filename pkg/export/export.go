// SPDX-License-Identifier: Apache-2.0

package export

import (
	"github.com/supabase/pgdiff/pkg/catalog"
	"github.com/supabase/pgdiff/pkg/change"
)

// GroupChangesByFile implements spec.md §4.4's public contract:
// groupChangesByFile(sortedChanges, mapper) -> ordered list<FileGroup>.
// sortedChanges is expected to already be in resolver order — group
// positions (minIndex/maxIndex/createObjectMaxIndex) are read off that
// order, so grouping changes that have not been through pkg/resolve
// first produces a meaningless ordering.
func GroupChangesByFile(sortedChanges []change.Change, mapper Mapper, grouping *Grouping) []*FileGroup {
	byPath := map[string]*FileGroup{}
	var order []string

	for idx, c := range sortedChanges {
		loc := mapper(c)
		tgt := target(c)
		_, schema, name := parseTarget(tgt)
		loc = grouping.Apply(loc, tgt, schema, name)

		g, ok := byPath[loc.Path]
		if !ok {
			g = newFileGroup(loc.Path, loc.Category)
			for k, v := range loc.Metadata {
				g.Metadata[k] = v
			}
			byPath[loc.Path] = g
			order = append(order, loc.Path)
		}
		g.add(idx, c)
	}

	groups := make([]*FileGroup, 0, len(order))
	for _, p := range order {
		groups = append(groups, byPath[p])
	}
	applyRoutinePreamble(groups)
	sortGroups(groups)
	return groups
}

// applyRoutinePreamble implements spec.md §4.4's routine-file rule: any
// group containing a procedure or aggregate change needs
// `SET check_function_bodies = false` so the group's function bodies may
// legally reference objects defined later in the same file.
func applyRoutinePreamble(groups []*FileGroup) {
	const preamble = "SET check_function_bodies = false;"
	for _, g := range groups {
		for _, c := range g.Changes {
			if c.ObjectType() == catalog.ObjectTypeProcedure || c.ObjectType() == catalog.ObjectTypeAggregate {
				g.Metadata["preamble"] = preamble
				break
			}
		}
	}
}
