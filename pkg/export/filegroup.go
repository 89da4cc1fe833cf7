// SPDX-License-Identifier: Apache-2.0

package export

import (
	"sort"

	"github.com/supabase/pgdiff/pkg/change"
)

// FileGroup collects every change destined for one output file, per
// spec.md §4.4's public contract.
type FileGroup struct {
	Path     string
	Category Category
	Metadata map[string]string

	Changes []change.Change

	// minIndex/maxIndex are the smallest/largest position (within the
	// resolver's output order) of any change in this group.
	MinIndex int
	MaxIndex int
	// CreateObjectMaxIndex is the max position among CREATE-scope-object
	// changes only in this group, or -1 if the group has none.
	CreateObjectMaxIndex int
}

func newFileGroup(path string, category Category) *FileGroup {
	return &FileGroup{
		Path:                  path,
		Category:              category,
		Metadata:              map[string]string{},
		MinIndex:              -1,
		MaxIndex:              -1,
		CreateObjectMaxIndex:  -1,
	}
}

func (g *FileGroup) add(index int, c change.Change) {
	g.Changes = append(g.Changes, c)
	if g.MinIndex == -1 || index < g.MinIndex {
		g.MinIndex = index
	}
	if index > g.MaxIndex {
		g.MaxIndex = index
	}
	if c.Operation() == change.OpCreate && c.Scope() == change.ScopeObject && index > g.CreateObjectMaxIndex {
		g.CreateObjectMaxIndex = index
	}
}

// effectiveIndex implements spec.md §4.4 step 1.
func (g *FileGroup) effectiveIndex() int {
	switch {
	case terminalCategories[g.Category]:
		return g.MaxIndex
	case createObjectIndexCategories[g.Category] && g.CreateObjectMaxIndex >= 0:
		return g.CreateObjectMaxIndex
	default:
		return g.MinIndex
	}
}

// sortGroups orders groups per spec.md §4.4's three-level comparator:
// effective topological index, then category priority, then path.
func sortGroups(groups []*FileGroup) {
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if ai, bi := a.effectiveIndex(), b.effectiveIndex(); ai != bi {
			return ai < bi
		}
		if ap, bp := a.Category.Priority(), b.Category.Priority(); ap != bp {
			return ap < bp
		}
		return a.Path < b.Path
	})
}
