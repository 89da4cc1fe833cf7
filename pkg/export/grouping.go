// SPDX-License-Identifier: Apache-2.0

package export

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/supabase/pgdiff/pkg/catalog"
)

// GroupRule merges every object whose name matches into one file named
// Group, within the same schema and category — spec.md §4.4's name-based
// sub-grouping ("all project_* tables into tables/project.sql").
type GroupRule struct {
	Pattern *regexp.Regexp // nil means match by Prefix instead
	Prefix  string
	Group   string
}

func (r GroupRule) matches(name string) bool {
	if r.Pattern != nil {
		return r.Pattern.MatchString(name)
	}
	return strings.HasPrefix(name, r.Prefix)
}

// Grouping carries the Mapper-independent file-merging options of
// spec.md §4.4: regex/prefix rules, partition-parent chaining, and
// whole-schema flattening. The zero value groups nothing.
type Grouping struct {
	Rules       []GroupRule
	FlatSchemas map[string]bool
	// PartitionOf resolves a table StableID to its partition parent's
	// name, when it names a declared partition (is_partition=true); ok is
	// false for non-partitions. The resolved parent name is then run
	// back through Rules, so a chain of regex groups can catch both a
	// table and its partitions under one file.
	PartitionOf func(id catalog.StableID) (parentName string, ok bool)
}

// Apply rewrites loc's path for the object identified by id/schema/name,
// per spec.md §4.4's sub-grouping rules. Detailed-layout paths only:
// Grouping never touches the simple layout's single-category files.
func (g *Grouping) Apply(loc Location, id catalog.StableID, schema, name string) Location {
	if g == nil {
		return loc
	}
	if g.FlatSchemas[schema] {
		loc.Path = fmt.Sprintf("schemas/%s/%s.sql", sanitize(schema), loc.Category)
		return loc
	}

	key := name
	if g.PartitionOf != nil {
		if parent, ok := g.PartitionOf(id); ok && parent != "" {
			key = parent
		}
	}
	for _, r := range g.Rules {
		if r.matches(key) {
			loc.Path = fmt.Sprintf("schemas/%s/%s/%s.sql", sanitize(schema), loc.Category, sanitize(r.Group))
			return loc
		}
	}
	return loc
}

// PartitionResolver builds a Grouping.PartitionOf closure from a catalog's
// table map, per spec.md §4.4's "auto-detecting partition parents".
func PartitionResolver(tables map[catalog.StableID]*catalog.Table) func(catalog.StableID) (string, bool) {
	return func(id catalog.StableID) (string, bool) {
		t, ok := tables[id]
		if !ok || !t.IsPartition {
			return "", false
		}
		return t.ParentName, true
	}
}
