// SPDX-License-Identifier: Apache-2.0

package export

import (
	"fmt"
	"strings"

	"github.com/supabase/pgdiff/pkg/catalog"
	"github.com/supabase/pgdiff/pkg/change"
)

// Location is what a Mapper resolves a change to: where it is written,
// which category it belongs to (for ordering), and free-form metadata the
// caller's Grouping/Integration layer may consult.
type Location struct {
	Path     string
	Category Category
	Metadata map[string]string
}

// Mapper implements spec.md §4.4's `mapper(change) -> {path, category,
// metadata}`.
type Mapper func(c change.Change) Location

// isForeignKey reports whether c is a constraint change filed as a
// foreign key, per spec.md §4.1.4's FK-gets-its-own-category carve-out.
func isForeignKey(c change.Change) bool {
	switch v := c.(type) {
	case *change.AddConstraint:
		return v.IsForeignKey
	case *change.DropConstraint:
		return v.IsForeignKey
	case *change.ValidateConstraint:
		return false
	default:
		return false
	}
}

func isTriggerLike(ot catalog.ObjectType) bool {
	return ot == catalog.ObjectTypeTrigger || ot == catalog.ObjectTypeRule || ot == catalog.ObjectTypePolicy
}

// DetailedMapper implements spec.md §4.4's detailed layout: one file per
// object under schemas/<schema>/<category>/<name>.sql, with the listed
// deviations for cluster-level objects, sequence ownership, foreign keys,
// and trigger/rule/policy objects.
func DetailedMapper(c change.Change) Location {
	tgt := target(c)
	kind, schema, name := parseTarget(tgt)

	if c.ObjectType() == catalog.ObjectTypeDefaultACL {
		return Location{Path: "cluster/default_privileges.sql", Category: CategoryCluster, Metadata: map[string]string{"kind": "default_privilege"}}
	}

	category := categoryForObjectType(catalog.ObjectType(kind))

	if category == CategoryCluster {
		return Location{Path: fmt.Sprintf("cluster/%s.sql", sanitize(name)), Category: category, Metadata: map[string]string{"kind": kind, "name": name}}
	}

	if isForeignKey(c) {
		return Location{Path: fmt.Sprintf("foreign_keys/%s.sql", sanitize(name)), Category: CategoryForeignKeys, Metadata: map[string]string{"table": name}}
	}

	if isTriggerLike(c.ObjectType()) {
		// Trigger/rule/policy IDs are "<kind>:<schema>.<table>.<name>", so
		// parseTarget leaves the table as the last segment of schema.
		table := name
		if dot := strings.LastIndexByte(schema, '.'); dot >= 0 {
			table = schema[dot+1:]
		}
		return Location{Path: fmt.Sprintf("policies/%s.sql", sanitize(table)), Category: CategoryPolicies, Metadata: map[string]string{"table": table}}
	}

	return Location{
		Path:     fmt.Sprintf("schemas/%s/%s/%s.sql", sanitize(schema), category, sanitize(name)),
		Category: category,
		Metadata: map[string]string{"kind": kind, "schema": schema, "name": name},
	}
}

// simpleCategoryFile is the top-level file name for category under the
// simple layout.
func simpleCategoryFile(category Category) string {
	switch category {
	case CategoryTables, CategoryViews, CategoryMatviews, CategoryFunctions, CategoryProcedures, CategoryAggregates:
		return "tables_and_functions.sql"
	default:
		return string(category) + ".sql"
	}
}

// SimpleMapper implements spec.md §4.4's simple layout: one file per
// category at the top level, with tables/views/matviews/functions/
// procedures/aggregates co-located so that circular column-default /
// function-signature references resolve within a single file.
func SimpleMapper(c change.Change) Location {
	tgt := target(c)
	kind, schema, name := parseTarget(tgt)

	if c.ObjectType() == catalog.ObjectTypeDefaultACL {
		return Location{Path: "default_privileges.sql", Category: CategoryCluster, Metadata: map[string]string{"kind": "default_privilege"}}
	}

	category := categoryForObjectType(catalog.ObjectType(kind))
	if isForeignKey(c) {
		category = CategoryForeignKeys
	} else if isTriggerLike(c.ObjectType()) {
		category = CategoryPolicies
	}

	return Location{
		Path:     simpleCategoryFile(category),
		Category: category,
		Metadata: map[string]string{"kind": kind, "schema": schema, "name": name},
	}
}

func sanitize(s string) string {
	if s == "" {
		return "_"
	}
	return s
}
