// SPDX-License-Identifier: Apache-2.0

// Package export implements the file grouper and exporter (spec.md §4.4):
// it takes the resolver's ordered change list and a layout mapper and
// produces an ordered list of FileGroups ready to be written to disk or
// handed to an Integration hook for custom serialization.
package export

import "github.com/supabase/pgdiff/pkg/catalog"

// Category is one of the fixed file-grouping buckets spec.md §4.4 lists,
// in priority order (used as the comparator's tie-break).
type Category string

const (
	CategoryCluster          Category = "cluster"
	CategorySchema           Category = "schema"
	CategoryExtensions       Category = "extensions"
	CategoryTypes            Category = "types"
	CategorySequences        Category = "sequences"
	CategoryTables           Category = "tables"
	CategoryForeignTables    Category = "foreign_tables"
	CategoryViews            Category = "views"
	CategoryMatviews         Category = "matviews"
	CategoryFunctions        Category = "functions"
	CategoryProcedures       Category = "procedures"
	CategoryAggregates       Category = "aggregates"
	CategoryDomains          Category = "domains"
	CategoryCollations       Category = "collations"
	CategoryIndexes          Category = "indexes"
	CategoryPolicies         Category = "policies"
	CategoryForeignKeys      Category = "foreign_keys"
	CategoryPublications     Category = "publications"
	CategorySubscriptions    Category = "subscriptions"
	CategoryEventTriggers    Category = "event_triggers"
)

// categoryPriority is the fixed enum order spec.md §4.4 step 2 sorts by.
var categoryPriority = map[Category]int{
	CategoryCluster:       0,
	CategorySchema:        1,
	CategoryExtensions:    2,
	CategoryTypes:         3,
	CategorySequences:     4,
	CategoryTables:        5,
	CategoryForeignTables: 6,
	CategoryViews:         7,
	CategoryMatviews:      8,
	CategoryFunctions:     9,
	CategoryProcedures:    10,
	CategoryAggregates:    11,
	CategoryDomains:       12,
	CategoryCollations:    13,
	CategoryIndexes:       14,
	CategoryPolicies:      15,
	CategoryForeignKeys:   16,
	CategoryPublications:  17,
	CategorySubscriptions: 18,
	CategoryEventTriggers: 19,
}

// Priority returns c's position in the fixed category order, used only as
// a tie-break behind the group's effective topological index.
func (c Category) Priority() int {
	if p, ok := categoryPriority[c]; ok {
		return p
	}
	return len(categoryPriority) // unknown categories sort last
}

// terminalCategories use the group's maxIndex (not minIndex) as the
// effective topological index, per spec.md §4.4 step 1 — these are the
// categories whose objects are always created after everything they
// might reference, so ordering by "when is this group fully settled"
// rather than "when does it start" keeps them last within their slot.
var terminalCategories = map[Category]bool{
	CategoryForeignKeys: true,
	CategoryPolicies:    true,
	CategoryIndexes:     true,
}

// createObjectIndexCategories use createObjectMaxIndex (the max position
// among CREATE-scope-object changes only) instead of minIndex, per
// spec.md §4.4 step 1 — without this, an early ALTER (e.g. OWNED BY or a
// privilege grant landing before the object's own CREATE in an
// unresolved plan) would mislead the comparator into placing the whole
// group too early.
var createObjectIndexCategories = map[Category]bool{
	CategoryTables:     true,
	CategoryFunctions:  true,
	CategoryProcedures: true,
	CategoryAggregates: true,
}

// categoryForObjectType maps a catalog object kind to its category, per
// spec.md §3's object-kind list and §4.4's category enum. Cluster-level
// kinds (roles, FDWs/servers/user mappings, languages) share the
// "cluster" bucket; ACL/comment/column/constraint kinds are never passed
// here directly since DiffXxx changes for sub-object scopes are always
// filed under their owner (see Target in mapper.go).
func categoryForObjectType(ot catalog.ObjectType) Category {
	switch ot {
	case catalog.ObjectTypeRole, catalog.ObjectTypeForeignDataWrapper, catalog.ObjectTypeForeignServer,
		catalog.ObjectTypeUserMapping, catalog.ObjectTypeLanguage:
		return CategoryCluster
	case catalog.ObjectTypeSchema:
		return CategorySchema
	case catalog.ObjectTypeExtension:
		return CategoryExtensions
	case catalog.ObjectTypeCompositeType, catalog.ObjectTypeEnumType, catalog.ObjectTypeRangeType:
		return CategoryTypes
	case catalog.ObjectTypeSequence:
		return CategorySequences
	case catalog.ObjectTypeTable:
		return CategoryTables
	case catalog.ObjectTypeForeignTable:
		return CategoryForeignTables
	case catalog.ObjectTypeView:
		return CategoryViews
	case catalog.ObjectTypeMaterializedView:
		return CategoryMatviews
	case catalog.ObjectTypeFunction:
		return CategoryFunctions
	case catalog.ObjectTypeProcedure:
		return CategoryProcedures
	case catalog.ObjectTypeAggregate:
		return CategoryAggregates
	case catalog.ObjectTypeDomain:
		return CategoryDomains
	case catalog.ObjectTypeCollation:
		return CategoryCollations
	case catalog.ObjectTypeIndex:
		return CategoryIndexes
	case catalog.ObjectTypeTrigger, catalog.ObjectTypeRule, catalog.ObjectTypePolicy:
		return CategoryPolicies
	case catalog.ObjectTypePublication:
		return CategoryPublications
	case catalog.ObjectTypeSubscription:
		return CategorySubscriptions
	case catalog.ObjectTypeEventTrigger:
		return CategoryEventTriggers
	case catalog.ObjectTypeConstraint:
		// Reached only when Target resolved to the constraint's own
		// StableID instead of its Owner (shouldn't happen in practice —
		// AddConstraint/DropConstraint always implement Owned).
		return CategoryTables
	default:
		return CategoryCluster
	}
}
