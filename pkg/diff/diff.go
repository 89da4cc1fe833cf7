// SPDX-License-Identifier: Apache-2.0

package diff

import (
	"github.com/supabase/pgdiff/pkg/catalog"
	"github.com/supabase/pgdiff/pkg/change"
)

// Diff computes the full, unordered change-set bringing main to branch,
// per spec.md §4.1: one call per object kind, concatenated. Ordering and
// dependency-requires satisfaction is the resolver's job (pkg/resolve),
// not this package's — a per-kind differ emits Requires on each Change
// but never sequences across kinds itself.
//
// ctx carries the ambient information no single catalog snapshot holds
// (the acting user, the server version, and the default-privilege state)
// that every create-path owner/privilege decision is judged against. The
// caller builds it via Catalog.Context on whichever catalog it connected
// to run the diff as.
func Diff(ctx *catalog.DiffContext, main, branch *catalog.Catalog) []change.Change {
	var out []change.Change
	out = append(out, DiffSchemas(ctx, main.Schemas, branch.Schemas)...)
	out = append(out, DiffTables(ctx, main.Tables, branch.Tables)...)
	out = append(out, DiffForeignTables(ctx, main.ForeignTables, branch.ForeignTables)...)
	out = append(out, DiffViews(ctx, main.Views, branch.Views)...)
	out = append(out, DiffMaterializedViews(ctx, main.MaterializedViews, branch.MaterializedViews)...)
	out = append(out, DiffSequences(ctx, main.Sequences, branch.Sequences)...)
	out = append(out, DiffCompositeTypes(ctx, main.CompositeTypes, branch.CompositeTypes)...)
	out = append(out, DiffEnumTypes(ctx, main.EnumTypes, branch.EnumTypes)...)
	out = append(out, DiffRangeTypes(ctx, main.RangeTypes, branch.RangeTypes)...)
	out = append(out, DiffDomains(ctx, main.Domains, branch.Domains)...)
	out = append(out, DiffFunctions(ctx, main.Functions, branch.Functions)...)
	out = append(out, DiffProcedures(ctx, main.Procedures, branch.Procedures)...)
	out = append(out, DiffAggregates(ctx, main.Aggregates, branch.Aggregates)...)
	out = append(out, DiffIndexes(ctx, main.Indexes, branch.Indexes)...)
	out = append(out, DiffTriggers(ctx, main.Triggers, branch.Triggers)...)
	out = append(out, DiffRules(ctx, main.Rules, branch.Rules)...)
	out = append(out, DiffPolicies(ctx, main.Policies, branch.Policies)...)
	out = append(out, DiffRoles(ctx, main.Roles, branch.Roles)...)
	out = append(out, DiffExtensions(ctx, main.Extensions, branch.Extensions)...)
	out = append(out, DiffPublications(ctx, main.Publications, branch.Publications)...)
	out = append(out, DiffSubscriptions(ctx, main.Subscriptions, branch.Subscriptions)...)
	out = append(out, DiffForeignDataWrappers(ctx, main.ForeignDataWrappers, branch.ForeignDataWrappers)...)
	out = append(out, DiffForeignServers(ctx, main.ForeignServers, branch.ForeignServers)...)
	out = append(out, DiffUserMappings(ctx, main.UserMappings, branch.UserMappings)...)
	out = append(out, DiffLanguages(ctx, main.Languages, branch.Languages)...)
	out = append(out, DiffEventTriggers(ctx, main.EventTriggers, branch.EventTriggers)...)
	out = append(out, DiffCollations(ctx, main.Collations, branch.Collations)...)
	out = append(out, DiffDefaultPrivileges(ctx, main.DefaultPrivileges, branch.DefaultPrivileges)...)
	return out
}

// ownerOnCreate returns the owner-alter change a newly created object
// needs when its owner differs from the acting user, per spec.md §4.1
// step 2 ("emit owner-change if branch.owner ≠ ctx.current_user"). Every
// kind but schema needs this explicitly, since CREATE SCHEMA's own
// AUTHORIZATION clause already assigns the owner atomically at create
// time.
func ownerOnCreate(ctx *catalog.DiffContext, ot catalog.ObjectType, id catalog.StableID, desc, owner string, render func() string) []change.Change {
	if ctx == nil || owner == "" || owner == ctx.CurrentUser {
		return nil
	}
	return []change.Change{change.NewAlter(ot, id, desc, render, id)}
}
