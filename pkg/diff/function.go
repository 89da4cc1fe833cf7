// SPDX-License-Identifier: Apache-2.0

package diff

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/supabase/pgdiff/pkg/catalog"
	"github.com/supabase/pgdiff/pkg/change"
)

func paramsSQL(params []catalog.Parameter) string {
	parts := make([]string, len(params))
	for i, p := range params {
		mode := ""
		if p.Mode != "" && p.Mode != "IN" {
			mode = p.Mode + " "
		}
		name := ""
		if p.Name != "" {
			name = pq.QuoteIdentifier(p.Name) + " "
		}
		parts[i] = mode + name + p.Type
	}
	return strings.Join(parts, ", ")
}

func functionModifiersSQL(f *catalog.Function) string {
	s := " LANGUAGE " + f.Language
	switch f.Volatility {
	case "IMMUTABLE", "STABLE", "VOLATILE":
		s += " " + f.Volatility
	}
	if f.IsStrict {
		s += " STRICT"
	}
	if f.IsSecurityDefiner {
		s += " SECURITY DEFINER"
	}
	if f.IsLeakproof {
		s += " LEAKPROOF"
	}
	if f.Parallel != "" {
		s += " PARALLEL " + f.Parallel
	}
	if f.SearchPath != "" {
		s += fmt.Sprintf(" SET search_path = %s", f.SearchPath)
	}
	return s
}

func functionBodySQL(f *catalog.Function) string {
	return fmt.Sprintf("CREATE OR REPLACE FUNCTION %s(%s) RETURNS %s%s AS $pgdiff$%s$pgdiff$",
		qualified(f.Schema, f.Name), paramsSQL(f.Parameters), f.ReturnType, functionModifiersSQL(f), f.Definition)
}

// DiffFunctions implements spec.md §4.1's general rule for functions: most
// fields are alterable via CREATE OR REPLACE FUNCTION in place; only the
// signature (arg types, return type) is non-alterable and forces a
// Replace (drop+create) since PostgreSQL itself rejects CREATE OR REPLACE
// across a signature change.
func DiffFunctions(ctx *catalog.DiffContext, main, branch map[catalog.StableID]*catalog.Function) []change.Change {
	var out []change.Change
	created, dropped, common := Partition(main, branch)

	for _, id := range created {
		out = append(out, createFunctionChanges(ctx, id, branch[id])...)
	}
	for _, id := range dropped {
		f := main[id]
		out = append(out, change.NewDrop(catalog.ObjectTypeFunction, id, "drop function "+f.Name,
			func() string { return fmt.Sprintf("DROP FUNCTION %s(%s)", qualified(f.Schema, f.Name), paramsSQL(f.Parameters)) }))
	}
	for _, id := range common {
		m, b := main[id], branch[id]
		sql := qualified(b.Schema, b.Name)
		if b.NonAlterableChanged(m) {
			out = append(out, change.NewReplace(catalog.ObjectTypeFunction, id, "replace function "+b.Name, func() string {
				return fmt.Sprintf("DROP FUNCTION %s(%s);\n%s", qualified(m.Schema, m.Name), paramsSQL(m.Parameters), functionBodySQL(b))
			}))
		} else if !m.Equal(b) {
			out = append(out, change.NewAlter(catalog.ObjectTypeFunction, id, "alter function "+b.Name, func() string { return functionBodySQL(b) }, id))
		}
		if m.Owner != b.Owner {
			owner := b.Owner
			out = append(out, change.NewAlter(catalog.ObjectTypeFunction, id, "alter function owner",
				func() string { return "ALTER FUNCTION " + sql + "(" + paramsSQL(b.Parameters) + ") OWNER TO " + pq.QuoteIdentifier(owner) }, id))
		}
		if c := DiffComment(catalog.ObjectTypeFunction, id, change.CommentTargetFunction, sql+"("+paramsSQL(b.Parameters)+")", id, m.Comment, b.Comment); c != nil {
			out = append(out, c)
		}
		out = append(out, DiffPrivileges(PrivilegeTarget{ID: id, SQL: sql, Kind: change.GrantKindRoutine}, m.Privileges, b.Privileges)...)
	}
	return out
}

func createFunctionChanges(ctx *catalog.DiffContext, id catalog.StableID, f *catalog.Function) []change.Change {
	var out []change.Change
	sql := qualified(f.Schema, f.Name)
	out = append(out, change.NewCreate(catalog.ObjectTypeFunction, id, "create function "+f.Name, func() string { return functionBodySQL(f) }))
	out = append(out, ownerOnCreate(ctx, catalog.ObjectTypeFunction, id, "alter function owner", f.Owner,
		func() string { return "ALTER FUNCTION " + sql + "(" + paramsSQL(f.Parameters) + ") OWNER TO " + pq.QuoteIdentifier(f.Owner) })...)
	if f.Comment != "" {
		out = append(out, change.NewCreateComment(catalog.ObjectTypeFunction, catalog.CommentID(id), change.CommentTargetFunction, sql+"("+paramsSQL(f.Parameters)+")", f.Comment, id))
	}
	out = append(out, DiffPrivilegesForCreate(ctx, PrivilegeTarget{ID: id, SQL: sql, Kind: change.GrantKindRoutine}, "ROUTINES", f.Schema, f.Privileges)...)
	return out
}

func procedureBodySQL(p *catalog.Procedure) string {
	s := " LANGUAGE " + p.Language
	if p.IsSecurityDefiner {
		s += " SECURITY DEFINER"
	}
	if p.SearchPath != "" {
		s += fmt.Sprintf(" SET search_path = %s", p.SearchPath)
	}
	return fmt.Sprintf("CREATE OR REPLACE PROCEDURE %s(%s)%s AS $pgdiff$%s$pgdiff$",
		qualified(p.Schema, p.Name), paramsSQL(p.Parameters), s, p.Definition)
}

// DiffProcedures mirrors DiffFunctions; procedures have no return type but
// the same signature-is-non-alterable rule applies.
func DiffProcedures(ctx *catalog.DiffContext, main, branch map[catalog.StableID]*catalog.Procedure) []change.Change {
	var out []change.Change
	created, dropped, common := Partition(main, branch)

	for _, id := range created {
		p := branch[id]
		sql := qualified(p.Schema, p.Name)
		out = append(out, change.NewCreate(catalog.ObjectTypeProcedure, id, "create procedure "+p.Name, func() string { return procedureBodySQL(p) }))
		out = append(out, ownerOnCreate(ctx, catalog.ObjectTypeProcedure, id, "alter procedure owner", p.Owner,
			func() string { return "ALTER PROCEDURE " + sql + "(" + paramsSQL(p.Parameters) + ") OWNER TO " + pq.QuoteIdentifier(p.Owner) })...)
		if p.Comment != "" {
			out = append(out, change.NewCreateComment(catalog.ObjectTypeProcedure, catalog.CommentID(id), change.CommentTargetProcedure, sql+"("+paramsSQL(p.Parameters)+")", p.Comment, id))
		}
		out = append(out, DiffPrivilegesForCreate(ctx, PrivilegeTarget{ID: id, SQL: sql, Kind: change.GrantKindRoutine}, "ROUTINES", p.Schema, p.Privileges)...)
	}
	for _, id := range dropped {
		p := main[id]
		out = append(out, change.NewDrop(catalog.ObjectTypeProcedure, id, "drop procedure "+p.Name,
			func() string { return fmt.Sprintf("DROP PROCEDURE %s(%s)", qualified(p.Schema, p.Name), paramsSQL(p.Parameters)) }))
	}
	for _, id := range common {
		m, b := main[id], branch[id]
		sql := qualified(b.Schema, b.Name)
		if b.NonAlterableChanged(m) {
			out = append(out, change.NewReplace(catalog.ObjectTypeProcedure, id, "replace procedure "+b.Name, func() string { return procedureBodySQL(b) }))
		} else if !m.Equal(b) {
			out = append(out, change.NewAlter(catalog.ObjectTypeProcedure, id, "alter procedure "+b.Name, func() string { return procedureBodySQL(b) }, id))
		}
		if m.Owner != b.Owner {
			owner := b.Owner
			out = append(out, change.NewAlter(catalog.ObjectTypeProcedure, id, "alter procedure owner",
				func() string { return "ALTER PROCEDURE " + sql + "(" + paramsSQL(b.Parameters) + ") OWNER TO " + pq.QuoteIdentifier(owner) }, id))
		}
		if c := DiffComment(catalog.ObjectTypeProcedure, id, change.CommentTargetProcedure, sql+"("+paramsSQL(b.Parameters)+")", id, m.Comment, b.Comment); c != nil {
			out = append(out, c)
		}
		out = append(out, DiffPrivileges(PrivilegeTarget{ID: id, SQL: sql, Kind: change.GrantKindRoutine}, m.Privileges, b.Privileges)...)
	}
	return out
}

func aggregateBodySQL(a *catalog.Aggregate) string {
	parts := []string{"SFUNC = " + a.TransitionFunction, "STYPE = " + a.StateType}
	if a.FinalFunction != "" {
		parts = append(parts, "FINALFUNC = "+a.FinalFunction)
	}
	if a.CombineFunction != "" {
		parts = append(parts, "COMBINEFUNC = "+a.CombineFunction)
	}
	if a.SerialFunction != "" {
		parts = append(parts, "SERIALFUNC = "+a.SerialFunction)
	}
	if a.DeserialFunction != "" {
		parts = append(parts, "DESERIALFUNC = "+a.DeserialFunction)
	}
	if a.InitialCondition != "" {
		parts = append(parts, "INITCOND = "+quoteLit(a.InitialCondition))
	}
	if a.StateDataSize > 0 {
		parts = append(parts, fmt.Sprintf("MSTYPE = %d", a.StateDataSize))
	}
	if a.IsParallelSafe {
		parts = append(parts, "PARALLEL = SAFE")
	}
	return fmt.Sprintf("CREATE AGGREGATE %s(%s) (%s)", qualified(a.Schema, a.Name), paramsSQL(a.Parameters), strings.Join(parts, ", "))
}

// DiffAggregates implements spec.md §4.1's worked example: every field is
// non-alterable, so any difference is a single Replace, rendered as
// CREATE OR REPLACE AGGREGATE rather than a drop+create pair.
func DiffAggregates(ctx *catalog.DiffContext, main, branch map[catalog.StableID]*catalog.Aggregate) []change.Change {
	var out []change.Change
	created, dropped, common := Partition(main, branch)

	for _, id := range created {
		a := branch[id]
		sql := qualified(a.Schema, a.Name)
		out = append(out, change.NewCreate(catalog.ObjectTypeAggregate, id, "create aggregate "+a.Name, func() string { return aggregateBodySQL(a) }))
		out = append(out, ownerOnCreate(ctx, catalog.ObjectTypeAggregate, id, "alter aggregate owner", a.Owner,
			func() string { return "ALTER AGGREGATE " + sql + "(" + paramsSQL(a.Parameters) + ") OWNER TO " + pq.QuoteIdentifier(a.Owner) })...)
		if a.Comment != "" {
			out = append(out, change.NewCreateComment(catalog.ObjectTypeAggregate, catalog.CommentID(id), change.CommentTargetAggregate, sql+"("+paramsSQL(a.Parameters)+")", a.Comment, id))
		}
		out = append(out, DiffPrivilegesForCreate(ctx, PrivilegeTarget{ID: id, SQL: sql, Kind: change.GrantKindRoutine}, "ROUTINES", a.Schema, a.Privileges)...)
	}
	for _, id := range dropped {
		a := main[id]
		out = append(out, change.NewDrop(catalog.ObjectTypeAggregate, id, "drop aggregate "+a.Name,
			func() string { return fmt.Sprintf("DROP AGGREGATE %s(%s)", qualified(a.Schema, a.Name), paramsSQL(a.Parameters)) }))
	}
	for _, id := range common {
		m, b := main[id], branch[id]
		sql := qualified(b.Schema, b.Name)
		if !m.Equal(b) {
			out = append(out, change.NewReplace(catalog.ObjectTypeAggregate, id, "replace aggregate "+b.Name, func() string {
				return strings.Replace(aggregateBodySQL(b), "CREATE AGGREGATE", "CREATE OR REPLACE AGGREGATE", 1)
			}))
		}
		if m.Owner != b.Owner {
			owner := b.Owner
			out = append(out, change.NewAlter(catalog.ObjectTypeAggregate, id, "alter aggregate owner",
				func() string { return "ALTER AGGREGATE " + sql + "(" + paramsSQL(b.Parameters) + ") OWNER TO " + pq.QuoteIdentifier(owner) }, id))
		}
		if c := DiffComment(catalog.ObjectTypeAggregate, id, change.CommentTargetAggregate, sql+"("+paramsSQL(b.Parameters)+")", id, m.Comment, b.Comment); c != nil {
			out = append(out, c)
		}
		out = append(out, DiffPrivileges(PrivilegeTarget{ID: id, SQL: sql, Kind: change.GrantKindRoutine}, m.Privileges, b.Privileges)...)
	}
	return out
}
