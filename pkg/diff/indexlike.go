// SPDX-License-Identifier: Apache-2.0

package diff

import (
	"fmt"

	"github.com/lib/pq"
	"github.com/supabase/pgdiff/pkg/catalog"
	"github.com/supabase/pgdiff/pkg/change"
)

// DiffIndexes implements spec.md §4.1.4: an index's definition (method,
// columns, predicate) is non-alterable — any difference is a Replace
// (DROP INDEX + CREATE INDEX), since PostgreSQL has no ALTER INDEX form
// for structural changes.
func DiffIndexes(ctx *catalog.DiffContext, main, branch map[catalog.StableID]*catalog.Index) []change.Change {
	var out []change.Change
	created, dropped, common := Partition(main, branch)

	for _, id := range created {
		i := branch[id]
		out = append(out, change.NewCreate(catalog.ObjectTypeIndex, id, "create index "+i.Name, func() string { return i.DefinitionSQL }))
		if i.Comment != "" {
			out = append(out, change.NewCreateComment(catalog.ObjectTypeIndex, catalog.CommentID(id), change.CommentTargetIndex, pq.QuoteIdentifier(i.Name), i.Comment, id))
		}
	}
	for _, id := range dropped {
		i := main[id]
		out = append(out, change.NewDrop(catalog.ObjectTypeIndex, id, "drop index "+i.Name,
			func() string { return "DROP INDEX " + qualified(i.Schema, i.Name) }))
	}
	for _, id := range common {
		m, b := main[id], branch[id]
		if !m.Equal(b) {
			out = append(out, change.NewReplace(catalog.ObjectTypeIndex, id, "replace index "+b.Name, func() string {
				return "DROP INDEX " + qualified(m.Schema, m.Name) + ";\n" + b.DefinitionSQL
			}))
			continue
		}
		if c := DiffComment(catalog.ObjectTypeIndex, id, change.CommentTargetIndex, qualified(b.Schema, b.Name), id, m.Comment, b.Comment); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// DiffTriggers implements spec.md §4.1.4: trigger definitions are
// non-alterable as a whole.
func DiffTriggers(ctx *catalog.DiffContext, main, branch map[catalog.StableID]*catalog.Trigger) []change.Change {
	var out []change.Change
	created, dropped, common := Partition(main, branch)

	for _, id := range created {
		t := branch[id]
		out = append(out, change.NewCreate(catalog.ObjectTypeTrigger, id, "create trigger "+t.Name, func() string { return t.DefinitionSQL }))
		if t.Comment != "" {
			out = append(out, change.NewCreateComment(catalog.ObjectTypeTrigger, catalog.CommentID(id), change.CommentTargetTrigger,
				fmt.Sprintf("%s ON %s", pq.QuoteIdentifier(t.Name), qualified(t.Schema, t.Table)), t.Comment, id))
		}
	}
	for _, id := range dropped {
		t := main[id]
		out = append(out, change.NewDrop(catalog.ObjectTypeTrigger, id, "drop trigger "+t.Name,
			func() string { return fmt.Sprintf("DROP TRIGGER %s ON %s", pq.QuoteIdentifier(t.Name), qualified(t.Schema, t.Table)) }))
	}
	for _, id := range common {
		m, b := main[id], branch[id]
		if !m.Equal(b) {
			out = append(out, change.NewReplace(catalog.ObjectTypeTrigger, id, "replace trigger "+b.Name, func() string { return b.DefinitionSQL }))
			continue
		}
		target := fmt.Sprintf("%s ON %s", pq.QuoteIdentifier(b.Name), qualified(b.Schema, b.Table))
		if c := DiffComment(catalog.ObjectTypeTrigger, id, change.CommentTargetTrigger, target, id, m.Comment, b.Comment); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// DiffRules implements spec.md §4.1.4: rule definitions are non-alterable
// as a whole.
func DiffRules(ctx *catalog.DiffContext, main, branch map[catalog.StableID]*catalog.Rule) []change.Change {
	var out []change.Change
	created, dropped, common := Partition(main, branch)

	for _, id := range created {
		r := branch[id]
		out = append(out, change.NewCreate(catalog.ObjectTypeRule, id, "create rule "+r.Name, func() string { return r.DefinitionSQL }))
	}
	for _, id := range dropped {
		r := main[id]
		out = append(out, change.NewDrop(catalog.ObjectTypeRule, id, "drop rule "+r.Name,
			func() string { return fmt.Sprintf("DROP RULE %s ON %s", pq.QuoteIdentifier(r.Name), qualified(r.Schema, r.Table)) }))
	}
	for _, id := range common {
		m, b := main[id], branch[id]
		if !m.Equal(b) {
			out = append(out, change.NewReplace(catalog.ObjectTypeRule, id, "replace rule "+b.Name, func() string { return b.DefinitionSQL }))
		}
	}
	return out
}

// DiffPolicies implements spec.md §4.1.4: the command and the permissive
// flag are non-alterable and force a Replace; roles and the using/
// with-check expressions are alterable via ALTER POLICY.
func DiffPolicies(ctx *catalog.DiffContext, main, branch map[catalog.StableID]*catalog.Policy) []change.Change {
	var out []change.Change
	created, dropped, common := Partition(main, branch)

	for _, id := range created {
		p := branch[id]
		out = append(out, change.NewCreate(catalog.ObjectTypePolicy, id, "create policy "+p.Name, func() string { return createPolicySQL(p) }))
	}
	for _, id := range dropped {
		p := main[id]
		out = append(out, change.NewDrop(catalog.ObjectTypePolicy, id, "drop policy "+p.Name,
			func() string { return fmt.Sprintf("DROP POLICY %s ON %s", pq.QuoteIdentifier(p.Name), qualified(p.Schema, p.Table)) }))
	}
	for _, id := range common {
		m, b := main[id], branch[id]
		if m.Command != b.Command || m.Permissive != b.Permissive {
			// Command and permissive/restrictive are non-alterable (no
			// ALTER POLICY form changes them): replace.
			out = append(out, change.NewReplace(catalog.ObjectTypePolicy, id, "replace policy "+b.Name, func() string { return createPolicySQL(b) }))
			continue
		}
		if !m.Equal(b) {
			out = append(out, change.NewAlter(catalog.ObjectTypePolicy, id, "alter policy "+b.Name, func() string { return alterPolicySQL(b) }, id))
		}
	}
	return out
}

func createPolicySQL(p *catalog.Policy) string {
	kind := "PERMISSIVE"
	if !p.Permissive {
		kind = "RESTRICTIVE"
	}
	s := fmt.Sprintf("CREATE POLICY %s ON %s AS %s FOR %s", pq.QuoteIdentifier(p.Name), qualified(p.Schema, p.Table), kind, p.Command)
	if len(p.Roles) > 0 {
		s += " TO " + joinIdents(p.Roles)
	}
	if v, ok := catalog.StringValue(p.Using); ok {
		s += " USING (" + v + ")"
	}
	if v, ok := catalog.StringValue(p.WithCheck); ok {
		s += " WITH CHECK (" + v + ")"
	}
	return s
}

func alterPolicySQL(p *catalog.Policy) string {
	s := fmt.Sprintf("ALTER POLICY %s ON %s", pq.QuoteIdentifier(p.Name), qualified(p.Schema, p.Table))
	if len(p.Roles) > 0 {
		s += " TO " + joinIdents(p.Roles)
	}
	if v, ok := catalog.StringValue(p.Using); ok {
		s += " USING (" + v + ")"
	}
	if v, ok := catalog.StringValue(p.WithCheck); ok {
		s += " WITH CHECK (" + v + ")"
	}
	return s
}

func joinIdents(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += pq.QuoteIdentifier(n)
	}
	return out
}
