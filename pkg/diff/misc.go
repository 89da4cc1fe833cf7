// SPDX-License-Identifier: Apache-2.0

package diff

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/supabase/pgdiff/pkg/catalog"
	"github.com/supabase/pgdiff/pkg/change"
)

// DiffExtensions implements spec.md §4.1.4: schema and version are
// alterable via ALTER EXTENSION.
func DiffExtensions(ctx *catalog.DiffContext, main, branch map[catalog.StableID]*catalog.Extension) []change.Change {
	var out []change.Change
	created, dropped, common := Partition(main, branch)

	for _, id := range created {
		e := branch[id]
		out = append(out, change.NewCreate(catalog.ObjectTypeExtension, id, "create extension "+e.Name,
			func() string {
				return fmt.Sprintf("CREATE EXTENSION %s SCHEMA %s VERSION %s", pq.QuoteIdentifier(e.Name), pq.QuoteIdentifier(e.Schema), quoteLit(e.Version))
			}))
	}
	for _, id := range dropped {
		e := main[id]
		out = append(out, change.NewDrop(catalog.ObjectTypeExtension, id, "drop extension "+e.Name,
			func() string { return "DROP EXTENSION " + pq.QuoteIdentifier(e.Name) }))
	}
	for _, id := range common {
		m, b := main[id], branch[id]
		if m.Schema != b.Schema {
			out = append(out, change.NewAlter(catalog.ObjectTypeExtension, id, "alter extension schema",
				func() string { return "ALTER EXTENSION " + pq.QuoteIdentifier(b.Name) + " SET SCHEMA " + pq.QuoteIdentifier(b.Schema) }, id))
		}
		if m.Version != b.Version {
			out = append(out, change.NewAlter(catalog.ObjectTypeExtension, id, "alter extension version",
				func() string { return "ALTER EXTENSION " + pq.QuoteIdentifier(b.Name) + " UPDATE TO " + quoteLit(b.Version) }, id))
		}
	}
	return out
}

// DiffPublications implements spec.md §4.1.4: table set and DML flags are
// alterable via ALTER PUBLICATION.
func DiffPublications(ctx *catalog.DiffContext, main, branch map[catalog.StableID]*catalog.Publication) []change.Change {
	var out []change.Change
	created, dropped, common := Partition(main, branch)

	for _, id := range created {
		p := branch[id]
		out = append(out, change.NewCreate(catalog.ObjectTypePublication, id, "create publication "+p.Name, func() string { return createPublicationSQL(p) }))
		out = append(out, ownerOnCreate(ctx, catalog.ObjectTypePublication, id, "alter publication owner", p.Owner,
			func() string { return "ALTER PUBLICATION " + pq.QuoteIdentifier(p.Name) + " OWNER TO " + pq.QuoteIdentifier(p.Owner) })...)
	}
	for _, id := range dropped {
		p := main[id]
		out = append(out, change.NewDrop(catalog.ObjectTypePublication, id, "drop publication "+p.Name,
			func() string { return "DROP PUBLICATION " + pq.QuoteIdentifier(p.Name) }))
	}
	for _, id := range common {
		m, b := main[id], branch[id]
		if !m.Equal(b) {
			out = append(out, change.NewAlter(catalog.ObjectTypePublication, id, "alter publication "+b.Name, func() string { return alterPublicationSQL(b) }, id))
		}
		if m.Owner != b.Owner {
			owner := b.Owner
			out = append(out, change.NewAlter(catalog.ObjectTypePublication, id, "alter publication owner",
				func() string { return "ALTER PUBLICATION " + pq.QuoteIdentifier(b.Name) + " OWNER TO " + pq.QuoteIdentifier(owner) }, id))
		}
	}
	return out
}

func publicationOptionsSQL(p *catalog.Publication) string {
	var ops []string
	if p.Insert {
		ops = append(ops, "insert")
	}
	if p.Update {
		ops = append(ops, "update")
	}
	if p.Delete {
		ops = append(ops, "delete")
	}
	if p.Truncate {
		ops = append(ops, "truncate")
	}
	return fmt.Sprintf(" WITH (publish = '%s')", strings.Join(ops, ", "))
}

func createPublicationSQL(p *catalog.Publication) string {
	target := " FOR ALL TABLES"
	if !p.AllTables {
		target = " FOR TABLE " + strings.Join(p.Tables, ", ")
	}
	return "CREATE PUBLICATION " + pq.QuoteIdentifier(p.Name) + target + publicationOptionsSQL(p)
}

func alterPublicationSQL(p *catalog.Publication) string {
	target := " SET ALL TABLES"
	if !p.AllTables {
		target = " SET TABLE " + strings.Join(p.Tables, ", ")
	}
	return "ALTER PUBLICATION " + pq.QuoteIdentifier(p.Name) + target + publicationOptionsSQL(p)
}

// DiffSubscriptions implements spec.md §4.1.4: connection, publication
// set, and enabled state are alterable via ALTER SUBSCRIPTION.
func DiffSubscriptions(ctx *catalog.DiffContext, main, branch map[catalog.StableID]*catalog.Subscription) []change.Change {
	var out []change.Change
	created, dropped, common := Partition(main, branch)

	for _, id := range created {
		s := branch[id]
		out = append(out, change.NewCreate(catalog.ObjectTypeSubscription, id, "create subscription "+s.Name, func() string { return createSubscriptionSQL(s) }))
	}
	for _, id := range dropped {
		s := main[id]
		out = append(out, change.NewDrop(catalog.ObjectTypeSubscription, id, "drop subscription "+s.Name,
			func() string { return "DROP SUBSCRIPTION " + pq.QuoteIdentifier(s.Name) }))
	}
	for _, id := range common {
		m, b := main[id], branch[id]
		if m.Connection != b.Connection {
			out = append(out, change.NewAlter(catalog.ObjectTypeSubscription, id, "alter subscription connection",
				func() string { return "ALTER SUBSCRIPTION " + pq.QuoteIdentifier(b.Name) + " CONNECTION " + quoteLit(b.Connection) }, id))
		}
		if !equalStringSlice(sorted(m.Publications), sorted(b.Publications)) {
			out = append(out, change.NewAlter(catalog.ObjectTypeSubscription, id, "alter subscription publication",
				func() string { return "ALTER SUBSCRIPTION " + pq.QuoteIdentifier(b.Name) + " SET PUBLICATION " + strings.Join(b.Publications, ", ") }, id))
		}
		if m.Enabled != b.Enabled {
			state := "ENABLE"
			if !b.Enabled {
				state = "DISABLE"
			}
			out = append(out, change.NewAlter(catalog.ObjectTypeSubscription, id, "alter subscription enabled state",
				func() string { return "ALTER SUBSCRIPTION " + pq.QuoteIdentifier(b.Name) + " " + state }, id))
		}
	}
	return out
}

func createSubscriptionSQL(s *catalog.Subscription) string {
	return fmt.Sprintf("CREATE SUBSCRIPTION %s CONNECTION %s PUBLICATION %s",
		pq.QuoteIdentifier(s.Name), quoteLit(s.Connection), strings.Join(s.Publications, ", "))
}

func sorted(s []string) []string {
	out := append([]string{}, s...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// DiffForeignDataWrappers implements spec.md §4.1.4: handler/validator
// are non-alterable (no ALTER FOREIGN DATA WRAPPER form changes them);
// only options are alterable.
func DiffForeignDataWrappers(ctx *catalog.DiffContext, main, branch map[catalog.StableID]*catalog.ForeignDataWrapper) []change.Change {
	var out []change.Change
	created, dropped, common := Partition(main, branch)

	for _, id := range created {
		f := branch[id]
		out = append(out, change.NewCreate(catalog.ObjectTypeForeignDataWrapper, id, "create foreign data wrapper "+f.Name, func() string { return createFDWSQL(f) }))
	}
	for _, id := range dropped {
		f := main[id]
		out = append(out, change.NewDrop(catalog.ObjectTypeForeignDataWrapper, id, "drop foreign data wrapper "+f.Name,
			func() string { return "DROP FOREIGN DATA WRAPPER " + pq.QuoteIdentifier(f.Name) }))
	}
	for _, id := range common {
		m, b := main[id], branch[id]
		if m.Handler != b.Handler || m.Validator != b.Validator {
			out = append(out, change.NewReplace(catalog.ObjectTypeForeignDataWrapper, id, "replace foreign data wrapper "+b.Name, func() string { return createFDWSQL(b) }))
			continue
		}
		if set, reset := change.DiffStorageParams(m.Options, b.Options); len(set) > 0 || len(reset) > 0 {
			out = append(out, change.NewAlterStorageOptions(catalog.ObjectTypeForeignDataWrapper, id, "FOREIGN DATA WRAPPER", set, reset))
		}
	}
	return out
}

func createFDWSQL(f *catalog.ForeignDataWrapper) string {
	s := "CREATE FOREIGN DATA WRAPPER " + pq.QuoteIdentifier(f.Name)
	if f.Handler != "" {
		s += " HANDLER " + f.Handler
	}
	if f.Validator != "" {
		s += " VALIDATOR " + f.Validator
	}
	return s + optionsClauseSQL(f.Options)
}

func optionsClauseSQL(opts map[string]string) string {
	if len(opts) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(opts))
	for k, v := range opts {
		pairs = append(pairs, fmt.Sprintf("%s %s", k, quoteLit(v)))
	}
	return " OPTIONS (" + strings.Join(pairs, ", ") + ")"
}

// DiffForeignServers implements spec.md §4.1.4: version and options are
// alterable via ALTER SERVER; the server type has no ALTER form, so a
// type change forces a Replace.
func DiffForeignServers(ctx *catalog.DiffContext, main, branch map[catalog.StableID]*catalog.ForeignServer) []change.Change {
	var out []change.Change
	created, dropped, common := Partition(main, branch)

	for _, id := range created {
		s := branch[id]
		sql := pq.QuoteIdentifier(s.Name)
		out = append(out, change.NewCreate(catalog.ObjectTypeForeignServer, id, "create server "+s.Name, func() string { return createServerSQL(s) }))
		out = append(out, ownerOnCreate(ctx, catalog.ObjectTypeForeignServer, id, "alter server owner", s.Owner,
			func() string { return "ALTER SERVER " + sql + " OWNER TO " + pq.QuoteIdentifier(s.Owner) })...)
		out = append(out, DiffPrivilegesForCreate(ctx, PrivilegeTarget{ID: id, SQL: sql, Kind: change.GrantKindServer}, "FOREIGN SERVER", "", s.Privileges)...)
	}
	for _, id := range dropped {
		s := main[id]
		out = append(out, change.NewDrop(catalog.ObjectTypeForeignServer, id, "drop server "+s.Name,
			func() string { return "DROP SERVER " + pq.QuoteIdentifier(s.Name) }))
	}
	for _, id := range common {
		m, b := main[id], branch[id]
		sql := pq.QuoteIdentifier(b.Name)
		if m.Type != b.Type {
			out = append(out, change.NewReplace(catalog.ObjectTypeForeignServer, id, "replace server "+b.Name,
				func() string { return "DROP SERVER " + sql + ";\n" + createServerSQL(b) }))
			continue
		}
		if m.Version != b.Version {
			out = append(out, change.NewAlter(catalog.ObjectTypeForeignServer, id, "alter server version",
				func() string { return fmt.Sprintf("ALTER SERVER %s VERSION %s", sql, quoteLit(b.Version)) }, id))
		}
		if set, reset := change.DiffStorageParams(m.Options, b.Options); len(set) > 0 || len(reset) > 0 {
			out = append(out, change.NewAlterStorageOptions(catalog.ObjectTypeForeignServer, id, "SERVER", set, reset))
		}
		if m.Owner != b.Owner {
			owner := b.Owner
			out = append(out, change.NewAlter(catalog.ObjectTypeForeignServer, id, "alter server owner",
				func() string { return "ALTER SERVER " + sql + " OWNER TO " + pq.QuoteIdentifier(owner) }, id))
		}
		out = append(out, DiffPrivileges(PrivilegeTarget{ID: id, SQL: sql, Kind: change.GrantKindServer}, m.Privileges, b.Privileges)...)
	}
	return out
}

func createServerSQL(s *catalog.ForeignServer) string {
	sql := "CREATE SERVER " + pq.QuoteIdentifier(s.Name)
	if s.Type != "" {
		sql += " TYPE " + quoteLit(s.Type)
	}
	if s.Version != "" {
		sql += " VERSION " + quoteLit(s.Version)
	}
	sql += " FOREIGN DATA WRAPPER " + pq.QuoteIdentifier(s.FDW)
	return sql + optionsClauseSQL(s.Options)
}

// DiffUserMappings implements spec.md §4.1.4: options are alterable via
// ALTER USER MAPPING.
func DiffUserMappings(ctx *catalog.DiffContext, main, branch map[catalog.StableID]*catalog.UserMapping) []change.Change {
	var out []change.Change
	created, dropped, common := Partition(main, branch)

	for _, id := range created {
		u := branch[id]
		out = append(out, change.NewCreate(catalog.ObjectTypeUserMapping, id, "create user mapping",
			func() string { return fmt.Sprintf("CREATE USER MAPPING FOR %s SERVER %s%s", pq.QuoteIdentifier(u.User), pq.QuoteIdentifier(u.Server), optionsClauseSQL(u.Options)) }))
	}
	for _, id := range dropped {
		u := main[id]
		out = append(out, change.NewDrop(catalog.ObjectTypeUserMapping, id, "drop user mapping",
			func() string { return fmt.Sprintf("DROP USER MAPPING FOR %s SERVER %s", pq.QuoteIdentifier(u.User), pq.QuoteIdentifier(u.Server)) }))
	}
	for _, id := range common {
		m, b := main[id], branch[id]
		if set, reset := change.DiffStorageParams(m.Options, b.Options); len(set) > 0 || len(reset) > 0 {
			out = append(out, change.NewAlterStorageOptions(catalog.ObjectTypeUserMapping, id, fmt.Sprintf("USER MAPPING FOR %s SERVER %s", pq.QuoteIdentifier(b.User), pq.QuoteIdentifier(b.Server)), set, reset))
		}
	}
	return out
}

// DiffLanguages implements spec.md §4.1.4: any handler change forces a
// Replace.
func DiffLanguages(ctx *catalog.DiffContext, main, branch map[catalog.StableID]*catalog.Language) []change.Change {
	var out []change.Change
	created, dropped, common := Partition(main, branch)

	for _, id := range created {
		l := branch[id]
		out = append(out, change.NewCreate(catalog.ObjectTypeLanguage, id, "create language "+l.Name, func() string { return createLanguageSQL(l) }))
		out = append(out, ownerOnCreate(ctx, catalog.ObjectTypeLanguage, id, "alter language owner", l.Owner,
			func() string { return "ALTER LANGUAGE " + pq.QuoteIdentifier(l.Name) + " OWNER TO " + pq.QuoteIdentifier(l.Owner) })...)
	}
	for _, id := range dropped {
		l := main[id]
		out = append(out, change.NewDrop(catalog.ObjectTypeLanguage, id, "drop language "+l.Name,
			func() string { return "DROP LANGUAGE " + pq.QuoteIdentifier(l.Name) }))
	}
	for _, id := range common {
		m, b := main[id], branch[id]
		if !m.Equal(b) {
			out = append(out, change.NewReplace(catalog.ObjectTypeLanguage, id, "replace language "+b.Name, func() string { return createLanguageSQL(b) }))
			continue
		}
		if m.Owner != b.Owner {
			owner := b.Owner
			out = append(out, change.NewAlter(catalog.ObjectTypeLanguage, id, "alter language owner",
				func() string { return "ALTER LANGUAGE " + pq.QuoteIdentifier(b.Name) + " OWNER TO " + pq.QuoteIdentifier(owner) }, id))
		}
	}
	return out
}

func createLanguageSQL(l *catalog.Language) string {
	trust := ""
	if l.Trusted {
		trust = "TRUSTED "
	}
	return fmt.Sprintf("CREATE %sLANGUAGE %s HANDLER %s INLINE %s VALIDATOR %s", trust, pq.QuoteIdentifier(l.Name), l.CallHandler, l.InlineHandler, l.Validator)
}

// DiffEventTriggers implements spec.md §4.1.4: event, function and tags
// are non-alterable and force a Replace; enabled-state is alterable.
func DiffEventTriggers(ctx *catalog.DiffContext, main, branch map[catalog.StableID]*catalog.EventTrigger) []change.Change {
	var out []change.Change
	created, dropped, common := Partition(main, branch)

	for _, id := range created {
		e := branch[id]
		out = append(out, change.NewCreate(catalog.ObjectTypeEventTrigger, id, "create event trigger "+e.Name, func() string { return createEventTriggerSQL(e) }))
	}
	for _, id := range dropped {
		e := main[id]
		out = append(out, change.NewDrop(catalog.ObjectTypeEventTrigger, id, "drop event trigger "+e.Name,
			func() string { return "DROP EVENT TRIGGER " + pq.QuoteIdentifier(e.Name) }))
	}
	for _, id := range common {
		m, b := main[id], branch[id]
		if m.Event != b.Event || m.Function != b.Function || !equalStringSlice(sorted(m.Tags), sorted(b.Tags)) {
			out = append(out, change.NewReplace(catalog.ObjectTypeEventTrigger, id, "replace event trigger "+b.Name, func() string { return createEventTriggerSQL(b) }))
			continue
		}
		if m.Enabled != b.Enabled {
			out = append(out, change.NewAlter(catalog.ObjectTypeEventTrigger, id, "alter event trigger enabled state",
				func() string { return "ALTER EVENT TRIGGER " + pq.QuoteIdentifier(b.Name) + " " + eventTriggerStateSQL(b.Enabled) }, id))
		}
	}
	return out
}

func eventTriggerStateSQL(state string) string {
	switch state {
	case "D":
		return "DISABLE"
	case "R":
		return "ENABLE REPLICA"
	case "A":
		return "ENABLE ALWAYS"
	default:
		return "ENABLE"
	}
}

func createEventTriggerSQL(e *catalog.EventTrigger) string {
	s := fmt.Sprintf("CREATE EVENT TRIGGER %s ON %s", pq.QuoteIdentifier(e.Name), e.Event)
	if len(e.Tags) > 0 {
		s += " WHEN TAG IN (" + quoteLitList(e.Tags) + ")"
	}
	return s + " EXECUTE FUNCTION " + e.Function
}

func quoteLitList(tags []string) string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = quoteLit(t)
	}
	return strings.Join(out, ", ")
}
