// SPDX-License-Identifier: Apache-2.0

package integration

import (
	"testing"

	"github.com/supabase/pgdiff/pkg/catalog"
	"github.com/supabase/pgdiff/pkg/change"
)

const schemaPath = "../../schema.json"

func createTable(schema, name string) change.Change {
	id := catalog.TableID(schema, name)
	return change.NewCreate(catalog.ObjectTypeTable, id, "create table", func() string {
		return "CREATE TABLE " + schema + "." + name + " ()"
	})
}

func TestCompileRejectsDocumentMissingWhen(t *testing.T) {
	raw := []byte(`rules: [{options: {skip: true}}]`)
	if _, err := Compile(schemaPath, raw); err == nil {
		t.Fatalf("expected a schema validation error")
	}
}

func TestCompileAcceptsValidDocument(t *testing.T) {
	raw := []byte(`
rules:
  - when: {objectType: table, namePattern: "^audit_.*"}
    options: {skip: true}
`)
	dsl, err := Compile(schemaPath, raw)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(dsl.Rules) != 1 {
		t.Fatalf("got %d rules", len(dsl.Rules))
	}
}

func TestDSLFirstMatchWins(t *testing.T) {
	raw := []byte(`
rules:
  - when: {objectType: table, namePattern: "^audit_.*"}
    options: {serialize: "-- audit table, managed elsewhere"}
  - when: {objectType: table}
    options: {serialize: "-- catch-all"}
`)
	dsl, err := Compile(schemaPath, raw)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	integ := dsl.ToIntegration()

	auditChange := createTable("public", "audit_log")
	sql, ok := integ.Serialize(auditChange)
	if !ok || sql != "-- audit table, managed elsewhere" {
		t.Fatalf("got sql=%q ok=%v", sql, ok)
	}

	otherChange := createTable("public", "widgets")
	sql, ok = integ.Serialize(otherChange)
	if !ok || sql != "-- catch-all" {
		t.Fatalf("got sql=%q ok=%v", sql, ok)
	}
}

func TestDSLSkipFiltersMatchedChanges(t *testing.T) {
	raw := []byte(`
rules:
  - when: {objectType: table, namePattern: "^tmp_.*"}
    options: {skip: true}
`)
	dsl, err := Compile(schemaPath, raw)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	integ := dsl.ToIntegration()

	tmp := createTable("public", "tmp_scratch")
	kept := createTable("public", "widgets")
	out := integ.ApplyFilter([]change.Change{tmp, kept})

	if len(out) != 1 || out[0] != kept {
		t.Fatalf("got %+v, want only the non-tmp table", out)
	}
}

func TestDSLSkipAuthorizationOnlyDropsPrivilegeScopedChanges(t *testing.T) {
	raw := []byte(`
rules:
  - when: {objectType: acl}
    options: {skipAuthorization: true}
`)
	dsl, err := Compile(schemaPath, raw)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	integ := dsl.ToIntegration()

	table := catalog.TableID("public", "widgets")
	grant := change.NewGrant(change.GrantKindTable, table, "public.widgets", "app_user", []catalog.Privilege{{Grantee: "app_user", Privilege: catalog.PrivilegeSelect}}, false, nil)
	out := integ.ApplyFilter([]change.Change{grant})
	if len(out) != 0 {
		t.Fatalf("expected the grant to be filtered out, got %+v", out)
	}
}

func TestComposeANDsFiltersAndChainsSerializeOverrides(t *testing.T) {
	first := &Integration{
		Filter: func(c change.Change) bool { return true },
	}
	second := &Integration{
		Filter:    func(c change.Change) bool { return c.ObjectType() == catalog.ObjectTypeTable },
		Serialize: func(c change.Change) (string, bool) { return "-- second", true },
	}
	combined := Compose(first, second)

	table := createTable("public", "widgets")
	id := catalog.SchemaID("app")
	schemaChange := change.NewCreate(catalog.ObjectTypeSchema, id, "create schema", func() string { return "" })

	out := combined.ApplyFilter([]change.Change{table, schemaChange})
	if len(out) != 1 || out[0] != table {
		t.Fatalf("expected only the table to survive, got %+v", out)
	}

	sql, ok := combined.Serialize(table)
	if !ok || sql != "-- second" {
		t.Fatalf("got sql=%q ok=%v", sql, ok)
	}
}
