// SPDX-License-Identifier: Apache-2.0

package diff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supabase/pgdiff/pkg/catalog"
	"github.com/supabase/pgdiff/pkg/change"
	"github.com/supabase/pgdiff/pkg/diff"
)

func schemaMap(schemas ...*catalog.Schema) map[catalog.StableID]*catalog.Schema {
	out := map[catalog.StableID]*catalog.Schema{}
	for _, s := range schemas {
		out[s.StableID] = s
	}
	return out
}

func tableMap(tables ...*catalog.Table) map[catalog.StableID]*catalog.Table {
	out := map[catalog.StableID]*catalog.Table{}
	for _, t := range tables {
		out[t.StableID] = t
	}
	return out
}

func changesOfType(changes []change.Change, op change.Operation) []change.Change {
	var out []change.Change
	for _, c := range changes {
		if c.Operation() == op {
			out = append(out, c)
		}
	}
	return out
}

func TestDiffSchemasCreate(t *testing.T) {
	id := catalog.SchemaID("reporting")
	branch := schemaMap(&catalog.Schema{StableID: id, Name: "reporting", Owner: "admin"})

	changes := diff.DiffSchemas(nil, schemaMap(), branch)

	require.Len(t, changes, 1)
	assert.Equal(t, change.OpCreate, changes[0].Operation())
	assert.Equal(t, catalog.ObjectTypeSchema, changes[0].ObjectType())
	assert.Equal(t, id, changes[0].StableID())
	assert.Contains(t, changes[0].Serialize(), "CREATE SCHEMA")
}

func TestDiffSchemasDrop(t *testing.T) {
	id := catalog.SchemaID("reporting")
	main := schemaMap(&catalog.Schema{StableID: id, Name: "reporting", Owner: "admin"})

	changes := diff.DiffSchemas(nil, main, schemaMap())

	require.Len(t, changes, 1)
	assert.Equal(t, change.OpDrop, changes[0].Operation())
	assert.Contains(t, changes[0].Serialize(), "DROP SCHEMA")
}

func TestDiffSchemasUnchangedYieldsNoChanges(t *testing.T) {
	id := catalog.SchemaID("reporting")
	s := &catalog.Schema{StableID: id, Name: "reporting", Owner: "admin"}

	changes := diff.DiffSchemas(nil, schemaMap(s), schemaMap(s))

	assert.Empty(t, changes)
}

func TestDiffSchemasOwnerChangeEmitsAlterRequiringItself(t *testing.T) {
	id := catalog.SchemaID("reporting")
	main := schemaMap(&catalog.Schema{StableID: id, Name: "reporting", Owner: "admin"})
	branch := schemaMap(&catalog.Schema{StableID: id, Name: "reporting", Owner: "app_owner"})

	changes := diff.DiffSchemas(nil, main, branch)

	require.Len(t, changes, 1)
	assert.Equal(t, change.OpAlter, changes[0].Operation())
	assert.Equal(t, []catalog.StableID{id}, changes[0].Requires())
	assert.Contains(t, changes[0].Serialize(), "OWNER TO")
}

func TestDiffTablesCreateEmitsSingleCreate(t *testing.T) {
	id := catalog.TableID("public", "widgets")
	branch := tableMap(&catalog.Table{
		StableID: id,
		Schema:   "public",
		Name:     "widgets",
		Columns:  []*catalog.Column{{Name: "id", DataTypeStr: "integer"}},
	})

	changes := diff.DiffTables(nil, tableMap(), branch)

	creates := changesOfType(changes, change.OpCreate)
	require.Len(t, creates, 1)
	assert.Equal(t, id, creates[0].StableID())
}

func TestDiffTablesDrop(t *testing.T) {
	id := catalog.TableID("public", "widgets")
	main := tableMap(&catalog.Table{StableID: id, Schema: "public", Name: "widgets"})

	changes := diff.DiffTables(nil, main, tableMap())

	require.Len(t, changes, 1)
	assert.Equal(t, change.OpDrop, changes[0].Operation())
	assert.Contains(t, changes[0].Serialize(), "DROP TABLE")
}

func TestDiffTablesAddedColumnEmitsAddColumn(t *testing.T) {
	id := catalog.TableID("public", "widgets")
	m := &catalog.Table{StableID: id, Schema: "public", Name: "widgets",
		Columns: []*catalog.Column{{Name: "id", DataTypeStr: "integer"}}}
	b := &catalog.Table{StableID: id, Schema: "public", Name: "widgets",
		Columns: []*catalog.Column{
			{Name: "id", DataTypeStr: "integer"},
			{Name: "label", DataTypeStr: "text"},
		}}

	changes := diff.DiffTables(nil, tableMap(m), tableMap(b))

	require.Len(t, changes, 1)
	assert.Contains(t, changes[0].Serialize(), "label")
}

func TestDiffTablesColumnTypeChangeEmitsAlterColumn(t *testing.T) {
	id := catalog.TableID("public", "widgets")
	m := &catalog.Table{StableID: id, Schema: "public", Name: "widgets",
		Columns: []*catalog.Column{{Name: "count", DataTypeStr: "integer"}}}
	b := &catalog.Table{StableID: id, Schema: "public", Name: "widgets",
		Columns: []*catalog.Column{{Name: "count", DataTypeStr: "bigint"}}}

	changes := diff.DiffTables(nil, tableMap(m), tableMap(b))

	require.Len(t, changes, 1)
	assert.Equal(t, change.OpAlter, changes[0].Operation())
}

func TestDiffTablesUnchangedYieldsNoChanges(t *testing.T) {
	tbl := &catalog.Table{
		StableID: catalog.TableID("public", "widgets"),
		Schema:   "public",
		Name:     "widgets",
		Columns:  []*catalog.Column{{Name: "id", DataTypeStr: "integer"}},
	}

	changes := diff.DiffTables(nil, tableMap(tbl), tableMap(tbl))

	assert.Empty(t, changes)
}

func TestDiffTablesOwnerChangeRequiresTheTableItself(t *testing.T) {
	id := catalog.TableID("public", "widgets")
	m := &catalog.Table{StableID: id, Schema: "public", Name: "widgets", Owner: "admin"}
	b := &catalog.Table{StableID: id, Schema: "public", Name: "widgets", Owner: "app_owner"}

	changes := diff.DiffTables(nil, tableMap(m), tableMap(b))

	require.Len(t, changes, 1)
	assert.Equal(t, []catalog.StableID{id}, changes[0].Requires())
}

func TestDiffTablesRowSecurityToggle(t *testing.T) {
	id := catalog.TableID("public", "widgets")
	m := &catalog.Table{StableID: id, Schema: "public", Name: "widgets", RLSEnabled: false}
	b := &catalog.Table{StableID: id, Schema: "public", Name: "widgets", RLSEnabled: true}

	changes := diff.DiffTables(nil, tableMap(m), tableMap(b))

	require.Len(t, changes, 1)
	assert.Contains(t, changes[0].Serialize(), "ENABLE ROW LEVEL SECURITY")
}

func TestDiffCombinesEveryObjectKind(t *testing.T) {
	schemaID := catalog.SchemaID("reporting")
	tableID := catalog.TableID("public", "widgets")

	main := catalog.New(160000, "postgres")
	branch := catalog.New(160000, "postgres")
	branch.Schemas[schemaID] = &catalog.Schema{StableID: schemaID, Name: "reporting", Owner: "admin"}
	branch.Tables[tableID] = &catalog.Table{StableID: tableID, Schema: "public", Name: "widgets"}

	changes := diff.Diff(main.Context(), main, branch)

	var sawSchema, sawTable bool
	for _, c := range changes {
		switch c.StableID() {
		case schemaID:
			sawSchema = true
		case tableID:
			sawTable = true
		}
		assert.Equal(t, change.OpCreate, c.Operation())
	}
	assert.True(t, sawSchema)
	assert.True(t, sawTable)
}

func TestDiffOfTwoEmptyCatalogsIsEmpty(t *testing.T) {
	main := catalog.New(160000, "postgres")
	branch := catalog.New(160000, "postgres")

	assert.Empty(t, diff.Diff(main.Context(), main, branch))
}
