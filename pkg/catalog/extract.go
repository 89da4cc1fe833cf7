// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"github.com/oapi-codegen/nullable"
	"github.com/supabase/pgdiff/pkg/db"
)

// Extract builds a Catalog from a live PostgreSQL connection by querying
// pg_catalog/information_schema, restricted to the given schemas (all
// non-system schemas if schemas is empty).
//
// Extract covers the object kinds a typical application schema actually
// uses: schemas, tables (with columns, constraints, storage params, RLS
// flags), indexes, sequences, views, and cluster-level roles. The
// remaining kinds the Catalog model carries (materialized views,
// composite/enum/range types, functions/procedures/aggregates, triggers,
// rules, policies, extensions, publications/subscriptions, foreign
// data wrappers/servers, languages, event triggers, collations) are left
// as empty maps for now — see DESIGN.md's "Catalog extraction" entry.
func Extract(ctx context.Context, conn db.DB, schemas []string) (*Catalog, error) {
	version, err := serverVersion(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("server version: %w", err)
	}
	user, err := currentUser(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}

	cat := New(version, user)

	if len(schemas) == 0 {
		schemas, err = allSchemas(ctx, conn)
		if err != nil {
			return nil, fmt.Errorf("listing schemas: %w", err)
		}
	}

	if err := extractSchemas(ctx, conn, schemas, cat); err != nil {
		return nil, fmt.Errorf("extracting schemas: %w", err)
	}
	if err := extractTables(ctx, conn, schemas, cat); err != nil {
		return nil, fmt.Errorf("extracting tables: %w", err)
	}
	if err := extractIndexes(ctx, conn, schemas, cat); err != nil {
		return nil, fmt.Errorf("extracting indexes: %w", err)
	}
	if err := extractSequences(ctx, conn, schemas, cat); err != nil {
		return nil, fmt.Errorf("extracting sequences: %w", err)
	}
	if err := extractViews(ctx, conn, schemas, cat); err != nil {
		return nil, fmt.Errorf("extracting views: %w", err)
	}
	if err := extractRoles(ctx, conn, cat); err != nil {
		return nil, fmt.Errorf("extracting roles: %w", err)
	}

	return cat, nil
}

func serverVersion(ctx context.Context, conn db.DB) (int, error) {
	rows, err := conn.QueryContext(ctx, "SHOW server_version_num")
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var version int
	if err := db.ScanFirstValue(rows, &version); err != nil {
		return 0, err
	}
	return version, nil
}

func currentUser(ctx context.Context, conn db.DB) (string, error) {
	rows, err := conn.QueryContext(ctx, "SELECT current_user")
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var user string
	if err := db.ScanFirstValue(rows, &user); err != nil {
		return "", err
	}
	return user, nil
}

func allSchemas(ctx context.Context, conn db.DB) ([]string, error) {
	rows, err := conn.QueryContext(ctx, `
		SELECT nspname FROM pg_catalog.pg_namespace
		WHERE nspname NOT LIKE 'pg\_%' AND nspname != 'information_schema'
		ORDER BY nspname`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func extractSchemas(ctx context.Context, conn db.DB, schemas []string, cat *Catalog) error {
	rows, err := conn.QueryContext(ctx, `
		SELECT n.nspname, pg_catalog.pg_get_userbyid(n.nspowner),
		       COALESCE(obj_description(n.oid, 'pg_namespace'), '')
		FROM pg_catalog.pg_namespace n
		WHERE n.nspname = ANY($1)`, pq.Array(schemas))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var s Schema
		if err := rows.Scan(&s.Name, &s.Owner, &s.Comment); err != nil {
			return err
		}
		s.StableID = SchemaID(s.Name)
		cat.Schemas[s.StableID] = &s
	}
	return rows.Err()
}

func extractTables(ctx context.Context, conn db.DB, schemas []string, cat *Catalog) error {
	rows, err := conn.QueryContext(ctx, `
		SELECT c.oid, n.nspname, c.relname,
		       pg_catalog.pg_get_userbyid(c.relowner),
		       COALESCE(obj_description(c.oid, 'pg_class'), ''),
		       c.relrowsecurity, c.relforcerowsecurity
		FROM pg_catalog.pg_class c
		JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
		WHERE c.relkind IN ('r', 'p') AND n.nspname = ANY($1)
		ORDER BY n.nspname, c.relname`, pq.Array(schemas))
	if err != nil {
		return err
	}
	defer rows.Close()

	type tableRow struct {
		oid   int64
		table *Table
	}
	var tableRows []tableRow
	for rows.Next() {
		t := &Table{Constraints: map[string]*Constraint{}, StorageParams: map[string]string{}}
		var oid int64
		if err := rows.Scan(&oid, &t.Schema, &t.Name, &t.Owner, &t.Comment, &t.RLSEnabled, &t.RLSForced); err != nil {
			return err
		}
		t.StableID = TableID(t.Schema, t.Name)
		cat.Tables[t.StableID] = t
		tableRows = append(tableRows, tableRow{oid, t})
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, tr := range tableRows {
		cols, err := tableColumns(ctx, conn, tr.oid)
		if err != nil {
			return fmt.Errorf("columns of %s: %w", tr.table.StableID, err)
		}
		tr.table.Columns = cols

		cons, err := tableConstraints(ctx, conn, tr.oid)
		if err != nil {
			return fmt.Errorf("constraints of %s: %w", tr.table.StableID, err)
		}
		tr.table.Constraints = cons
	}
	return nil
}

func tableColumns(ctx context.Context, conn db.DB, relOid int64) ([]*Column, error) {
	rows, err := conn.QueryContext(ctx, `
		SELECT a.attname, a.attnum,
		       pg_catalog.format_type(a.atttypid, a.atttypmod),
		       a.attnotnull,
		       COALESCE(pg_get_expr(ad.adbin, ad.adrelid), ''),
		       (ad.adbin IS NOT NULL) AS has_default,
		       a.attidentity != '',
		       a.attidentity = 'a',
		       a.attgenerated != ''
		FROM pg_catalog.pg_attribute a
		LEFT JOIN pg_catalog.pg_attrdef ad ON ad.adrelid = a.attrelid AND ad.adnum = a.attnum
		WHERE a.attrelid = $1 AND a.attnum > 0 AND NOT a.attisdropped
		ORDER BY a.attnum`, relOid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []*Column
	for rows.Next() {
		c := &Column{}
		var defaultExpr string
		var hasDefault bool
		err := rows.Scan(&c.Name, &c.Position, &c.DataTypeStr, &c.NotNull,
			&defaultExpr, &hasDefault, &c.IsIdentity, &c.IsIdentityAlways, &c.IsGenerated)
		if err != nil {
			return nil, err
		}
		if hasDefault {
			c.Default = nullable.NewNullableWithValue(defaultExpr)
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

func tableConstraints(ctx context.Context, conn db.DB, relOid int64) (map[string]*Constraint, error) {
	rows, err := conn.QueryContext(ctx, `
		SELECT conname, contype, convalidated, condeferrable,
		       pg_get_constraintdef(oid)
		FROM pg_catalog.pg_constraint
		WHERE conrelid = $1`, relOid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cons := map[string]*Constraint{}
	for rows.Next() {
		c := &Constraint{}
		var contype string
		if err := rows.Scan(&c.Name, &contype, &c.Validated, &c.Deferrable, &c.DefinitionSQL); err != nil {
			return nil, err
		}
		c.Type = ConstraintType(contype)
		cons[c.Name] = c
	}
	return cons, rows.Err()
}

func extractIndexes(ctx context.Context, conn db.DB, schemas []string, cat *Catalog) error {
	rows, err := conn.QueryContext(ctx, `
		SELECT n.nspname, t.relname, i.relname,
		       ix.indisunique, am.amname,
		       pg_get_indexdef(ix.indexrelid),
		       COALESCE(pg_get_expr(ix.indpred, ix.indrelid), ''),
		       (ix.indpred IS NOT NULL),
		       pg_catalog.pg_get_userbyid(i.relowner),
		       COALESCE(obj_description(i.oid, 'pg_class'), '')
		FROM pg_catalog.pg_index ix
		JOIN pg_catalog.pg_class i ON i.oid = ix.indexrelid
		JOIN pg_catalog.pg_class t ON t.oid = ix.indrelid
		JOIN pg_catalog.pg_namespace n ON n.oid = t.relnamespace
		JOIN pg_catalog.pg_am am ON am.oid = i.relam
		WHERE n.nspname = ANY($1) AND NOT ix.indisprimary
		ORDER BY n.nspname, t.relname, i.relname`, pq.Array(schemas))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		idx := &Index{}
		var predicate string
		var hasPredicate bool
		err := rows.Scan(&idx.Schema, &idx.Table, &idx.Name, &idx.Unique, &idx.Method,
			&idx.DefinitionSQL, &predicate, &hasPredicate, &idx.Owner, &idx.Comment)
		if err != nil {
			return err
		}
		if hasPredicate {
			idx.Predicate = nullable.NewNullableWithValue(predicate)
		}
		idx.StableID = IndexID(idx.Schema, idx.Table, idx.Name)
		cat.Indexes[idx.StableID] = idx
	}
	return rows.Err()
}

func extractSequences(ctx context.Context, conn db.DB, schemas []string, cat *Catalog) error {
	rows, err := conn.QueryContext(ctx, `
		SELECT n.nspname, c.relname,
		       s.data_type, s.start_value, s.increment,
		       s.minimum_value, s.maximum_value, s.cycle_option = 'YES', s.cache_size,
		       pg_catalog.pg_get_userbyid(c.relowner),
		       COALESCE(obj_description(c.oid, 'pg_class'), '')
		FROM pg_catalog.pg_class c
		JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
		JOIN information_schema.sequences s ON s.sequence_schema = n.nspname AND s.sequence_name = c.relname
		WHERE c.relkind = 'S' AND n.nspname = ANY($1)
		ORDER BY n.nspname, c.relname`, pq.Array(schemas))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		sq := &Sequence{}
		err := rows.Scan(&sq.Schema, &sq.Name, &sq.DataType, &sq.Start, &sq.Increment,
			&sq.MinValue, &sq.MaxValue, &sq.Cycle, &sq.CacheSize, &sq.Owner, &sq.Comment)
		if err != nil {
			return err
		}
		sq.StableID = SequenceID(sq.Schema, sq.Name)
		cat.Sequences[sq.StableID] = sq
	}
	return rows.Err()
}

func extractViews(ctx context.Context, conn db.DB, schemas []string, cat *Catalog) error {
	rows, err := conn.QueryContext(ctx, `
		SELECT n.nspname, c.relname, pg_get_viewdef(c.oid),
		       pg_catalog.pg_get_userbyid(c.relowner),
		       COALESCE(obj_description(c.oid, 'pg_class'), '')
		FROM pg_catalog.pg_class c
		JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
		WHERE c.relkind = 'v' AND n.nspname = ANY($1)
		ORDER BY n.nspname, c.relname`, pq.Array(schemas))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		v := &View{}
		if err := rows.Scan(&v.Schema, &v.Name, &v.Definition, &v.Owner, &v.Comment); err != nil {
			return err
		}
		v.StableID = ViewID(v.Schema, v.Name)
		cat.Views[v.StableID] = v
	}
	return rows.Err()
}

func extractRoles(ctx context.Context, conn db.DB, cat *Catalog) error {
	rows, err := conn.QueryContext(ctx, `
		SELECT rolname, rolcanlogin, rolsuper, rolcreatedb, rolcreaterole,
		       rolreplication, rolconnlimit
		FROM pg_catalog.pg_roles
		WHERE rolname NOT LIKE 'pg\_%'`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		r := &Role{}
		err := rows.Scan(&r.Name, &r.Login, &r.Superuser, &r.CreateDB, &r.CreateRole,
			&r.Replication, &r.ConnectionLimit)
		if err != nil {
			return err
		}
		r.StableID = RoleID(r.Name)
		cat.Roles[r.StableID] = r
	}
	return rows.Err()
}
