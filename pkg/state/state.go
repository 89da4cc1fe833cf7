// SPDX-License-Identifier: Apache-2.0

// Package state records the plan envelopes pgdiff has applied against a
// database, in a dedicated schema, so a later `status`/`history` invocation
// can report what was last applied without re-running a diff.
package state

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/supabase/pgdiff/pkg/db"
)

const sqlInit = `
CREATE SCHEMA IF NOT EXISTS %[1]s;

CREATE TABLE IF NOT EXISTS %[1]s.applied_plans (
	plan_id             UUID NOT NULL PRIMARY KEY,
	mode                TEXT NOT NULL,
	source_fingerprint  TEXT NOT NULL,
	target_fingerprint  TEXT NOT NULL,
	risk_level          TEXT NOT NULL,
	manifest            JSONB NOT NULL,
	applied_at          TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
);

CREATE INDEX IF NOT EXISTS applied_plans_applied_at ON %[1]s.applied_plans (applied_at);

CREATE TABLE IF NOT EXISTS %[1]s.pgdiff_version (
	version         TEXT NOT NULL,
	initialized_at  TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
);
`

// State tracks pgdiff's own applied-plan history inside the target
// database, independent of the catalogs being diffed.
type State struct {
	conn    db.DB
	schema  string
	version string
}

// New opens a connection to pgURL, scoped to stateSchema's search_path, and
// wraps it in the retrying db.DB transport used throughout pgdiff.
func New(ctx context.Context, pgURL, stateSchema string, opts ...StateOpt) (*State, error) {
	dsn, err := pq.ParseURL(pgURL)
	if err != nil {
		dsn = pgURL
	}
	dsn += " search_path=" + stateSchema

	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := conn.PingContext(ctx); err != nil {
		return nil, err
	}

	s := &State{
		conn:   &db.RDB{DB: conn},
		schema: stateSchema,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Init creates the state schema and tables if they do not already exist,
// recording the pgdiff version that performed initialization.
func (s *State) Init(ctx context.Context) error {
	return s.conn.WithRetryableTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		// Arbitrary key, distinct from any lock pgdiff takes elsewhere;
		// released automatically on commit/rollback.
		const key int64 = 0x70676466696666
		if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", key); err != nil {
			return err
		}

		stmt := fmt.Sprintf(sqlInit, pq.QuoteIdentifier(s.schema))
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			fmt.Sprintf("INSERT INTO %s.pgdiff_version (version) VALUES ($1)", pq.QuoteIdentifier(s.schema)),
			s.version)
		return err
	})
}

// IsInitialized reports whether the state schema already exists.
func (s *State) IsInitialized(ctx context.Context) (bool, error) {
	rows, err := s.conn.QueryContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM information_schema.schemata WHERE schema_name = $1)", s.schema)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	var exists bool
	if err := db.ScanFirstValue(rows, &exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Schema returns the dedicated state schema name.
func (s *State) Schema() string {
	return s.schema
}

func (s *State) Close() error {
	return s.conn.Close()
}
