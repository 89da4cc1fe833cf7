// SPDX-License-Identifier: Apache-2.0

package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/supabase/pgdiff/pkg/db"
	"golang.org/x/mod/semver"
)

var ErrSchemaNewerThanBinary = errors.New("pgdiff binary version is older than the state schema version")

// VersionCompatibility represents the result of comparing the pgdiff
// binary's version against the version recorded when the state schema was
// initialized.
type VersionCompatibility int

const (
	VersionCompatCheckSkipped VersionCompatibility = iota
	VersionCompatNotInitialized
	VersionCompatSchemaOlder
	VersionCompatSchemaEqual
	VersionCompatSchemaNewer
)

// VersionCompatibility compares the pgdiff version that constructed this
// State with the version recorded at schema-init time.
func (s *State) VersionCompatibility(ctx context.Context) (VersionCompatibility, error) {
	binaryVersion := s.version

	// Development builds are not checked for compatibility.
	if binaryVersion == "development" || binaryVersion == "" {
		return VersionCompatCheckSkipped, nil
	}

	ok, err := s.IsInitialized(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to check initialization status: %w", err)
	}
	if !ok {
		return VersionCompatNotInitialized, nil
	}

	schemaVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get stored version: %w", err)
	}
	if schemaVersion == "development" {
		return VersionCompatCheckSkipped, nil
	}

	schemaVersion = ensureVPrefix(schemaVersion)
	binaryVersion = ensureVPrefix(binaryVersion)

	// If either version is invalid, do not make any assumptions about
	// compatibility.
	if !semver.IsValid(schemaVersion) || !semver.IsValid(binaryVersion) {
		return VersionCompatCheckSkipped, nil
	}

	schemaVersion = semver.Canonical(schemaVersion)
	binaryVersion = semver.Canonical(binaryVersion)

	switch semver.Compare(schemaVersion, binaryVersion) {
	case -1:
		return VersionCompatSchemaOlder, nil
	case 1:
		return VersionCompatSchemaNewer, nil
	default:
		return VersionCompatSchemaEqual, nil
	}
}

// SchemaVersion retrieves the most recently recorded version from
// pgdiff_version.
func (s *State) SchemaVersion(ctx context.Context) (string, error) {
	query := fmt.Sprintf("SELECT version FROM %s.pgdiff_version ORDER BY initialized_at DESC LIMIT 1",
		pq.QuoteIdentifier(s.schema))

	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var version string
	if err := db.ScanFirstValue(rows, &version); err != nil {
		return "", err
	}
	return version, nil
}

// ensureVPrefix ensures version starts with 'v', as required by
// golang.org/x/mod/semver.
func ensureVPrefix(version string) string {
	if len(version) > 0 && version[0] != 'v' {
		return "v" + version
	}
	return version
}
