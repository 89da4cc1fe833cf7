// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/supabase/pgdiff/pkg/db"
)

// ApplyOptions controls Apply's safety gate and target verification.
type ApplyOptions struct {
	// Unsafe must be true to apply a plan whose Risk.Level is
	// RiskDataLoss, per spec.md §7's "requires caller to pass an unsafe
	// flag to proceed".
	Unsafe bool
	// ExpectTargetFingerprint, when non-empty, is compared against the
	// envelope's own Target.Fingerprint before anything executes — it
	// lets a caller detect that the plan was assembled against a target
	// catalog snapshot that has since drifted.
	ExpectTargetFingerprint string
}

// Apply executes e's file SQL against conn in envelope file order, each
// file in its own retryable transaction (db.RDB.WithRetryableTransaction),
// per spec.md §5's "no shared mutable state... operations run to
// completion or return an error".
func Apply(ctx context.Context, conn db.DB, e *Envelope, opts ApplyOptions) error {
	if opts.ExpectTargetFingerprint != "" && opts.ExpectTargetFingerprint != e.Target.Fingerprint {
		return &FingerprintMismatchError{Expected: opts.ExpectTargetFingerprint, Actual: e.Target.Fingerprint}
	}
	if e.Risk != nil && e.Risk.Level == RiskDataLoss && !opts.Unsafe {
		return &UnsafeRequiredError{Statements: e.Risk.Statements}
	}

	for _, f := range e.Files {
		if f.SQL == "" {
			continue
		}
		err := conn.WithRetryableTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, f.SQL)
			return err
		})
		if err != nil {
			return fmt.Errorf("apply %s: %w", f.Path, err)
		}
	}
	return nil
}
