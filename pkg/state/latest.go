// SPDX-License-Identifier: Apache-2.0

package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// ErrNoAppliedPlans is returned by Latest when a state schema exists but no
// plan has ever been recorded against it.
var ErrNoAppliedPlans = errors.New("no applied plans recorded")

// Latest returns the most recently applied plan for this state schema, or
// ErrNoAppliedPlans if none has been recorded yet.
func (s *State) Latest(ctx context.Context) (*AppliedPlan, error) {
	stmt := fmt.Sprintf(`
		SELECT plan_id, mode, source_fingerprint, target_fingerprint, risk_level, manifest, applied_at
		FROM %s.applied_plans
		ORDER BY applied_at DESC
		LIMIT 1`,
		pq.QuoteIdentifier(s.schema))

	rows, err := s.conn.QueryContext(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNoAppliedPlans
	}

	entry, err := scanAppliedPlan(rows)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
