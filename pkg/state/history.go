// SPDX-License-Identifier: Apache-2.0

package state

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/supabase/pgdiff/pkg/plan"
)

// AppliedPlan is one row of a schema's applied-plan history.
type AppliedPlan struct {
	PlanID            string
	Mode              plan.Mode
	SourceFingerprint string
	TargetFingerprint string
	RiskLevel         plan.RiskLevel
	Manifest          []plan.File
	AppliedAt         time.Time
}

// RecordApply inserts a history row for e, after it has been successfully
// applied. Callers normally invoke this immediately after plan.Apply
// returns nil.
func (s *State) RecordApply(ctx context.Context, e *plan.Envelope) error {
	manifest, err := json.Marshal(e.Files)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	riskLevel := plan.RiskSafe
	if e.Risk != nil {
		riskLevel = e.Risk.Level
	}

	stmt := fmt.Sprintf(`
		INSERT INTO %[1]s.applied_plans
			(plan_id, mode, source_fingerprint, target_fingerprint, risk_level, manifest)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		pq.QuoteIdentifier(s.schema))

	_, err = s.conn.ExecContext(ctx, stmt,
		e.PlanID, string(e.Mode), e.Source.Fingerprint, e.Target.Fingerprint, string(riskLevel), manifest)
	return err
}

// History returns every applied plan for this state schema, in ascending
// applied_at order.
func (s *State) History(ctx context.Context) ([]AppliedPlan, error) {
	stmt := fmt.Sprintf(`
		SELECT plan_id, mode, source_fingerprint, target_fingerprint, risk_level, manifest, applied_at
		FROM %s.applied_plans
		ORDER BY applied_at ASC`,
		pq.QuoteIdentifier(s.schema))

	rows, err := s.conn.QueryContext(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []AppliedPlan
	for rows.Next() {
		entry, err := scanAppliedPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("row scan: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppliedPlan(rows rowScanner) (AppliedPlan, error) {
	var (
		entry        AppliedPlan
		mode         string
		riskLevel    string
		rawManifest  []byte
	)
	err := rows.Scan(&entry.PlanID, &mode, &entry.SourceFingerprint, &entry.TargetFingerprint,
		&riskLevel, &rawManifest, &entry.AppliedAt)
	if err != nil {
		return AppliedPlan{}, err
	}
	entry.Mode = plan.Mode(mode)
	entry.RiskLevel = plan.RiskLevel(riskLevel)

	if err := json.Unmarshal(rawManifest, &entry.Manifest); err != nil {
		return AppliedPlan{}, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return entry, nil
}
