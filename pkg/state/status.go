// SPDX-License-Identifier: Apache-2.0

package state

import (
	"context"
	"errors"
	"time"
)

// MigrationStatus classifies a state schema's current applied-plan status.
type MigrationStatus string

const (
	// NoneStatus means the state schema exists but no plan has ever been
	// recorded against it.
	NoneStatus MigrationStatus = "none"
	// AppliedStatus means at least one plan has been recorded.
	AppliedStatus MigrationStatus = "applied"
)

// Status describes a database's current applied-plan status.
type Status struct {
	Schema            string          `json:"schema"`
	Status            MigrationStatus `json:"status"`
	LatestPlanID      string          `json:"latestPlanId,omitempty"`
	TargetFingerprint string          `json:"targetFingerprint,omitempty"`
	AppliedAt         *time.Time      `json:"appliedAt,omitempty"`
}

// Status returns the current applied-plan status of this state schema,
// mirroring teacher's migration-status report.
func (s *State) Status(ctx context.Context) (*Status, error) {
	latest, err := s.Latest(ctx)
	if errors.Is(err, ErrNoAppliedPlans) {
		return &Status{Schema: s.schema, Status: NoneStatus}, nil
	}
	if err != nil {
		return nil, err
	}

	appliedAt := latest.AppliedAt
	return &Status{
		Schema:            s.schema,
		Status:            AppliedStatus,
		LatestPlanID:      latest.PlanID,
		TargetFingerprint: latest.TargetFingerprint,
		AppliedAt:         &appliedAt,
	}, nil
}
