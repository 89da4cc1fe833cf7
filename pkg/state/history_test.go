// SPDX-License-Identifier: Apache-2.0

package state_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supabase/pgdiff/pkg/catalog"
	"github.com/supabase/pgdiff/pkg/change"
	"github.com/supabase/pgdiff/pkg/export"
	"github.com/supabase/pgdiff/pkg/plan"
	"github.com/supabase/pgdiff/pkg/state"
	"github.com/supabase/pgdiff/pkg/testutils"
)

func widgetsEnvelope(mode plan.Mode) *plan.Envelope {
	id := catalog.TableID("public", "widgets")
	c := change.NewCreate(catalog.ObjectTypeTable, id, "create table",
		func() string { return "CREATE TABLE public.widgets (id int)" })

	cat := catalog.New(160000, "postgres")
	cat.Tables[id] = &catalog.Table{Name: "widgets", Schema: "public"}

	changes := []change.Change{c}
	groups := export.GroupChangesByFile(changes, export.DetailedMapper, &export.Grouping{})
	return plan.Assemble(mode, changes, groups, catalog.New(160000, "postgres"), cat, nil)
}

func TestRecordApplyThenHistoryRoundTrips(t *testing.T) {
	t.Parallel()

	testutils.WithStateAndConnectionToContainer(t, func(st *state.State, db *sql.DB) {
		ctx := context.Background()

		env := widgetsEnvelope(plan.ModeDetailed)
		require.NoError(t, st.RecordApply(ctx, env))

		history, err := st.History(ctx)
		require.NoError(t, err)
		require.Len(t, history, 1)

		entry := history[0]
		assert.Equal(t, env.PlanID, entry.PlanID)
		assert.Equal(t, env.Mode, entry.Mode)
		assert.Equal(t, env.Source.Fingerprint, entry.SourceFingerprint)
		assert.Equal(t, env.Target.Fingerprint, entry.TargetFingerprint)
		assert.Equal(t, plan.RiskSafe, entry.RiskLevel)
		require.Len(t, entry.Manifest, len(env.Files))
		assert.Equal(t, env.Files[0].Path, entry.Manifest[0].Path)
	})
}

func TestHistoryOrdersByAppliedAtAscending(t *testing.T) {
	t.Parallel()

	testutils.WithStateAndConnectionToContainer(t, func(st *state.State, db *sql.DB) {
		ctx := context.Background()

		first := widgetsEnvelope(plan.ModeDetailed)
		second := widgetsEnvelope(plan.ModeDeclarative)
		require.NoError(t, st.RecordApply(ctx, first))
		require.NoError(t, st.RecordApply(ctx, second))

		history, err := st.History(ctx)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.True(t, !history[1].AppliedAt.Before(history[0].AppliedAt))
		assert.Equal(t, first.PlanID, history[0].PlanID)
		assert.Equal(t, second.PlanID, history[1].PlanID)
	})
}

func TestRecordApplyCapturesDataLossRisk(t *testing.T) {
	t.Parallel()

	testutils.WithStateAndConnectionToContainer(t, func(st *state.State, db *sql.DB) {
		ctx := context.Background()

		id := catalog.TableID("public", "widgets")
		c := change.NewDrop(catalog.ObjectTypeTable, id, "drop table",
			func() string { return "DROP TABLE public.widgets" })
		changes := []change.Change{c}
		groups := export.GroupChangesByFile(changes, export.DetailedMapper, &export.Grouping{})
		env := plan.Assemble(plan.ModeDetailed, changes, groups, catalog.New(160000, "postgres"), catalog.New(160000, "postgres"), nil)

		require.NoError(t, st.RecordApply(ctx, env))

		latest, err := st.Latest(ctx)
		require.NoError(t, err)
		assert.Equal(t, plan.RiskDataLoss, latest.RiskLevel)
	})
}
