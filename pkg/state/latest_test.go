// SPDX-License-Identifier: Apache-2.0

package state_test

import (
	"context"
	"database/sql"
	"errors"
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

func TestLatestReturnsErrNoAppliedPlansWhenEmpty(t *testing.T) {
	t.Parallel()

	testutils.WithStateAndConnectionToContainer(t, func(st *state.State, db *sql.DB) {
		ctx := context.Background()

		_, err := st.Latest(ctx)
		assert.True(t, errors.Is(err, state.ErrNoAppliedPlans))
	})
}

func TestLatestReturnsMostRecentlyAppliedPlan(t *testing.T) {
	t.Parallel()

	testutils.WithStateAndConnectionToContainer(t, func(st *state.State, db *sql.DB) {
		ctx := context.Background()

		first := widgetsEnvelope(plan.ModeDetailed)
		second := widgetsEnvelope(plan.ModeSimple)
		require.NoError(t, st.RecordApply(ctx, first))
		require.NoError(t, st.RecordApply(ctx, second))

		latest, err := st.Latest(ctx)
		require.NoError(t, err)
		assert.Equal(t, second.PlanID, latest.PlanID)
	})
}

func TestLatestAppliesSerializerOverrideBeforeRecording(t *testing.T) {
	t.Parallel()

	testutils.WithStateAndConnectionToContainer(t, func(st *state.State, db *sql.DB) {
		ctx := context.Background()

		id := catalog.TableID("public", "widgets")
		c := change.NewCreate(catalog.ObjectTypeTable, id, "create table",
			func() string { return "CREATE TABLE public.widgets (id int)" })
		changes := []change.Change{c}
		groups := export.GroupChangesByFile(changes, export.DetailedMapper, &export.Grouping{})

		mock := testutils.NewMockSerializer(map[string]string{
			"CREATE TABLE public.widgets (id int)": "-- managed externally",
		})
		cat := catalog.New(160000, "postgres")
		cat.Tables[id] = &catalog.Table{Name: "widgets", Schema: "public"}
		env := plan.Assemble(plan.ModeDetailed, changes, groups, catalog.New(160000, "postgres"), cat, mock.AsSerializer())

		require.NoError(t, st.RecordApply(ctx, env))

		latest, err := st.Latest(ctx)
		require.NoError(t, err)
		require.Len(t, latest.Manifest, 1)
		assert.Contains(t, latest.Manifest[0].SQL, "-- managed externally")
	})
}

func TestStatusReportsNoneThenApplied(t *testing.T) {
	t.Parallel()

	testutils.WithStateAndConnectionToContainer(t, func(st *state.State, db *sql.DB) {
		ctx := context.Background()

		status, err := st.Status(ctx)
		require.NoError(t, err)
		assert.Equal(t, state.NoneStatus, status.Status)

		env := widgetsEnvelope(plan.ModeDetailed)
		require.NoError(t, st.RecordApply(ctx, env))

		status, err = st.Status(ctx)
		require.NoError(t, err)
		assert.Equal(t, state.AppliedStatus, status.Status)
		assert.Equal(t, env.PlanID, status.LatestPlanID)
		assert.Equal(t, env.Target.Fingerprint, status.TargetFingerprint)
		require.NotNil(t, status.AppliedAt)
	})
}

func TestVersionCompatibilitySkippedBeforeInit(t *testing.T) {
	t.Parallel()

	testutils.WithUninitializedState(t, func(st *state.State) {
		ctx := context.Background()

		compat, err := st.VersionCompatibility(ctx)
		require.NoError(t, err)
		assert.Equal(t, state.VersionCompatCheckSkipped, compat)
	})
}

func TestVersionCompatibilityEqualAfterInit(t *testing.T) {
	t.Parallel()

	// WithStateAndConnectionToContainer stamps the schema with the
	// "development" version, which always skips the check (see
	// TestVersionCompatibilitySkippedBeforeInit's sibling case above), so
	// exercising the Equal/Older/Newer comparisons requires a real semver
	// binary version recorded at Init time.
	testutils.WithConnectionToContainer(t, func(conn *sql.DB, connStr string) {
		ctx := context.Background()

		st, err := state.New(ctx, connStr, "pgdiff", state.WithVersion("1.2.3"))
		require.NoError(t, err)
		require.NoError(t, st.Init(ctx))

		compat, err := st.VersionCompatibility(ctx)
		require.NoError(t, err)
		assert.Equal(t, state.VersionCompatSchemaEqual, compat)

		older, err := state.New(ctx, connStr, "pgdiff", state.WithVersion("1.3.0"))
		require.NoError(t, err)
		compat, err = older.VersionCompatibility(ctx)
		require.NoError(t, err)
		assert.Equal(t, state.VersionCompatSchemaOlder, compat)

		newer, err := state.New(ctx, connStr, "pgdiff", state.WithVersion("1.0.0"))
		require.NoError(t, err)
		compat, err = newer.VersionCompatibility(ctx)
		require.NoError(t, err)
		assert.Equal(t, state.VersionCompatSchemaNewer, compat)
	})
}
