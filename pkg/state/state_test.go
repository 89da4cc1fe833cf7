// SPDX-License-Identifier: Apache-2.0

package state_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supabase/pgdiff/pkg/state"
	"github.com/supabase/pgdiff/pkg/testutils"
)

func TestMain(m *testing.M) {
	testutils.SharedTestMain(m)
}

func TestInitCreatesStateSchema(t *testing.T) {
	t.Parallel()

	testutils.WithUninitializedState(t, func(st *state.State) {
		ctx := context.Background()

		ok, err := st.IsInitialized(ctx)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, st.Init(ctx))

		ok, err = st.IsInitialized(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestInitIsIdempotent(t *testing.T) {
	t.Parallel()

	testutils.WithUninitializedState(t, func(st *state.State) {
		ctx := context.Background()

		require.NoError(t, st.Init(ctx))
		require.NoError(t, st.Init(ctx))

		ok, err := st.IsInitialized(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestSchemaOptionIsRespected(t *testing.T) {
	t.Parallel()

	testutils.WithStateInSchemaAndConnectionToContainer(t, "custom_pgdiff_state", func(st *state.State, db *sql.DB) {
		assert.Equal(t, "custom_pgdiff_state", st.Schema())

		var exists bool
		err := db.QueryRow(
			"SELECT EXISTS (SELECT 1 FROM information_schema.schemata WHERE schema_name = $1)",
			"custom_pgdiff_state",
		).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists)
	})
}
