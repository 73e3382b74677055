package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/catalog-audit-cli/internal/config"
	"github.com/sells-group/catalog-audit-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_RunLifecycle(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "5055", 120)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)
	assert.Equal(t, 120, run.Total)

	require.NoError(t, st.UpdateRunProgress(ctx, run.ID, 60, 2))
	require.NoError(t, st.FinishRun(ctx, run.ID, model.RunStatusPartial))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "5055", got.StoreCode)
	assert.Equal(t, model.RunStatusPartial, got.Status)
	assert.Equal(t, 60, got.Processed)
	assert.Equal(t, 2, got.Restarts)
}

func TestSQLite_RunNotFound(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	err := st.UpdateRunProgress(ctx, "missing", 1, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	err = st.FinishRun(ctx, "missing", model.RunStatusComplete)
	require.Error(t, err)

	_, err = st.GetRun(ctx, "missing")
	assert.Error(t, err)
}

func TestSQLite_ListRuns(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	r1, err := st.CreateRun(ctx, "5055", 10)
	require.NoError(t, err)
	_, err = st.CreateRun(ctx, "5056", 20)
	require.NoError(t, err)
	require.NoError(t, st.FinishRun(ctx, r1.ID, model.RunStatusComplete))

	all, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	done, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, r1.ID, done[0].ID)
}

func TestSQLite_Events(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "5055", 3)
	require.NoError(t, err)

	for _, ev := range []model.Event{
		{Identifier: "1000001", Category: model.CategoryNoDiscovery},
		{Identifier: "1000001", Category: model.CategoryNoLocation},
		{Identifier: "1000002", Category: model.CategoryNotInCatalog},
	} {
		require.NoError(t, st.AppendEvent(ctx, run.ID, ev))
	}

	events, err := st.ListEvents(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "1000001", events[0].Identifier)
	assert.Equal(t, model.CategoryNotInCatalog, events[2].Category)
}

func TestNew_DriverSelection(t *testing.T) {
	ctx := context.Background()

	st, err := New(ctx, config.StoreConfig{Driver: "sqlite", DatabaseURL: filepath.Join(t.TempDir(), "a.db")})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	_, err = New(ctx, config.StoreConfig{Driver: "mysql"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown driver")
}
