package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engr-sharif/sbmm-planning-tool/internal/model"
)

func testPoints() []model.PlannedPoint {
	return []model.PlannedPoint{
		{ID: "P-2", Category: model.CategoryProposed, Depth: model.DepthDeep, Lat: 39.1, Lon: -122.1, Note: "second, then first"},
		{ID: "P-1", Category: model.CategoryProposed, Depth: model.DepthShallow, Lat: 39.2, Lon: -122.2},
		{ID: "SO-1", Category: model.CategoryStepOut, Lat: 39.3, Lon: -122.3, Note: `has "quotes"`},
	}
}

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

// exerciseStore runs the shared contract against any Store implementation.
func exerciseStore(t *testing.T, st Store) {
	ctx := context.Background()

	empty, err := st.LoadPoints(ctx, "missing")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	require.NoError(t, st.SavePoints(ctx, DefaultPlan, testPoints()))
	got, err := st.LoadPoints(ctx, DefaultPlan)
	require.NoError(t, err)

	want := testPoints()
	want[2].Depth = model.DepthShallow
	assert.Equal(t, want, got, "order and values survive, empty depth is stored as Shallow")

	require.NoError(t, st.SavePoints(ctx, DefaultPlan, testPoints()[:1]))
	got, err = st.LoadPoints(ctx, DefaultPlan)
	require.NoError(t, err)
	assert.Len(t, got, 1, "save replaces the whole plan")

	require.NoError(t, st.SavePoints(ctx, "north", testPoints()))
	plans, err := st.ListPlans(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, DefaultPlan, plans[0].Name)
	assert.Equal(t, 1, plans[0].Points)
	assert.Equal(t, "north", plans[1].Name)
	assert.Equal(t, 3, plans[1].Points)
	assert.WithinDuration(t, time.Now(), plans[1].UpdatedAt, time.Minute)

	require.NoError(t, st.SavePoints(ctx, "north", nil))
	got, err = st.LoadPoints(ctx, "north")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteStore(t *testing.T) {
	exerciseStore(t, newTestSQLiteStore(t))
}

func TestMemoryStore(t *testing.T) {
	st := NewMemory()
	require.NoError(t, st.Migrate(context.Background()))
	exerciseStore(t, st)
	assert.NoError(t, st.Close())
}

func TestMemoryStore_CopiesInput(t *testing.T) {
	st := NewMemory()
	pts := testPoints()
	require.NoError(t, st.SavePoints(context.Background(), DefaultPlan, pts))
	pts[0].Note = "mutated"

	got, err := st.LoadPoints(context.Background(), DefaultPlan)
	require.NoError(t, err)
	assert.Equal(t, "second, then first", got[0].Note)
}

func TestMemoryStore_DefaultsEmptyDepth(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()
	require.NoError(t, st.SavePoints(ctx, DefaultPlan, []model.PlannedPoint{
		{ID: "P-1", Category: model.CategoryProposed, Lat: 39, Lon: -122},
	}))

	got, err := st.LoadPoints(ctx, DefaultPlan)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.DepthShallow, got[0].Depth)
}

func TestSQLiteStore_MigrateIdempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	assert.NoError(t, st.Migrate(context.Background()))
}

func TestParseSQLiteTime(t *testing.T) {
	want := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	assert.Equal(t, want, parseSQLiteTime("2025-06-01 12:30:00.000000000"))
	assert.Equal(t, want, parseSQLiteTime("2025-06-01T12:30:00Z"))
	assert.Equal(t, want, parseSQLiteTime("2025-06-01 12:30:00"))
	assert.True(t, parseSQLiteTime("garbage").IsZero())
}
