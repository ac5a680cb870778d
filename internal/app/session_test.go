package app

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engr-sharif/sbmm-planning-tool/internal/depth"
	"github.com/engr-sharif/sbmm-planning-tool/internal/exchange"
	"github.com/engr-sharif/sbmm-planning-tool/internal/labels"
	"github.com/engr-sharif/sbmm-planning-tool/internal/model"
	"github.com/engr-sharif/sbmm-planning-tool/internal/planning"
	"github.com/engr-sharif/sbmm-planning-tool/internal/resilience"
	"github.com/engr-sharif/sbmm-planning-tool/internal/store"
)

func fixture() *model.Datasets {
	return &model.Datasets{
		Samples2025: []model.Sample2025{
			{Num: 1, Label: "S-1", Lat: 39.0, Lon: -122.0, Sampled: true},
		},
		TestPits2025: []model.TestPit{
			{ID: "TP-1", Lat: 39.001, Lon: -122.001, Depths: []model.DepthInterval{
				{Start: 0, End: 2, Label: "0-2'"},
				{Start: 2, End: 8, Label: "2-8'"},
			}},
		},
	}
}

func newSession(t *testing.T) (*Session, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemory()
	s := New(Options{Data: fixture(), Persist: mem, Plan: "test"})
	t.Cleanup(s.Close)
	return s, mem
}

func saved(t *testing.T, mem *store.MemoryStore) []model.PlannedPoint {
	t.Helper()
	pts, err := mem.LoadPoints(context.Background(), "test")
	require.NoError(t, err)
	return pts
}

func TestAddPoint_SavesAfterEachMutation(t *testing.T) {
	s, mem := newSession(t)
	ctx := context.Background()

	p, err := s.AddPoint(ctx, 39.1, -122.1, model.CategoryProposed, "", "near seep")
	require.NoError(t, err)
	assert.Equal(t, "P-1", p.ID)
	assert.Equal(t, model.DepthShallow, p.Depth)

	_, err = s.AddPoint(ctx, 39.2, -122.2, model.CategoryStepOut, model.DepthDeep, "")
	require.NoError(t, err)

	pts := saved(t, mem)
	require.Len(t, pts, 2)
	assert.Equal(t, "P-1", pts[0].ID)
	assert.Equal(t, "SO-1", pts[1].ID)
}

func TestAddPoint_RejectsNonFinite(t *testing.T) {
	s, mem := newSession(t)

	_, err := s.AddPoint(context.Background(), math.NaN(), -122, model.CategoryProposed, "", "")
	assert.True(t, eris.Is(err, ErrInvalidCoordinate))
	assert.Empty(t, s.Points())
	assert.Empty(t, saved(t, mem))
}

func TestDeleteThenAdd_ReusesGap(t *testing.T) {
	s, _ := newSession(t)
	ctx := context.Background()
	for range 3 {
		_, err := s.AddPoint(ctx, 39, -122, model.CategoryProposed, "", "")
		require.NoError(t, err)
	}

	require.NoError(t, s.DeletePoint(ctx, "P-2"))
	p, err := s.AddPoint(ctx, 39, -122, model.CategoryProposed, "", "")
	require.NoError(t, err)
	assert.Equal(t, "P-2", p.ID)
}

func TestDeletePoint_NotFound(t *testing.T) {
	s, _ := newSession(t)
	err := s.DeletePoint(context.Background(), "P-9")
	assert.True(t, eris.Is(err, planning.ErrNotFound))
}

func TestUpdatePoint_KeepsIDAndCategory(t *testing.T) {
	s, mem := newSession(t)
	ctx := context.Background()
	_, err := s.AddPoint(ctx, 39, -122, model.CategoryStepOut, "", "")
	require.NoError(t, err)

	note := "moved to bench"
	d := model.DepthBoth
	p, err := s.UpdatePoint(ctx, "SO-1", planning.Patch{Note: &note, Depth: &d})
	require.NoError(t, err)
	assert.Equal(t, "SO-1", p.ID)
	assert.Equal(t, model.CategoryStepOut, p.Category)
	assert.Equal(t, note, saved(t, mem)[0].Note)

	bad := math.Inf(1)
	_, err = s.UpdatePoint(ctx, "SO-1", planning.Patch{Lat: &bad})
	assert.True(t, eris.Is(err, ErrInvalidCoordinate))
}

func TestMovePoint_ThroughMarkerRef(t *testing.T) {
	s, _ := newSession(t)
	ctx := context.Background()
	_, err := s.AddPoint(ctx, 39, -122, model.CategoryProposed, "", "")
	require.NoError(t, err)

	markers := s.Markers()
	require.Len(t, markers, 1)
	ref := markers[0].Ref
	assert.Equal(t, "#00bfff", markers[0].Color)
	assert.Equal(t, "P-1 (Proposed)", markers[0].Title)

	_, err = s.MovePoint(ctx, ref, 39.5, -122.5)
	require.NoError(t, err)

	p, err := s.Resolve(ref)
	require.NoError(t, err)
	assert.InDelta(t, 39.5, p.Lat, 1e-12)
	assert.InDelta(t, -122.5, p.Lon, 1e-12)

	require.NoError(t, s.DeletePoint(ctx, ref.ID))
	_, err = s.Resolve(ref)
	assert.True(t, eris.Is(err, planning.ErrNotFound))
}

func TestUndoLast_EmptyIsNoop(t *testing.T) {
	s, _ := newSession(t)
	ctx := context.Background()

	_, ok, err := s.UndoLast(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.AddPoint(ctx, 39, -122, model.CategoryProposed, "", "")
	require.NoError(t, err)
	_, err = s.AddPoint(ctx, 39, -122, model.CategoryStepOut, "", "")
	require.NoError(t, err)

	p, ok, err := s.UndoLast(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "SO-1", p.ID)
}

func TestClearAll_RequiresConfirmation(t *testing.T) {
	s, mem := newSession(t)
	ctx := context.Background()
	_, err := s.AddPoint(ctx, 39, -122, model.CategoryProposed, "", "")
	require.NoError(t, err)

	_, err = s.ClearAll(ctx, false)
	assert.True(t, eris.Is(err, ErrConfirmationRequired))
	assert.Len(t, s.Points(), 1)

	n, err := s.ClearAll(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, saved(t, mem))

	// Clear then undo on an empty plan.
	n, err = s.ClearAll(ctx, false)
	require.NoError(t, err)
	assert.Zero(t, n)
	_, ok, err := s.UndoLast(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExportCSV_EmptyPlan(t *testing.T) {
	s, _ := newSession(t)
	_, err := s.ExportCSV()
	assert.True(t, eris.Is(err, exchange.ErrNothingToExport))

	_, err = s.ExportText()
	assert.True(t, eris.Is(err, exchange.ErrNothingToExport))
}

func TestExportImport_RoundTrip(t *testing.T) {
	s, _ := newSession(t)
	ctx := context.Background()
	_, err := s.AddPoint(ctx, 39.123456, -122.654321, model.CategoryProposed, model.DepthDeep, "north, bench")
	require.NoError(t, err)
	_, err = s.AddPoint(ctx, 39.2, -122.2, model.CategoryStepOut, "", "")
	require.NoError(t, err)

	text, err := s.ExportCSV()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, exchange.CSVHeader+"\n"))

	other, mem := newSession(t)
	res, err := other.ImportCSV(ctx, text, exchange.ModeReplace)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Loaded)
	assert.Zero(t, res.Skipped)
	assert.Equal(t, s.Points(), other.Points())
	assert.Len(t, saved(t, mem), 2)

	// Merging the same text again skips every row.
	res, err = other.ImportCSV(ctx, text, exchange.ModeMerge)
	require.NoError(t, err)
	assert.Zero(t, res.Loaded)
	assert.Equal(t, 2, res.Skipped)
}

func TestOpen_RestoresSavedPlan(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	require.NoError(t, mem.SavePoints(ctx, "test", []model.PlannedPoint{
		{ID: "P-3", Category: model.CategoryProposed, Lat: 39, Lon: -122, Depth: model.DepthShallow},
	}))

	s := New(Options{Data: fixture(), Persist: mem, Plan: "test"})
	defer s.Close()
	require.NoError(t, s.Open(ctx))
	require.Len(t, s.Points(), 1)

	p, err := s.AddPoint(ctx, 39, -122, model.CategoryProposed, "", "")
	require.NoError(t, err)
	assert.Equal(t, "P-1", p.ID)
	assert.Len(t, saved(t, mem), 2)
}

func TestSave_ErrorSurfaces(t *testing.T) {
	s := New(Options{Persist: failingStore{store.NewMemory()}})
	defer s.Close()

	_, err := s.AddPoint(context.Background(), 39, -122, model.CategoryProposed, "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	// The point stays in the working set.
	assert.Len(t, s.Points(), 1)
}

func TestSave_RetriesTransientFailure(t *testing.T) {
	flaky := &flakyStore{MemoryStore: store.NewMemory(), failures: 2}
	s := New(Options{Persist: flaky, Plan: "test", SaveRetry: resilience.RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     time.Millisecond,
	}})
	defer s.Close()

	_, err := s.AddPoint(context.Background(), 39, -122, model.CategoryProposed, "", "")
	require.NoError(t, err)
	assert.Equal(t, 3, flaky.calls)
	assert.Len(t, saved(t, flaky.MemoryStore), 1)
}

func TestSession_WithoutPersistence(t *testing.T) {
	s := New(Options{})
	defer s.Close()
	require.NoError(t, s.Open(context.Background()))
	assert.Equal(t, store.DefaultPlan, s.Plan())

	_, err := s.AddPoint(context.Background(), 39, -122, model.CategoryProposed, "", "")
	require.NoError(t, err)
}

func TestRefreshLabels_IncludesPlanned(t *testing.T) {
	s, _ := newSession(t)
	_, err := s.AddPoint(context.Background(), 39.01, -122.01, model.CategoryProposed, "", "")
	require.NoError(t, err)

	res := s.RefreshLabels(labels.AllVisible())
	ids := make([]string, len(res.Labels))
	for i, l := range res.Labels {
		ids[i] = l.Anchor.EntityID
	}
	assert.Contains(t, ids, "P-1")
	assert.Contains(t, ids, "TP-1")

	res = s.RefreshLabels(labels.Visibility{})
	assert.Empty(t, res.Labels)
}

func TestSelectDepthInterval(t *testing.T) {
	s, _ := newSession(t)

	_, err := s.Depth().Open("TP-1")
	require.NoError(t, err)
	on, err := s.Depth().ToggleMetals("TP-1")
	require.NoError(t, err)
	require.True(t, on)

	ov, err := s.SelectDepthInterval("TP-1", 1)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, ov.TopPct, 1e-9)
	assert.InDelta(t, 75.0, ov.HeightPct, 1e-9)

	st, ok := s.Depth().State("TP-1")
	require.True(t, ok)
	assert.Equal(t, 1, st.SelectedIndex)
	assert.True(t, st.MetalsExpanded)

	_, err = s.SelectDepthInterval("TP-1", 2)
	assert.True(t, eris.Is(err, depth.ErrIndexOutOfRange))
	_, err = s.SelectDepthInterval("TP-404", 0)
	assert.True(t, eris.Is(err, depth.ErrUnknownEntity))
}

func TestConfirmPending(t *testing.T) {
	s, mem := newSession(t)
	ctx := context.Background()

	_, err := s.ConfirmPending(ctx, "", "")
	assert.True(t, eris.Is(err, planning.ErrNoPending))

	s.Planner().SetMode(planning.ModeStepOut)
	pending := s.Planner().HandleMapClick(39.3, -122.3)
	require.NotNil(t, pending)
	assert.Equal(t, "SO-1", pending.ID)

	p, err := s.ConfirmPending(ctx, model.DepthDeep, "edge of pile")
	require.NoError(t, err)
	assert.Equal(t, "SO-1", p.ID)
	assert.Len(t, saved(t, mem), 1)
}

type flakyStore struct {
	*store.MemoryStore
	failures int
	calls    int
}

func (f *flakyStore) SavePoints(ctx context.Context, plan string, pts []model.PlannedPoint) error {
	f.calls++
	if f.calls <= f.failures {
		return eris.New("database is locked (5) (SQLITE_BUSY)")
	}
	return f.MemoryStore.SavePoints(ctx, plan, pts)
}

type failingStore struct {
	*store.MemoryStore
}

func (failingStore) SavePoints(context.Context, string, []model.PlannedPoint) error {
	return eris.New("disk full")
}
