package planning

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engr-sharif/sbmm-planning-tool/internal/model"
)

func recordChanges(s *Store) *[]Change {
	var changes []Change
	s.Subscribe(func(c Change) { changes = append(changes, c) })
	return &changes
}

func TestStore_AddAllocatesPerCategory(t *testing.T) {
	s := NewStore()

	p1 := s.Add(39.1, -122.1, model.CategoryProposed, model.DepthShallow, "")
	p2 := s.Add(39.2, -122.2, model.CategoryProposed, "", "")
	so := s.Add(39.3, -122.3, model.CategoryStepOut, model.DepthDeep, "edge")

	assert.Equal(t, "P-1", p1.ID)
	assert.Equal(t, "P-2", p2.ID)
	assert.Equal(t, model.DepthShallow, p2.Depth, "empty depth defaults to Shallow")
	assert.Equal(t, "SO-1", so.ID)
	assert.Equal(t, "#ff6b00", so.Color())
	assert.Equal(t, 3, s.Len())
}

func TestStore_AddUnknownCategoryStoredAsProposed(t *testing.T) {
	s := NewStore()
	p := s.Add(1, 2, model.Category("mystery"), model.DepthShallow, "")
	assert.Equal(t, "P-1", p.ID)
	assert.Equal(t, model.CategoryProposed, p.Category)
}

func TestStore_DeleteThenAddReusesSuffixOnce(t *testing.T) {
	s := NewStore()
	s.Add(1, 1, model.CategoryProposed, "", "")
	s.Add(2, 2, model.CategoryProposed, "", "")
	s.Add(3, 3, model.CategoryProposed, "", "")

	require.NoError(t, s.Remove("P-2"))

	again := s.Add(4, 4, model.CategoryProposed, "", "")
	assert.Equal(t, "P-2", again.ID)

	next := s.Add(5, 5, model.CategoryProposed, "", "")
	assert.Equal(t, "P-4", next.ID)
	assert.Equal(t, []string{"P-1", "P-3", "P-2", "P-4"}, s.IDs())
}

func TestStore_Update(t *testing.T) {
	s := NewStore()
	s.Add(39, -122, model.CategoryStepOut, model.DepthShallow, "old")
	changes := recordChanges(s)

	note := "new note"
	depth := model.DepthBoth
	p, err := s.Update("SO-1", Patch{Note: &note, Depth: &depth})
	require.NoError(t, err)

	assert.Equal(t, "SO-1", p.ID)
	assert.Equal(t, model.CategoryStepOut, p.Category)
	assert.Equal(t, "new note", p.Note)
	assert.Equal(t, model.DepthBoth, p.Depth)
	assert.InDelta(t, 39.0, p.Lat, 1e-12)

	got, ok := s.Get("SO-1")
	require.True(t, ok)
	assert.Equal(t, p, got)

	require.Len(t, *changes, 1)
	assert.Equal(t, ChangeUpdated, (*changes)[0].Kind)
}

func TestStore_Move(t *testing.T) {
	s := NewStore()
	s.Add(39, -122, model.CategoryProposed, "", "")
	changes := recordChanges(s)

	p, err := s.Move("P-1", 39.5, -122.5)
	require.NoError(t, err)
	assert.InDelta(t, 39.5, p.Lat, 1e-12)
	assert.InDelta(t, -122.5, p.Lon, 1e-12)
	require.Len(t, *changes, 1)
	assert.Equal(t, ChangeMoved, (*changes)[0].Kind)
}

func TestStore_UpdateWithoutCoordinatesIsNotAMove(t *testing.T) {
	s := NewStore()
	s.Add(39, -122, model.CategoryProposed, "", "")
	changes := recordChanges(s)

	_, err := s.Update("P-1", Patch{})
	require.NoError(t, err)
	lat := 39.25
	_, err = s.Update("P-1", Patch{Lat: &lat})
	require.NoError(t, err)

	require.Len(t, *changes, 2)
	assert.Equal(t, ChangeUpdated, (*changes)[0].Kind)
	assert.Equal(t, ChangeMoved, (*changes)[1].Kind)
}

func TestStore_UnknownIDIsNotFound(t *testing.T) {
	s := NewStore()
	changes := recordChanges(s)

	note := "x"
	_, err := s.Update("P-9", Patch{Note: &note})
	assert.True(t, eris.Is(err, ErrNotFound))

	err = s.Remove("P-9")
	assert.True(t, eris.Is(err, ErrNotFound))

	assert.Empty(t, *changes, "failed operations must not notify")
}

func TestStore_UndoLastRemovesMostRecent(t *testing.T) {
	s := NewStore()
	s.Add(1, 1, model.CategoryProposed, "", "")
	s.Add(2, 2, model.CategoryStepOut, "", "")

	p, ok := s.UndoLast()
	require.True(t, ok)
	assert.Equal(t, "SO-1", p.ID)
	assert.Equal(t, []string{"P-1"}, s.IDs())
}

func TestStore_ClearThenUndoIsNoop(t *testing.T) {
	s := NewStore()
	s.Add(1, 1, model.CategoryProposed, "", "")
	s.Add(2, 2, model.CategoryProposed, "", "")

	assert.Equal(t, 2, s.Clear())
	changes := recordChanges(s)

	_, ok := s.UndoLast()
	assert.False(t, ok)
	assert.Equal(t, 0, s.Clear())
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, *changes)
}

func TestStore_ReplaceAll(t *testing.T) {
	s := NewStore()
	s.Add(1, 1, model.CategoryProposed, "", "")
	changes := recordChanges(s)

	added, skipped := s.ReplaceAll([]model.PlannedPoint{
		{ID: "SO-4", Category: model.CategoryStepOut, Lat: 2, Lon: 2},
		{ID: "P-7", Category: model.CategoryProposed, Lat: 3, Lon: 3},
		{ID: "SO-4", Category: model.CategoryStepOut, Lat: 9, Lon: 9},
	})
	assert.Equal(t, 2, added)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, []string{"SO-4", "P-7"}, s.IDs())

	got, _ := s.Get("SO-4")
	assert.InDelta(t, 2.0, got.Lat, 1e-12, "first occurrence wins")
	assert.Equal(t, model.DepthShallow, got.Depth)

	require.Len(t, *changes, 1)
	assert.Equal(t, ChangeReplaced, (*changes)[0].Kind)
}

func TestStore_MergeAddSkipsCollisions(t *testing.T) {
	s := NewStore()
	s.Add(1, 1, model.CategoryProposed, "", "keep")

	added, skipped := s.MergeAdd([]model.PlannedPoint{
		{ID: "P-1", Category: model.CategoryProposed, Note: "overwrite?"},
		{ID: "P-2", Category: model.CategoryProposed},
	})
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, skipped)

	p, _ := s.Get("P-1")
	assert.Equal(t, "keep", p.Note)

	next := s.Add(0, 0, model.CategoryProposed, "", "")
	assert.Equal(t, "P-3", next.ID)
}

func TestStore_PointsReturnsCopies(t *testing.T) {
	s := NewStore()
	s.Add(1, 1, model.CategoryProposed, "", "orig")

	pts := s.Points()
	pts[0].Note = "mutated"

	p, _ := s.Get("P-1")
	assert.Equal(t, "orig", p.Note)
}

func TestStore_Unsubscribe(t *testing.T) {
	s := NewStore()
	calls := 0
	unsub := s.Subscribe(func(Change) { calls++ })

	s.Add(1, 1, model.CategoryProposed, "", "")
	unsub()
	s.Add(2, 2, model.CategoryProposed, "", "")

	assert.Equal(t, 1, calls)
}

func TestStore_ListenerMayReadStore(t *testing.T) {
	s := NewStore()
	var seen int
	s.Subscribe(func(Change) { seen = s.Len() })

	s.Add(1, 1, model.CategoryProposed, "", "")
	assert.Equal(t, 1, seen)
}
