package exchange

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engr-sharif/sbmm-planning-tool/internal/model"
	"github.com/engr-sharif/sbmm-planning-tool/internal/planning"
)

func TestImportCSV_DuplicateKeepsFirstRow(t *testing.T) {
	store := planning.NewStore()
	im := NewImporter(store)

	text := CSVHeader + "\n" +
		"P-1,proposed,Shallow,40.1,-121.2,\n" +
		"P-1,stepout,Deep,41.0,-121.9,\n"
	res, err := im.ImportCSV(context.Background(), text, ModeReplace)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Loaded)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, IssueDuplicateID, res.Issues[0].Kind)
	assert.NotEmpty(t, res.ID)

	require.Equal(t, 1, store.Len())
	p, ok := store.Get("P-1")
	require.True(t, ok)
	assert.Equal(t, model.CategoryProposed, p.Category)
	assert.Equal(t, model.DepthShallow, p.Depth)
	assert.Equal(t, 40.1, p.Lat)
	assert.Equal(t, -121.2, p.Lon)
}

func TestImportCSV_ThreeFieldRowSkipped(t *testing.T) {
	store := planning.NewStore()
	im := NewImporter(store)

	text := CSVHeader + "\n" +
		"P-1,proposed,Shallow,40.1,-121.2,a\n" +
		"P-2,proposed,Shallow\n" +
		"P-3,proposed,Shallow,40.3,-121.3,c\n"
	res, err := im.ImportCSV(context.Background(), text, ModeMerge)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Loaded)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, []string{"P-1", "P-3"}, store.IDs())
	assert.Equal(t, "Loaded 2 points (1 skipped)", res.Message())
}

func TestImportCSV_MergeSkipsExistingIDs(t *testing.T) {
	store := planning.NewStore()
	store.Add(39, -122, model.CategoryProposed, model.DepthBoth, "keep me")
	im := NewImporter(store)

	text := CSVHeader + "\n" +
		"P-1,proposed,Shallow,40.1,-121.2,overwrite?\n" +
		"P-2,proposed,Shallow,40.2,-121.2,new\n"
	res, err := im.ImportCSV(context.Background(), text, ModeMerge)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Loaded)
	assert.Equal(t, 1, res.Skipped)
	p, _ := store.Get("P-1")
	assert.Equal(t, "keep me", p.Note)
	assert.Equal(t, 2, store.Len())
}

func TestImportCSV_ReplaceClearsFirst(t *testing.T) {
	store := planning.NewStore()
	store.Add(39, -122, model.CategoryProposed, model.DepthBoth, "old")
	store.Add(39, -122, model.CategoryStepOut, model.DepthBoth, "old")
	im := NewImporter(store)

	text := CSVHeader + "\n" + "P-1,proposed,Deep,40.1,-121.2,\"new\"\n"
	res, err := im.ImportCSV(context.Background(), text, ModeReplace)
	require.NoError(t, err)

	assert.Equal(t, "Loaded 1 points", res.Message())
	assert.Equal(t, []string{"P-1"}, store.IDs())
	p, _ := store.Get("P-1")
	assert.Equal(t, "new", p.Note)
}

func TestImportCSV_RoundTrip(t *testing.T) {
	src := planning.NewStore()
	src.Add(39.1234561, -122.1, model.CategoryProposed, model.DepthShallow, "north bank")
	src.Add(39.2, -122.2, model.CategoryStepOut, model.DepthDeep, "")
	src.Add(39.3, -122.3, model.CategoryProposed, model.DepthBoth, "comma, inside quotes")

	dst := planning.NewStore()
	res, err := NewImporter(dst).ImportCSV(context.Background(), ExportCSV(src.Points()), ModeReplace)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Loaded)
	assert.Zero(t, res.Skipped)

	want := src.Points()
	got := dst.Points()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Category, got[i].Category)
		assert.Equal(t, want[i].Depth, got[i].Depth)
		assert.Equal(t, want[i].Note, got[i].Note)
		assert.InDelta(t, want[i].Lat, got[i].Lat, 5e-7)
		assert.InDelta(t, want[i].Lon, got[i].Lon, 5e-7)
	}
}

func TestImportCSV_QuoteInNoteIsLossy(t *testing.T) {
	src := planning.NewStore()
	src.Add(39, -122, model.CategoryProposed, model.DepthShallow, `5" core, deep`)

	exported := ExportCSV(src.Points())
	assert.Contains(t, exported, `,"5" core, deep"`+"\n")

	dst := planning.NewStore()
	res, err := NewImporter(dst).ImportCSV(context.Background(), exported, ModeReplace)
	require.NoError(t, err)
	require.Equal(t, 1, res.Loaded)

	p, _ := dst.Get("P-1")
	assert.Equal(t, "5 core", p.Note, "the note splits at the comma once the quote closes")
}

func TestImportCSV_Serialized(t *testing.T) {
	store := planning.NewStore()
	im := NewImporter(store)

	var inner error
	store.Subscribe(func(planning.Change) {
		_, inner = im.ImportCSV(context.Background(), CSVHeader+"\n", ModeMerge)
	})

	_, err := im.ImportCSV(context.Background(), CSVHeader+"\nP-1,proposed,,1,2,\n", ModeMerge)
	require.NoError(t, err)
	assert.True(t, eris.Is(inner, ErrImportInProgress))

	_, err = im.ImportCSV(context.Background(), CSVHeader+"\nP-2,proposed,,1,2,\n", ModeMerge)
	assert.NoError(t, err, "the guard is released after each import")
}

func TestImportCSV_BadModeAndCancelledContext(t *testing.T) {
	im := NewImporter(planning.NewStore())

	_, err := im.ImportCSV(context.Background(), "", Mode("upsert"))
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = im.ImportCSV(ctx, CSVHeader+"\n", ModeMerge)
	assert.True(t, eris.Is(err, context.Canceled))
}

func TestImportResult_Message(t *testing.T) {
	assert.Equal(t, "Loaded 0 points", ImportResult{}.Message())
	assert.Equal(t, "Loaded 3 points (2 skipped)", ImportResult{Loaded: 3, Skipped: 2}.Message())
}
