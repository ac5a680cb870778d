package exchange

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/engr-sharif/sbmm-planning-tool/internal/planning"
)

// ErrImportInProgress is returned when an import starts while another is
// still running against the same store.
var ErrImportInProgress = eris.New("exchange: import already in progress")

// Mode decides, once per import, what happens to the existing points.
type Mode string

const (
	ModeReplace Mode = "replace"
	ModeMerge   Mode = "merge"
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeReplace, ModeMerge:
		return Mode(s), nil
	}
	return "", eris.Errorf("exchange: unknown import mode %q (want replace or merge)", s)
}

// ImportResult summarises one import operation.
type ImportResult struct {
	ID      string     `json:"id"`
	Mode    Mode       `json:"mode"`
	Loaded  int        `json:"loaded"`
	Skipped int        `json:"skipped"`
	Issues  []RowIssue `json:"issues,omitempty"`
}

// Message is the user-facing summary line.
func (r ImportResult) Message() string {
	msg := fmt.Sprintf("Loaded %d points", r.Loaded)
	if r.Skipped > 0 {
		msg += fmt.Sprintf(" (%d skipped)", r.Skipped)
	}
	return msg
}

// Importer loads rows into a planning store. Imports on one Importer never
// overlap.
type Importer struct {
	store   *planning.Store
	running atomic.Bool
}

// NewImporter returns an Importer writing to store.
func NewImporter(store *planning.Store) *Importer {
	return &Importer{store: store}
}

// ImportCSV parses text and applies it to the store in a single bulk
// replace or merge. Malformed and duplicate rows are skipped and reported in
// the result; they never fail the import.
func (im *Importer) ImportCSV(ctx context.Context, text string, mode Mode) (ImportResult, error) {
	return im.run(ctx, mode, func(taken func(string) bool) (parsed, error) {
		return parseCSV(text, taken), nil
	})
}

// ImportXLSX applies the CSV row policy to the rows of the first sheet of an
// XLSX workbook. The first row is treated as the header.
func (im *Importer) ImportXLSX(ctx context.Context, path string, mode Mode) (ImportResult, error) {
	return im.run(ctx, mode, func(taken func(string) bool) (parsed, error) {
		rows, err := ReadXLSXRows(path)
		if err != nil {
			return parsed{}, err
		}
		rp := newRowParser(taken)
		for i, row := range rows {
			if i == 0 || blankRow(row) {
				continue
			}
			for j := range row {
				row[j] = strings.TrimSpace(row[j])
			}
			rp.row(i+1, row)
		}
		return rp.out, nil
	})
}

func (im *Importer) run(ctx context.Context, mode Mode, parse func(taken func(string) bool) (parsed, error)) (ImportResult, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return ImportResult{}, err
	}
	if !im.running.CompareAndSwap(false, true) {
		return ImportResult{}, ErrImportInProgress
	}
	defer im.running.Store(false)

	if err := ctx.Err(); err != nil {
		return ImportResult{}, eris.Wrap(err, "exchange: import cancelled")
	}

	res := ImportResult{ID: uuid.NewString(), Mode: mode}
	log := zap.L().With(zap.String("import_id", res.ID), zap.String("mode", string(mode)))

	// Replace mode clears before parsing, so nothing in the store counts as
	// a duplicate.
	var taken func(string) bool
	if mode == ModeMerge {
		taken = im.store.Has
	}
	p, err := parse(taken)
	if err != nil {
		return ImportResult{}, eris.Wrap(err, "exchange: parse import")
	}

	var added, collided int
	if mode == ModeReplace {
		added, collided = im.store.ReplaceAll(p.points)
	} else {
		added, collided = im.store.MergeAdd(p.points)
	}

	res.Loaded = added
	res.Issues = p.issues
	res.Skipped = len(p.issues) + collided
	for _, pt := range p.points {
		if !pt.Category.Known() {
			log.Warn("import: unknown point type kept with default color",
				zap.String("id", pt.ID), zap.String("type", string(pt.Category)))
		}
	}
	log.Info("import: finished", zap.Int("loaded", res.Loaded), zap.Int("skipped", res.Skipped))
	return res, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
