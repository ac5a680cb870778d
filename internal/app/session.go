// Package app wires the planning collaborators into one Session that exposes
// the command surface used by the map UI and the CLI.
package app

import (
	"context"
	"math"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/engr-sharif/sbmm-planning-tool/internal/depth"
	"github.com/engr-sharif/sbmm-planning-tool/internal/exchange"
	"github.com/engr-sharif/sbmm-planning-tool/internal/labels"
	"github.com/engr-sharif/sbmm-planning-tool/internal/model"
	"github.com/engr-sharif/sbmm-planning-tool/internal/planning"
	"github.com/engr-sharif/sbmm-planning-tool/internal/resilience"
	"github.com/engr-sharif/sbmm-planning-tool/internal/store"
)

var (
	// ErrConfirmationRequired is returned by ClearAll when the caller has not
	// confirmed a destructive clear.
	ErrConfirmationRequired = eris.New("app: clear all requires confirmation")
	// ErrInvalidCoordinate rejects NaN or infinite coordinates.
	ErrInvalidCoordinate = eris.New("app: coordinates must be finite")
)

// Options configures a Session. Data may be nil when no datasets are loaded;
// Persist may be nil for a session that is never saved.
type Options struct {
	Data           *model.Datasets
	Persist        store.Store
	Plan           string
	Labels         *labels.Engine
	ClipboardTitle string
	// SaveRetry governs retries of transient save failures. The zero value
	// uses resilience defaults.
	SaveRetry resilience.RetryConfig
}

// Session is the application context. It is constructed once and passed to
// whoever needs it; no collaborator reaches for ambient state.
type Session struct {
	data     *model.Datasets
	points   *planning.Store
	planner  *planning.Planner
	importer *exchange.Importer
	labels   *labels.Engine
	depth    *depth.Selector
	persist  store.Store
	plan     string
	title    string
	retry    resilience.RetryConfig

	handlers    map[Action]Handler
	dirty       atomic.Bool
	unsubscribe func()
}

// New builds a Session and its dispatch table.
func New(opts Options) *Session {
	if opts.Data == nil {
		opts.Data = &model.Datasets{}
	}
	if opts.Plan == "" {
		opts.Plan = store.DefaultPlan
	}
	if opts.Labels == nil {
		opts.Labels = labels.DefaultEngine()
	}
	if opts.ClipboardTitle == "" {
		opts.ClipboardTitle = exchange.DefaultClipboardTitle
	}

	points := planning.NewStore()
	s := &Session{
		data:     opts.Data,
		points:   points,
		planner:  planning.NewPlanner(points),
		importer: exchange.NewImporter(points),
		labels:   opts.Labels,
		depth:    depth.FromDatasets(opts.Data),
		persist:  opts.Persist,
		plan:     opts.Plan,
		title:    opts.ClipboardTitle,
		retry:    opts.SaveRetry,
	}
	if s.retry.OnRetry == nil {
		s.retry.OnRetry = resilience.RetryLogger("save plan " + opts.Plan)
	}
	s.unsubscribe = points.Subscribe(func(c planning.Change) {
		s.dirty.Store(true)
		zap.L().Debug("app: points changed", zap.String("kind", string(c.Kind)), zap.Strings("ids", c.IDs))
	})
	s.handlers = s.buildHandlers()
	return s
}

// Open loads the saved points of the session's plan. It is a no-op without a
// persistence store.
func (s *Session) Open(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}
	pts, err := s.persist.LoadPoints(ctx, s.plan)
	if err != nil {
		return eris.Wrapf(err, "app: load plan %s", s.plan)
	}
	s.points.ReplaceAll(pts)
	s.dirty.Store(false)
	zap.L().Info("app: plan opened", zap.String("plan", s.plan), zap.Int("points", len(pts)))
	return nil
}

// Close stops change tracking. It does not close the persistence store.
func (s *Session) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// Plan returns the name of the plan the session saves to.
func (s *Session) Plan() string { return s.plan }

// Datasets returns the read-only sample datasets.
func (s *Session) Datasets() *model.Datasets { return s.data }

// Points returns the planned points in insertion order.
func (s *Session) Points() []model.PlannedPoint { return s.points.Points() }

// Planner returns the click-to-place planner.
func (s *Session) Planner() *planning.Planner { return s.planner }

// Depth returns the depth interval selector.
func (s *Session) Depth() *depth.Selector { return s.depth }

// save writes the working set when a mutation happened since the last save.
func (s *Session) save(ctx context.Context) error {
	if s.persist == nil || !s.dirty.Swap(false) {
		return nil
	}
	pts := s.points.Points()
	err := resilience.Do(ctx, s.retry, func(ctx context.Context) error {
		return s.persist.SavePoints(ctx, s.plan, pts)
	})
	if err != nil {
		s.dirty.Store(true)
		zap.L().Error("app: save failed", zap.String("plan", s.plan), zap.Error(err))
		return eris.Wrapf(err, "app: save plan %s", s.plan)
	}
	return nil
}

func checkCoords(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return eris.Wrapf(ErrInvalidCoordinate, "lat %v lon %v", lat, lon)
	}
	return nil
}

// AddPoint creates a point of category at lat/lon.
func (s *Session) AddPoint(ctx context.Context, lat, lon float64, category model.Category, depthClass model.DepthClass, note string) (model.PlannedPoint, error) {
	if err := checkCoords(lat, lon); err != nil {
		return model.PlannedPoint{}, err
	}
	p := s.points.Add(lat, lon, category, depthClass, note)
	return p, s.save(ctx)
}

// ConfirmPending turns the planner's pending placement into a point.
func (s *Session) ConfirmPending(ctx context.Context, depthClass model.DepthClass, note string) (model.PlannedPoint, error) {
	p, err := s.planner.Confirm(depthClass, note)
	if err != nil {
		return model.PlannedPoint{}, err
	}
	return p, s.save(ctx)
}

// UpdatePoint applies patch to the point with the given id.
func (s *Session) UpdatePoint(ctx context.Context, id string, patch planning.Patch) (model.PlannedPoint, error) {
	if patch.Lat != nil || patch.Lon != nil {
		lat, lon := 0.0, 0.0
		if patch.Lat != nil {
			lat = *patch.Lat
		}
		if patch.Lon != nil {
			lon = *patch.Lon
		}
		if err := checkCoords(lat, lon); err != nil {
			return model.PlannedPoint{}, err
		}
	}
	p, err := s.points.Update(id, patch)
	if err != nil {
		return model.PlannedPoint{}, err
	}
	return p, s.save(ctx)
}

// MovePoint repositions the point a marker refers to, as after a drag.
func (s *Session) MovePoint(ctx context.Context, ref MarkerRef, lat, lon float64) (model.PlannedPoint, error) {
	return s.UpdatePoint(ctx, ref.ID, planning.Patch{Lat: &lat, Lon: &lon})
}

// DeletePoint removes the point with the given id.
func (s *Session) DeletePoint(ctx context.Context, id string) error {
	if err := s.points.Remove(id); err != nil {
		return err
	}
	return s.save(ctx)
}

// UndoLast removes the most recently added point. ok is false on an empty
// plan, which is not an error.
func (s *Session) UndoLast(ctx context.Context) (model.PlannedPoint, bool, error) {
	p, ok := s.points.UndoLast()
	if !ok {
		return model.PlannedPoint{}, false, nil
	}
	return p, true, s.save(ctx)
}

// ClearAll removes every point. A non-empty plan is only cleared when
// confirmed is true.
func (s *Session) ClearAll(ctx context.Context, confirmed bool) (int, error) {
	if s.points.Len() == 0 {
		return 0, nil
	}
	if !confirmed {
		return 0, ErrConfirmationRequired
	}
	n := s.points.Clear()
	zap.L().Info("app: plan cleared", zap.String("plan", s.plan), zap.Int("removed", n))
	return n, s.save(ctx)
}

// ExportCSV renders the plan in the CSV exchange format.
func (s *Session) ExportCSV() (string, error) {
	pts := s.points.Points()
	if len(pts) == 0 {
		return "", exchange.ErrNothingToExport
	}
	return exchange.ExportCSV(pts), nil
}

// ExportText renders the clipboard summary.
func (s *Session) ExportText() (string, error) {
	return exchange.ClipboardText(s.title, s.points.Points())
}

// ImportCSV loads CSV text in replace or merge mode.
func (s *Session) ImportCSV(ctx context.Context, text string, mode exchange.Mode) (exchange.ImportResult, error) {
	res, err := s.importer.ImportCSV(ctx, text, mode)
	if err != nil {
		return exchange.ImportResult{}, err
	}
	return res, s.save(ctx)
}

// ImportXLSX loads the first sheet of an XLSX workbook in replace or merge
// mode.
func (s *Session) ImportXLSX(ctx context.Context, path string, mode exchange.Mode) (exchange.ImportResult, error) {
	res, err := s.importer.ImportXLSX(ctx, path, mode)
	if err != nil {
		return exchange.ImportResult{}, err
	}
	return res, s.save(ctx)
}

// RefreshLabels recomputes every label for the visible layers from scratch.
func (s *Session) RefreshLabels(vis labels.Visibility) labels.Result {
	res := s.labels.Refresh(s.data, s.points.Points(), vis)
	if res.Fallbacks > 0 {
		zap.L().Debug("app: dense label cluster", zap.Int("fallbacks", res.Fallbacks))
	}
	return res
}

// SelectDepthInterval selects interval index of a test pit or soil boring.
func (s *Session) SelectDepthInterval(entityID string, index int) (depth.Overlay, error) {
	return s.depth.Select(entityID, index, depth.TriggerTab)
}
