package app

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/engr-sharif/sbmm-planning-tool/internal/depth"
	"github.com/engr-sharif/sbmm-planning-tool/internal/exchange"
	"github.com/engr-sharif/sbmm-planning-tool/internal/labels"
	"github.com/engr-sharif/sbmm-planning-tool/internal/model"
	"github.com/engr-sharif/sbmm-planning-tool/internal/planning"
)

// ErrUnknownAction is returned by Dispatch for an action with no handler.
var ErrUnknownAction = eris.New("app: unknown action")

// Action names a command a UI control can trigger.
type Action string

const (
	ActionAddPoint       Action = "add_point"
	ActionUpdatePoint    Action = "update_point"
	ActionMovePoint      Action = "move_point"
	ActionDeletePoint    Action = "delete_point"
	ActionUndoLast       Action = "undo_last"
	ActionClearAll       Action = "clear_all"
	ActionExportCSV      Action = "export_csv"
	ActionImportCSV      Action = "import_csv"
	ActionRefreshLabels  Action = "refresh_labels"
	ActionOpenDepth      Action = "open_depth"
	ActionCloseDepth     Action = "close_depth"
	ActionSelectInterval Action = "select_interval"
	ActionToggleMetals   Action = "toggle_metals"
)

// Request carries the arguments of one action. Each handler reads only the
// fields its action needs.
type Request struct {
	Action    Action
	Ref       MarkerRef
	Lat       float64
	Lon       float64
	Category  model.Category
	Depth     model.DepthClass
	Note      string
	Patch     planning.Patch
	Confirmed bool
	Text      string
	Mode      exchange.Mode
	Layers    labels.Visibility
	EntityID  string
	Index     int
	Trigger   depth.Trigger
}

// Handler executes one action and returns its result value.
type Handler func(ctx context.Context, req Request) (any, error)

func (s *Session) buildHandlers() map[Action]Handler {
	return map[Action]Handler{
		ActionAddPoint: func(ctx context.Context, r Request) (any, error) {
			return s.AddPoint(ctx, r.Lat, r.Lon, r.Category, r.Depth, r.Note)
		},
		ActionUpdatePoint: func(ctx context.Context, r Request) (any, error) {
			return s.UpdatePoint(ctx, r.Ref.ID, r.Patch)
		},
		ActionMovePoint: func(ctx context.Context, r Request) (any, error) {
			return s.MovePoint(ctx, r.Ref, r.Lat, r.Lon)
		},
		ActionDeletePoint: func(ctx context.Context, r Request) (any, error) {
			return nil, s.DeletePoint(ctx, r.Ref.ID)
		},
		ActionUndoLast: func(ctx context.Context, _ Request) (any, error) {
			p, ok, err := s.UndoLast(ctx)
			if err != nil || !ok {
				return nil, err
			}
			return p, nil
		},
		ActionClearAll: func(ctx context.Context, r Request) (any, error) {
			return s.ClearAll(ctx, r.Confirmed)
		},
		ActionExportCSV: func(context.Context, Request) (any, error) {
			return s.ExportCSV()
		},
		ActionImportCSV: func(ctx context.Context, r Request) (any, error) {
			return s.ImportCSV(ctx, r.Text, r.Mode)
		},
		ActionRefreshLabels: func(_ context.Context, r Request) (any, error) {
			vis := r.Layers
			if vis == nil {
				vis = labels.AllVisible()
			}
			return s.RefreshLabels(vis), nil
		},
		ActionOpenDepth: func(_ context.Context, r Request) (any, error) {
			return s.depth.Open(r.EntityID)
		},
		ActionCloseDepth: func(_ context.Context, r Request) (any, error) {
			s.depth.Close(r.EntityID)
			return nil, nil
		},
		ActionSelectInterval: func(_ context.Context, r Request) (any, error) {
			trigger := r.Trigger
			if trigger == "" {
				trigger = depth.TriggerTab
			}
			return s.depth.Select(r.EntityID, r.Index, trigger)
		},
		ActionToggleMetals: func(_ context.Context, r Request) (any, error) {
			return s.depth.ToggleMetals(r.EntityID)
		},
	}
}

// Dispatch runs the handler registered for req.Action.
func (s *Session) Dispatch(ctx context.Context, req Request) (any, error) {
	h, ok := s.handlers[req.Action]
	if !ok {
		return nil, eris.Wrapf(ErrUnknownAction, "action %q", req.Action)
	}
	return h(ctx, req)
}

// Actions returns the registered actions.
func (s *Session) Actions() []Action {
	out := make([]Action, 0, len(s.handlers))
	for a := range s.handlers {
		out = append(out, a)
	}
	return out
}
