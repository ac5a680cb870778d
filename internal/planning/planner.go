package planning

import (
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/engr-sharif/sbmm-planning-tool/internal/model"
)

// Mode is the current map interaction mode.
type Mode string

const (
	ModeView     Mode = "view"
	ModeProposed Mode = "proposed"
	ModeStepOut  Mode = "stepout"
)

// ErrNoPending is returned by Confirm when no placement is awaiting confirmation.
var ErrNoPending = eris.New("planning: no pending placement")

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeView, ModeProposed, ModeStepOut:
		return Mode(s), nil
	}
	return "", eris.Errorf("planning: unknown mode %q", s)
}

// Category returns the point category created in this mode. ok is false in
// view mode.
func (m Mode) Category() (model.Category, bool) {
	switch m {
	case ModeProposed:
		return model.CategoryProposed, true
	case ModeStepOut:
		return model.CategoryStepOut, true
	}
	return "", false
}

// Pending is a map click awaiting user confirmation. ID is a preview; the
// id actually assigned is allocated again on Confirm.
type Pending struct {
	ID       string
	Category model.Category
	Lat      float64
	Lon      float64
}

// Planner turns map clicks into planned points through a confirm/cancel step.
type Planner struct {
	store *Store

	mu      sync.Mutex
	mode    Mode
	pending *Pending
}

// NewPlanner returns a Planner in view mode.
func NewPlanner(store *Store) *Planner {
	return &Planner{store: store, mode: ModeView}
}

// Mode returns the current mode.
func (p *Planner) Mode() Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

// SetMode switches mode. Switching discards any pending placement.
func (p *Planner) SetMode(m Mode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = m
	p.pending = nil
}

// HandleMapClick starts a pending placement at lat/lon. In view mode it does
// nothing and returns nil.
func (p *Planner) HandleMapClick(lat, lon float64) *Pending {
	p.mu.Lock()
	defer p.mu.Unlock()

	cat, ok := p.mode.Category()
	if !ok {
		return nil
	}
	p.pending = &Pending{
		ID:       NextID(cat.Prefix(), p.store.IDs()),
		Category: cat,
		Lat:      lat,
		Lon:      lon,
	}
	out := *p.pending
	return &out
}

// Pending returns the placement awaiting confirmation, if any.
func (p *Planner) Pending() (Pending, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == nil {
		return Pending{}, false
	}
	return *p.pending, true
}

// Confirm adds the pending placement to the store.
func (p *Planner) Confirm(depth model.DepthClass, note string) (model.PlannedPoint, error) {
	p.mu.Lock()
	pending := p.pending
	p.pending = nil
	p.mu.Unlock()

	if pending == nil {
		return model.PlannedPoint{}, ErrNoPending
	}
	pt := p.store.Add(pending.Lat, pending.Lon, pending.Category, depth, note)
	if pt.ID != pending.ID {
		zap.L().Debug("planning: preview id superseded",
			zap.String("preview", pending.ID),
			zap.String("assigned", pt.ID),
		)
	}
	return pt, nil
}

// Cancel discards the pending placement.
func (p *Planner) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = nil
}
