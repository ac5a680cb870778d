package depth

import (
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/engr-sharif/sbmm-planning-tool/internal/model"
)

var (
	ErrUnknownEntity   = eris.New("depth: unknown entity")
	ErrIndexOutOfRange = eris.New("depth: interval index out of range")
	ErrNoIntervals     = eris.New("depth: entity has no depth intervals")
	ErrInvalidInterval = eris.New("depth: interval must satisfy 0 <= start < end")
)

// Trigger names the control that requested a selection. All triggers have the
// same effect.
type Trigger string

const (
	TriggerTab      Trigger = "tab"
	TriggerDropdown Trigger = "dropdown"
	TriggerSegment  Trigger = "segment"
)

// State is the per-entity selection state.
type State struct {
	SelectedIndex  int  `json:"selected_index"`
	MetalsExpanded bool `json:"metals_expanded"`
}

// Selector owns the selection state of every entity, keyed by entity id.
type Selector struct {
	mu       sync.Mutex
	entities map[string]Entity
	state    map[string]*State
}

// NewSelector returns a Selector with no registered entities.
func NewSelector() *Selector {
	return &Selector{
		entities: make(map[string]Entity),
		state:    make(map[string]*State),
	}
}

// FromDatasets registers every 2025 test pit and soil boring that has depth
// intervals. Entities with invalid intervals are skipped with a warning.
func FromDatasets(data *model.Datasets) *Selector {
	s := NewSelector()
	if data == nil {
		return s
	}
	add := func(e Entity) {
		if len(e.Intervals) == 0 {
			return
		}
		if err := s.Register(e); err != nil {
			zap.L().Warn("depth: skipping entity", zap.String("entity", e.ID), zap.Error(err))
		}
	}
	for _, tp := range data.TestPits2025 {
		add(Entity{ID: tp.ID, Kind: KindTestPit, Intervals: tp.Depths})
	}
	for _, sb := range data.SoilBorings2025 {
		add(Entity{ID: sb.ID, Kind: KindSoilBoring, Intervals: sb.Depths})
	}
	return s
}

// Register adds or replaces an entity. Intervals are kept in the supplied order.
func (s *Selector) Register(e Entity) error {
	if err := e.validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities[e.ID] = e
	if st, ok := s.state[e.ID]; ok && st.SelectedIndex >= len(e.Intervals) {
		st.SelectedIndex = 0
	}
	return nil
}

// Entity returns a registered entity.
func (s *Selector) Entity(id string) (Entity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[id]
	return e, ok
}

// Open starts (or restarts) the detail view of an entity. The selection goes
// back to the first interval; a previously set MetalsExpanded is kept.
func (s *Selector) Open(id string) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[id]
	if !ok {
		return Profile{}, eris.Wrapf(ErrUnknownEntity, "entity %s", id)
	}
	st := s.stateLocked(id)
	st.SelectedIndex = 0
	return BuildProfile(e, 0), nil
}

// Close discards the state of an entity's detail view.
func (s *Selector) Close(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state, id)
}

// Select moves the selection of entity id to index and returns the new
// overlay geometry. On error the state is unchanged. MetalsExpanded is never
// touched.
func (s *Selector) Select(id string, index int, trigger Trigger) (Overlay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[id]
	if !ok {
		return Overlay{}, eris.Wrapf(ErrUnknownEntity, "entity %s", id)
	}
	if index < 0 || index >= len(e.Intervals) {
		return Overlay{}, eris.Wrapf(ErrIndexOutOfRange, "entity %s index %d of %d", id, index, len(e.Intervals))
	}
	s.stateLocked(id).SelectedIndex = index
	zap.L().Debug("depth: interval selected",
		zap.String("entity", id),
		zap.Int("index", index),
		zap.String("trigger", string(trigger)),
	)
	return e.overlay(index), nil
}

// ToggleMetals flips MetalsExpanded for entity id and returns the new value.
func (s *Selector) ToggleMetals(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entities[id]; !ok {
		return false, eris.Wrapf(ErrUnknownEntity, "entity %s", id)
	}
	st := s.stateLocked(id)
	st.MetalsExpanded = !st.MetalsExpanded
	return st.MetalsExpanded, nil
}

// State returns the current state of entity id; ok is false when the entity
// has no state yet.
func (s *Selector) State(id string) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.state[id]
	if !ok {
		return State{}, false
	}
	return *st, true
}

// Profile returns the profile of entity id with the overlay on the current
// selection.
func (s *Selector) Profile(id string) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[id]
	if !ok {
		return Profile{}, eris.Wrapf(ErrUnknownEntity, "entity %s", id)
	}
	return BuildProfile(e, s.stateLocked(id).SelectedIndex), nil
}

func (s *Selector) stateLocked(id string) *State {
	st, ok := s.state[id]
	if !ok {
		st = &State{}
		s.state[id] = st
	}
	return st
}
