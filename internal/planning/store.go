package planning

import (
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/engr-sharif/sbmm-planning-tool/internal/model"
)

// ErrNotFound is returned when an operation references an unknown point id.
var ErrNotFound = eris.New("planning: point not found")

// ChangeKind identifies the mutation that produced a Change.
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeUpdated  ChangeKind = "updated"
	ChangeMoved    ChangeKind = "moved"
	ChangeRemoved  ChangeKind = "removed"
	ChangeCleared  ChangeKind = "cleared"
	ChangeReplaced ChangeKind = "replaced"
	ChangeMerged   ChangeKind = "merged"
)

// Change is delivered to subscribers after every successful mutation.
type Change struct {
	Kind ChangeKind
	IDs  []string
}

// Listener receives change notifications. Listeners run synchronously on the
// mutating goroutine after the store lock is released.
type Listener func(Change)

// Patch carries the optional fields of an update. Nil fields are left as is.
type Patch struct {
	Note  *string
	Depth *model.DepthClass
	Lat   *float64
	Lon   *float64
}

// Store is the authoritative, insertion-ordered collection of planned points.
// Callers hold ids, never pointers into the store.
type Store struct {
	mu     sync.RWMutex
	points []model.PlannedPoint
	index  map[string]int

	subMu   sync.Mutex
	subs    []subscription
	nextSub int
}

type subscription struct {
	id int
	fn Listener
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{index: make(map[string]int)}
}

// Subscribe registers fn for change notifications and returns a function that
// removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) notify(c Change) {
	s.subMu.Lock()
	subs := make([]subscription, len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.fn(c)
	}
}

// Add allocates an id for category, inserts the point, and notifies.
// Unknown categories are stored as proposed so that prefix and category stay
// in one-to-one correspondence.
func (s *Store) Add(lat, lon float64, category model.Category, depth model.DepthClass, note string) model.PlannedPoint {
	if !category.Known() {
		zap.L().Warn("planning: unknown category, using proposed", zap.String("category", string(category)))
		category = model.CategoryProposed
	}

	s.mu.Lock()
	p := model.PlannedPoint{
		ID:       NextID(category.Prefix(), s.idsLocked()),
		Category: category,
		Lat:      lat,
		Lon:      lon,
		Depth:    depth.OrDefault(),
		Note:     note,
	}
	s.insertLocked(p)
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeAdded, IDs: []string{p.ID}})
	return p
}

// Get returns a copy of the point with the given id.
func (s *Store) Get(id string) (model.PlannedPoint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return model.PlannedPoint{}, false
	}
	return s.points[i], true
}

// Has reports whether id is present.
func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[id]
	return ok
}

// Len returns the number of stored points.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points)
}

// Points returns a copy of all points in insertion order.
func (s *Store) Points() []model.PlannedPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.PlannedPoint, len(s.points))
	copy(out, s.points)
	return out
}

// IDs returns all ids in insertion order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idsLocked()
}

// Update applies patch to the point in place. The id and category never change.
func (s *Store) Update(id string, patch Patch) (model.PlannedPoint, error) {
	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return model.PlannedPoint{}, eris.Wrapf(ErrNotFound, "update %s", id)
	}
	p := &s.points[i]
	if patch.Note != nil {
		p.Note = *patch.Note
	}
	if patch.Depth != nil {
		p.Depth = patch.Depth.OrDefault()
	}
	if patch.Lat != nil {
		p.Lat = *patch.Lat
	}
	if patch.Lon != nil {
		p.Lon = *patch.Lon
	}
	updated := *p
	s.mu.Unlock()

	kind := ChangeUpdated
	if patch.Note == nil && patch.Depth == nil && (patch.Lat != nil || patch.Lon != nil) {
		kind = ChangeMoved
	}
	s.notify(Change{Kind: kind, IDs: []string{id}})
	return updated, nil
}

// Move repositions a point, as after a marker drag.
func (s *Store) Move(id string, lat, lon float64) (model.PlannedPoint, error) {
	return s.Update(id, Patch{Lat: &lat, Lon: &lon})
}

// Remove deletes the point with the given id.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return eris.Wrapf(ErrNotFound, "remove %s", id)
	}
	s.removeAtLocked(i)
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeRemoved, IDs: []string{id}})
	return nil
}

// UndoLast removes the most recently inserted point. It is a no-op returning
// false on an empty store.
func (s *Store) UndoLast() (model.PlannedPoint, bool) {
	s.mu.Lock()
	if len(s.points) == 0 {
		s.mu.Unlock()
		return model.PlannedPoint{}, false
	}
	last := s.points[len(s.points)-1]
	s.removeAtLocked(len(s.points) - 1)
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeRemoved, IDs: []string{last.ID}})
	return last, true
}

// Clear removes every point and returns how many were removed. Confirmation
// is the caller's responsibility.
func (s *Store) Clear() int {
	s.mu.Lock()
	n := len(s.points)
	if n == 0 {
		s.mu.Unlock()
		return 0
	}
	ids := s.idsLocked()
	s.points = nil
	s.index = make(map[string]int)
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeCleared, IDs: ids})
	return n
}

// ReplaceAll discards the current contents and inserts points in order.
// Points repeating an id already inserted by this call are skipped.
func (s *Store) ReplaceAll(points []model.PlannedPoint) (added, skipped int) {
	s.mu.Lock()
	s.points = nil
	s.index = make(map[string]int)
	ids := make([]string, 0, len(points))
	for _, p := range points {
		if _, dup := s.index[p.ID]; dup {
			skipped++
			continue
		}
		s.insertLocked(p)
		ids = append(ids, p.ID)
		added++
	}
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeReplaced, IDs: ids})
	return added, skipped
}

// MergeAdd appends points whose ids are not yet present. Collisions are
// counted as skipped, not reported as errors.
func (s *Store) MergeAdd(points []model.PlannedPoint) (added, skipped int) {
	s.mu.Lock()
	ids := make([]string, 0, len(points))
	for _, p := range points {
		if _, dup := s.index[p.ID]; dup {
			skipped++
			continue
		}
		s.insertLocked(p)
		ids = append(ids, p.ID)
		added++
	}
	s.mu.Unlock()

	if added > 0 {
		s.notify(Change{Kind: ChangeMerged, IDs: ids})
	}
	return added, skipped
}

func (s *Store) insertLocked(p model.PlannedPoint) {
	p.Depth = p.Depth.OrDefault()
	s.index[p.ID] = len(s.points)
	s.points = append(s.points, p)
}

func (s *Store) removeAtLocked(i int) {
	delete(s.index, s.points[i].ID)
	s.points = append(s.points[:i], s.points[i+1:]...)
	for j := i; j < len(s.points); j++ {
		s.index[s.points[j].ID] = j
	}
}

func (s *Store) idsLocked() []string {
	ids := make([]string, len(s.points))
	for i, p := range s.points {
		ids[i] = p.ID
	}
	return ids
}
