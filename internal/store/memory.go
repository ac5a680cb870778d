package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/engr-sharif/sbmm-planning-tool/internal/model"
)

// MemoryStore implements Store in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	plans map[string]memoryPlan
}

type memoryPlan struct {
	points    []model.PlannedPoint
	updatedAt time.Time
}

// NewMemory returns an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{plans: make(map[string]memoryPlan)}
}

func (m *MemoryStore) SavePoints(_ context.Context, plan string, points []model.PlannedPoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := make([]model.PlannedPoint, len(points))
	for i, p := range points {
		p.Depth = p.Depth.OrDefault()
		saved[i] = p
	}
	m.plans[plan] = memoryPlan{
		points:    saved,
		updatedAt: time.Now().UTC(),
	}
	return nil
}

func (m *MemoryStore) LoadPoints(_ context.Context, plan string) ([]model.PlannedPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.PlannedPoint{}, m.plans[plan].points...), nil
}

func (m *MemoryStore) ListPlans(_ context.Context) ([]PlanSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PlanSummary, 0, len(m.plans))
	for name, p := range m.plans {
		out = append(out, PlanSummary{Name: name, Points: len(p.points), UpdatedAt: p.updatedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) Migrate(context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }
