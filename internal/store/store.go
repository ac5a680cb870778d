// Package store persists the working set of planned points between
// sessions. Laboratory datasets are read-only inputs and never stored.
package store

import (
	"context"
	"time"

	"github.com/engr-sharif/sbmm-planning-tool/internal/model"
)

// DefaultPlan is the plan name used when none is given.
const DefaultPlan = "default"

// PlanSummary describes one saved plan.
type PlanSummary struct {
	Name      string    `json:"name"`
	Points    int       `json:"points"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store defines the persistence interface for planned points.
type Store interface {
	// SavePoints replaces the stored contents of plan with points, keeping
	// their order.
	SavePoints(ctx context.Context, plan string, points []model.PlannedPoint) error
	// LoadPoints returns the points of plan in saved order. An unknown plan
	// yields an empty slice.
	LoadPoints(ctx context.Context, plan string) ([]model.PlannedPoint, error)
	ListPlans(ctx context.Context) ([]PlanSummary, error)

	Migrate(ctx context.Context) error
	Close() error
}
