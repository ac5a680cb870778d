// Package labels places text labels next to map anchors without overlap.
//
// Placement is greedy and order dependent: each anchor is placed against the
// labels already placed in the same pass, so the anchor order produced by
// Refresh is part of the output contract.
package labels

import (
	"math"

	"go.uber.org/zap"
)

// Default placement parameters, in raw coordinate degrees. The offset is sized
// for roughly 39 degrees north.
const (
	DefaultOffset        = 0.00015
	DefaultMinSeparation = 0.8
	DefaultMultipliers   = 3
)

// direction is a candidate offset; DX applies to longitude, DY to latitude.
type direction struct {
	DX, DY float64
}

var directions = [8]direction{
	{DX: 1, DY: 0.5},
	{DX: 1, DY: -0.5},
	{DX: -1, DY: 0.5},
	{DX: -1, DY: -0.5},
	{DX: 0, DY: 1},
	{DX: 0, DY: -1},
	{DX: 1.5, DY: 0},
	{DX: -1.5, DY: 0},
}

// Anchor is a map entity that needs a label.
type Anchor struct {
	EntityID string  `json:"entity_id"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Text     string  `json:"text"`
	Color    string  `json:"color"`
}

// PlacedLabel is the final position of one label.
type PlacedLabel struct {
	AnchorID string  `json:"anchor_id"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	// RequiresLeaderLine is always true: the anchor itself is never a candidate.
	RequiresLeaderLine bool `json:"requires_leader_line"`
	// Fallback marks a dense-cluster placement that skipped the overlap check.
	Fallback bool `json:"fallback,omitempty"`
}

// Engine computes label positions. The zero value is not usable; use
// NewEngine or DefaultEngine.
type Engine struct {
	offset        float64
	minSeparation float64
	multipliers   int
}

// Option configures an Engine.
type Option func(*Engine)

// WithOffset sets the base offset distance in degrees.
func WithOffset(d float64) Option {
	return func(e *Engine) {
		if d > 0 {
			e.offset = d
		}
	}
}

// WithMinSeparation sets the minimum separation as a fraction of the offset.
func WithMinSeparation(f float64) Option {
	return func(e *Engine) {
		if f > 0 {
			e.minSeparation = f
		}
	}
}

// WithMultipliers sets how many rings of candidates are tried.
func WithMultipliers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.multipliers = n
		}
	}
}

// NewEngine returns an Engine with the default parameters overridden by opts.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		offset:        DefaultOffset,
		minSeparation: DefaultMinSeparation,
		multipliers:   DefaultMultipliers,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// DefaultEngine returns an Engine with the default parameters.
func DefaultEngine() *Engine { return NewEngine() }

// Offset returns the base offset distance in degrees.
func (e *Engine) Offset() float64 { return e.offset }

// MinDistance returns the minimum accepted distance between labels.
func (e *Engine) MinDistance() float64 { return e.offset * e.minSeparation }

// Place returns the first candidate around anchor that keeps at least
// MinDistance from every label in placed. Candidates are tried ring by ring
// (multiplier 1..n) and, within a ring, in the fixed direction order. When
// every candidate is rejected, the label goes to anchor + (d, d) with no
// overlap check and Fallback set.
func (e *Engine) Place(anchor Anchor, placed []PlacedLabel) PlacedLabel {
	minDist := e.MinDistance()
	for mult := 1; mult <= e.multipliers; mult++ {
		for _, d := range directions {
			lat := anchor.Lat + d.DY*e.offset*float64(mult)
			lon := anchor.Lon + d.DX*e.offset*float64(mult)
			if isClear(lat, lon, placed, minDist) {
				return PlacedLabel{
					AnchorID:           anchor.EntityID,
					Lat:                lat,
					Lon:                lon,
					RequiresLeaderLine: true,
				}
			}
		}
	}

	zap.L().Debug("labels: dense cluster fallback",
		zap.String("anchor", anchor.EntityID),
		zap.Int("placed", len(placed)),
	)
	return PlacedLabel{
		AnchorID:           anchor.EntityID,
		Lat:                anchor.Lat + e.offset,
		Lon:                anchor.Lon + e.offset,
		RequiresLeaderLine: true,
		Fallback:           true,
	}
}

// isClear reports whether (lat, lon) is at least minDist from every placed
// label, measured in raw degree space.
func isClear(lat, lon float64, placed []PlacedLabel, minDist float64) bool {
	for _, p := range placed {
		if math.Hypot(lat-p.Lat, lon-p.Lon) < minDist {
			return false
		}
	}
	return true
}
