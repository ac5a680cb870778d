// Package depth tracks the selected depth interval of each open borehole or
// test-pit detail view and computes the vertical profile geometry.
package depth

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/engr-sharif/sbmm-planning-tool/internal/model"
	"github.com/engr-sharif/sbmm-planning-tool/internal/threshold"
)

// EntityKind distinguishes the two entity types that carry depth intervals.
type EntityKind string

const (
	KindTestPit    EntityKind = "test_pit"
	KindSoilBoring EntityKind = "soil_boring"
)

// Entity is a borehole or test pit with its ordered depth intervals.
type Entity struct {
	ID        string
	Kind      EntityKind
	Intervals []model.DepthInterval
}

// Tick is a scale mark on the vertical profile.
type Tick struct {
	Depth  float64 `json:"depth"`
	TopPct float64 `json:"top_pct"`
}

// ColorPending marks soil boring intervals still awaiting a mercury result.
const ColorPending = "#ccc"

// Segment is the drawn extent of one interval on the profile.
type Segment struct {
	Index     int     `json:"index"`
	Label     string  `json:"label"`
	TopPct    float64 `json:"top_pct"`
	HeightPct float64 `json:"height_pct"`
	Exceeds   bool    `json:"exceeds"`
	Color     string  `json:"color"`
}

// Overlay is the selection frame drawn over the selected interval.
type Overlay struct {
	EntityID  string  `json:"entity_id"`
	Index     int     `json:"index"`
	Label     string  `json:"label"`
	TopPct    float64 `json:"top_pct"`
	HeightPct float64 `json:"height_pct"`
}

// Profile is the full vertical profile of one entity.
type Profile struct {
	EntityID     string     `json:"entity_id"`
	Kind         EntityKind `json:"kind"`
	MaxDepth     float64    `json:"max_depth"`
	HeightPx     float64    `json:"height_px"`
	TickInterval float64    `json:"tick_interval"`
	Ticks        []Tick     `json:"ticks"`
	Segments     []Segment  `json:"segments"`
	Overlay      Overlay    `json:"overlay"`
}

// validate enforces a non-empty sequence with 0 <= start < end for every interval.
func (e Entity) validate() error {
	if len(e.Intervals) == 0 {
		return eris.Wrapf(ErrNoIntervals, "entity %s", e.ID)
	}
	for i, iv := range e.Intervals {
		if iv.Start < 0 || iv.End <= iv.Start {
			return eris.Wrapf(ErrInvalidInterval, "entity %s interval %d (%g-%g)", e.ID, i, iv.Start, iv.End)
		}
	}
	return nil
}

// MaxDepth returns the greatest interval end.
func (e Entity) MaxDepth() float64 {
	var m float64
	for _, iv := range e.Intervals {
		m = math.Max(m, iv.End)
	}
	return m
}

// overlay returns the geometry for interval index; index must be in range.
func (e Entity) overlay(index int) Overlay {
	iv := e.Intervals[index]
	top, height := span(iv, e.MaxDepth())
	return Overlay{EntityID: e.ID, Index: index, Label: iv.Label, TopPct: top, HeightPct: height}
}

func span(iv model.DepthInterval, maxDepth float64) (topPct, heightPct float64) {
	return iv.Start / maxDepth * 100, (iv.End - iv.Start) / maxDepth * 100
}

// TickInterval returns the profile scale step in feet.
func TickInterval(kind EntityKind, maxDepth float64) float64 {
	if kind == KindSoilBoring {
		switch {
		case maxDepth <= 20:
			return 5
		case maxDepth <= 50:
			return 10
		default:
			return 20
		}
	}
	switch {
	case maxDepth <= 10:
		return 2
	case maxDepth <= 20:
		return 5
	default:
		return 10
	}
}

// ProfileHeight returns the rendered profile height in pixels.
func ProfileHeight(kind EntityKind, maxDepth float64) float64 {
	if kind == KindSoilBoring {
		return math.Min(200, math.Max(120, maxDepth*2.5))
	}
	return math.Min(180, math.Max(100, maxDepth*4))
}

// Ticks returns the scale marks from 0 to maxDepth inclusive.
func Ticks(kind EntityKind, maxDepth float64) []Tick {
	step := TickInterval(kind, maxDepth)
	var ticks []Tick
	for d := 0.0; d <= maxDepth; d += step {
		ticks = append(ticks, Tick{Depth: d, TopPct: d / maxDepth * 100})
	}
	return ticks
}

// Segments returns one segment per interval. An interval whose value for any
// constituent of concern is above the ROD level is flagged and drawn in the
// high color.
func Segments(e Entity) []Segment {
	maxDepth := e.MaxDepth()
	out := make([]Segment, len(e.Intervals))
	for i, iv := range e.Intervals {
		top, height := span(iv, maxDepth)
		exceeds := threshold.AnyCOCExceeds(iv.Value)
		color := threshold.ColorLow
		switch {
		case exceeds:
			color = threshold.ColorHigh
		case e.Kind == KindSoilBoring && iv.Value("Mercury") == nil:
			color = ColorPending
		}
		out[i] = Segment{Index: i, Label: iv.Label, TopPct: top, HeightPct: height, Exceeds: exceeds, Color: color}
	}
	return out
}

// BuildProfile computes the profile with the overlay on selected.
func BuildProfile(e Entity, selected int) Profile {
	maxDepth := e.MaxDepth()
	return Profile{
		EntityID:     e.ID,
		Kind:         e.Kind,
		MaxDepth:     maxDepth,
		HeightPx:     ProfileHeight(e.Kind, maxDepth),
		TickInterval: TickInterval(e.Kind, maxDepth),
		Ticks:        Ticks(e.Kind, maxDepth),
		Segments:     Segments(e),
		Overlay:      e.overlay(selected),
	}
}
