package app

import (
	"github.com/rotisserie/eris"

	"github.com/engr-sharif/sbmm-planning-tool/internal/model"
	"github.com/engr-sharif/sbmm-planning-tool/internal/planning"
)

// MarkerRef is what a map marker holds: the id of its point, never the point.
type MarkerRef struct {
	ID string `json:"id"`
}

// Marker is the render state of one planned-point marker.
type Marker struct {
	Ref   MarkerRef `json:"ref"`
	Lat   float64   `json:"lat"`
	Lon   float64   `json:"lon"`
	Color string    `json:"color"`
	Title string    `json:"title"`
}

// Markers returns one marker per planned point in insertion order.
func (s *Session) Markers() []Marker {
	pts := s.points.Points()
	out := make([]Marker, len(pts))
	for i, p := range pts {
		out[i] = Marker{
			Ref:   MarkerRef{ID: p.ID},
			Lat:   p.Lat,
			Lon:   p.Lon,
			Color: p.Color(),
			Title: p.ID + " (" + p.Category.Label() + ")",
		}
	}
	return out
}

// Resolve looks up the current state of the point a marker refers to.
func (s *Session) Resolve(ref MarkerRef) (model.PlannedPoint, error) {
	p, ok := s.points.Get(ref.ID)
	if !ok {
		return model.PlannedPoint{}, eris.Wrapf(planning.ErrNotFound, "marker %s", ref.ID)
	}
	return p, nil
}
