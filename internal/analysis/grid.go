// Package analysis computes the coverage views drawn over the site: the
// sampling gap grid, per-cell hot zones, and point-to-point distances.
package analysis

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/engr-sharif/sbmm-planning-tool/internal/model"
)

// FeetToMeters converts survey feet to meters.
const FeetToMeters = 0.3048

// Degree scaling for roughly 39 degrees north.
const (
	DefaultMetersPerDegLat = 111000.0
	DefaultMetersPerDegLon = 86000.0
)

// Grid size defaults, in feet.
const (
	DefaultGridSizeFt = 50
	MinGridSizeFt     = 25
	MaxGridSizeFt     = 100
	GridStepFt        = 25
)

// Options configures the grid views.
type Options struct {
	GridSizeFt      float64
	MinGridSizeFt   float64
	MaxGridSizeFt   float64
	MetersPerDegLat float64
	MetersPerDegLon float64
	IncludePlanned  bool
}

// DefaultOptions returns the field defaults.
func DefaultOptions() Options {
	return Options{
		GridSizeFt:      DefaultGridSizeFt,
		MinGridSizeFt:   MinGridSizeFt,
		MaxGridSizeFt:   MaxGridSizeFt,
		MetersPerDegLat: DefaultMetersPerDegLat,
		MetersPerDegLon: DefaultMetersPerDegLon,
		IncludePlanned:  true,
	}
}

// AdjustGridSize moves size by delta feet and clamps it to [min, max].
func AdjustGridSize(size, delta, minFt, maxFt float64) float64 {
	return math.Min(maxFt, math.Max(minFt, size+delta))
}

// Location is a point that counts as sampling coverage.
type Location struct {
	ID  string  `json:"id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Coverage returns every location that counts as sampled: 2025 samples that
// were collected, EA samples, 2025 test pits and soil borings, and EA test
// pits. Planned points are appended when includePlanned is set.
func Coverage(data *model.Datasets, planned []model.PlannedPoint, includePlanned bool) []Location {
	var out []Location
	if data != nil {
		for _, s := range data.Samples2025 {
			if s.Sampled {
				out = append(out, Location{ID: s.Label, Lat: s.Lat, Lon: s.Lon})
			}
		}
		for _, e := range data.EASamples {
			out = append(out, Location{ID: e.ID, Lat: e.Lat, Lon: e.Lon})
		}
		for _, tp := range data.TestPits2025 {
			out = append(out, Location{ID: tp.ID, Lat: tp.Lat, Lon: tp.Lon})
		}
		for _, sb := range data.SoilBorings2025 {
			out = append(out, Location{ID: sb.ID, Lat: sb.Lat, Lon: sb.Lon})
		}
		for _, tp := range data.EATestPits {
			out = append(out, Location{ID: tp.ID, Lat: tp.Lat, Lon: tp.Lon})
		}
	}
	if includePlanned {
		for _, p := range planned {
			out = append(out, Location{ID: p.ID, Lat: p.Lat, Lon: p.Lon})
		}
	}
	return out
}

// Cell is one square of the analysis grid.
type Cell struct {
	Row    int      `json:"row"`
	Col    int      `json:"col"`
	MinLat float64  `json:"min_lat"`
	MinLon float64  `json:"min_lon"`
	MaxLat float64  `json:"max_lat"`
	MaxLon float64  `json:"max_lon"`
	IDs    []string `json:"ids,omitempty"`
}

// Center returns the cell midpoint.
func (c Cell) Center() (lat, lon float64) {
	return (c.MinLat + c.MaxLat) / 2, (c.MinLon + c.MaxLon) / 2
}

// Grid is a row-major grid of square cells laid over a set of locations.
type Grid struct {
	SizeFt  float64 `json:"size_ft"`
	Rows    int     `json:"rows"`
	Cols    int     `json:"cols"`
	CellLat float64 `json:"cell_lat"`
	CellLon float64 `json:"cell_lon"`
	Cells   []Cell  `json:"cells"`
}

// Cell returns the cell at row, col.
func (g *Grid) Cell(row, col int) *Cell {
	return &g.Cells[row*g.Cols+col]
}

// locate returns the cell containing lat/lon. Points on the far edge fall in
// the last row or column.
func (g *Grid) locate(lat, lon float64) *Cell {
	minLat, minLon := g.Cells[0].MinLat, g.Cells[0].MinLon
	row := min(int(math.Floor((lat-minLat)/g.CellLat)), g.Rows-1)
	col := min(int(math.Floor((lon-minLon)/g.CellLon)), g.Cols-1)
	return g.Cell(max(row, 0), max(col, 0))
}

// ErrNoLocations is returned when a grid is requested over nothing.
var ErrNoLocations = eris.New("analysis: no locations to grid")

// NewGrid lays square cells of opts.GridSizeFt over the extent of locs and
// assigns every location to its cell.
func NewGrid(locs []Location, opts Options) (*Grid, error) {
	if len(locs) == 0 {
		return nil, ErrNoLocations
	}
	if opts.GridSizeFt <= 0 || opts.MetersPerDegLat <= 0 || opts.MetersPerDegLon <= 0 {
		return nil, eris.Errorf("analysis: invalid grid options %+v", opts)
	}

	bounds := geom.NewBounds(geom.XY)
	for _, l := range locs {
		bounds.Extend(geom.NewPointFlat(geom.XY, []float64{l.Lon, l.Lat}))
	}
	minLon, minLat := bounds.Min(0), bounds.Min(1)
	maxLon, maxLat := bounds.Max(0), bounds.Max(1)

	sizeM := opts.GridSizeFt * FeetToMeters
	g := &Grid{
		SizeFt:  opts.GridSizeFt,
		CellLat: sizeM / opts.MetersPerDegLat,
		CellLon: sizeM / opts.MetersPerDegLon,
	}
	g.Rows = max(1, int(math.Ceil((maxLat-minLat)/g.CellLat)))
	g.Cols = max(1, int(math.Ceil((maxLon-minLon)/g.CellLon)))

	g.Cells = make([]Cell, 0, g.Rows*g.Cols)
	for r := range g.Rows {
		for c := range g.Cols {
			lat0 := minLat + float64(r)*g.CellLat
			lon0 := minLon + float64(c)*g.CellLon
			g.Cells = append(g.Cells, Cell{
				Row: r, Col: c,
				MinLat: lat0, MinLon: lon0,
				MaxLat: lat0 + g.CellLat, MaxLon: lon0 + g.CellLon,
			})
		}
	}
	for _, l := range locs {
		cell := g.locate(l.Lat, l.Lon)
		cell.IDs = append(cell.IDs, l.ID)
	}
	return g, nil
}

// GapReport is the result of a gap analysis.
type GapReport struct {
	Grid     *Grid   `json:"grid"`
	Gaps     []Cell  `json:"gaps"`
	Covered  int     `json:"covered"`
	Coverage float64 `json:"coverage_pct"`
}

// Gaps grids the coverage locations and reports the cells that contain none.
func Gaps(data *model.Datasets, planned []model.PlannedPoint, opts Options) (*GapReport, error) {
	g, err := NewGrid(Coverage(data, planned, opts.IncludePlanned), opts)
	if err != nil {
		return nil, err
	}
	rep := &GapReport{Grid: g}
	for _, c := range g.Cells {
		if len(c.IDs) == 0 {
			rep.Gaps = append(rep.Gaps, c)
		} else {
			rep.Covered++
		}
	}
	rep.Coverage = float64(rep.Covered) / float64(len(g.Cells)) * 100
	return rep, nil
}
