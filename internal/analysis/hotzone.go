package analysis

import (
	"github.com/rotisserie/eris"

	"github.com/engr-sharif/sbmm-planning-tool/internal/model"
	"github.com/engr-sharif/sbmm-planning-tool/internal/threshold"
)

// Measurement is one analyte value at a location.
type Measurement struct {
	Location
	Value *float64 `json:"value"`
}

// Measurements returns the analyte value of every 2025 and EA sample.
// Samples without a value for analyte are kept with a nil Value.
func Measurements(data *model.Datasets, analyte string) []Measurement {
	if data == nil {
		return nil
	}
	var out []Measurement
	for _, s := range data.Samples2025 {
		out = append(out, Measurement{Location{s.Label, s.Lat, s.Lon}, s.Value(analyte)})
	}
	for _, e := range data.EASamples {
		out = append(out, Measurement{Location{e.ID, e.Lat, e.Lon}, e.Value(analyte)})
	}
	return out
}

// Zone is a grid cell colored by the worst value measured inside it.
type Zone struct {
	Cell  Cell           `json:"cell"`
	Max   *float64       `json:"max,omitempty"`
	Tier  threshold.Tier `json:"tier"`
	Color string         `json:"color"`
}

// HotZones grids the sample locations and classifies each occupied cell by
// its highest value of analyte. Empty cells are omitted.
func HotZones(data *model.Datasets, analyte string, opts Options) ([]Zone, error) {
	if _, ok := threshold.Table[analyte]; !ok {
		return nil, eris.Errorf("analysis: unknown analyte %q", analyte)
	}
	ms := Measurements(data, analyte)
	locs := make([]Location, len(ms))
	for i, m := range ms {
		locs[i] = m.Location
	}
	g, err := NewGrid(locs, opts)
	if err != nil {
		return nil, err
	}

	worst := make(map[*Cell]*float64)
	for _, m := range ms {
		c := g.locate(m.Lat, m.Lon)
		if _, seen := worst[c]; !seen {
			worst[c] = nil
		}
		if m.Value != nil && (worst[c] == nil || *m.Value > *worst[c]) {
			worst[c] = m.Value
		}
	}

	var zones []Zone
	for i := range g.Cells {
		c := &g.Cells[i]
		v, ok := worst[c]
		if !ok {
			continue
		}
		tier := threshold.Classify(v, analyte)
		zones = append(zones, Zone{Cell: *c, Max: v, Tier: tier, Color: tier.Color()})
	}
	return zones, nil
}
