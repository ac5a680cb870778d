package labels

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/engr-sharif/sbmm-planning-tool/internal/model"
)

// Layer is a toggleable map layer whose entities can carry labels.
type Layer string

const (
	LayerSampled2025     Layer = "sampled2025"
	LayerNotSampled2025  Layer = "notSampled2025"
	LayerEASamples       Layer = "eaSamples"
	LayerTestPits2025    Layer = "testPits2025"
	LayerSoilBorings2025 Layer = "soilBorings2025"
	LayerEATestPits      Layer = "eaTestPits"
	LayerPlanned         Layer = "planned"
)

// Label text colors per layer. Planned points use their category color.
const (
	ColorSample2025  = "#1F4E79"
	ColorEASample    = "#8B4513"
	ColorTestPit2025 = "#cc6600"
	ColorSoilBoring  = "#0066cc"
	ColorEATestPit   = "#9932CC"
)

// AllLayers returns every layer in anchor-processing order.
func AllLayers() []Layer {
	return []Layer{
		LayerSampled2025,
		LayerNotSampled2025,
		LayerEASamples,
		LayerTestPits2025,
		LayerSoilBorings2025,
		LayerEATestPits,
		LayerPlanned,
	}
}

// Visibility records which layers are currently shown.
type Visibility map[Layer]bool

// AllVisible returns a Visibility with every layer on.
func AllVisible() Visibility {
	v := make(Visibility)
	for _, l := range AllLayers() {
		v[l] = true
	}
	return v
}

// ParseLayers builds a Visibility from a comma-separated list of layer names.
// "all" turns every layer on.
func ParseLayers(s string) (Visibility, error) {
	v := make(Visibility)
	known := make(map[Layer]bool)
	for _, l := range AllLayers() {
		known[l] = true
	}
	for _, part := range strings.Split(s, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if name == "all" {
			return AllVisible(), nil
		}
		if !known[Layer(name)] {
			return nil, eris.Errorf("labels: unknown layer %q", name)
		}
		v[Layer(name)] = true
	}
	return v, nil
}

// Anchors collects label anchors from the visible layers. The order is fixed:
// 2025 samples (sampled and not-sampled interleaved in source order, each
// gated by its own toggle), EA samples, 2025 test pits, 2025 soil borings, EA
// test pits, then planned points in insertion order.
func Anchors(data *model.Datasets, planned []model.PlannedPoint, vis Visibility) []Anchor {
	var out []Anchor
	if data != nil {
		if vis[LayerSampled2025] || vis[LayerNotSampled2025] {
			for _, s := range data.Samples2025 {
				if (s.Sampled && vis[LayerSampled2025]) || (!s.Sampled && vis[LayerNotSampled2025]) {
					out = append(out, Anchor{EntityID: s.Label, Lat: s.Lat, Lon: s.Lon, Text: s.Label, Color: ColorSample2025})
				}
			}
		}
		if vis[LayerEASamples] {
			for _, e := range data.EASamples {
				out = append(out, Anchor{EntityID: e.ID, Lat: e.Lat, Lon: e.Lon, Text: e.ID, Color: ColorEASample})
			}
		}
		if vis[LayerTestPits2025] {
			for _, tp := range data.TestPits2025 {
				out = append(out, Anchor{EntityID: tp.ID, Lat: tp.Lat, Lon: tp.Lon, Text: tp.ID, Color: ColorTestPit2025})
			}
		}
		if vis[LayerSoilBorings2025] {
			for _, sb := range data.SoilBorings2025 {
				out = append(out, Anchor{EntityID: sb.ID, Lat: sb.Lat, Lon: sb.Lon, Text: sb.ID, Color: ColorSoilBoring})
			}
		}
		if vis[LayerEATestPits] {
			for _, tp := range data.EATestPits {
				out = append(out, Anchor{EntityID: tp.ID, Lat: tp.Lat, Lon: tp.Lon, Text: tp.ID, Color: ColorEATestPit})
			}
		}
	}
	if vis[LayerPlanned] {
		for _, p := range planned {
			out = append(out, Anchor{EntityID: p.ID, Lat: p.Lat, Lon: p.Lon, Text: p.ID, Color: p.Color()})
		}
	}
	return out
}

// Label pairs an anchor with its placed position.
type Label struct {
	Anchor Anchor      `json:"anchor"`
	Placed PlacedLabel `json:"placed"`
}

// Result is the output of one placement pass.
type Result struct {
	Labels    []Label `json:"labels"`
	Fallbacks int     `json:"fallbacks"`
}

// PlaceAll places anchors in order, each against the labels placed before it.
func (e *Engine) PlaceAll(anchors []Anchor) Result {
	res := Result{Labels: make([]Label, 0, len(anchors))}
	placed := make([]PlacedLabel, 0, len(anchors))
	for _, a := range anchors {
		pl := e.Place(a, placed)
		placed = append(placed, pl)
		if pl.Fallback {
			res.Fallbacks++
		}
		res.Labels = append(res.Labels, Label{Anchor: a, Placed: pl})
	}
	return res
}

// Refresh rebuilds every label from scratch for the visible layers.
func (e *Engine) Refresh(data *model.Datasets, planned []model.PlannedPoint, vis Visibility) Result {
	return e.PlaceAll(Anchors(data, planned, vis))
}
