package model

// Sample2025 is a current-round surface sample location.
type Sample2025 struct {
	Num      int                 `json:"num"`
	Label    string              `json:"label"`
	Lat      float64             `json:"lat"`
	Lon      float64             `json:"lon"`
	Sampled  bool                `json:"sampled"`
	Priority string              `json:"priority,omitempty"`
	Color    string              `json:"color,omitempty"`
	Metals   map[string]*float64 `json:"metals,omitempty"`
}

// Value returns the concentration for analyte, or nil when not measured.
func (s Sample2025) Value(analyte string) *float64 {
	if s.Metals == nil {
		return nil
	}
	return s.Metals[analyte]
}

// EASample is a historical environmental-assessment sample.
type EASample struct {
	ID       string   `json:"id"`
	Lat      float64  `json:"lat"`
	Lon      float64  `json:"lon"`
	Mercury  *float64 `json:"mercury"`
	Arsenic  *float64 `json:"arsenic"`
	Antimony *float64 `json:"antimony"`
	Thallium *float64 `json:"thallium"`
	Color    string   `json:"color,omitempty"`
}

// Value returns the concentration for one of the four tracked analytes.
func (e EASample) Value(analyte string) *float64 {
	switch analyte {
	case "Mercury":
		return e.Mercury
	case "Arsenic":
		return e.Arsenic
	case "Antimony":
		return e.Antimony
	case "Thallium":
		return e.Thallium
	}
	return nil
}

// EATestPit is a historical test pit with field notes only.
type EATestPit struct {
	ID    string  `json:"id"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	PH    any     `json:"ph,omitempty"`
	Notes string  `json:"notes,omitempty"`
}

// DepthInterval is one sampled interval of a borehole or test pit, in feet bgs.
type DepthInterval struct {
	Start  float64             `json:"start"`
	End    float64             `json:"end"`
	Label  string              `json:"label"`
	CLP    string              `json:"clp,omitempty"`
	Metals map[string]*float64 `json:"metals,omitempty"`
}

// Value returns the concentration for analyte within this interval.
func (d DepthInterval) Value(analyte string) *float64 {
	if d.Metals == nil {
		return nil
	}
	return d.Metals[analyte]
}

// TestPit is a current-round test pit with depth intervals.
type TestPit struct {
	ID     string          `json:"id"`
	Lat    float64         `json:"lat"`
	Lon    float64         `json:"lon"`
	Elev   *float64        `json:"elev,omitempty"`
	Depths []DepthInterval `json:"depths,omitempty"`
}

// SoilBoring is a current-round soil boring with depth intervals.
type SoilBoring struct {
	ID     string          `json:"id"`
	Lat    float64         `json:"lat"`
	Lon    float64         `json:"lon"`
	Elev   *float64        `json:"elev,omitempty"`
	Area   string          `json:"area,omitempty"`
	Depths []DepthInterval `json:"depths,omitempty"`
}

// Datasets holds the five read-only record sets loaded at startup.
type Datasets struct {
	Samples2025     []Sample2025
	EASamples       []EASample
	EATestPits      []EATestPit
	TestPits2025    []TestPit
	SoilBorings2025 []SoilBoring
}

// Center returns the mean coordinate of the 2025 and EA samples.
// ok is false when both sets are empty.
func (d *Datasets) Center() (lat, lon float64, ok bool) {
	n := len(d.Samples2025) + len(d.EASamples)
	if n == 0 {
		return 0, 0, false
	}
	for _, s := range d.Samples2025 {
		lat += s.Lat
		lon += s.Lon
	}
	for _, e := range d.EASamples {
		lat += e.Lat
		lon += e.Lon
	}
	return lat / float64(n), lon / float64(n), true
}
