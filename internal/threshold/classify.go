// Package threshold classifies analyte concentrations against the 2023 ROD
// on-mine soil cleanup levels.
package threshold

// Tier is the three-way classification of a measured value.
type Tier string

const (
	TierNotSampled Tier = "not_sampled"
	TierLow        Tier = "low"    // at or below the pre-mining baseline
	TierMedium     Tier = "medium" // above PMB, at or below the ROD level
	TierHigh       Tier = "high"   // above the ROD cleanup level
)

// Level holds the PMB (low) and ROD cleanup (high) values for an analyte.
type Level struct {
	Low    float64
	High   float64
	Unit   string
	Abbrev string
}

// Colors for each tier, matching the map legend.
const (
	ColorHigh       = "#d63e2a"
	ColorMedium     = "#f0932b"
	ColorLow        = "#72af26"
	ColorNotSampled = "#808080"
)

// Table is the ROD Table 2-3 threshold set.
var Table = map[string]Level{
	"Mercury":  {Low: 35, High: 204, Unit: "mg/kg", Abbrev: "Hg"},
	"Arsenic":  {Low: 6.1, High: 6.1, Unit: "mg/kg", Abbrev: "As"},
	"Antimony": {Low: 7.1, High: 51, Unit: "mg/kg", Abbrev: "Sb"},
	"Thallium": {Low: 1.3, High: 1.3, Unit: "mg/kg", Abbrev: "Tl"},
}

// COCs returns the constituents of concern in display order.
func COCs() []string {
	return []string{"Mercury", "Arsenic", "Antimony", "Thallium"}
}

// Classify returns the tier for value against analyte's thresholds.
// Rules:
//   - nil value or unknown analyte: not_sampled
//   - value > high: high
//   - value > low: medium
//   - otherwise: low
func Classify(value *float64, analyte string) Tier {
	if value == nil {
		return TierNotSampled
	}
	lvl, ok := Table[analyte]
	if !ok {
		return TierNotSampled
	}
	if *value > lvl.High {
		return TierHigh
	}
	if *value > lvl.Low {
		return TierMedium
	}
	return TierLow
}

// ExceedsROD reports whether value is above the ROD cleanup level.
func ExceedsROD(value *float64, analyte string) bool {
	return Classify(value, analyte) == TierHigh
}

// Color returns the legend color for a tier.
func (t Tier) Color() string {
	switch t {
	case TierHigh:
		return ColorHigh
	case TierMedium:
		return ColorMedium
	case TierLow:
		return ColorLow
	default:
		return ColorNotSampled
	}
}

// Rank orders tiers so the worst of several values can be kept.
func (t Tier) Rank() int {
	switch t {
	case TierHigh:
		return 3
	case TierMedium:
		return 2
	case TierLow:
		return 1
	default:
		return 0
	}
}

// AnyCOCExceeds reports whether any constituent of concern returned by value
// is above its ROD level.
func AnyCOCExceeds(value func(analyte string) *float64) bool {
	for _, a := range COCs() {
		if ExceedsROD(value(a), a) {
			return true
		}
	}
	return false
}
