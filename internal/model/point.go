// Package model defines the planned-point, dataset, and depth-interval types
// shared across the planning tool.
package model

// Category is the kind of a planned sampling point.
type Category string

const (
	CategoryProposed Category = "proposed"
	CategoryStepOut  Category = "stepout"
)

// DefaultColor is used for categories with no configured color.
const DefaultColor = "#00bfff"

// CategoryInfo describes the identifier prefix, marker color, and display label
// for a known category.
type CategoryInfo struct {
	Prefix string
	Color  string
	Label  string
}

var categories = map[Category]CategoryInfo{
	CategoryProposed: {Prefix: "P-", Color: "#00bfff", Label: "Proposed"},
	CategoryStepOut:  {Prefix: "SO-", Color: "#ff6b00", Label: "Step-out"},
}

// AllCategories returns the known categories in display order.
func AllCategories() []Category {
	return []Category{CategoryProposed, CategoryStepOut}
}

// Info returns the configuration of a known category.
func (c Category) Info() (CategoryInfo, bool) {
	info, ok := categories[c]
	return info, ok
}

// Known reports whether c is one of the supported categories.
func (c Category) Known() bool {
	_, ok := categories[c]
	return ok
}

// Prefix returns the identifier prefix, or "" for unknown categories.
func (c Category) Prefix() string {
	return categories[c].Prefix
}

// Color returns the marker color. Unknown categories get DefaultColor.
func (c Category) Color() string {
	if info, ok := categories[c]; ok {
		return info.Color
	}
	return DefaultColor
}

// Label returns the human-readable name, falling back to the raw value.
func (c Category) Label() string {
	if info, ok := categories[c]; ok {
		return info.Label
	}
	return string(c)
}

// DepthClass is the sampling depth planned for a point.
type DepthClass string

const (
	DepthShallow DepthClass = "Shallow"
	DepthDeep    DepthClass = "Deep"
	DepthBoth    DepthClass = "Both"
)

// DepthOptions returns the selectable depth classes in display order.
func DepthOptions() []DepthClass {
	return []DepthClass{DepthShallow, DepthDeep, DepthBoth}
}

// OrDefault returns d, or DepthShallow when d is empty.
func (d DepthClass) OrDefault() DepthClass {
	if d == "" {
		return DepthShallow
	}
	return d
}

// PlannedPoint is a user-created proposed sampling location.
type PlannedPoint struct {
	ID       string     `json:"id"`
	Category Category   `json:"type"`
	Lat      float64    `json:"lat"`
	Lon      float64    `json:"lon"`
	Depth    DepthClass `json:"depth"`
	Note     string     `json:"note,omitempty"`
}

// Color is derived from the category and cannot be set independently.
func (p PlannedPoint) Color() string {
	return p.Category.Color()
}
