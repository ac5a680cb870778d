package analysis

import "math"

// LatLon is a WGS84 coordinate pair.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// DistanceFeet returns the planar distance between a and b using the site's
// degree scaling. It is accurate to a few percent over the site extent.
func DistanceFeet(a, b LatLon, opts Options) float64 {
	dy := (b.Lat - a.Lat) * opts.MetersPerDegLat
	dx := (b.Lon - a.Lon) * opts.MetersPerDegLon
	return math.Hypot(dx, dy) / FeetToMeters
}

// PathFeet returns the total length of a polyline through pts.
func PathFeet(pts []LatLon, opts Options) float64 {
	var total float64
	for i := 1; i < len(pts); i++ {
		total += DistanceFeet(pts[i-1], pts[i], opts)
	}
	return total
}
