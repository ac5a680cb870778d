package exchange

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/engr-sharif/sbmm-planning-tool/internal/model"
)

// ExportGeoJSON renders points as a FeatureCollection of WGS84 points. Each
// feature carries the point id and its attributes as properties.
func ExportGeoJSON(points []model.PlannedPoint) ([]byte, error) {
	if len(points) == 0 {
		return nil, ErrNothingToExport
	}
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(points))}
	for _, p := range points {
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       p.ID,
			Geometry: geom.NewPointFlat(geom.XY, []float64{p.Lon, p.Lat}),
			Properties: map[string]any{
				"type":  string(p.Category),
				"depth": string(p.Depth.OrDefault()),
				"note":  p.Note,
				"color": p.Color(),
			},
		})
	}
	out, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "geojson: marshal")
	}
	return out, nil
}
