package exchange

import (
	"os"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"

	"github.com/engr-sharif/sbmm-planning-tool/internal/model"
)

// DBF attribute columns, in write order. DBF names are limited to 10 bytes.
var shpFields = []shp.Field{
	shp.StringField("POINT_ID", 16),
	shp.StringField("TYPE", 16),
	shp.StringField("DEPTH", 8),
	shp.FloatField("LAT", 12, 6),
	shp.FloatField("LON", 12, 6),
	shp.StringField("NOTE", 254),
}

// ExportShapefile writes a POINT shapefile (with .shx and .dbf siblings) at
// path. Text attributes longer than their DBF column are truncated.
func ExportShapefile(points []model.PlannedPoint, path string) error {
	if len(points) == 0 {
		return ErrNothingToExport
	}
	w, err := shp.Create(path, shp.POINT)
	if err != nil {
		return eris.Wrapf(err, "shapefile: create %s", path)
	}
	if err := writeShapes(w, points); err != nil {
		w.Close()
		return err
	}
	w.Close()

	// go-shp names the attribute file "<base>dbf"; readers expect "<base>.dbf".
	base := shapeBase(path)
	if err := os.Rename(base+"dbf", base+".dbf"); err != nil {
		return eris.Wrapf(err, "shapefile: rename %sdbf", base)
	}
	return nil
}

// shapeBase strips a ".shp" suffix the way shp.Create does.
func shapeBase(path string) string {
	if strings.HasSuffix(strings.ToLower(path), ".shp") {
		return path[:len(path)-len(".shp")]
	}
	return path
}

func writeShapes(w *shp.Writer, points []model.PlannedPoint) error {
	if err := w.SetFields(shpFields); err != nil {
		return eris.Wrap(err, "shapefile: set fields")
	}

	for _, p := range points {
		row := int(w.Write(&shp.Point{X: p.Lon, Y: p.Lat}))
		attrs := []any{
			truncate(p.ID, 16),
			truncate(string(p.Category), 16),
			string(p.Depth.OrDefault()),
			p.Lat,
			p.Lon,
			truncate(p.Note, 254),
		}
		for field, v := range attrs {
			if err := w.WriteAttribute(row, field, v); err != nil {
				return eris.Wrapf(err, "shapefile: write attribute %d of %s", field, p.ID)
			}
		}
	}
	return nil
}

// ReadShapefile returns the id, type, and coordinates of every point record,
// in file order.
func ReadShapefile(path string) ([]model.PlannedPoint, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "shapefile: open %s", path)
	}
	defer func() { _ = r.Close() }()

	var out []model.PlannedPoint
	for r.Next() {
		_, shape := r.Shape()
		pt, ok := shape.(*shp.Point)
		if !ok {
			continue
		}
		out = append(out, model.PlannedPoint{
			ID:       dbfString(r.Attribute(0)),
			Category: model.Category(dbfString(r.Attribute(1))),
			Lat:      pt.Y,
			Lon:      pt.X,
		})
	}
	return out, nil
}

func dbfString(s string) string {
	return strings.TrimSpace(strings.TrimRight(s, "\x00"))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
