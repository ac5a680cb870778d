package exchange

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/engr-sharif/sbmm-planning-tool/internal/model"
)

// XLSXSheetName is the sheet written by ExportXLSX.
const XLSXSheetName = "Planned Points"

var xlsxHeader = []string{"Point_ID", "Type", "Depth", "Latitude", "Longitude", "Note"}

// ExportXLSX writes points to a workbook at path with the same columns as the
// CSV export. Coordinates are numeric cells.
func ExportXLSX(points []model.PlannedPoint, path string) error {
	if len(points) == 0 {
		return ErrNothingToExport
	}
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(XLSXSheetName)
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range xlsxHeader {
		header.AddCell().SetString(h)
	}
	for _, p := range points {
		row := sheet.AddRow()
		row.AddCell().SetString(p.ID)
		row.AddCell().SetString(string(p.Category))
		row.AddCell().SetString(string(p.Depth.OrDefault()))
		row.AddCell().SetFloatWithFormat(p.Lat, "0.000000")
		row.AddCell().SetFloatWithFormat(p.Lon, "0.000000")
		row.AddCell().SetString(p.Note)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "xlsx: save %s", path)
	}
	return nil
}

// ReadXLSXRows returns every row of the first sheet as strings.
func ReadXLSXRows(path string) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("xlsx: %s has no sheets", path)
	}

	sheet := f.Sheets[0]
	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return rows, nil
}
