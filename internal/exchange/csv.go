// Package exchange moves planned points in and out of the tool: CSV export
// and import, clipboard text, XLSX, GeoJSON, and Shapefile.
package exchange

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/engr-sharif/sbmm-planning-tool/internal/model"
)

// CSVHeader is the first line of every exported CSV.
const CSVHeader = "Point_ID,Type,Depth,Latitude,Longitude,Note"

// ErrNothingToExport is returned by exporters given no points.
var ErrNothingToExport = eris.New("exchange: no points to export")

// ExportCSV renders points in insertion order. Notes are wrapped in double
// quotes with no escaping, so a note containing a quote does not survive a
// round trip.
func ExportCSV(points []model.PlannedPoint) string {
	var b strings.Builder
	b.WriteString(CSVHeader)
	b.WriteByte('\n')
	for _, p := range points {
		fmt.Fprintf(&b, "%s,%s,%s,%s,%s,\"%s\"\n",
			p.ID, p.Category, p.Depth.OrDefault(),
			coord(p.Lat), coord(p.Lon), p.Note)
	}
	return b.String()
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// SplitLine splits one CSV line on commas outside quotes. Quote characters
// toggle the quoted state and are dropped; they need not be balanced. Every
// field is trimmed.
func SplitLine(line string) []string {
	var (
		fields  []string
		cur     strings.Builder
		inQuote bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
		case r == ',' && !inQuote:
			fields = append(fields, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(fields, strings.TrimSpace(cur.String()))
}

// IssueKind classifies a skipped import row.
type IssueKind string

const (
	IssueMalformedRow IssueKind = "malformed_row"
	IssueDuplicateID  IssueKind = "duplicate_id"
)

// RowIssue describes why one input row was skipped. Line is 1-based and
// counts the header.
type RowIssue struct {
	Line   int       `json:"line"`
	Kind   IssueKind `json:"kind"`
	ID     string    `json:"id,omitempty"`
	Reason string    `json:"reason"`
}

// parsed is the outcome of reading rows before they reach the store.
type parsed struct {
	points []model.PlannedPoint
	issues []RowIssue
}

// rowParser applies the import row policy. taken reports ids already present
// in the target store; ids repeated within the input are also rejected.
type rowParser struct {
	taken func(id string) bool
	seen  map[string]bool
	out   parsed
}

func newRowParser(taken func(string) bool) *rowParser {
	if taken == nil {
		taken = func(string) bool { return false }
	}
	return &rowParser{taken: taken, seen: make(map[string]bool)}
}

func (rp *rowParser) skip(line int, kind IssueKind, id, reason string) {
	rp.out.issues = append(rp.out.issues, RowIssue{Line: line, Kind: kind, ID: id, Reason: reason})
}

// row handles the already-split fields of one data row.
func (rp *rowParser) row(line int, parts []string) {
	if len(parts) < 5 {
		rp.skip(line, IssueMalformedRow, "", fmt.Sprintf("expected at least 5 fields, got %d", len(parts)))
		return
	}
	id := parts[0]
	lat, latOK := parseCoord(parts[3])
	lon, lonOK := parseCoord(parts[4])
	if !latOK || !lonOK {
		rp.skip(line, IssueMalformedRow, id, "latitude/longitude not a finite number")
		return
	}
	if rp.taken(id) || rp.seen[id] {
		rp.skip(line, IssueDuplicateID, id, "id already exists")
		return
	}
	rp.seen[id] = true

	var note string
	if len(parts) > 5 {
		note = parts[5]
	}
	rp.out.points = append(rp.out.points, model.PlannedPoint{
		ID:       id,
		Category: model.Category(strings.ToLower(parts[1])),
		Depth:    model.DepthClass(parts[2]).OrDefault(),
		Lat:      lat,
		Lon:      lon,
		Note:     note,
	})
}

func parseCoord(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseCSV reads text line by line. The first line is the header and is
// never interpreted; blank lines are ignored.
func parseCSV(text string, taken func(string) bool) parsed {
	rp := newRowParser(taken)
	for i, raw := range strings.Split(text, "\n") {
		if i == 0 {
			continue
		}
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		rp.row(i+1, SplitLine(line))
	}
	return rp.out
}
