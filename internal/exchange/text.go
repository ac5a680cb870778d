package exchange

import (
	"fmt"
	"strings"

	"github.com/engr-sharif/sbmm-planning-tool/internal/model"
)

// DefaultClipboardTitle heads the clipboard listing.
const DefaultClipboardTitle = "SBMM Round 2 Planned Locations"

// ClipboardText renders points as one readable line each under title.
func ClipboardText(title string, points []model.PlannedPoint) (string, error) {
	if len(points) == 0 {
		return "", ErrNothingToExport
	}
	if title == "" {
		title = DefaultClipboardTitle
	}
	var b strings.Builder
	b.WriteString(title)
	b.WriteByte('\n')
	for _, p := range points {
		fmt.Fprintf(&b, "%s [%s]: %s, %s", p.ID, p.Depth.OrDefault(), coord(p.Lat), coord(p.Lon))
		if p.Note != "" {
			b.WriteString(" - ")
			b.WriteString(p.Note)
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// FileName returns the dated download name for an export, e.g.
// SBMM_Planned_2025-06-01.csv.
func FileName(prefix, date, ext string) string {
	return prefix + date + "." + strings.TrimPrefix(ext, ".")
}
