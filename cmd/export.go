package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/engr-sharif/sbmm-planning-tool/internal/app"
	"github.com/engr-sharif/sbmm-planning-tool/internal/exchange"
)

var exportFormats = map[string]string{
	"csv":     "csv",
	"text":    "txt",
	"xlsx":    "xlsx",
	"geojson": "geojson",
	"shp":     "shp",
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the planned points",
	Long:  "Writes the plan as CSV, clipboard text, XLSX, GeoJSON or an ESRI shapefile. CSV and text go to stdout with --stdout.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		format, _ := cmd.Flags().GetString("format")
		ext, ok := exportFormats[format]
		if !ok {
			return eris.Errorf("export: unknown format %q", format)
		}
		toStdout, _ := cmd.Flags().GetBool("stdout")
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = filepath.Join(cfg.Export.Dir, exchange.FileName(cfg.Export.FilePrefix, time.Now().Format("2006-01-02"), ext))
		}

		e, err := openEnv(ctx, false)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := runExport(e.session, format, out, toStdout); err != nil {
			return eris.Wrapf(err, "export %s", format)
		}
		if !toStdout {
			zap.L().Info("export complete", zap.String("format", format), zap.String("path", out))
			fmt.Fprintf(os.Stderr, "Wrote %s\n", out)
		}
		return nil
	},
}

func runExport(s *app.Session, format, out string, toStdout bool) error {
	pts := s.Points()
	switch format {
	case "csv", "text":
		var text string
		var err error
		if format == "csv" {
			text, err = s.ExportCSV()
		} else {
			text, err = s.ExportText()
		}
		if err != nil {
			return err
		}
		if toStdout {
			_, err = fmt.Fprint(os.Stdout, text)
			return err
		}
		return os.WriteFile(out, []byte(text), 0o644)
	case "geojson":
		b, err := exchange.ExportGeoJSON(pts)
		if err != nil {
			return err
		}
		if toStdout {
			_, err = os.Stdout.Write(b)
			return err
		}
		return os.WriteFile(out, b, 0o644)
	case "xlsx":
		return exchange.ExportXLSX(pts, out)
	case "shp":
		return exchange.ExportShapefile(pts, out)
	}
	return eris.Errorf("unknown format %q", format)
}

func init() {
	exportCmd.Flags().String("format", "csv", "csv, text, xlsx, geojson or shp")
	exportCmd.Flags().String("out", "", "output path (default <export.dir>/<export.file_prefix><date>.<ext>)")
	exportCmd.Flags().Bool("stdout", false, "write csv, text or geojson to stdout")
	rootCmd.AddCommand(exportCmd)
}
