package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/engr-sharif/sbmm-planning-tool/internal/analysis"
)

var hotzonesCmd = &cobra.Command{
	Use:   "hotzones",
	Short: "Classify grid cells by their highest analyte value",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		analyte, _ := cmd.Flags().GetString("analyte")
		if analyte == "" {
			analyte = cfg.Analysis.Analyte
		}
		opts := analysisOptions()
		if cmd.Flags().Changed("grid-size") {
			size, _ := cmd.Flags().GetFloat64("grid-size")
			opts.GridSizeFt = analysis.AdjustGridSize(size, 0, opts.MinGridSizeFt, opts.MaxGridSizeFt)
		}

		e, err := openEnv(ctx, true)
		if err != nil {
			return err
		}
		defer e.Close()

		zones, err := analysis.HotZones(e.session.Datasets(), analyte, opts)
		if err != nil {
			return eris.Wrap(err, "hotzones")
		}
		formatZones(os.Stdout, analyte, zones)
		return nil
	},
}

func formatZones(out io.Writer, analyte string, zones []analysis.Zone) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "ROW\tCOL\tMAX %s\tTIER\tCOLOR\tSAMPLES\n", analyte)
	_, _ = fmt.Fprintln(w, "---\t---\t-----\t----\t-----\t-------")
	for _, z := range zones {
		maxVal := "-"
		if z.Max != nil {
			maxVal = fmt.Sprintf("%g", *z.Max)
		}
		_, _ = fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%d\n",
			z.Cell.Row, z.Cell.Col, maxVal, z.Tier, z.Color, len(z.Cell.IDs))
	}
	_ = w.Flush()
}

func init() {
	hotzonesCmd.Flags().String("analyte", "", "Mercury, Arsenic, Antimony or Thallium (default analysis.analyte)")
	hotzonesCmd.Flags().Float64("grid-size", 0, "grid cell size in feet (default analysis.grid_size_ft)")
	rootCmd.AddCommand(hotzonesCmd)
}
