package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/engr-sharif/sbmm-planning-tool/internal/analysis"
)

var gapsCmd = &cobra.Command{
	Use:   "gaps",
	Short: "Find grid cells with no sampling coverage",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		opts := analysisOptions()
		if cmd.Flags().Changed("grid-size") {
			size, _ := cmd.Flags().GetFloat64("grid-size")
			opts.GridSizeFt = analysis.AdjustGridSize(size, 0, opts.MinGridSizeFt, opts.MaxGridSizeFt)
		}
		if noPlanned, _ := cmd.Flags().GetBool("no-planned"); noPlanned {
			opts.IncludePlanned = false
		}
		asJSON, _ := cmd.Flags().GetBool("json")

		e, err := openEnv(ctx, true)
		if err != nil {
			return err
		}
		defer e.Close()

		rep, err := analysis.Gaps(e.session.Datasets(), e.session.Points(), opts)
		if err != nil {
			return eris.Wrap(err, "gaps")
		}
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		}
		formatGaps(os.Stdout, rep)
		return nil
	},
}

func formatGaps(out io.Writer, rep *analysis.GapReport) {
	g := rep.Grid
	_, _ = fmt.Fprintf(out, "%.0f ft grid, %d x %d cells, %d covered (%.1f%%), %d gaps\n\n",
		g.SizeFt, g.Rows, g.Cols, rep.Covered, rep.Coverage, len(rep.Gaps))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ROW\tCOL\tCENTER")
	_, _ = fmt.Fprintln(w, "---\t---\t------")
	for _, c := range rep.Gaps {
		lat, lon := c.Center()
		_, _ = fmt.Fprintf(w, "%d\t%d\t%.6f,%.6f\n", c.Row, c.Col, lat, lon)
	}
	_ = w.Flush()
}

func init() {
	gapsCmd.Flags().Float64("grid-size", 0, "grid cell size in feet (default analysis.grid_size_ft)")
	gapsCmd.Flags().Bool("no-planned", false, "do not count planned points as coverage")
	gapsCmd.Flags().Bool("json", false, "print the report as JSON")
	rootCmd.AddCommand(gapsCmd)
}
