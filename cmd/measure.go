package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/engr-sharif/sbmm-planning-tool/internal/analysis"
	"github.com/engr-sharif/sbmm-planning-tool/internal/app"
)

var measureCmd = &cobra.Command{
	Use:   "measure <point> <point> [point...]",
	Short: "Measure the path length in feet through two or more points",
	Long:  "Each point is either \"lat,lon\" or the id of a planned point.",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pts := make([]analysis.LatLon, len(args))
		var e *env
		for i, arg := range args {
			if ll, ok := parseLatLon(arg); ok {
				pts[i] = ll
				continue
			}
			if e == nil {
				var err error
				if e, err = openEnv(ctx, false); err != nil {
					return err
				}
				defer e.Close()
			}
			p, err := e.session.Resolve(app.MarkerRef{ID: arg})
			if err != nil {
				return eris.Wrap(err, "measure")
			}
			pts[i] = analysis.LatLon{Lat: p.Lat, Lon: p.Lon}
		}

		opts := analysisOptions()
		for i := 1; i < len(pts); i++ {
			fmt.Fprintf(os.Stdout, "%s -> %s\t%.1f ft\n", args[i-1], args[i], analysis.DistanceFeet(pts[i-1], pts[i], opts))
		}
		if len(pts) > 2 {
			fmt.Fprintf(os.Stdout, "total\t%.1f ft\n", analysis.PathFeet(pts, opts))
		}
		return nil
	},
}

func parseLatLon(s string) (analysis.LatLon, bool) {
	latStr, lonStr, ok := strings.Cut(s, ",")
	if !ok {
		return analysis.LatLon{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return analysis.LatLon{}, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return analysis.LatLon{}, false
	}
	return analysis.LatLon{Lat: lat, Lon: lon}, true
}

func init() {
	rootCmd.AddCommand(measureCmd)
}
