package main

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/engr-sharif/sbmm-planning-tool/internal/depth"
)

var depthCmd = &cobra.Command{
	Use:   "depth <entity-id>",
	Short: "Show the depth profile of a test pit or soil boring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id := args[0]
		index, _ := cmd.Flags().GetInt("index")
		metals, _ := cmd.Flags().GetBool("metals")

		e, err := openEnv(ctx, true)
		if err != nil {
			return err
		}
		defer e.Close()

		sel := e.session.Depth()
		if _, err := sel.Open(id); err != nil {
			return eris.Wrap(err, "depth")
		}
		defer sel.Close(id)
		if metals {
			if _, err := sel.ToggleMetals(id); err != nil {
				return eris.Wrap(err, "depth")
			}
		}
		if _, err := e.session.SelectDepthInterval(id, index); err != nil {
			return eris.Wrap(err, "depth")
		}

		prof, err := sel.Profile(id)
		if err != nil {
			return eris.Wrap(err, "depth")
		}
		formatProfile(os.Stdout, prof)

		if metals {
			ent, _ := sel.Entity(id)
			formatMetals(os.Stdout, ent, index)
		}
		return nil
	},
}

func formatProfile(out io.Writer, p depth.Profile) {
	_, _ = fmt.Fprintf(out, "%s (%s) max depth %.1f ft, %.0f px, ticks every %.0f ft\n\n",
		p.EntityID, p.Kind, p.MaxDepth, p.HeightPx, p.TickInterval)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tINTERVAL\tTOP%\tHEIGHT%\tEXCEEDS\tSELECTED")
	_, _ = fmt.Fprintln(w, "-\t--------\t----\t-------\t-------\t--------")
	for _, s := range p.Segments {
		exceeds, selected := "", ""
		if s.Exceeds {
			exceeds = "yes"
		}
		if s.Index == p.Overlay.Index {
			selected = "*"
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%.1f\t%.1f\t%s\t%s\n",
			s.Index, s.Label, s.TopPct, s.HeightPct, exceeds, selected)
	}
	_ = w.Flush()
}

func formatMetals(out io.Writer, ent depth.Entity, index int) {
	iv := ent.Intervals[index]
	_, _ = fmt.Fprintf(out, "\n%s metals (mg/kg)\n", iv.Label)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, name := range sortedKeys(iv.Metals) {
		v := iv.Metals[name]
		if v == nil {
			_, _ = fmt.Fprintf(w, "%s\t-\n", name)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\t%g\n", name, *v)
	}
	_ = w.Flush()
}

func sortedKeys(m map[string]*float64) []string {
	return slices.Sorted(maps.Keys(m))
}

func init() {
	depthCmd.Flags().Int("index", 0, "interval to select")
	depthCmd.Flags().Bool("metals", false, "expand the full metals list of the selected interval")
	rootCmd.AddCommand(depthCmd)
}
