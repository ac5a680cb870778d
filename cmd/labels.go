package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/engr-sharif/sbmm-planning-tool/internal/labels"
)

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "Compute label positions for the visible layers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		layers, _ := cmd.Flags().GetString("layers")
		vis, err := labels.ParseLayers(layers)
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")

		e, err := openEnv(ctx, true)
		if err != nil {
			return err
		}
		defer e.Close()

		res := e.session.RefreshLabels(vis)
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		formatLabels(os.Stdout, res)
		return nil
	},
}

func formatLabels(out io.Writer, res labels.Result) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ENTITY\tCOLOR\tANCHOR\tLABEL\tFALLBACK")
	_, _ = fmt.Fprintln(w, "------\t-----\t------\t-----\t--------")
	for _, l := range res.Labels {
		fallback := ""
		if l.Placed.Fallback {
			fallback = "yes"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%.6f,%.6f\t%.6f,%.6f\t%s\n",
			l.Anchor.Text, l.Anchor.Color,
			l.Anchor.Lat, l.Anchor.Lon,
			l.Placed.Lat, l.Placed.Lon,
			fallback,
		)
	}
	_ = w.Flush()
	if res.Fallbacks > 0 {
		_, _ = fmt.Fprintf(out, "\n%d labels in dense clusters may overlap.\n", res.Fallbacks)
	}
}

func init() {
	labelsCmd.Flags().String("layers", "all", "comma-separated layers to label, or all")
	labelsCmd.Flags().Bool("json", false, "print the placement result as JSON")
	rootCmd.AddCommand(labelsCmd)
}
