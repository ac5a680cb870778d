package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/engr-sharif/sbmm-planning-tool/internal/store"
)

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List saved plans",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		plans, err := st.ListPlans(ctx)
		if err != nil {
			return eris.Wrap(err, "plans")
		}
		if len(plans) == 0 {
			fmt.Fprintln(os.Stderr, "No saved plans.")
			return nil
		}
		formatPlans(os.Stdout, plans)
		return nil
	},
}

func formatPlans(out io.Writer, plans []store.PlanSummary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PLAN\tPOINTS\tUPDATED")
	_, _ = fmt.Fprintln(w, "----\t------\t-------")
	for _, p := range plans {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\n", p.Name, p.Points, p.UpdatedAt.Format("2006-01-02 15:04"))
	}
	_ = w.Flush()
}

func init() {
	rootCmd.AddCommand(plansCmd)
}
