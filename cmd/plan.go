package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/engr-sharif/sbmm-planning-tool/internal/model"
	"github.com/engr-sharif/sbmm-planning-tool/internal/planning"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Edit the planned sampling points",
	Long:  "Commands for adding, editing, moving and removing planned points. Every change is saved to the configured store.",
}

// -- plan add --

var planAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a planned point",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		lat, _ := cmd.Flags().GetFloat64("lat")
		lon, _ := cmd.Flags().GetFloat64("lon")
		typ, _ := cmd.Flags().GetString("type")
		depthClass, _ := cmd.Flags().GetString("depth")
		note, _ := cmd.Flags().GetString("note")

		e, err := openEnv(ctx, false)
		if err != nil {
			return err
		}
		defer e.Close()

		p, err := e.session.AddPoint(ctx, lat, lon, model.Category(typ), model.DepthClass(depthClass), note)
		if err != nil {
			return eris.Wrap(err, "plan add")
		}
		fmt.Fprintf(os.Stdout, "Added %s at %.6f, %.6f\n", p.ID, p.Lat, p.Lon)
		return nil
	},
}

// -- plan place --

var planPlaceCmd = &cobra.Command{
	Use:   "place",
	Short: "Place a point the way a map click does in a planning mode",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		modeFlag, _ := cmd.Flags().GetString("mode")
		if modeFlag == "" {
			modeFlag = cfg.Planning.Mode
		}
		mode, err := planning.ParseMode(modeFlag)
		if err != nil {
			return err
		}
		lat, _ := cmd.Flags().GetFloat64("lat")
		lon, _ := cmd.Flags().GetFloat64("lon")
		depthClass, _ := cmd.Flags().GetString("depth")
		note, _ := cmd.Flags().GetString("note")

		e, err := openEnv(ctx, false)
		if err != nil {
			return err
		}
		defer e.Close()

		planner := e.session.Planner()
		planner.SetMode(mode)
		pending := planner.HandleMapClick(lat, lon)
		if pending == nil {
			return eris.Errorf("plan place: mode %q does not place points", mode)
		}
		zap.L().Debug("plan place: pending", zap.String("preview_id", pending.ID))

		p, err := e.session.ConfirmPending(ctx, model.DepthClass(depthClass), note)
		if err != nil {
			return eris.Wrap(err, "plan place")
		}
		fmt.Fprintf(os.Stdout, "Placed %s at %.6f, %.6f\n", p.ID, p.Lat, p.Lon)
		return nil
	},
}

// -- plan update --

var planUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Edit the note, depth or position of a point",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		patch, err := patchFromFlags(cmd)
		if err != nil {
			return err
		}

		e, err := openEnv(ctx, false)
		if err != nil {
			return err
		}
		defer e.Close()

		p, err := e.session.UpdatePoint(ctx, args[0], patch)
		if err != nil {
			return eris.Wrap(err, "plan update")
		}
		formatPoints(os.Stdout, []model.PlannedPoint{p})
		return nil
	},
}

// patchFromFlags builds a patch from the flags the user actually set.
func patchFromFlags(cmd *cobra.Command) (planning.Patch, error) {
	var patch planning.Patch
	flags := cmd.Flags()
	if flags.Changed("note") {
		v, _ := flags.GetString("note")
		patch.Note = &v
	}
	if flags.Changed("depth") {
		v, _ := flags.GetString("depth")
		d := model.DepthClass(v)
		patch.Depth = &d
	}
	if flags.Changed("lat") {
		v, _ := flags.GetFloat64("lat")
		patch.Lat = &v
	}
	if flags.Changed("lon") {
		v, _ := flags.GetFloat64("lon")
		patch.Lon = &v
	}
	if patch == (planning.Patch{}) {
		return patch, eris.New("plan update: nothing to change (use --note, --depth, --lat or --lon)")
	}
	return patch, nil
}

// -- plan delete --

var planDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a planned point",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := openEnv(ctx, false)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.session.DeletePoint(ctx, args[0]); err != nil {
			return eris.Wrap(err, "plan delete")
		}
		fmt.Fprintf(os.Stdout, "Deleted %s\n", args[0])
		return nil
	},
}

// -- plan undo --

var planUndoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Remove the most recently added point",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		e, err := openEnv(ctx, false)
		if err != nil {
			return err
		}
		defer e.Close()

		p, ok, err := e.session.UndoLast(ctx)
		if err != nil {
			return eris.Wrap(err, "plan undo")
		}
		if !ok {
			fmt.Fprintln(os.Stderr, "Nothing to undo.")
			return nil
		}
		fmt.Fprintf(os.Stdout, "Removed %s\n", p.ID)
		return nil
	},
}

// -- plan clear --

var planClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every planned point (requires --yes)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		yes, _ := cmd.Flags().GetBool("yes")

		e, err := openEnv(ctx, false)
		if err != nil {
			return err
		}
		defer e.Close()

		n, err := e.session.ClearAll(ctx, yes)
		if err != nil {
			return eris.Wrap(err, "plan clear")
		}
		fmt.Fprintf(os.Stdout, "Removed %d points\n", n)
		return nil
	},
}

// -- plan list --

var planListCmd = &cobra.Command{
	Use:   "list",
	Short: "List planned points in insertion order",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		e, err := openEnv(ctx, false)
		if err != nil {
			return err
		}
		defer e.Close()

		pts := e.session.Points()
		if len(pts) == 0 {
			fmt.Fprintln(os.Stderr, "No planned points.")
			return nil
		}
		formatPoints(os.Stdout, pts)
		return nil
	},
}

func formatPoints(out io.Writer, pts []model.PlannedPoint) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTYPE\tDEPTH\tLAT\tLON\tNOTE")
	_, _ = fmt.Fprintln(w, "--\t----\t-----\t---\t---\t----")

	for _, p := range pts {
		note := p.Note
		if len(note) > 40 {
			note = note[:37] + "..."
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%.6f\t%.6f\t%s\n",
			p.ID, p.Category.Label(), p.Depth, p.Lat, p.Lon, note)
	}
	_ = w.Flush()
}

func addPointFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("lat", 0, "latitude in decimal degrees (required)")
	cmd.Flags().Float64("lon", 0, "longitude in decimal degrees (required)")
	cmd.Flags().String("depth", string(model.DepthShallow), "depth class: Shallow, Deep or Both")
	cmd.Flags().String("note", "", "free-text note")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
}

func init() {
	addPointFlags(planAddCmd)
	planAddCmd.Flags().String("type", string(model.CategoryProposed), "point type: proposed or stepout")

	addPointFlags(planPlaceCmd)
	planPlaceCmd.Flags().String("mode", "", "planning mode: proposed or stepout (default planning.mode)")

	planUpdateCmd.Flags().String("note", "", "new note")
	planUpdateCmd.Flags().String("depth", "", "new depth class")
	planUpdateCmd.Flags().Float64("lat", 0, "new latitude")
	planUpdateCmd.Flags().Float64("lon", 0, "new longitude")

	planClearCmd.Flags().Bool("yes", false, "confirm removing every point")

	planCmd.AddCommand(planAddCmd, planPlaceCmd, planUpdateCmd, planDeleteCmd, planUndoCmd, planClearCmd, planListCmd)
	rootCmd.AddCommand(planCmd)
}
