package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/engr-sharif/sbmm-planning-tool/internal/exchange"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import planned points from CSV or XLSX",
	Long:  "Loads planned points from a CSV or XLSX file. In replace mode the plan is cleared first; in merge mode rows whose id already exists are skipped.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		path := args[0]

		modeFlag, _ := cmd.Flags().GetString("mode")
		mode, err := exchange.ParseMode(modeFlag)
		if err != nil {
			return err
		}

		e, err := openEnv(ctx, false)
		if err != nil {
			return err
		}
		defer e.Close()

		var res exchange.ImportResult
		switch strings.ToLower(filepath.Ext(path)) {
		case ".xlsx":
			res, err = e.session.ImportXLSX(ctx, path, mode)
		case ".csv", ".txt":
			text, readErr := os.ReadFile(path)
			if readErr != nil {
				return eris.Wrapf(readErr, "import: read %s", path)
			}
			res, err = e.session.ImportCSV(ctx, string(text), mode)
		default:
			return eris.Errorf("import: unsupported file type %q", filepath.Ext(path))
		}
		if err != nil {
			return eris.Wrap(err, "import")
		}

		for _, iss := range res.Issues {
			zap.L().Warn("import: row skipped",
				zap.Int("line", iss.Line),
				zap.String("kind", string(iss.Kind)),
				zap.String("id", iss.ID),
				zap.String("reason", iss.Reason),
			)
		}
		fmt.Fprintln(os.Stdout, res.Message())
		return nil
	},
}

func init() {
	importCmd.Flags().String("mode", string(exchange.ModeMerge), "replace or merge")
	rootCmd.AddCommand(importCmd)
}
