package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/engr-sharif/sbmm-planning-tool/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "sbmm",
	Short: "Sampling plan annotation tool",
	Long:  "Places, edits, labels and exports proposed sampling locations over the site sample datasets.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		if plan, _ := cmd.Flags().GetString("plan"); plan != "" {
			c.Planning.Plan = plan
		}
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().String("plan", "", "plan name (overrides planning.plan)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
