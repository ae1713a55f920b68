package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Simplici0/fabestimate/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "estimator",
	Short: "Price fabrication estimates and render estimate or invoice documents",
	Long:  "Reads an estimate job file (YAML or JSON), computes material, labor, bill and advance figures, and renders HTML, PDF or spreadsheet documents.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
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
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
