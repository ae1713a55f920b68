package main

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Simplici0/fabestimate/internal/estimate"
)

var (
	calcFile   string
	calcFromDB bool
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Compute an estimate and print the result as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		j, err := loadJob(calcFile)
		if err != nil {
			return err
		}
		settings, err := resolveSettings(cmd.Context(), j, calcFromDB, cfg.DBPath)
		if err != nil {
			return err
		}
		return runCalc(cmd.OutOrStdout(), j, settings)
	},
}

func init() {
	calcCmd.Flags().StringVarP(&calcFile, "file", "f", "", "estimate job file (YAML or JSON)")
	calcCmd.Flags().BoolVar(&calcFromDB, "from-db", false, "use stored settings when the job has none")
	_ = calcCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(calcCmd)
}

func runCalc(w io.Writer, j job, settings estimate.Settings) error {
	res, err := estimate.ComputeRequest(j.Estimate, settings)
	if err != nil {
		return eris.Wrap(err, "compute estimate")
	}

	zap.L().Debug("estimate computed",
		zap.String("client", j.Client),
		zap.Int("items", len(res.LineItems)),
		zap.String("bill_amount", res.BillAmount.String()),
	)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
