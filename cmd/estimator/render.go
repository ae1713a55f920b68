package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Simplici0/fabestimate/internal/document"
	"github.com/Simplici0/fabestimate/internal/estimate"
)

var (
	renderFile   string
	renderFormat string
	renderFinal  bool
	renderOut    string
	renderFromDB bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render an estimate or invoice document",
	Long:  "Renders the job as html, pdf, xlsx or an internal profit report. Without --out the file is named after the client in the current directory; --out - writes to stdout.",
	RunE: func(cmd *cobra.Command, args []string) error {
		j, err := loadJob(renderFile)
		if err != nil {
			return err
		}
		settings, err := resolveSettings(cmd.Context(), j, renderFromDB, cfg.DBPath)
		if err != nil {
			return err
		}

		r := document.NewRenderer(document.Options{
			BusinessName:   cfg.BusinessName,
			CurrencySymbol: cfg.CurrencySymbol,
			CurrencyCode:   cfg.CurrencyCode,
		})
		out, ext, err := renderJob(r, j, settings, renderFormat, renderFinal)
		if err != nil {
			return err
		}

		if renderOut == "-" {
			_, err := cmd.OutOrStdout().Write(out)
			return err
		}
		path := renderOut
		if path == "" {
			path = document.Filename(j.Client, renderFinal, ext)
		}
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return eris.Wrapf(err, "write %s", path)
		}
		zap.L().Info("document written", zap.String("path", filepath.Clean(path)), zap.Int("bytes", len(out)))
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVarP(&renderFile, "file", "f", "", "estimate job file (YAML or JSON)")
	renderCmd.Flags().StringVar(&renderFormat, "format", "html", "html, pdf, xlsx or report")
	renderCmd.Flags().BoolVar(&renderFinal, "final", false, "render a final invoice instead of an estimate")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "output path, - for stdout")
	renderCmd.Flags().BoolVar(&renderFromDB, "from-db", false, "use stored settings when the job has none")
	_ = renderCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(renderCmd)
}

// renderJob computes the job and renders it, returning the bytes and the
// file extension for format.
func renderJob(r *document.Renderer, j job, settings estimate.Settings, format string, isFinal bool) ([]byte, string, error) {
	res, err := estimate.ComputeRequest(j.Estimate, settings)
	if err != nil {
		return nil, "", eris.Wrap(err, "compute estimate")
	}

	var buf bytes.Buffer
	switch strings.ToLower(format) {
	case "html":
		err = r.Render(&buf, j.Client, res, isFinal)
		return buf.Bytes(), "html", err
	case "report":
		err = r.RenderInternalReport(&buf, j.Client, res)
		return buf.Bytes(), "html", err
	case "pdf":
		out, err := r.PDF(j.Client, res, isFinal)
		return out, "pdf", err
	case "xlsx":
		out, err := r.Excel(j.Client, res, isFinal)
		return out, "xlsx", err
	default:
		return nil, "", eris.Errorf("unsupported format %q", format)
	}
}
