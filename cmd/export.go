package main

import (
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/nameplate-cli/internal/export"
	"github.com/sells-group/nameplate-cli/internal/model"
	"github.com/sells-group/nameplate-cli/internal/store"
)

var (
	exportFormat string
	exportOut    string
	exportStatus string
	exportSource string
	exportLimit  int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored runs as CSV, XLSX or text summaries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		format, ok := export.ParseFormat(exportFormat)
		if !ok {
			return eris.Errorf("export: unknown format %q (want csv, xlsx or txt)", exportFormat)
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Status: model.RunStatus(exportStatus),
			Source: exportSource,
			Limit:  exportLimit,
		})
		if err != nil {
			return eris.Wrap(err, "export: list runs")
		}

		w := cmd.OutOrStdout()
		if exportOut != "" && exportOut != "-" {
			f, err := os.Create(exportOut)
			if err != nil {
				return eris.Wrapf(err, "export: create %s", exportOut)
			}
			defer f.Close() //nolint:errcheck
			w = f
		}

		if err := writeExport(w, format, runs); err != nil {
			return err
		}
		zap.L().Info("export complete",
			zap.String("format", string(format)),
			zap.Int("runs", len(runs)),
			zap.String("out", exportOut),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "output format: csv, xlsx or txt")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (default stdout)")
	exportCmd.Flags().StringVar(&exportStatus, "status", string(model.RunStatusComplete), "only runs with this status (empty for all)")
	exportCmd.Flags().StringVar(&exportSource, "source", "", "only runs for this source")
	exportCmd.Flags().IntVar(&exportLimit, "limit", 1000, "max number of runs to export")
	rootCmd.AddCommand(exportCmd)
}

// writeExport renders runs in format.
func writeExport(w io.Writer, format export.Format, runs []model.Run) error {
	switch format {
	case export.FormatCSV:
		return export.WriteCSV(w, runs)
	case export.FormatXLSX:
		return export.WriteXLSX(w, runs)
	case export.FormatText:
		return export.WriteSummaries(w, runs)
	default:
		return eris.Errorf("export: unknown format %q", format)
	}
}
