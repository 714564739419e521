package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/nameplate-cli/internal/export"
	"github.com/sells-group/nameplate-cli/internal/fetcher"
	"github.com/sells-group/nameplate-cli/internal/model"
	"github.com/sells-group/nameplate-cli/internal/pipeline"
)

var (
	extractJSON bool
	extractSave bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <file|url>...",
	Short: "OCR nameplate files and extract fields",
	Long:  "Runs OCR on each image, PDF or text file in order and prints the extracted fields.\nhttp(s) URLs are downloaded to a temporary directory first.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initService(ctx, "extract", extractSave)
		if err != nil {
			return err
		}
		defer env.Close()

		tmpDir, err := os.MkdirTemp("", "nameplate-fetch-*")
		if err != nil {
			return eris.Wrap(err, "extract: create download dir")
		}
		defer os.RemoveAll(tmpDir) //nolint:errcheck

		dl := fetcher.New(fetcher.OptionsFromConfig(cfg.Fetch))

		runs := make([]model.Run, 0, len(args))
		failed := 0
		for _, input := range args {
			run, err := extractInput(ctx, env.Service, dl, tmpDir, input)
			if err != nil {
				failed++
				zap.L().Error("extract failed", zap.String("input", input), zap.Error(err))
				if run == nil {
					continue
				}
			}
			runs = append(runs, *run)
		}

		if err := printRuns(cmd.OutOrStdout(), runs, extractJSON); err != nil {
			return err
		}
		if failed > 0 {
			return eris.Errorf("extract: %d of %d files failed", failed, len(args))
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "print runs as JSON")
	extractCmd.Flags().BoolVar(&extractSave, "save", false, "persist runs to the configured store")
	rootCmd.AddCommand(extractCmd)
}

// extractInput processes a local path, or downloads an http(s) URL into
// tmpDir and processes the copy under the URL as its source.
func extractInput(ctx context.Context, svc *pipeline.Service, dl fetcher.Fetcher, tmpDir, input string) (*model.Run, error) {
	if !fetcher.IsURL(input) {
		return svc.ProcessFile(ctx, input)
	}
	path, err := dl.DownloadToFile(ctx, input, tmpDir)
	if err != nil {
		return nil, err
	}
	return svc.ProcessFileAs(ctx, input, path)
}

// printRuns writes runs as indented JSON or as summary blocks.
func printRuns(w io.Writer, runs []model.Run, asJSON bool) error {
	if asJSON {
		if runs == nil {
			runs = []model.Run{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}
	return export.WriteSummaries(w, runs)
}
